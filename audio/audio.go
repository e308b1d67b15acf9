package audio

// Source is a microphone capture resource. A Source is opened and started
// once per recording session and released with Stop and Close.
type Source interface {
	// Initialize initializes the audio system
	Initialize() error

	// Terminate terminates the audio system
	Terminate()

	// Open acquires the capture device
	Open() error

	// Start begins capturing into the device buffer
	Start() error

	// Read copies captured PCM bytes into p. It may return fewer bytes than
	// len(p), including zero, and may fail transiently.
	Read(p []byte) (int, error)

	// Stop stops capturing
	Stop() error

	// Close releases the capture device
	Close() error
}
