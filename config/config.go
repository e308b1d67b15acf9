package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultFramesPerBuffer  = 1792
	DefaultBufferMultiplier = 600
	DefaultExportDir        = "recordings"
)

type AudioConfig struct {
	// FramesPerBuffer is the device read size; the minimum buffer size in
	// bytes is FramesPerBuffer * 2.
	FramesPerBuffer int
	// BufferMultiplier is the number of device reads that fit in the
	// capture buffer.
	BufferMultiplier int
}

type Config struct {
	IamToken   string
	FolderID   string
	Language   string
	ExportDir  string
	Permission string
	Audio      AudioConfig
}

// LoadConfig reads .env if present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	frames, err := intEnv("FRAMES_PER_BUFFER", DefaultFramesPerBuffer)
	if err != nil {
		return nil, err
	}
	multiplier, err := intEnv("BUFFER_MULTIPLIER", DefaultBufferMultiplier)
	if err != nil {
		return nil, err
	}

	return &Config{
		IamToken:   os.Getenv("IAM_TOKEN"),
		FolderID:   os.Getenv("FOLDER_ID"),
		Language:   stringEnv("LANGUAGE", "en-US"),
		ExportDir:  stringEnv("EXPORT_DIR", DefaultExportDir),
		Permission: os.Getenv("RECORD_PERMISSION"),
		Audio: AudioConfig{
			FramesPerBuffer:  frames,
			BufferMultiplier: multiplier,
		},
	}, nil
}

// TranscriptionEnabled reports whether SpeechKit credentials are set.
func (c *Config) TranscriptionEnabled() bool {
	return c.IamToken != "" && c.FolderID != ""
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, n)
	}
	return n, nil
}
