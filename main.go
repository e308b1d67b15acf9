package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/d1nch8g/recapp/app"
	"github.com/d1nch8g/recapp/audio"
	"github.com/d1nch8g/recapp/config"
	"github.com/d1nch8g/recapp/export"
	"github.com/d1nch8g/recapp/permission"
	"github.com/d1nch8g/recapp/recorder"
	"github.com/d1nch8g/recapp/sound"
	"github.com/d1nch8g/recapp/stt"
)

var commands = map[string]app.Button{
	"r": app.ButtonRecord,
	"p": app.ButtonPlayback,
	"u": app.ButtonUsage,
	"s": app.ButtonSave,
	"t": app.ButtonTranscribe,
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup signal handling
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize capture source
	audioConfig := audio.GetDefaultConfig()
	audioConfig.FramesPerBuffer = cfg.Audio.FramesPerBuffer

	source := audio.NewPortaudioSource(audioConfig)
	if err := source.Initialize(); err != nil {
		log.Fatalf("Failed to initialize PortAudio: %v", err)
	}
	defer source.Terminate()

	// Initialize output sink
	sink := sound.NewPortaudioSink(sound.GetDefaultConfig())
	if err := sink.Initialize(); err != nil {
		log.Fatalf("Failed to initialize PortAudio: %v", err)
	}
	defer sink.Terminate()

	minBufferSize := audioConfig.MinBufferSize()
	buffer := recorder.NewBuffer(minBufferSize * cfg.Audio.BufferMultiplier)

	gate := &permission.Gate{}
	gate.Set(permission.ParseStatus(cfg.Permission))
	rec := recorder.New(source, buffer, gate, minBufferSize)

	opts := app.Options{
		Exporter:  export.NewWAVWriter(),
		ExportDir: cfg.ExportDir,
	}

	// Transcription is optional
	if cfg.TranscriptionEnabled() {
		sttClient, err := stt.NewYandexClient(stt.YandexConfig{
			IamToken: cfg.IamToken,
			FolderID: cfg.FolderID,
			Language: cfg.Language,
		})
		if err != nil {
			log.Fatalf("Failed to create STT client: %v", err)
		}
		defer sttClient.Close()
		opts.Transcriber = sttClient
	}

	session := app.NewSession(rec, gate, sound.NewPlayer(sink), opts)
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
	}()

	var wasRecording atomic.Bool
	session.OnChange(func(v app.View) {
		recording := v.State == recorder.Recording
		if wasRecording.Swap(recording) && !recording && buffer.Len() == buffer.Cap() {
			fmt.Println("\nBuffer full, recording stopped.")
			fmt.Println(v)
		}
	})

	stdin := bufio.NewReader(os.Stdin)
	if err := session.Init(ctx, permission.Prompt{In: stdin, Out: os.Stdout}); err != nil {
		log.Fatalf("Failed to request permission: %v", err)
	}

	fmt.Println(app.Usage)
	fmt.Println(session.View())

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := stdin.ReadString('\n')
			if line != "" {
				lines <- strings.TrimSpace(line)
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Printf("Error reading input: %v", err)
				}
				return
			}
		}
	}()

	// Handle commands and signals
	for {
		select {
		case <-sig:
			fmt.Println("\nStopping...")
			cancel()
			return
		case line, ok := <-lines:
			if !ok || line == "q" {
				cancel()
				return
			}
			if line == "" {
				fmt.Println(session.View())
				continue
			}

			button, known := commands[line]
			if !known {
				fmt.Printf("Unknown command %q, press u for help\n", line)
				continue
			}

			msg, err := session.Press(ctx, button)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else if msg != "" {
				fmt.Println(msg)
			}
			fmt.Println(session.View())
		}
	}
}
