package stt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	speechkit "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
)

const (
	YandexSTTEndpoint = "stt.api.cloud.yandex.net:443"

	chunkSize = 4096
)

var ErrNoCredentials = errors.New("IAM token and folder ID are required")

type YandexConfig struct {
	IamToken string
	FolderID string
	Language string
	Endpoint string
}

type YandexClient struct {
	client   speechkit.RecognizerClient
	conn     *grpc.ClientConn
	iamToken string
	folderID string
	language string
}

var _ Transcriber = (*YandexClient)(nil)

// NewYandexClient connects to SpeechKit. Without opts the connection uses TLS.
func NewYandexClient(config YandexConfig, opts ...grpc.DialOption) (*YandexClient, error) {
	if config.IamToken == "" || config.FolderID == "" {
		return nil, ErrNoCredentials
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = YandexSTTEndpoint
	}
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{}))}
	}

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Yandex STT: %w", err)
	}

	return &YandexClient{
		client:   speechkit.NewRecognizerClient(conn),
		conn:     conn,
		iamToken: config.IamToken,
		folderID: config.FolderID,
		language: config.Language,
	}, nil
}

func (s *YandexClient) Close() error {
	return s.conn.Close()
}

func (s *YandexClient) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	md := metadata.Pairs(
		"authorization", "Bearer "+s.iamToken,
		"x-folder-id", s.folderID,
	)
	ctx = metadata.NewOutgoingContext(ctx, md)

	g, ctx := errgroup.WithContext(ctx)

	stream, err := s.client.RecognizeStreaming(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create streaming client: %w", err)
	}

	// io.EOF from Send means the server ended the stream; Recv reports why.
	if err := stream.Send(s.sessionOptions(int64(sampleRate))); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to send session options: %w", err)
	}

	var texts []string

	g.Go(func() error {
		for {
			resp, err := stream.Recv()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to receive response: %w", err)
			}

			// First alternative is the best one
			if alternatives := resp.GetFinal().GetAlternatives(); len(alternatives) > 0 {
				if text := alternatives[0].GetText(); text != "" {
					texts = append(texts, text)
				}
			}
		}
	})

	g.Go(func() error {
		for off := 0; off < len(pcm); off += chunkSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := min(off+chunkSize, len(pcm))
			req := &speechkit.StreamingRequest{
				Event: &speechkit.StreamingRequest_Chunk{
					Chunk: &speechkit.AudioChunk{Data: pcm[off:end]},
				},
			}
			if err := stream.Send(req); err == io.EOF {
				return nil
			} else if err != nil {
				return fmt.Errorf("failed to send audio chunk: %w", err)
			}
		}
		return stream.CloseSend()
	})

	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(texts, " "), nil
}

func (s *YandexClient) sessionOptions(sampleRate int64) *speechkit.StreamingRequest {
	model := &speechkit.RecognitionModelOptions{
		AudioFormat: &speechkit.AudioFormatOptions{
			AudioFormat: &speechkit.AudioFormatOptions_RawAudio{
				RawAudio: &speechkit.RawAudio{
					AudioEncoding:     speechkit.RawAudio_LINEAR16_PCM,
					SampleRateHertz:   sampleRate,
					AudioChannelCount: 1,
				},
			},
		},
		TextNormalization: &speechkit.TextNormalizationOptions{
			TextNormalization: speechkit.TextNormalizationOptions_TEXT_NORMALIZATION_ENABLED,
		},
		AudioProcessingType: speechkit.RecognitionModelOptions_REAL_TIME,
	}
	if s.language != "" {
		model.LanguageRestriction = &speechkit.LanguageRestrictionOptions{
			RestrictionType: speechkit.LanguageRestrictionOptions_WHITELIST,
			LanguageCode:    []string{s.language},
		}
	}

	return &speechkit.StreamingRequest{
		Event: &speechkit.StreamingRequest_SessionOptions{
			SessionOptions: &speechkit.StreamingOptions{RecognitionModel: model},
		},
	}
}
