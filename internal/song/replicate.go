package song

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	replicateBaseURL = "https://api.replicate.com"
	barkVersion      = "b76242b40d67c76ab6742e987628a2a9ac019e11d56ab96c4e91ce03b79b2787"

	generationCap = 5 * time.Minute
	pollInterval  = 2 * time.Second
)

// ReplicateGenerator sings lyrics with Bark hosted on Replicate.
type ReplicateGenerator struct {
	client    *resty.Client
	cap       time.Duration
	pollEvery time.Duration
}

// NewReplicate constructs a generator authenticated with the given API token.
func NewReplicate(token string) *ReplicateGenerator {
	client := resty.New().
		SetBaseURL(replicateBaseURL).
		SetHeader("Authorization", "Token "+token).
		SetTimeout(time.Minute)
	return &ReplicateGenerator{
		client:    client,
		cap:       generationCap,
		pollEvery: pollInterval,
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (g *ReplicateGenerator) SetBaseURL(url string) {
	g.client.SetBaseURL(url)
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// Sing runs the prediction on its own goroutine and joins with a hard
// wall-clock cap. On timeout the pending provider call is abandoned, not
// cancelled upstream, and the caller gets ErrGenerationTimeout.
func (g *ReplicateGenerator) Sing(ctx context.Context, lyrics string) ([]byte, error) {
	type result struct {
		audio []byte
		err   error
	}
	done := make(chan result, 1)

	go func() {
		audio, err := g.run(context.WithoutCancel(ctx), lyrics)
		done <- result{audio, err}
	}()

	timer := time.NewTimer(g.cap)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.audio, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrGenerationTimeout
	}
}

func (g *ReplicateGenerator) run(ctx context.Context, lyrics string) ([]byte, error) {
	var pred prediction
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"version": barkVersion,
			"input": map[string]any{
				"prompt":        wrapLyrics(lyrics),
				"text_temp":     0.7,
				"waveform_temp": 0.7,
			},
		}).
		SetResult(&pred).
		Post("/v1/predictions")
	if err != nil {
		return nil, fmt.Errorf("replicate request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("replicate status %d: %s", resp.StatusCode(), truncateBody(resp.Body(), 200))
	}

	for {
		switch pred.Status {
		case "succeeded":
			return g.fetchAudio(ctx, pred.Output)
		case "failed", "canceled":
			return nil, fmt.Errorf("replicate prediction %s: %s", pred.Status, pred.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.pollEvery):
		}

		resp, err = g.client.R().
			SetContext(ctx).
			SetResult(&pred).
			Get("/v1/predictions/" + pred.ID)
		if err != nil {
			return nil, fmt.Errorf("replicate poll: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("replicate status %d: %s", resp.StatusCode(), truncateBody(resp.Body(), 200))
		}
	}
}

// fetchAudio resolves the prediction output to a URL and downloads the WAV.
// Bark returns either {"audio_out": url} or a bare URL string.
func (g *ReplicateGenerator) fetchAudio(ctx context.Context, output json.RawMessage) ([]byte, error) {
	var audioURL string

	var asMap map[string]string
	if err := json.Unmarshal(output, &asMap); err == nil {
		audioURL = asMap["audio_out"]
	}
	if audioURL == "" {
		_ = json.Unmarshal(output, &audioURL)
	}
	if audioURL == "" {
		return nil, fmt.Errorf("replicate prediction has no audio output")
	}

	resp, err := g.client.R().SetContext(ctx).Get(audioURL)
	if err != nil {
		return nil, fmt.Errorf("download audio: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download audio status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
