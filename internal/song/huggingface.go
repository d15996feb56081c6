package song

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	hfBaseURL = "https://api-inference.huggingface.co"
	barkModel = "suno/bark"

	// Bark cold-starts on the shared inference fleet; three attempts with
	// the provider-advised wait covers the common case without hanging
	// the request forever.
	maxWarmupAttempts = 3
	maxWarmupWait     = 30 * time.Second
	defaultWarmupWait = 5 * time.Second
)

// HuggingFaceGenerator sings lyrics through the HuggingFace Inference API.
type HuggingFaceGenerator struct {
	client *resty.Client
}

// NewHuggingFace constructs a generator authenticated with the given token.
func NewHuggingFace(token string) *HuggingFaceGenerator {
	client := resty.New().
		SetBaseURL(hfBaseURL).
		SetHeader("Authorization", "Bearer "+token).
		SetTimeout(2 * time.Minute)
	return &HuggingFaceGenerator{client: client}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (g *HuggingFaceGenerator) SetBaseURL(url string) {
	g.client.SetBaseURL(url)
}

// Sing posts the wrapped lyrics to Bark and returns the raw WAV bytes.
// A 503 with a loading hint is retried after the advised wait, clamped to
// maxWarmupWait; any other failure is surfaced immediately.
func (g *HuggingFaceGenerator) Sing(ctx context.Context, lyrics string) ([]byte, error) {
	payload := map[string]string{"inputs": wrapLyrics(lyrics)}

	for attempt := 1; attempt <= maxWarmupAttempts; attempt++ {
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post("/models/" + barkModel)
		if err != nil {
			return nil, fmt.Errorf("bark request: %w", err)
		}
		if resp.IsSuccess() {
			return resp.Body(), nil
		}

		if resp.StatusCode() != http.StatusServiceUnavailable {
			return nil, fmt.Errorf("bark status %d: %s", resp.StatusCode(), truncateBody(resp.Body(), 200))
		}

		var loading struct {
			Error         string  `json:"error"`
			EstimatedTime float64 `json:"estimated_time"`
		}
		_ = json.Unmarshal(resp.Body(), &loading)
		if loading.EstimatedTime <= 0 && !strings.Contains(strings.ToLower(loading.Error), "loading") {
			// 503 without a loading hint is a real outage, not warmup.
			return nil, fmt.Errorf("bark status %d: %s", resp.StatusCode(), truncateBody(resp.Body(), 200))
		}

		if attempt == maxWarmupAttempts {
			break
		}

		wait := time.Duration(loading.EstimatedTime * float64(time.Second))
		if wait <= 0 {
			wait = defaultWarmupWait
		}
		if wait > maxWarmupWait {
			wait = maxWarmupWait
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, ErrWarmupTimeout
}
