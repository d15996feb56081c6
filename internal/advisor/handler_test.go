package advisor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomAdvisorAi/internal/events"
	"roomAdvisorAi/internal/llm"
	"roomAdvisorAi/internal/song"
	"roomAdvisorAi/internal/storage"
	"roomAdvisorAi/internal/upload"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
	lastMsgs []llm.ChatMessage
	lastTemp float64
	lastMax  int
}

func (f *fakeLLM) ChatCompletion(_ context.Context, messages []llm.ChatMessage, temperature float64, maxTokens int) (string, error) {
	f.calls++
	f.lastMsgs = messages
	f.lastTemp = temperature
	f.lastMax = maxTokens
	return f.response, f.err
}

type fakeSinger struct {
	audio []byte
	err   error
}

func (f fakeSinger) Sing(_ context.Context, _ string) ([]byte, error) {
	return f.audio, f.err
}

func roomFormRequest(t *testing.T, url, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="room.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestAnalyzeRejectsInvalidMediaTypeWithoutModelCall(t *testing.T) {
	model := &fakeLLM{response: sampleReport}
	h := Handler{LLM: model}

	req := roomFormRequest(t, "/api/analyze", "image/gif", []byte("gifdata"), nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), "image/gif")
	assert.Equal(t, 0, model.calls)
}

func TestAnalyzeRejectsOversizedImageWithoutModelCall(t *testing.T) {
	model := &fakeLLM{response: sampleReport}
	h := Handler{LLM: model}

	big := bytes.Repeat([]byte("a"), upload.MaxImageBytes+1)
	req := roomFormRequest(t, "/api/analyze", "image/jpeg", big, nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, model.calls)
}

func TestAnalyzeReturnsReport(t *testing.T) {
	model := &fakeLLM{response: "```json\n" + sampleReport + "\n```"}
	h := Handler{LLM: model}

	req := roomFormRequest(t, "/api/analyze", "image/jpeg", []byte("jpegdata"), map[string]string{
		"vibe":     "Cozy",
		"priority": "Comfort",
	})
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report storage.DesignReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "A bright room with a tired couch.", report.OverallImpression)

	assert.Equal(t, 1, model.calls)
	assert.InDelta(t, 0.7, model.lastTemp, 1e-9)
	assert.Equal(t, 2000, model.lastMax)
	require.Len(t, model.lastMsgs, 2)
	assert.Contains(t, model.lastMsgs[0].Content, "Room vibe preference: Cozy.")
	assert.True(t, strings.HasPrefix(model.lastMsgs[1].ImageURL, "data:image/jpeg;base64,"))
}

func TestAnalyzePersistsReportWhenStoreConfigured(t *testing.T) {
	store := storage.NewInMemoryStore()
	h := Handler{LLM: &fakeLLM{response: sampleReport}, Store: store}

	req := roomFormRequest(t, "/api/analyze", "image/png", []byte("pngdata"), nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.NotEmpty(t, reports[0].ID)
}

func TestAnalyzeWithoutModelReturns503(t *testing.T) {
	h := Handler{}
	req := roomFormRequest(t, "/api/analyze", "image/jpeg", []byte("jpegdata"), nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecommendationsTruncatesProducts(t *testing.T) {
	raw := `{"products":[{"name":"p1"},{"name":"p2"},{"name":"p3"},{"name":"p4"},{"name":"p5"}]}`
	model := &fakeLLM{response: raw}
	h := Handler{LLM: model}

	req := roomFormRequest(t, "/api/recommendations", "image/webp", []byte("webpdata"), nil)
	rec := httptest.NewRecorder()
	h.Recommendations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list ProductList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Products, 3)
	assert.Equal(t, "p1", list.Products[0].Name)
	assert.Equal(t, "p3", list.Products[2].Name)

	assert.InDelta(t, 0.9, model.lastTemp, 1e-9)
	assert.Equal(t, 800, model.lastMax)
}

func TestRecommendationsEmptyProductsFails(t *testing.T) {
	h := Handler{LLM: &fakeLLM{response: `{"products":[]}`}}

	req := roomFormRequest(t, "/api/recommendations", "image/jpeg", []byte("jpegdata"), nil)
	rec := httptest.NewRecorder()
	h.Recommendations(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"products"`)
}

func TestVibeSongReturnsLyricsAndAudio(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt fake")
	model := &fakeLLM{response: "Sage walls glow, the lamp hums low\n"}
	h := Handler{LLM: model, Songs: fakeSinger{audio: audio}}

	payload := `{"overall_impression":"Calm and green.","categories":[{"name":"Lighting"},{"name":"Decor & Accessories"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/vibe-song", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.VibeSong(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result VibeSongResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Sage walls glow, the lamp hums low", result.Lyrics)
	assert.Equal(t, "wav", result.Format)
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), result.AudioBase64)

	assert.InDelta(t, 1.1, model.lastTemp, 1e-9)
	assert.Equal(t, 120, model.lastMax)
	assert.Contains(t, model.lastMsgs[1].Content, "Design areas: Lighting, Decor & Accessories")
}

func TestVibeSongTimeoutMapsTo504(t *testing.T) {
	h := Handler{
		LLM:   &fakeLLM{response: "la la la"},
		Songs: fakeSinger{err: song.ErrGenerationTimeout},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/vibe-song", strings.NewReader(`{"overall_impression":"x","categories":[]}`))
	rec := httptest.NewRecorder()
	h.VibeSong(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestVibeSongWithoutGeneratorReturns503(t *testing.T) {
	h := Handler{LLM: &fakeLLM{response: "la"}}

	req := httptest.NewRequest(http.MethodPost, "/api/vibe-song", strings.NewReader(`{"overall_impression":"x","categories":[]}`))
	rec := httptest.NewRecorder()
	h.VibeSong(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSaveQuizPersistsResult(t *testing.T) {
	store := storage.NewInMemoryStore()
	h := Handler{Store: store}

	req := httptest.NewRequest(http.MethodPost, "/api/quiz", strings.NewReader(`{"vibe":"Modern","priority":"Aesthetics","budget":"Mid"}`))
	rec := httptest.NewRecorder()
	h.SaveQuiz(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		StyleTag string `json:"style_tag"`
		Saved    bool   `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sleek & Styled", body.StyleTag)
	assert.True(t, body.Saved)

	saved := store.QuizResults()
	require.Len(t, saved, 1)
	assert.Equal(t, "Sleek & Styled", saved[0].StyleTag)
	assert.Equal(t, "Mid", saved[0].Budget)
}

func TestSaveQuizWithoutStoreReturns503(t *testing.T) {
	h := Handler{}

	req := httptest.NewRequest(http.MethodPost, "/api/quiz", strings.NewReader(`{"vibe":"Cozy","priority":"Comfort","budget":"Low"}`))
	rec := httptest.NewRecorder()
	h.SaveQuiz(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamEventsDeliversPublishedEvents(t *testing.T) {
	broker := events.NewBroker()
	h := Handler{Events: broker}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.StreamEvents(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	broker.Publish(events.Event{ReportID: "r1", Stage: "analyzed"})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `data: {"report_id":"r1","stage":"analyzed"}`)
}

func TestHealthReflectsConfiguration(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler{}.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["openai_configured"])

	rec = httptest.NewRecorder()
	Handler{OpenAIKeySet: true, Songs: fakeSinger{}}.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["openai_configured"])
	assert.Equal(t, true, body["audio_configured"])
}
