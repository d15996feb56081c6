package advisor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"roomAdvisorAi/internal/events"
	"roomAdvisorAi/internal/llm"
	"roomAdvisorAi/internal/media"
	"roomAdvisorAi/internal/prompts"
	"roomAdvisorAi/internal/quiz"
	"roomAdvisorAi/internal/song"
	"roomAdvisorAi/internal/storage"
	"roomAdvisorAi/internal/upload"
)

// Sampling temperatures per call-site: higher where creative variety
// across repeated calls is wanted.
const (
	analysisTemperature = 0.7
	productsTemperature = 0.9
	lyricsTemperature   = 1.1

	analysisMaxTokens = 2000
	productsMaxTokens = 800
	lyricsMaxTokens   = 120
)

// Handler bundles dependencies for the advisor endpoints. Nil fields mean
// the corresponding integration is not configured and its endpoints answer
// with 503 before any external call.
type Handler struct {
	LLM      llm.Client
	Songs    song.Generator
	Store    storage.Store
	Uploader media.Uploader
	Events   *events.Broker

	OpenAIKeySet bool
}

const (
	msgOpenAINotConfigured = "OPENAI_API_KEY is not configured. Add it to .env and restart the server."
	msgAudioNotConfigured  = "Audio generation is not configured. Set REPLICATE_API_TOKEN or HF_API_TOKEN and restart."
	msgDBNotConfigured     = "Database not configured. Set DATABASE_URL and restart."
	msgMalformedOutput     = "The AI returned an unexpected format. Please try again."
)

// Health handles GET /api/health. It never fails.
func (h Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"openai_configured":   h.OpenAIKeySet,
		"audio_configured":    h.Songs != nil,
		"database_configured": h.Store != nil,
	})
}

type roomUpload struct {
	data        []byte
	filename    string
	contentType string
}

// dataURI embeds the image inline for the outbound model call.
func (u roomUpload) dataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", u.contentType, base64.StdEncoding.EncodeToString(u.data))
}

// Analyze handles POST /api/analyze: room photo in, design report out.
func (h Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.LLM == nil {
		writeError(w, http.StatusServiceUnavailable, msgOpenAINotConfigured)
		return
	}

	img, style, err := parseRoomForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.LLM.ChatCompletion(r.Context(), []llm.ChatMessage{
		{Role: "system", Content: prompts.Analysis(style)},
		{Role: "user", Content: prompts.AnalyzeInstruction, ImageURL: img.dataURI()},
	}, analysisTemperature, analysisMaxTokens)
	if err != nil {
		writeError(w, http.StatusBadGateway, "AI analysis failed: "+err.Error())
		return
	}

	report, err := ParseReport(raw)
	if err != nil {
		writeError(w, http.StatusBadGateway, msgMalformedOutput)
		return
	}

	report.ImageURL = h.archivePhoto(r, img)

	if h.Store != nil {
		saved, err := h.Store.SaveReport(r.Context(), report)
		if err != nil {
			log.Warn().Err(err).Msg("could not persist design report")
		} else {
			report = saved
			if h.Events != nil {
				h.Events.Publish(events.Event{ReportID: saved.ID, Stage: "analyzed"})
			}
		}
	}

	writeJSON(w, http.StatusOK, report)
}

// Recommendations handles POST /api/recommendations. Calling it again for
// the same photo yields fresh suggestions (refresh semantics).
func (h Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	if h.LLM == nil {
		writeError(w, http.StatusServiceUnavailable, msgOpenAINotConfigured)
		return
	}

	img, style, err := parseRoomForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.LLM.ChatCompletion(r.Context(), []llm.ChatMessage{
		{Role: "system", Content: prompts.Products(style)},
		{Role: "user", Content: prompts.RecommendInstruction, ImageURL: img.dataURI()},
	}, productsTemperature, productsMaxTokens)
	if err != nil {
		writeError(w, http.StatusBadGateway, "AI recommendations failed: "+err.Error())
		return
	}

	list, err := ParseProducts(raw)
	switch {
	case errors.Is(err, ErrNoProducts):
		writeError(w, http.StatusBadGateway, "AI recommendations failed: expected at least one product")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, msgMalformedOutput)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// VibeSongRequest is the payload for POST /api/vibe-song.
type VibeSongRequest struct {
	OverallImpression string             `json:"overall_impression"`
	Categories        []storage.Category `json:"categories"`
}

// VibeSongResult is the sung rendition of a design report.
type VibeSongResult struct {
	Lyrics      string `json:"lyrics"`
	AudioBase64 string `json:"audio_base64"`
	Format      string `json:"format"`
}

// VibeSong handles POST /api/vibe-song: lyrics first, then sung audio.
// The singing call consumes the lyrics output, so the two upstream calls
// run sequentially.
func (h Handler) VibeSong(w http.ResponseWriter, r *http.Request) {
	if h.LLM == nil {
		writeError(w, http.StatusServiceUnavailable, msgOpenAINotConfigured)
		return
	}
	if h.Songs == nil {
		writeError(w, http.StatusServiceUnavailable, msgAudioNotConfigured)
		return
	}

	var req VibeSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	names := make([]string, 0, len(req.Categories))
	for _, cat := range req.Categories {
		names = append(names, cat.Name)
	}

	lyrics, err := h.LLM.ChatCompletion(r.Context(), []llm.ChatMessage{
		{Role: "system", Content: prompts.Lyrics()},
		{Role: "user", Content: prompts.LyricsInstruction(prompts.RoomContext(req.OverallImpression, names))},
	}, lyricsTemperature, lyricsMaxTokens)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Song generation failed: "+err.Error())
		return
	}
	lyrics = strings.TrimSpace(lyrics)

	audio, err := h.Songs.Sing(r.Context(), lyrics)
	switch {
	case errors.Is(err, song.ErrGenerationTimeout):
		writeError(w, http.StatusGatewayTimeout,
			"Song generation timed out. The singing model is still warming up — try again in 1 minute.")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "Song generation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, VibeSongResult{
		Lyrics:      lyrics,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Format:      "wav",
	})
}

// QuizRequest is the payload for POST /api/quiz.
type QuizRequest struct {
	Vibe     string `json:"vibe"`
	Priority string `json:"priority"`
	Budget   string `json:"budget"`
}

// SaveQuiz handles POST /api/quiz.
func (h Handler) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Vibe == "" || req.Priority == "" || req.Budget == "" {
		writeError(w, http.StatusBadRequest, "vibe, priority and budget are required")
		return
	}

	styleTag := quiz.StyleTag(req.Vibe, req.Priority)

	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, msgDBNotConfigured)
		return
	}

	if _, err := h.Store.SaveQuizResult(r.Context(), storage.QuizResult{
		Vibe:     req.Vibe,
		Priority: req.Priority,
		Budget:   req.Budget,
		StyleTag: styleTag,
	}); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to save quiz: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"style_tag": styleTag,
		"saved":     true,
	})
}

// ListReports handles GET /api/reports.
func (h Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, msgDBNotConfigured)
		return
	}

	reports, err := h.Store.ListReports(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list reports: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// StreamEvents handles GET /api/events as a server-sent event stream.
func (h Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		writeError(w, http.StatusServiceUnavailable, "events not configured")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch := h.Events.Subscribe()
	defer h.Events.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// archivePhoto best-effort stores the uploaded photo; analysis never fails
// because archiving did.
func (h Handler) archivePhoto(r *http.Request, img roomUpload) string {
	if h.Uploader == nil {
		return ""
	}
	result, err := h.Uploader.Upload(r.Context(), media.UploadInput{
		Filename:    img.filename,
		ContentType: img.contentType,
		Body:        bytes.NewReader(img.data),
		Size:        int64(len(img.data)),
	})
	if err != nil {
		if !errors.Is(err, media.ErrUploaderDisabled) {
			log.Warn().Err(err).Msg("could not archive room photo")
		}
		return ""
	}
	return result.URL
}

// parseRoomForm extracts the image and optional style fields from a
// multipart request. The content type is validated before the file body is
// read so oversized or wrong-typed uploads fail without an outbound payload
// ever being constructed.
func parseRoomForm(r *http.Request) (roomUpload, prompts.StyleContext, error) {
	style := prompts.StyleContext{}

	const maxFormMemory = upload.MaxImageBytes + (1 << 20)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return roomUpload{}, style, fmt.Errorf("invalid multipart payload: %w", err)
	}

	style = prompts.StyleContext{
		Vibe:     strings.TrimSpace(r.FormValue("vibe")),
		Priority: strings.TrimSpace(r.FormValue("priority")),
		Budget:   strings.TrimSpace(r.FormValue("budget")),
		StyleTag: strings.TrimSpace(r.FormValue("style_tag")),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return roomUpload{}, style, fmt.Errorf("file is required")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := upload.Validate(contentType, header.Size); err != nil {
		return roomUpload{}, style, err
	}

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxImageBytes+1))
	if err != nil {
		return roomUpload{}, style, fmt.Errorf("could not read file")
	}
	if len(data) == 0 {
		return roomUpload{}, style, fmt.Errorf("empty file")
	}
	// Declared size can lie; re-check what was actually read.
	if err := upload.Validate(contentType, int64(len(data))); err != nil {
		return roomUpload{}, style, err
	}

	return roomUpload{
		data:        data,
		filename:    header.Filename,
		contentType: contentType,
	}, style, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// writeError mirrors the {"detail": ...} error envelope the frontend expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
