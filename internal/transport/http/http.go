// Package http implements the HTTP transport for lingua.
//
// This transport exposes a small JSON REST API for translation and an audio
// endpoint for speech synthesis. Every response is marked uncacheable.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/lingua/internal/apierr"
	_ "github.com/nadzzz/lingua/internal/docs" // registers the OpenAPI document
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/transport"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 64 << 10

// CacheControl is set on every response.
const CacheControl = "no-store, no-cache, must-revalidate, proxy-revalidate"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"No text provided"`
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the routed handler serving svc.
func Handler(svc transport.Service) http.Handler {
	mux := http.NewServeMux()
	h := &handlers{svc: svc}

	mux.HandleFunc("POST /translate", h.translate)
	mux.HandleFunc("POST /api/translate", h.translate)
	mux.HandleFunc("POST /synthesize", h.synthesize)
	mux.HandleFunc("POST /api/tts", h.synthesize)

	// Swagger UI serving the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return noStore(mux)
}

// Listen starts the HTTP server and routes incoming requests to svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheControl)
		next.ServeHTTP(w, r)
	})
}

type handlers struct {
	svc transport.Service
}

// translate processes a POST /translate request.
//
// @Summary     Translate text
// @Description Translates text between two languages honouring the requested formality, dialect and pronouns.
// @Description The model's JSON reply is returned verbatim. Transient upstream failures are retried up to three times.
// @Tags        translate
// @Accept      json
// @Produce     json
// @Param       request  body      message.TranslationRequest  true  "Translation request"
// @Success     200      {object}  message.TranslationResult
// @Failure     400      {object}  ErrorResponse  "Missing text or invalid body"
// @Failure     500      {object}  ErrorResponse  "Translation failed"
// @Failure     503      {object}  ErrorResponse  "Upstream temporarily unavailable"
// @Router      /translate [post]
func (h *handlers) translate(w http.ResponseWriter, r *http.Request) {
	var req message.TranslationRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Translate(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// synthesize processes a POST /synthesize request.
//
// @Summary     Synthesize speech
// @Description Speaks text in the voice mapped to the given ISO-639-1 language code and returns MP3 audio.
// @Tags        tts
// @Accept      json
// @Produce     audio/mpeg
// @Produce     json
// @Param       request  body      message.SpeechRequest  true  "Speech request"
// @Success     200      {file}    binary                 "MP3 audio"
// @Failure     400      {object}  ErrorResponse          "Missing text or invalid body"
// @Failure     500      {object}  ErrorResponse          "Synthesis failed"
// @Router      /synthesize [post]
func (h *handlers) synthesize(w http.ResponseWriter, r *http.Request) {
	var req message.SpeechRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Synthesize(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", res.ContentType)
	hdr.Set("Content-Length", strconv.Itoa(len(res.Audio)))
	hdr.Set("Pragma", "no-cache")
	hdr.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Audio); err != nil {
		slog.Debug("writing audio response failed", "error", err)
	}
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := apierr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "kind", apierr.KindOf(err), "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: apierr.MessageOf(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
