package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"susurro/internal/ai"
	"susurro/internal/validate"
)

type TranscribeHandler struct {
	ai            *ai.Client
	maxAudioBytes int64
	logger        *slog.Logger
}

func NewTranscribeHandler(client *ai.Client, maxAudioBytes int64, logger *slog.Logger) *TranscribeHandler {
	return &TranscribeHandler{ai: client, maxAudioBytes: maxAudioBytes, logger: logger}
}

type transcribeResponse struct {
	Transcription string `json:"transcription"`
	Success       bool   `json:"success"`
}

// multipartOverhead allows for the boundary and part headers around the
// audio payload when capping the request body.
const multipartOverhead = 64 << 10

// Transcribe accepts a multipart upload in the "audio" field and returns
// the recognized text. Rate limiting runs in middleware before this.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	// Cap the body before parsing so an oversized upload is cut off at
	// the limit instead of being read in full and then rejected.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+multipartOverhead)

	file, header, err := r.FormFile("audio")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "audio file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := validate.Audio(contentType, header.Size, h.maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := h.ai.Transcribe(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Warn("transcription failed", "error", err, "content_type", contentType, "size", header.Size)
		switch {
		case errors.Is(err, ai.ErrRateLimited):
			writeError(w, http.StatusBadGateway, "transcription service is rate limited, try again later")
		case errors.Is(err, ai.ErrTimeout):
			writeError(w, http.StatusRequestTimeout, "transcription timed out")
		case errors.Is(err, ai.ErrEmptyTranscript):
			writeError(w, http.StatusUnprocessableEntity, "no speech was recognized in the audio")
		case errors.Is(err, ai.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "transcription service is unreachable")
		case errors.Is(err, ai.ErrUpstream):
			writeError(w, http.StatusBadGateway, "transcription service error")
		default:
			writeError(w, http.StatusInternalServerError, "transcription failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, transcribeResponse{Transcription: text, Success: true})
}
