package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"susurro/internal/ai"
	"susurro/internal/auth"
	"susurro/internal/model"
	"susurro/internal/store"
	"susurro/internal/validate"
	"susurro/internal/websocket"
)

type NoteHandler struct {
	notes  *store.NoteStore
	ai     *ai.Client
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNoteHandler(ns *store.NoteStore, client *ai.Client, hub *websocket.Hub, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: ns, ai: client, hub: hub, logger: logger}
}

func (h *NoteHandler) broadcast(userID, action, noteID string) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("note", action, noteID))
	}
}

type createNoteRequest struct {
	Content         string `json:"content"`
	IsTranscription bool   `json:"isTranscription"`
}

type noteResponse struct {
	Success bool        `json:"success"`
	Note    *model.Note `json:"note"`
}

// Create sanitizes the content, enriches it with an AI title and tags
// (plus reorganized ideas for transcriptions), and persists the note.
// Enrichment is best-effort: fallbacks are used and creation proceeds.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := validate.NoteContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	content := validate.Sanitize(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is empty after sanitization")
		return
	}

	userID := auth.UserID(r.Context())

	var organized *string
	if req.IsTranscription {
		res := h.ai.OrganizeIdeas(r.Context(), content)
		organized = &res.Value
	}
	enrichment := h.ai.Enrich(r.Context(), content)

	note, err := h.notes.Create(userID, enrichment.Title.Value, content, organized, enrichment.Tags.Tags)
	if err != nil {
		h.logger.Error("create note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	h.broadcast(userID, "created", note.ID)
	writeJSON(w, http.StatusCreated, noteResponse{Success: true, Note: note})
}

type listResponse struct {
	Success    bool         `json:"success"`
	Notes      []model.Note `json:"notes"`
	Pagination pagination   `json:"pagination"`
}

type pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	if limit > store.MaxListLimit {
		limit = store.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	f := store.NoteFilter{
		Search:    q.Get("search"),
		Tag:       q.Get("tag"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Limit:     limit,
		Offset:    offset,
	}

	notes, total, err := h.notes.List(auth.UserID(r.Context()), f)
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Notes:   notes,
		Pagination: pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(notes) < total,
		},
	})
}

// Count reports how many notes the caller owns, for the client's
// first-run state.
func (h *NoteHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.notes.CountByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("count notes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "hasNotes": count > 0})
}

type updateNoteRequest struct {
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	OrganizedContent *string  `json:"organizedContent"`
	Tags             []string `json:"tags"`
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validate.NoteID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Title(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.NoteContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Tags(req.Tags); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Organized content shares the note-content ceiling.
	if req.OrganizedContent != nil && *req.OrganizedContent != "" {
		if err := validate.NoteContent(*req.OrganizedContent); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	note, ok := h.ownedNote(w, r, id)
	if !ok {
		return
	}

	title := validate.Sanitize(req.Title)
	content := validate.Sanitize(req.Content)
	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if clean := validate.Sanitize(tag); clean != "" {
			tags = append(tags, clean)
		}
	}

	updated, err := h.notes.Update(id, title, content, req.OrganizedContent, tags)
	if err != nil {
		h.logger.Error("update note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update note")
		return
	}

	h.broadcast(note.UserID, "updated", id)
	writeJSON(w, http.StatusOK, noteResponse{Success: true, Note: updated})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validate.NoteID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, ok := h.ownedNote(w, r, id)
	if !ok {
		return
	}

	if err := h.notes.Delete(id); err != nil {
		h.logger.Error("delete note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}

	h.broadcast(note.UserID, "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "note deleted"})
}

// ownedNote loads the note and enforces ownership for mutations: 404 when
// the note does not exist, 403 when it belongs to someone else. Listing
// never reaches this; its ownership filter lives in the query itself.
func (h *NoteHandler) ownedNote(w http.ResponseWriter, r *http.Request, id string) (*model.Note, bool) {
	note, err := h.notes.GetByID(id)
	if err != nil {
		h.logger.Error("get note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return nil, false
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return nil, false
	}
	if note.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "you do not have access to this note")
		return nil, false
	}
	return note, true
}
