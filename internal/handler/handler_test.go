package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"susurro/internal/ai"
	"susurro/internal/auth"
	"susurro/internal/database"
	"susurro/internal/model"
	"susurro/internal/prompt"
	"susurro/internal/store"
)

type env struct {
	db       *sql.DB
	users    *store.UserStore
	sessions *store.SessionStore
	notes    *store.NoteStore
	ai       *ai.Client
	user     *model.User
}

// groqReplies configures the mock Groq server. Zero statuses mean 200.
type groqReplies struct {
	transcript       string
	transcribeStatus int
	title            string
	tags             string
	organized        string
	chatStatus       int
}

func groqServer(t *testing.T, replies groqReplies) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		if replies.transcribeStatus != 0 {
			http.Error(w, "upstream error", replies.transcribeStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"text": replies.transcript})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if replies.chatStatus != 0 {
			http.Error(w, "upstream error", replies.chatStatus)
			return
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		system := req.Messages[0].Content
		reply := replies.title
		switch {
		case strings.Contains(system, "tags"):
			reply = replies.tags
		case strings.Contains(system, "transcript"):
			reply = replies.organized
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": reply}},
			},
		})
	})
	return mux
}

func setupEnv(t *testing.T, replies groqReplies) *env {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	user, err := users.Create("h@example.com", "Handler Test", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	srv := httptest.NewServer(groqServer(t, replies))
	t.Cleanup(srv.Close)

	prompts, err := prompt.Load()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}

	return &env{
		db:       db,
		users:    users,
		sessions: store.NewSessionStore(db),
		notes:    store.NewNoteStore(db),
		ai:       ai.NewClient("test-key", "es", prompts, slog.Default(), ai.WithBaseURL(srv.URL)),
		user:     user,
	}
}

// authed attaches an authenticated user to the request context, standing in
// for the RequireAuth middleware.
func authed(req *http.Request, user *model.User) *http.Request {
	ctx := auth.WithUser(req.Context(), auth.User{ID: user.ID, Email: user.Email, Name: user.Name})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// audioForm builds a multipart body with one audio part.
func audioForm(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}
