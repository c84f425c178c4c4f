package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"susurro/internal/auth"
	"susurro/internal/database"
	"susurro/internal/model"
	"susurro/internal/store"
)

func setupAuthTest(t *testing.T) (*sql.DB, *store.SessionStore, *store.UserStore, *model.User) {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	ss := store.NewSessionStore(db)
	user, err := us.Create("mw@example.com", "MW", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return db, ss, us, user
}

func authedHandler(t *testing.T, wantID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := auth.UserID(r.Context()); got != wantID {
			t.Errorf("context user = %q, want %q", got, wantID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthBearer(t *testing.T) {
	_, ss, us, user := setupAuthTest(t)
	sess, _ := ss.Create(user.ID)

	handler := RequireAuth(ss, us)(authedHandler(t, user.ID))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthCookie(t *testing.T) {
	_, ss, us, user := setupAuthTest(t)
	sess, _ := ss.Create(user.ID)

	handler := RequireAuth(ss, us)(authedHandler(t, user.ID))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	_, ss, us, _ := setupAuthTest(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q, want application/json", ct)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	_, ss, us, _ := setupAuthTest(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an unknown token")
	}))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer deadbeef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthDeletedSession(t *testing.T) {
	_, ss, us, user := setupAuthTest(t)
	sess, _ := ss.Create(user.ID)
	ss.DeleteByToken(sess.Token)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run after sign-out")
	}))

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if ip := RealIP(req); ip != "10.0.0.1" {
		t.Errorf("remote addr ip = %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	if ip := RealIP(req); ip != "203.0.113.7" {
		t.Errorf("xff ip = %q", ip)
	}

	req.Header.Set("CF-Connecting-IP", "198.51.100.9")
	if ip := RealIP(req); ip != "198.51.100.9" {
		t.Errorf("cf ip = %q", ip)
	}
}
