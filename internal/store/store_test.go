package store

import (
	"database/sql"
	"testing"

	"susurro/internal/database"
	"susurro/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	user, err := NewUserStore(db).Create(email, "Test User", "$2a$10$fakehashfakehashfakehash")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}
