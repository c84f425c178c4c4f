package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"susurro/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

// NoteFilter narrows a List call. Zero values mean "no filter".
type NoteFilter struct {
	Search    string // substring match on title or content
	Tag       string // exact tag containment
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive (extended to end of day)
	Limit     int
	Offset    int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var organized sql.NullString
	var tagsJSON string

	err := scanner.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &organized,
		&tagsJSON, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if organized.Valid {
		n.OrganizedContent = &organized.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil || n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

const noteCols = `id, user_id, title, content, organized_content, tags, created_at, updated_at`

// Create inserts a note with a generated ID for the given owner.
func (s *NoteStore) Create(userID, title, content string, organizedContent *string, tags []string) (*model.Note, error) {
	id := uuid.NewString()
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	var organized sql.NullString
	if organizedContent != nil {
		organized = sql.NullString{String: *organizedContent, Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO notes (id, user_id, title, content, organized_content, tags) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, title, content, organized, string(tagsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns a note regardless of owner; handlers are responsible for
// the ownership check on mutations.
func (s *NoteStore) GetByID(id string) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// filterWhere builds the WHERE clause shared by List and its count query.
// Ownership filtering lives here, in the query itself.
func filterWhere(userID string, f NoteFilter) (string, []any) {
	where := ` WHERE user_id = ?`
	args := []any{userID}

	if f.Search != "" {
		where += ` AND (title LIKE ? OR content LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		where += ` AND tags LIKE ?`
		args = append(args, `%"`+f.Tag+`"%`)
	}
	if f.StartDate != "" {
		where += ` AND created_at >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		where += ` AND created_at <= ?`
		args = append(args, f.EndDate+" 23:59:59")
	}
	return where, args
}

// List returns the owner's notes matching the filter, newest first, plus
// the total match count for pagination.
func (s *NoteStore) List(userID string, f NoteFilter) ([]model.Note, int, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where, args := filterWhere(userID, f)

	query := `SELECT ` + noteCols + ` FROM notes` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	var total int
	countWhere, countArgs := filterWhere(userID, f)
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes`+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	return notes, total, nil
}

// CountByUser returns how many notes the user owns.
func (s *NoteStore) CountByUser(userID string) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// Update rewrites a note's editable fields and bumps updated_at. The
// handler verifies current ownership before calling.
func (s *NoteStore) Update(id, title, content string, organizedContent *string, tags []string) (*model.Note, error) {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	var organized sql.NullString
	if organizedContent != nil {
		organized = sql.NullString{String: *organizedContent, Valid: true}
	}

	_, err = s.db.Exec(
		`UPDATE notes SET title = ?, content = ?, organized_content = ?, tags = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, content, organized, string(tagsJSON), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
