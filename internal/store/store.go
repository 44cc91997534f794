package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/metrics"
	"github.com/ahsanfayaz52/noteservice/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUserExists   = errors.New("user exists")
	ErrNotPersisted = errors.New("note has no id")
)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Store persists users and notes. The SQL it issues is portable between the
// sqlite and mysql drivers set up by package db.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts u, failing with ErrUserExists when the username is taken.
func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	defer metrics.TrackDBOperation("create", "users").ObserveDuration()

	username := u.Username
	if username == "" {
		return fmt.Errorf("username is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ?", username).Scan(&existing)
	switch {
	case err == nil:
		return ErrUserExists
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, username, password, created_at) VALUES (?, ?, ?, ?)",
		username, username, u.Password, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (models.User, error) {
	defer metrics.TrackDBOperation("get", "users").ObserveDuration()

	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE id = ?", username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateNote inserts n and fills in its ID.
func (s *Store) CreateNote(ctx context.Context, n *models.Note) error {
	defer metrics.TrackDBOperation("create", "notes").ObserveDuration()

	if n.Owner == "" {
		return fmt.Errorf("note owner is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (owner, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		n.Owner, n.Title, n.Content, toMillis(n.CreatedAt), toMillis(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	n.ID = id
	return nil
}

func (s *Store) GetNote(ctx context.Context, owner string, id int64) (models.Note, error) {
	defer metrics.TrackDBOperation("get", "notes").ObserveDuration()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, title, content, created_at, updated_at
		FROM notes
		WHERE id = ? AND owner = ?`, id, owner)

	n, err := scanNote(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, ErrNotFound
		}
		return models.Note{}, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// ListNotes returns owner's notes, most recently updated first.
func (s *Store) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	defer metrics.TrackDBOperation("list", "notes").ObserveDuration()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, title, content, created_at, updated_at
		FROM notes
		WHERE owner = ?
		ORDER BY updated_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

// UpdateNote overwrites title, content and updated_at of an existing note.
func (s *Store) UpdateNote(ctx context.Context, n models.Note) error {
	defer metrics.TrackDBOperation("update", "notes").ObserveDuration()

	if !n.Persisted() {
		return ErrNotPersisted
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND owner = ?`,
		n.Title, n.Content, toMillis(n.UpdatedAt), n.ID, n.Owner)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return expectOneRow(res)
}

func (s *Store) DeleteNote(ctx context.Context, owner string, id int64) error {
	defer metrics.TrackDBOperation("delete", "notes").ObserveDuration()

	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND owner = ?", id, owner)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(scan func(dest ...any) error) (models.Note, error) {
	var n models.Note
	var createdAt, updatedAt int64
	if err := scan(&n.ID, &n.Owner, &n.Title, &n.Content, &createdAt, &updatedAt); err != nil {
		return models.Note{}, err
	}
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return n, nil
}
