package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/metrics"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/store"
)

var (
	ErrNotFound     = errors.New("note not found")
	ErrNotPersisted = errors.New("note has not been saved")
)

type NoteStore interface {
	CreateNote(ctx context.Context, n *models.Note) error
	GetNote(ctx context.Context, owner string, id int64) (models.Note, error)
	ListNotes(ctx context.Context, owner string) ([]models.Note, error)
	UpdateNote(ctx context.Context, n models.Note) error
	DeleteNote(ctx context.Context, owner string, id int64) error
}

type Service struct {
	store NoteStore
	now   func() time.Time
}

func NewService(s NoteStore) *Service {
	return &Service{store: s, now: time.Now}
}

// Create stores a new note for owner with the default title and an empty paragraph.
func (s *Service) Create(ctx context.Context, owner string) (models.Note, error) {
	now := s.now()
	n := models.Note{
		Owner:     owner,
		Title:     models.DefaultNoteTitle,
		Content:   models.DefaultNoteContent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateNote(ctx, &n); err != nil {
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}
	metrics.TrackNoteOperation("create")
	return n, nil
}

func (s *Service) Get(ctx context.Context, owner string, id int64) (models.Note, error) {
	n, err := s.store.GetNote(ctx, owner, id)
	if err != nil {
		return models.Note{}, mapStoreErr(err)
	}
	return n, nil
}

// List returns owner's notes, most recently updated first.
func (s *Service) List(ctx context.Context, owner string) ([]models.Note, error) {
	notes, err := s.store.ListNotes(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Update saves title and content of an existing note and bumps its update time.
// An empty title is derived from the content.
func (s *Service) Update(ctx context.Context, owner string, n models.Note) (models.Note, error) {
	if !n.Persisted() {
		return models.Note{}, ErrNotPersisted
	}

	current, err := s.store.GetNote(ctx, owner, n.ID)
	if err != nil {
		return models.Note{}, mapStoreErr(err)
	}

	current.Content = Sanitize(n.Content)
	current.Title = n.Title
	if current.Title == "" {
		current.Title = ExtractTitle(current.Content)
	}
	current.UpdatedAt = s.now()
	if !current.UpdatedAt.After(current.CreatedAt) {
		current.UpdatedAt = current.CreatedAt
	}

	if err := s.store.UpdateNote(ctx, current); err != nil {
		return models.Note{}, mapStoreErr(err)
	}
	metrics.TrackNoteOperation("update")
	return current, nil
}

func (s *Service) Delete(ctx context.Context, owner string, id int64) error {
	if err := s.store.DeleteNote(ctx, owner, id); err != nil {
		return mapStoreErr(err)
	}
	metrics.TrackNoteOperation("delete")
	return nil
}

// Discard deletes the note if nothing was written into it. Otherwise the note
// is returned untouched.
func (s *Service) Discard(ctx context.Context, owner string, id int64) (bool, models.Note, error) {
	n, err := s.store.GetNote(ctx, owner, id)
	if err != nil {
		return false, models.Note{}, mapStoreErr(err)
	}
	if !IsBlank(n.Content) {
		return false, n, nil
	}
	if err := s.store.DeleteNote(ctx, owner, id); err != nil {
		return false, models.Note{}, mapStoreErr(err)
	}
	metrics.TrackNoteOperation("discard")
	return true, models.Note{}, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrNotPersisted):
		return ErrNotPersisted
	default:
		return err
	}
}
