package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/notes"
)

var ErrNotFound = errors.New("note not found")

type NoteService interface {
	Create(ctx context.Context, owner string) (models.Note, error)
	Get(ctx context.Context, owner string, id int64) (models.Note, error)
	List(ctx context.Context, owner string) ([]models.Note, error)
	Update(ctx context.Context, owner string, n models.Note) (models.Note, error)
	Delete(ctx context.Context, owner string, id int64) error
	Discard(ctx context.Context, owner string, id int64) (bool, models.Note, error)
}

// Snapshot is a copy of a workspace's view state.
type Snapshot struct {
	Notes       []models.Note
	Selected    *models.Note
	SearchQuery string
	IsNew       bool
	Total       int
}

// Workspace holds one user's note list, selection and search query.
// Notes are kept most recently updated first.
type Workspace struct {
	owner    string
	svc      NoteService
	autosave *Autosaver

	mu       sync.Mutex
	notes    []models.Note
	selected int64
	query    string
	isNew    bool
}

func New(owner string, svc NoteService, autosaveDelay time.Duration) *Workspace {
	w := &Workspace{owner: owner, svc: svc}
	w.autosave = NewAutosaver(autosaveDelay, w.persist)
	return w
}

func (w *Workspace) Owner() string {
	return w.owner
}

func (w *Workspace) Load(ctx context.Context) error {
	list, err := w.svc.List(ctx, w.owner)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = list
	if w.indexOf(w.selected) < 0 {
		w.selected = 0
		w.isNew = false
	}
	return nil
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Notes:       notes.Filter(w.notes, w.query),
		SearchQuery: w.query,
		IsNew:       w.isNew,
		Total:       len(w.notes),
	}
	if i := w.indexOf(w.selected); i >= 0 {
		n := w.notes[i]
		snap.Selected = &n
	}
	return snap
}

// Notes returns a copy of every note, ignoring the search query.
func (w *Workspace) Notes() []models.Note {
	w.mu.Lock()
	defer w.mu.Unlock()
	return notes.Filter(w.notes, "")
}

func (w *Workspace) SetSearchQuery(q string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query = q
}

// Select makes id the selected note. Zero clears the selection.
func (w *Workspace) Select(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if id == 0 {
		w.selected = 0
		w.isNew = false
		return nil
	}
	if w.indexOf(id) < 0 {
		return ErrNotFound
	}
	if id != w.selected {
		w.isNew = false
	}
	w.selected = id
	return nil
}

// ClearNew acknowledges that the client has opened the new note for editing.
func (w *Workspace) ClearNew() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.isNew = false
}

// Create adds a default note at the top of the list and selects it.
func (w *Workspace) Create(ctx context.Context) (models.Note, error) {
	n, err := w.svc.Create(ctx, w.owner)
	if err != nil {
		return models.Note{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = append([]models.Note{n}, w.notes...)
	w.selected = n.ID
	w.isNew = true
	return n, nil
}

// Get returns the stored note after writing any autosave still pending for it.
func (w *Workspace) Get(ctx context.Context, id int64) (models.Note, error) {
	if err := w.autosave.Flush(ctx, id); err != nil {
		return models.Note{}, err
	}
	return w.svc.Get(ctx, w.owner, id)
}

// Update saves n immediately, superseding any pending autosave for it.
func (w *Workspace) Update(ctx context.Context, n models.Note) (models.Note, error) {
	w.autosave.Cancel(n.ID)

	updated, err := w.svc.Update(ctx, w.owner, n)
	if err != nil {
		return models.Note{}, err
	}
	w.apply(updated)
	return updated, nil
}

// Autosave queues n to be saved once edits to it pause.
func (w *Workspace) Autosave(n models.Note) error {
	if !n.Persisted() {
		return notes.ErrNotPersisted
	}
	w.mu.Lock()
	known := w.indexOf(n.ID) >= 0
	w.mu.Unlock()
	if !known {
		return ErrNotFound
	}

	w.autosave.Schedule(n)
	return nil
}

func (w *Workspace) AutosavePending(id int64) bool {
	return w.autosave.Pending(id)
}

// Flush writes any pending autosave for id.
func (w *Workspace) Flush(ctx context.Context, id int64) error {
	return w.autosave.Flush(ctx, id)
}

// Delete removes the note and clears the selection if it was selected.
func (w *Workspace) Delete(ctx context.Context, id int64) error {
	w.autosave.Cancel(id)

	if err := w.svc.Delete(ctx, w.owner, id); err != nil {
		return err
	}
	w.remove(id)
	return nil
}

// Discard backs out of editing. A pending autosave is dropped without being
// written, and the note is deleted when the content being edited is blank.
func (w *Workspace) Discard(ctx context.Context, id int64) (bool, models.Note, error) {
	if pending, ok := w.autosave.take(id); ok {
		return w.discardEdit(ctx, pending)
	}

	deleted, n, err := w.svc.Discard(ctx, w.owner, id)
	if err != nil {
		return false, models.Note{}, err
	}
	if deleted {
		w.remove(id)
	} else {
		w.keep(id)
	}
	return deleted, n, nil
}

// discardEdit judges blankness on the unsaved edit rather than the stored note.
func (w *Workspace) discardEdit(ctx context.Context, edit models.Note) (bool, models.Note, error) {
	if notes.IsBlank(edit.Content) {
		if err := w.svc.Delete(ctx, w.owner, edit.ID); err != nil {
			return false, models.Note{}, err
		}
		w.remove(edit.ID)
		return true, models.Note{}, nil
	}

	n, err := w.svc.Get(ctx, w.owner, edit.ID)
	if err != nil {
		return false, models.Note{}, err
	}
	w.keep(edit.ID)
	return false, n, nil
}

// Close writes pending autosaves and stops the autosaver.
func (w *Workspace) Close(ctx context.Context) error {
	err := w.autosave.FlushAll(ctx)
	w.autosave.Stop()
	return err
}

func (w *Workspace) persist(ctx context.Context, n models.Note) error {
	updated, err := w.svc.Update(ctx, w.owner, n)
	if err != nil {
		return err
	}
	w.apply(updated)
	return nil
}

// apply moves the updated note to the front of the list. A note that is no
// longer listed was deleted while the save was in flight and stays out.
func (w *Workspace) apply(n models.Note) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(n.ID)
	if i < 0 {
		return
	}
	w.notes = append(w.notes[:i], w.notes[i+1:]...)
	w.notes = append([]models.Note{n}, w.notes...)
}

// keep ends the new-note state for a note the user backed out of.
func (w *Workspace) keep(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == id {
		w.isNew = false
	}
}

func (w *Workspace) remove(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOf(id); i >= 0 {
		w.notes = append(w.notes[:i], w.notes[i+1:]...)
	}
	if w.selected == id {
		w.selected = 0
		w.isNew = false
	}
}

// indexOf must be called with mu held.
func (w *Workspace) indexOf(id int64) int {
	if id == 0 {
		return -1
	}
	for i, n := range w.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
