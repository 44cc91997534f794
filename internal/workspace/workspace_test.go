package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/db"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/notes"
	"github.com/ahsanfayaz52/noteservice/internal/store"
)

func newNoteService(t *testing.T) *notes.Service {
	t.Helper()
	conn, err := db.InitSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return notes.NewService(store.New(conn))
}

func newLoadedWorkspace(t *testing.T, delay time.Duration) *Workspace {
	t.Helper()
	w := New("alice", newNoteService(t), delay)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { w.Close(context.Background()) })
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCreateSelectsNewNote(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)
	ctx := context.Background()

	first, err := w.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := w.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	snap := w.Snapshot()
	if snap.Total != 2 || len(snap.Notes) != 2 {
		t.Fatalf("total = %d notes = %d", snap.Total, len(snap.Notes))
	}
	if snap.Notes[0].ID != second.ID || snap.Notes[1].ID != first.ID {
		t.Fatalf("new note not at top: %+v", snap.Notes)
	}
	if snap.Selected == nil || snap.Selected.ID != second.ID {
		t.Fatalf("selected = %+v, want %d", snap.Selected, second.ID)
	}
	if !snap.IsNew {
		t.Fatal("expected isNew after create")
	}

	w.ClearNew()
	if w.Snapshot().IsNew {
		t.Fatal("ClearNew did not reset isNew")
	}
}

func TestSelect(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)
	ctx := context.Background()

	a, _ := w.Create(ctx)
	_, _ = w.Create(ctx)

	if err := w.Select(a.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	snap := w.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != a.ID {
		t.Fatalf("selected = %+v, want %d", snap.Selected, a.ID)
	}
	if snap.IsNew {
		t.Fatal("selecting another note should clear isNew")
	}

	if err := w.Select(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := w.Select(0); err != nil {
		t.Fatalf("clear selection: %v", err)
	}
	if w.Snapshot().Selected != nil {
		t.Fatal("selection not cleared")
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)
	ctx := context.Background()

	keep, _ := w.Create(ctx)
	gone, _ := w.Create(ctx)

	if err := w.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap := w.Snapshot()
	if snap.Selected != nil {
		t.Fatalf("selection should be cleared, got %+v", snap.Selected)
	}
	if len(snap.Notes) != 1 || snap.Notes[0].ID != keep.ID {
		t.Fatalf("notes = %+v", snap.Notes)
	}
}

func TestDeleteUnselectedKeepsSelection(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)
	ctx := context.Background()

	other, _ := w.Create(ctx)
	selected, _ := w.Create(ctx)

	if err := w.Delete(ctx, other.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap := w.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != selected.ID {
		t.Fatalf("selected = %+v, want %d", snap.Selected, selected.ID)
	}
}

func TestSearchFiltersSnapshot(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)
	ctx := context.Background()

	a, _ := w.Create(ctx)
	b, _ := w.Create(ctx)
	a.Title, a.Content = "", "<p>Pick up LAUNDRY</p>"
	b.Title, b.Content = "", "<p>Call mum</p>"
	if _, err := w.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := w.Update(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}

	w.SetSearchQuery("laundry")
	snap := w.Snapshot()
	if len(snap.Notes) != 1 || snap.Notes[0].ID != a.ID {
		t.Fatalf("filtered = %+v", snap.Notes)
	}
	if snap.Total != 2 || snap.SearchQuery != "laundry" {
		t.Fatalf("total = %d query = %q", snap.Total, snap.SearchQuery)
	}

	w.SetSearchQuery("")
	if got := len(w.Snapshot().Notes); got != 2 {
		t.Fatalf("unfiltered len = %d, want 2", got)
	}
}

func TestUpdateMovesNoteToFront(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)
	ctx := context.Background()

	older, _ := w.Create(ctx)
	_, _ = w.Create(ctx)

	older.Content = "<p>edited</p>"
	older.Title = ""
	updated, err := w.Update(ctx, older)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "edited" {
		t.Fatalf("title = %q, want edited", updated.Title)
	}
	if got := w.Snapshot().Notes[0].ID; got != older.ID {
		t.Fatalf("front note = %d, want %d", got, older.ID)
	}
}

func TestAutosaveDebounces(t *testing.T) {
	svc := newNoteService(t)
	w := New("alice", svc, 30*time.Millisecond)
	ctx := context.Background()
	if err := w.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer w.Close(ctx)

	n, err := w.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, content := range []string{"<p>d</p>", "<p>dr</p>", "<p>draft</p>"} {
		n.Content = content
		n.Title = ""
		if err := w.Autosave(n); err != nil {
			t.Fatalf("autosave: %v", err)
		}
	}
	if !w.AutosavePending(n.ID) {
		t.Fatal("expected pending autosave")
	}

	waitFor(t, func() bool { return !w.AutosavePending(n.ID) })
	waitFor(t, func() bool {
		stored, err := svc.Get(ctx, "alice", n.ID)
		return err == nil && strings.Contains(stored.Content, "draft")
	})

	stored, _ := svc.Get(ctx, "alice", n.ID)
	if stored.Title != "draft" {
		t.Fatalf("title = %q, want draft", stored.Title)
	}
}

func TestAutosaveRejectsUnknownNote(t *testing.T) {
	w := newLoadedWorkspace(t, time.Second)

	if err := w.Autosave(models.Note{}); !errors.Is(err, notes.ErrNotPersisted) {
		t.Fatalf("err = %v, want ErrNotPersisted", err)
	}
	if err := w.Autosave(models.Note{ID: 77, Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFlushWritesPendingAutosave(t *testing.T) {
	svc := newNoteService(t)
	w := New("alice", svc, time.Hour)
	ctx := context.Background()
	if err := w.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer w.Close(ctx)

	n, _ := w.Create(ctx)
	n.Content = "<p>flushed</p>"
	if err := w.Autosave(n); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if err := w.Flush(ctx, n.ID); err != nil {
		t.Fatalf("flush: %v", err)
	}

	stored, err := svc.Get(ctx, "alice", n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(stored.Content, "flushed") {
		t.Fatalf("content = %q", stored.Content)
	}
}

func TestExplicitSaveCancelsAutosave(t *testing.T) {
	svc := newNoteService(t)
	w := New("alice", svc, time.Hour)
	ctx := context.Background()
	if err := w.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer w.Close(ctx)

	n, _ := w.Create(ctx)
	n.Content = "<p>stale</p>"
	if err := w.Autosave(n); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	n.Content = "<p>final</p>"
	if _, err := w.Update(ctx, n); err != nil {
		t.Fatalf("update: %v", err)
	}
	if w.AutosavePending(n.ID) {
		t.Fatal("explicit save should cancel pending autosave")
	}
}

func TestDiscard(t *testing.T) {
	w := newLoadedWorkspace(t, time.Hour)
	ctx := context.Background()

	blank, _ := w.Create(ctx)
	deleted, _, err := w.Discard(ctx, blank.ID)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if !deleted {
		t.Fatal("blank note should be discarded")
	}
	snap := w.Snapshot()
	if snap.Total != 0 || snap.Selected != nil {
		t.Fatalf("snapshot after discard = %+v", snap)
	}

	// Pending edits count: a note typed into but not yet autosaved is kept.
	typed, _ := w.Create(ctx)
	typed.Content = "<p>something</p>"
	if err := w.Autosave(typed); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	deleted, kept, err := w.Discard(ctx, typed.ID)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if deleted || kept.ID != typed.ID {
		t.Fatalf("deleted=%v kept=%+v", deleted, kept)
	}
}

func TestDiscardDropsPendingEdit(t *testing.T) {
	svc := newNoteService(t)
	w := New("alice", svc, time.Hour)
	ctx := context.Background()
	if err := w.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer w.Close(ctx)

	n, _ := w.Create(ctx)
	saved := n
	saved.Content = "<p>kept</p>"
	if _, err := w.Update(ctx, saved); err != nil {
		t.Fatalf("update: %v", err)
	}

	edit := saved
	edit.Content = "<p>typed then cancelled</p>"
	if err := w.Autosave(edit); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	deleted, kept, err := w.Discard(ctx, n.ID)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if deleted {
		t.Fatal("note with content should be kept")
	}
	if kept.Content != "<p>kept</p>" {
		t.Fatalf("returned content = %q", kept.Content)
	}
	if w.AutosavePending(n.ID) {
		t.Fatal("discard should drop the pending autosave")
	}

	stored, err := svc.Get(ctx, "alice", n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Content != "<p>kept</p>" {
		t.Fatalf("stored content = %q, cancelled edit was written", stored.Content)
	}
}

func TestDiscardBlankPendingEdit(t *testing.T) {
	svc := newNoteService(t)
	w := New("alice", svc, time.Hour)
	ctx := context.Background()
	if err := w.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer w.Close(ctx)

	n, _ := w.Create(ctx)
	n.Content = "<p>draft</p>"
	if _, err := w.Update(ctx, n); err != nil {
		t.Fatalf("update: %v", err)
	}

	n.Content = "<p><br></p>"
	if err := w.Autosave(n); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	deleted, _, err := w.Discard(ctx, n.ID)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if !deleted {
		t.Fatal("note cleared before cancelling should be deleted")
	}
	if _, err := svc.Get(ctx, "alice", n.ID); !errors.Is(err, notes.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if snap := w.Snapshot(); snap.Total != 0 || snap.Selected != nil {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSaveAfterDeleteDoesNotRelist(t *testing.T) {
	w := newLoadedWorkspace(t, time.Hour)
	ctx := context.Background()

	n, _ := w.Create(ctx)
	if err := w.Delete(ctx, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// A save that started before the delete lands afterwards.
	n.Content = "<p>late</p>"
	w.apply(n)

	if snap := w.Snapshot(); snap.Total != 0 {
		t.Fatalf("deleted note is listed again: %+v", snap.Notes)
	}
}

func TestGetFlushesPendingAutosave(t *testing.T) {
	w := newLoadedWorkspace(t, time.Hour)
	ctx := context.Background()

	n, _ := w.Create(ctx)
	n.Content = "<p>pending</p>"
	if err := w.Autosave(n); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	got, err := w.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "<p>pending</p>" {
		t.Fatalf("content = %q", got.Content)
	}
	if w.AutosavePending(n.ID) {
		t.Fatal("get should write the pending autosave")
	}
}

func TestManagerLoadsAndDrops(t *testing.T) {
	svc := newNoteService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	m := NewManager(svc, time.Hour)
	w, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if w.Snapshot().Total != 1 {
		t.Fatalf("loaded %d notes, want 1", w.Snapshot().Total)
	}

	again, _ := m.Get(ctx, "alice")
	if again != w {
		t.Fatal("expected the same workspace for the same user")
	}

	other, _ := m.Get(ctx, "bob")
	if other.Snapshot().Total != 0 {
		t.Fatal("bob should not see alice's notes")
	}

	n := w.Snapshot().Notes[0]
	n.Content = "<p>saved on logout</p>"
	if err := w.Autosave(n); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	m.Drop(ctx, "alice")

	stored, err := svc.Get(ctx, "alice", n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(stored.Content, "saved on logout") {
		t.Fatalf("pending autosave lost on drop: %q", stored.Content)
	}

	fresh, _ := m.Get(ctx, "alice")
	if fresh == w {
		t.Fatal("expected a new workspace after drop")
	}
	m.Close(ctx)
}
