package workspace

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/metrics"
	"github.com/ahsanfayaz52/noteservice/internal/models"
)

const autosaveTimeout = 5 * time.Second

type saveFunc func(ctx context.Context, n models.Note) error

type pendingSave struct {
	note  models.Note
	timer *time.Timer
	gen   uint64
}

// Autosaver debounces note saves: each Schedule for a note restarts its timer and
// only the latest content is written once the note has been quiet for the delay.
type Autosaver struct {
	delay time.Duration
	save  saveFunc

	mu      sync.Mutex
	pending map[int64]*pendingSave
	gen     uint64
	stopped bool
}

func NewAutosaver(delay time.Duration, save saveFunc) *Autosaver {
	return &Autosaver{
		delay:   delay,
		save:    save,
		pending: make(map[int64]*pendingSave),
	}
}

func (a *Autosaver) Schedule(n models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	a.gen++
	gen := a.gen
	id := n.ID

	if p, ok := a.pending[id]; ok {
		p.timer.Stop()
	}
	a.pending[id] = &pendingSave{
		note:  n,
		gen:   gen,
		timer: time.AfterFunc(a.delay, func() { a.fire(id, gen) }),
	}
	metrics.TrackNoteOperation("autosave")
}

func (a *Autosaver) fire(id int64, gen uint64) {
	a.mu.Lock()
	p, ok := a.pending[id]
	if !ok || p.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, id)
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()
	if err := a.save(ctx, p.note); err != nil {
		log.Printf("Error auto-saving note %d: %v", id, err)
	}
}

func (a *Autosaver) take(id int64) (models.Note, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[id]
	if !ok {
		return models.Note{}, false
	}
	p.timer.Stop()
	delete(a.pending, id)
	return p.note, true
}

// Pending reports whether a save for the note is waiting on its timer.
func (a *Autosaver) Pending(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[id]
	return ok
}

// Flush writes the pending save for id now, if there is one.
func (a *Autosaver) Flush(ctx context.Context, id int64) error {
	n, ok := a.take(id)
	if !ok {
		return nil
	}
	return a.save(ctx, n)
}

// FlushAll writes every pending save now and returns the first error.
func (a *Autosaver) FlushAll(ctx context.Context) error {
	a.mu.Lock()
	ids := make([]int64, 0, len(a.pending))
	for id := range a.pending {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := a.Flush(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Cancel drops the pending save for id without writing it.
func (a *Autosaver) Cancel(id int64) {
	a.take(id)
}

// Stop cancels everything pending and ignores later Schedule calls.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for id, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, id)
	}
}
