package models

import "time"

const (
	DefaultNoteTitle   = "New note"
	DefaultNoteContent = `<p style="font-weight: normal; font-style: normal; text-decoration: none; font-size: 1rem;"></p>`
	UntitledNoteTitle  = "Untitled"
)

type Note struct {
	ID        int64
	Owner     string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Persisted reports whether the note has been written to the store.
func (n Note) Persisted() bool {
	return n.ID != 0
}

// NoteJSON is the wire form of a note. Timestamps are Unix milliseconds.
type NoteJSON struct {
	ID        int64  `json:"id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (n Note) JSON() NoteJSON {
	return NoteJSON{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UnixMilli(),
		UpdatedAt: n.UpdatedAt.UnixMilli(),
	}
}

func NotesJSON(notes []Note) []NoteJSON {
	out := make([]NoteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.JSON())
	}
	return out
}
