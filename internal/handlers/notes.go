package handlers

import (
	"log"
	"net/http"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/notes"
	"github.com/ahsanfayaz52/noteservice/internal/workspace"
)

type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type DiscardResponse struct {
	Deleted bool             `json:"deleted"`
	Note    *models.NoteJSON `json:"note,omitempty"`
}

type NotesHandler struct {
	spaces *workspace.Manager
}

func NewNotesHandler(spaces *workspace.Manager) *NotesHandler {
	return &NotesHandler{spaces: spaces}
}

// workspaceFor loads the caller's workspace, answering the request itself on failure.
func (h *NotesHandler) workspaceFor(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	username := auth.UsernameFromContext(r.Context())
	if username == "" {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	ws, err := h.spaces.Get(r.Context(), username)
	if err != nil {
		log.Printf("Error loading notes for %s: %v", username, err)
		fail(w, http.StatusInternalServerError, "failed to load notes")
		return nil, false
	}
	return ws, true
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	success(w, models.NotesJSON(notes.Filter(ws.Notes(), r.URL.Query().Get("search"))))
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	n, err := ws.Create(r.Context())
	if err != nil {
		noteError(w, err, "create")
		return
	}
	created(w, n.JSON())
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := noteIDFromRequest(r)
	if !ok {
		fail(w, http.StatusNotFound, "note not found")
		return
	}

	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	n, err := ws.Get(r.Context(), id)
	if err != nil {
		noteError(w, err, "fetch")
		return
	}
	success(w, n.JSON())
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := noteIDFromRequest(r)
	if !ok {
		fail(w, http.StatusNotFound, "note not found")
		return
	}
	var req NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	n, err := ws.Update(r.Context(), models.Note{ID: id, Title: req.Title, Content: req.Content})
	if err != nil {
		noteError(w, err, "update")
		return
	}
	success(w, n.JSON())
}

// Autosave accepts editor content and writes it once typing pauses.
func (h *NotesHandler) Autosave(w http.ResponseWriter, r *http.Request) {
	id, ok := noteIDFromRequest(r)
	if !ok {
		fail(w, http.StatusNotFound, "note not found")
		return
	}
	var req NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	if err := ws.Autosave(models.Note{ID: id, Title: req.Title, Content: req.Content}); err != nil {
		noteError(w, err, "autosave")
		return
	}
	writeJSON(w, http.StatusAccepted, Response{Message: "autosave scheduled"})
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteIDFromRequest(r)
	if !ok {
		fail(w, http.StatusNotFound, "note not found")
		return
	}
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	if err := ws.Delete(r.Context(), id); err != nil {
		noteError(w, err, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Discard backs out of editing: a note left blank is deleted, anything else is kept.
func (h *NotesHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, ok := noteIDFromRequest(r)
	if !ok {
		fail(w, http.StatusNotFound, "note not found")
		return
	}
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	deleted, n, err := ws.Discard(r.Context(), id)
	if err != nil {
		noteError(w, err, "discard")
		return
	}
	resp := DiscardResponse{Deleted: deleted}
	if !deleted {
		j := n.JSON()
		resp.Note = &j
	}
	success(w, resp)
}
