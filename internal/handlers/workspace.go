package handlers

import (
	"net/http"

	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/workspace"
)

type WorkspaceResponse struct {
	Notes       []models.NoteJSON `json:"notes"`
	Selected    *models.NoteJSON  `json:"selected"`
	SearchQuery string            `json:"searchQuery"`
	IsNew       bool              `json:"isNew"`
	Total       int               `json:"total"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SelectionRequest struct {
	ID int64 `json:"id"`
}

func snapshotResponse(snap workspace.Snapshot) WorkspaceResponse {
	resp := WorkspaceResponse{
		Notes:       models.NotesJSON(snap.Notes),
		SearchQuery: snap.SearchQuery,
		IsNew:       snap.IsNew,
		Total:       snap.Total,
	}
	if snap.Selected != nil {
		j := snap.Selected.JSON()
		resp.Selected = &j
	}
	return resp
}

func (h *NotesHandler) Workspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	success(w, snapshotResponse(ws.Snapshot()))
}

func (h *NotesHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	ws.SetSearchQuery(req.Query)
	success(w, snapshotResponse(ws.Snapshot()))
}

func (h *NotesHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}

	if err := ws.Select(req.ID); err != nil {
		noteError(w, err, "select")
		return
	}
	success(w, snapshotResponse(ws.Snapshot()))
}

// AcknowledgeNew clears the new-note flag once the client has opened the editor.
func (h *NotesHandler) AcknowledgeNew(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	ws.ClearNew()
	success(w, snapshotResponse(ws.Snapshot()))
}
