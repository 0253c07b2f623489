package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/andrewpaige1/roadmap-api/roadmap"
	"github.com/andrewpaige1/roadmap-api/utils"
	"github.com/andrewpaige1/roadmap-api/view"
)

type viewResponse struct {
	ID      string        `json:"id"`
	EntryID string        `json:"entryId,omitempty"`
	View    view.Snapshot `json:"view"`
}

func newViewResponse(sess *view.Session) viewResponse {
	return viewResponse{ID: sess.ID, EntryID: sess.EntryID, View: sess.State.Snapshot()}
}

// POST /api/roadmaps/{entryID}/views
func (db *DBHandler) OpenSavedView(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	entry, err := db.Store.Get(r.Context(), user.ID, r.PathValue("entryID"))
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	doc := entry.RoadmapData.Data()
	sess := db.Sessions.Open(user.ID, entry.PublicID, &doc)
	utils.WriteJSON(w, http.StatusCreated, newViewResponse(sess))
}

type openViewRequest struct {
	Roadmap json.RawMessage `json:"roadmap" validate:"required"`
}

// POST /api/views
// Opens a view on a roadmap that has not been saved yet, such as a fresh generation.
func (db *DBHandler) OpenView(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	var req openViewRequest
	if err := decodeBody(r, &req); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	doc, err := roadmap.Decode(req.Roadmap)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	sess := db.Sessions.Open(user.ID, "", doc)
	utils.WriteJSON(w, http.StatusCreated, newViewResponse(sess))
}

func (db *DBHandler) session(w http.ResponseWriter, r *http.Request) (*view.Session, bool) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return nil, false
	}
	sess, err := db.Sessions.Get(user.ID, r.PathValue("viewID"))
	if err != nil {
		db.writeError(w, r, err, false)
		return nil, false
	}
	return sess, true
}

// GET /api/views/{viewID}
func (db *DBHandler) GetView(w http.ResponseWriter, r *http.Request) {
	sess, ok := db.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, newViewResponse(sess))
}

// DELETE /api/views/{viewID}
func (db *DBHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}
	if err := db.Sessions.Close(user.ID, r.PathValue("viewID")); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/views/{viewID}/nodes/{nodeID}/toggle
func (db *DBHandler) ToggleNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := db.session(w, r)
	if !ok {
		return
	}

	nodeID := r.PathValue("nodeID")
	expanded, err := sess.State.Toggle(nodeID)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"nodeId": nodeID, "expanded": expanded})
}

type viewportRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom" validate:"gt=0"`
}

// PUT /api/views/{viewID}/viewport
func (db *DBHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := db.session(w, r)
	if !ok {
		return
	}

	var req viewportRequest
	if err := decodeBody(r, &req); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	v, err := sess.State.SetViewport(view.Viewport{X: req.X, Y: req.Y, Zoom: req.Zoom})
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}

type connectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// POST /api/views/{viewID}/connections
func (db *DBHandler) Connect(w http.ResponseWriter, r *http.Request) {
	sess, ok := db.session(w, r)
	if !ok {
		return
	}

	var req connectRequest
	if err := decodeBody(r, &req); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	edge, err := sess.State.Connect(req.Source, req.Target)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, edge)
}

// DELETE /api/views/{viewID}/connections/{edgeID}
func (db *DBHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	sess, ok := db.session(w, r)
	if !ok {
		return
	}
	if err := sess.State.Disconnect(r.PathValue("edgeID")); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
