package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/andrewpaige1/roadmap-api/roadmap"
	"github.com/andrewpaige1/roadmap-api/utils"
)

type generateRequest struct {
	CareerGoal string `json:"careerGoal" validate:"required,max=200"`
}

type generateResponse struct {
	CareerGoal   string            `json:"careerGoal"`
	Roadmap      *roadmap.Document `json:"roadmap"`
	Layout       roadmap.Graph     `json:"layout"`
	Summary      roadmap.Summary   `json:"summary"`
	Roots        []string          `json:"roots"`
	Disconnected []string          `json:"disconnected"`
}

// POST /api/roadmaps/generate
// Nothing is saved; the client saves explicitly once the user keeps the roadmap.
func (db *DBHandler) GenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUser(r); err != nil {
		db.writeError(w, r, err, false)
		return
	}

	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	goal := strings.TrimSpace(req.CareerGoal)
	if goal == "" {
		db.writeError(w, r, &payloadError{errEmptyGoal}, false)
		return
	}

	doc, err := db.Generator.Roadmap(r.Context(), goal)
	if err != nil {
		db.writeError(w, r, err, true)
		return
	}

	utils.WriteJSON(w, http.StatusOK, generateResponse{
		CareerGoal:   goal,
		Roadmap:      doc,
		Layout:       roadmap.Layout(doc.Stages),
		Summary:      roadmap.Summarize(doc),
		Roots:        nonNil(doc.Roots()),
		Disconnected: nonNil(doc.Disconnected()),
	})
}

type saveRequest struct {
	CareerGoal string          `json:"careerGoal" validate:"required,max=200"`
	Roadmap    json.RawMessage `json:"roadmap" validate:"required"`
}

// POST /api/roadmaps
// The document is validated again before saving; clients are not trusted to send back
// what they were given.
func (db *DBHandler) SaveRoadmap(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	var req saveRequest
	if err := decodeBody(r, &req); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	goal := strings.TrimSpace(req.CareerGoal)
	if goal == "" {
		db.writeError(w, r, &payloadError{errEmptyGoal}, false)
		return
	}

	doc, err := roadmap.Decode(req.Roadmap)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	entry, err := db.Store.Save(r.Context(), user.ID, goal, doc)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}
	db.Logger.Debug("roadmap saved", zap.String("entry_id", entry.PublicID))
	utils.WriteJSON(w, http.StatusCreated, newEntryResponse(entry))
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
