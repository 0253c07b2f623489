package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/andrewpaige1/roadmap-api/models"
	"github.com/andrewpaige1/roadmap-api/roadmap"
	"github.com/andrewpaige1/roadmap-api/utils"
)

var errEmptyGoal = errors.New("careerGoal is required")

type entrySummary struct {
	ID         string          `json:"id"`
	CareerGoal string          `json:"careerGoal"`
	Title      string          `json:"title"`
	CreatedAt  time.Time       `json:"createdAt"`
	Summary    roadmap.Summary `json:"summary"`
}

type entryResponse struct {
	models.RoadmapHistory
	Summary roadmap.Summary `json:"summary"`
}

type entryDetail struct {
	entryResponse
	Layout roadmap.Graph `json:"layout"`
}

func newEntryResponse(entry *models.RoadmapHistory) entryResponse {
	doc := entry.RoadmapData.Data()
	return entryResponse{RoadmapHistory: *entry, Summary: roadmap.Summarize(&doc)}
}

// GET /api/roadmaps
func (db *DBHandler) ListRoadmaps(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	entries, err := db.Store.List(r.Context(), user.ID)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	result := make([]entrySummary, 0, len(entries))
	for _, e := range entries {
		doc := e.RoadmapData.Data()
		result = append(result, entrySummary{
			ID:         e.PublicID,
			CareerGoal: e.CareerGoal,
			Title:      doc.Title,
			CreatedAt:  e.CreatedAt,
			Summary:    roadmap.Summarize(&doc),
		})
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GET /api/roadmaps/{entryID}
func (db *DBHandler) GetRoadmap(w http.ResponseWriter, r *http.Request) {
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
	utils.WriteJSON(w, http.StatusOK, entryDetail{
		entryResponse: newEntryResponse(entry),
		Layout:        roadmap.Layout(doc.Stages),
	})
}

// DELETE /api/roadmaps/{entryID}
func (db *DBHandler) DeleteRoadmap(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	entryID := r.PathValue("entryID")
	if err := db.Store.Delete(r.Context(), user.ID, entryID); err != nil {
		db.writeError(w, r, err, false)
		return
	}
	db.Sessions.CloseEntry(user.ID, entryID)
	w.WriteHeader(http.StatusNoContent)
}
