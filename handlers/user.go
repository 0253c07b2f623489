package handlers

import (
	"net/http"

	"github.com/andrewpaige1/roadmap-api/models"
	"github.com/andrewpaige1/roadmap-api/utils"
)

// GET /api/me
func (db *DBHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	count, err := db.Store.Count(r.Context(), user.ID)
	if err != nil {
		db.writeError(w, r, err, false)
		return
	}

	utils.WriteJSON(w, http.StatusOK, struct {
		*models.User
		RoadmapCount int64 `json:"roadmapCount"`
	}{user, count})
}
