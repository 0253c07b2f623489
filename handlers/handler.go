package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrewpaige1/roadmap-api/history"
	"github.com/andrewpaige1/roadmap-api/roadmap"
	"github.com/andrewpaige1/roadmap-api/utils"
	"github.com/andrewpaige1/roadmap-api/view"
)

// RoadmapGenerator produces a validated roadmap for a career goal.
type RoadmapGenerator interface {
	Roadmap(ctx context.Context, careerGoal string) (*roadmap.Document, error)
}

type DBHandler struct {
	*gorm.DB
	Store     *history.Store
	Generator RoadmapGenerator
	Sessions  *view.Sessions
	Logger    *zap.Logger
}

// ExampleGoals are offered to users who have not typed a goal yet.
var ExampleGoals = []string{
	"Frontend Developer",
	"Data Scientist",
	"AI Engineer",
	"DevOps Engineer",
	"Full Stack Developer",
	"Cybersecurity Analyst",
	"Product Manager",
	"Cloud Architect",
}

// Routes registers the API. requireUser wraps every route that needs an owner.
func (db *DBHandler) Routes(mux *http.ServeMux, requireUser func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /healthz", db.Health)

	// User
	mux.HandleFunc("GET /api/me", requireUser(db.GetMe))

	// Roadmaps
	mux.HandleFunc("GET /api/roadmaps/examples", db.GetExamples)
	mux.HandleFunc("POST /api/roadmaps/generate", requireUser(db.GenerateRoadmap))
	mux.HandleFunc("POST /api/roadmaps", requireUser(db.SaveRoadmap))
	mux.HandleFunc("GET /api/roadmaps", requireUser(db.ListRoadmaps))
	mux.HandleFunc("GET /api/roadmaps/{entryID}", requireUser(db.GetRoadmap))
	mux.HandleFunc("DELETE /api/roadmaps/{entryID}", requireUser(db.DeleteRoadmap))

	// Views
	mux.HandleFunc("POST /api/roadmaps/{entryID}/views", requireUser(db.OpenSavedView))
	mux.HandleFunc("POST /api/views", requireUser(db.OpenView))
	mux.HandleFunc("GET /api/views/{viewID}", requireUser(db.GetView))
	mux.HandleFunc("DELETE /api/views/{viewID}", requireUser(db.CloseView))
	mux.HandleFunc("POST /api/views/{viewID}/nodes/{nodeID}/toggle", requireUser(db.ToggleNode))
	mux.HandleFunc("PUT /api/views/{viewID}/viewport", requireUser(db.SetViewport))
	mux.HandleFunc("POST /api/views/{viewID}/connections", requireUser(db.Connect))
	mux.HandleFunc("DELETE /api/views/{viewID}/connections/{edgeID}", requireUser(db.Disconnect))
}

// GET /healthz
func (db *DBHandler) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		db.Logger.Error("health check failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/roadmaps/examples
func (db *DBHandler) GetExamples(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string][]string{"examples": ExampleGoals})
}
