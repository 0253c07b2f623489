package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/roadmap-api/generation"
	"github.com/andrewpaige1/roadmap-api/history"
	"github.com/andrewpaige1/roadmap-api/middleware"
	"github.com/andrewpaige1/roadmap-api/models"
	"github.com/andrewpaige1/roadmap-api/roadmap"
	"github.com/andrewpaige1/roadmap-api/utils"
	"github.com/andrewpaige1/roadmap-api/view"
)

// payloadError is a request body the handler could not accept.
type payloadError struct {
	err error
}

func (e *payloadError) Error() string { return e.err.Error() }
func (e *payloadError) Unwrap() error { return e.err }

type errorResponse struct {
	Message   string       `json:"message"`
	Rule      roadmap.Rule `json:"rule,omitempty"`
	StageID   string       `json:"stageId,omitempty"`
	Retryable bool         `json:"retryable"`
}

// decodeBody reads a JSON body into v and checks its validate tags.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &payloadError{fmt.Errorf("invalid request body: %w", err)}
	}
	if err := utils.ValidateStruct(v); err != nil {
		return &payloadError{err}
	}
	return nil
}

func currentUser(r *http.Request) (*models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok || user.ID == 0 {
		return nil, history.ErrNoOwner
	}
	return user, nil
}

// writeError maps a failure to a status code. Validation failures are retryable only when
// the document came from the generator.
func (db *DBHandler) writeError(w http.ResponseWriter, r *http.Request, err error, generated bool) {
	var (
		verr *roadmap.ValidationError
		perr *roadmap.ParseError
		gerr *generation.Error
		bad  *payloadError
	)
	status := http.StatusInternalServerError
	resp := errorResponse{Message: "Internal server error"}

	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		resp = errorResponse{Message: verr.Error(), Rule: verr.Rule, StageID: verr.StageID, Retryable: generated}
	case errors.As(err, &gerr):
		status = http.StatusBadGateway
		resp = errorResponse{Message: "Failed to generate roadmap. Please try again.", Retryable: gerr.Retryable()}
	case errors.As(err, &perr):
		if generated {
			status = http.StatusBadGateway
			resp = errorResponse{Message: "Failed to generate roadmap. Please try again.", Retryable: true}
		} else {
			status = http.StatusBadRequest
			resp = errorResponse{Message: perr.Error()}
		}
	case errors.As(err, &bad):
		status = http.StatusBadRequest
		resp = errorResponse{Message: bad.Error()}
	case errors.Is(err, history.ErrNoOwner):
		status = http.StatusUnauthorized
		resp = errorResponse{Message: "Unauthorized"}
	case errors.Is(err, history.ErrNotFound), errors.Is(err, view.ErrNotFound),
		errors.Is(err, view.ErrUnknownNode), errors.Is(err, view.ErrUnknownEdge):
		status = http.StatusNotFound
		resp = errorResponse{Message: err.Error()}
	case errors.Is(err, view.ErrStructuralEdge):
		status = http.StatusConflict
		resp = errorResponse{Message: err.Error()}
	case errors.Is(err, view.ErrSelfConnection), errors.Is(err, view.ErrInvalidZoom):
		status = http.StatusBadRequest
		resp = errorResponse{Message: err.Error()}
	}

	if status >= http.StatusInternalServerError {
		db.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	utils.WriteJSON(w, status, resp)
}
