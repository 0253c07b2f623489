package history

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andrewpaige1/roadmap-api/metrics"
	"github.com/andrewpaige1/roadmap-api/models"
	"github.com/andrewpaige1/roadmap-api/roadmap"
)

var (
	// ErrNotFound is returned when no entry with the id belongs to the owner.
	ErrNotFound = errors.New("roadmap history entry not found")
	// ErrNoOwner is returned when an operation has no resolvable owner.
	ErrNoOwner = errors.New("roadmap history requires an owner")
)

// Store persists saved roadmaps. Every query is scoped by owner.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Save inserts a new entry. It never updates an existing one.
func (s *Store) Save(ctx context.Context, ownerID uint, careerGoal string, doc *roadmap.Document) (*models.RoadmapHistory, error) {
	if ownerID == 0 {
		return nil, ErrNoOwner
	}
	if doc == nil {
		return nil, errors.New("roadmap history: nil document")
	}

	publicID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate public id: %w", err)
	}

	entry := models.RoadmapHistory{
		PublicID:    publicID,
		UserID:      ownerID,
		CareerGoal:  careerGoal,
		RoadmapData: datatypes.NewJSONType(*doc),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		metrics.HistoryOps.WithLabelValues("save", "error").Inc()
		return nil, fmt.Errorf("save roadmap: %w", err)
	}
	metrics.HistoryOps.WithLabelValues("save", "ok").Inc()

	s.logger.Info("saved roadmap",
		zap.Uint("user_id", ownerID),
		zap.String("entry_id", publicID),
		zap.Int("stages", len(doc.Stages)))
	return &entry, nil
}

// List returns the owner's entries, most recent first.
func (s *Store) List(ctx context.Context, ownerID uint) ([]models.RoadmapHistory, error) {
	if ownerID == 0 {
		return nil, ErrNoOwner
	}

	entries := []models.RoadmapHistory{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at desc").
		Order("id desc").
		Find(&entries).Error
	if err != nil {
		metrics.HistoryOps.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	metrics.HistoryOps.WithLabelValues("list", "ok").Inc()
	return entries, nil
}

// Get looks up one of the owner's entries by its public id.
func (s *Store) Get(ctx context.Context, ownerID uint, entryID string) (*models.RoadmapHistory, error) {
	if ownerID == 0 {
		return nil, ErrNoOwner
	}

	var entry models.RoadmapHistory
	err := s.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", entryID, ownerID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.HistoryOps.WithLabelValues("get", "not_found").Inc()
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.HistoryOps.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("get roadmap %s: %w", entryID, err)
	}
	metrics.HistoryOps.WithLabelValues("get", "ok").Inc()
	return &entry, nil
}

// Delete removes one of the owner's entries. An id that is unknown or owned by someone
// else reports ErrNotFound and changes nothing.
func (s *Store) Delete(ctx context.Context, ownerID uint, entryID string) error {
	if ownerID == 0 {
		return ErrNoOwner
	}

	result := s.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", entryID, ownerID).
		Delete(&models.RoadmapHistory{})
	if result.Error != nil {
		metrics.HistoryOps.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete roadmap %s: %w", entryID, result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.HistoryOps.WithLabelValues("delete", "not_found").Inc()
		return ErrNotFound
	}
	metrics.HistoryOps.WithLabelValues("delete", "ok").Inc()

	s.logger.Info("deleted roadmap", zap.Uint("user_id", ownerID), zap.String("entry_id", entryID))
	return nil
}

// Count returns how many entries the owner has saved.
func (s *Store) Count(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RoadmapHistory{}).Where("user_id = ?", ownerID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count roadmaps: %w", err)
	}
	return n, nil
}
