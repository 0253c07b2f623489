package models

import (
	"time"

	"github.com/andrewpaige1/roadmap-api/roadmap"
	"gorm.io/datatypes"
)

// RoadmapHistory is one saved roadmap. Rows are only ever inserted or deleted; a changed
// roadmap is saved as a new row.
type RoadmapHistory struct {
	ID          uint                                `gorm:"primaryKey" json:"-"`
	PublicID    string                              `gorm:"size:100;uniqueIndex;not null" json:"id"`
	UserID      uint                                `gorm:"not null;index" json:"-"`
	User        User                                `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	CareerGoal  string                              `gorm:"not null;size:200" json:"careerGoal"`
	RoadmapData datatypes.JSONType[roadmap.Document] `json:"roadmapData"`
	CreatedAt   time.Time                           `gorm:"autoCreateTime;index" json:"createdAt"`
}
