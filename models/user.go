package models

import "gorm.io/gorm"

// User is the local record for an authenticated identity.
type User struct {
	gorm.Model
	Auth0ID  string           `gorm:"uniqueIndex;not null;size:191"`
	Nickname string           `gorm:"size:100"`
	Roadmaps []RoadmapHistory `gorm:"foreignKey:UserID" json:"-"`
}
