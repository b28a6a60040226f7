package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string    `gorm:"size:20;not null;uniqueIndex" json:"code"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Units      int       `gorm:"default:3" json:"units"`
	Department string    `gorm:"size:100" json:"department"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
