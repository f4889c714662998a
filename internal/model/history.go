package model

import (
	"time"

	"dirmerge/internal/diff"

	"gorm.io/gorm"
)

// History is one file outcome of a merge run.
type History struct {
	gorm.Model
	RunID       string           `gorm:"index;not null"`
	Path        string           `gorm:"not null"`
	Status      Status           `gorm:"not null"`
	Differences diff.Differences `gorm:"not null"`
	Action      diff.Action
	ErrMsg      string
	MergedAt    time.Time `gorm:"not null"`
}
