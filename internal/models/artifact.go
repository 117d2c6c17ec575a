package models

import (
	stderrors "errors"
	"time"

	"gorm.io/gorm"
)

// Artifact is one finished or still-synthesizing audio track. Rows are
// created exactly once by the batch pipeline and never mutated by it
// afterward; play_count belongs to the player surface.
type Artifact struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"displayName" gorm:"size:255"`
	LocationURL string    `json:"locationUrl" gorm:"size:1024"` // may reference a task still completing
	VoiceGender string    `json:"voiceGender" gorm:"size:16"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	PlayCount   int64     `json:"playCount" gorm:"default:0"`

	// RequesterUserID is null for untargeted daily artifacts.
	RequesterUserID *uint `json:"requesterUserId" gorm:"index"`
}

// CreateArtifact persists one artifact row.
func CreateArtifact(db *gorm.DB, artifact *Artifact) error {
	return db.Create(artifact).Error
}

// GetArtifact returns the artifact by id, or nil when absent.
func GetArtifact(db *gorm.DB, id uint) (*Artifact, error) {
	var a Artifact
	err := db.First(&a, id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListArtifacts returns a page of recent artifacts, newest first.
func ListArtifacts(db *gorm.DB, limit, offset int) ([]Artifact, error) {
	var artifacts []Artifact
	err := db.Order("created_at desc, id desc").
		Limit(limit).Offset(offset).
		Find(&artifacts).Error
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// AutoMigrate creates the pipeline's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &PendingRequest{}, &Artifact{})
}
