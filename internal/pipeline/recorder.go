package pipeline

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
)

const dailyDisplayName = "本日のスリープ音声"

// ArtifactRecorder persists one artifact row per successfully
// dispatched synthesis task. It must only run after dispatch succeeds.
type ArtifactRecorder struct {
	db *gorm.DB
}

func NewArtifactRecorder(db *gorm.DB) *ArtifactRecorder {
	return &ArtifactRecorder{db: db}
}

// Record attributes the artifact to the requester when req is non-nil;
// a nil req records an untargeted daily artifact.
func (r *ArtifactRecorder) Record(locationURL, voiceGender string, req *models.PendingRequest) error {
	artifact := &models.Artifact{
		LocationURL: locationURL,
		VoiceGender: voiceGender,
		DisplayName: dailyDisplayName,
	}
	if req != nil {
		artifact.DisplayName = fmt.Sprintf("「%s」に関する音声", req.Theme)
		userID := req.UserID
		artifact.RequesterUserID = &userID
	}
	return models.CreateArtifact(r.db, artifact)
}
