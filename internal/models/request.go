package models

import (
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
)

// Voice gender values stored on requests and artifacts.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// PendingRequest is one queued synthesis request. The unique user_id
// index is the admission-control lock: at most one active request per
// user while the row exists.
type PendingRequest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"userId" gorm:"uniqueIndex;not null"`
	User        User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Theme       string    `json:"theme" gorm:"size:255"` // empty means untargeted
	VoiceGender string    `json:"voiceGender" gorm:"size:16"`
	RequestedAt time.Time `json:"requestedAt" gorm:"index;autoCreateTime"`
}

// CreatePendingRequest inserts a request, translating a uniqueness
// violation into a duplicate-request error. The insert itself is the
// only coordination point between concurrent submitters.
func CreatePendingRequest(db *gorm.DB, userID uint, theme, voiceGender string) (*PendingRequest, error) {
	req := &PendingRequest{
		UserID:      userID,
		Theme:       theme,
		VoiceGender: voiceGender,
	}
	if err := db.Create(req).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, errors.WrapCode(errors.CodeDuplicateRequest, err, "user already has a pending request")
		}
		return nil, err
	}
	return req, nil
}

// GetPendingRequestByUserID returns the user's queued request, or nil
// when none exists.
func GetPendingRequestByUserID(db *gorm.DB, userID uint) (*PendingRequest, error) {
	var req PendingRequest
	err := db.Where("user_id = ?", userID).First(&req).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// FetchOldestPendingRequests returns up to limit requests in strict
// FIFO order (requested_at ascending, id as tie-break).
func FetchOldestPendingRequests(db *gorm.DB, limit int) ([]PendingRequest, error) {
	var reqs []PendingRequest
	err := db.Order("requested_at asc, id asc").Limit(limit).Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// DeletePendingRequestsByUserIDs removes processed rows in one batch.
func DeletePendingRequestsByUserIDs(db *gorm.DB, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return db.Where("user_id IN ?", userIDs).Delete(&PendingRequest{}).Error
}

// PendingQueuePosition returns the 0-based rank of the user's request
// in the full FIFO ordering, or -1 when the user is not queued.
func PendingQueuePosition(db *gorm.DB, userID uint) (int, error) {
	var userIDs []uint
	err := db.Model(&PendingRequest{}).
		Order("requested_at asc, id asc").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return -1, err
	}
	for i, id := range userIDs {
		if id == userID {
			return i, nil
		}
	}
	return -1, nil
}

// CountPendingRequests returns the current queue length.
func CountPendingRequests(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&PendingRequest{}).Count(&n).Error
	return n, err
}

// isDuplicateKey recognizes unique-constraint violations across the
// supported drivers. TranslateError covers the common case; the message
// check covers drivers without a translator.
func isDuplicateKey(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
