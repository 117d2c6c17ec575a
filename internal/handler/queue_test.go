package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/pkg/cache"
	"github.com/katkatprog/sleepApp-sub000/pkg/config"
	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/middleware"
	"github.com/katkatprog/sleepApp-sub000/pkg/util"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := util.ConnectDatabase("", "file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { util.CloseDatabase(db) })

	cfg := &config.Config{
		RecordsPerBatch:  70,
		BatchExecHourGMT: 12,
	}
	h := New(db, cfg, cache.NewGoCache(cache.LocalConfig{}), nil, zap.NewNop())
	h.now = func() time.Time { return testNow }

	engine := gin.New()
	h.Register(engine, middleware.NewRateLimiter("100-S", nil))
	return engine, db
}

func createUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: id, Name: fmt.Sprintf("user%d", id)}).Error)
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitRequestCreatesRow(t *testing.T) {
	r, db := newTestRouter(t)
	createUser(t, db, 1)

	w := doJSON(r, http.MethodPost, "/api/queue", gin.H{
		"userId":      1,
		"theme":       "海",
		"voiceGender": true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	req, err := models.GetPendingRequestByUserID(db, 1)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "海", req.Theme)
	assert.Equal(t, models.GenderFemale, req.VoiceGender)

	var body struct {
		Data struct {
			BatchDate time.Time `json:"batchDate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), body.Data.BatchDate)
}

func TestSubmitRequestMapsFalseToMaleVoice(t *testing.T) {
	r, db := newTestRouter(t)
	createUser(t, db, 1)

	w := doJSON(r, http.MethodPost, "/api/queue", gin.H{
		"userId":      1,
		"theme":       "山",
		"voiceGender": false,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	req, err := models.GetPendingRequestByUserID(db, 1)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, models.GenderMale, req.VoiceGender)
}

func TestSubmitRequestRejectsDuplicate(t *testing.T) {
	r, db := newTestRouter(t)
	createUser(t, db, 1)

	first := doJSON(r, http.MethodPost, "/api/queue", gin.H{
		"userId": 1, "theme": "海", "voiceGender": true,
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := doJSON(r, http.MethodPost, "/api/queue", gin.H{
		"userId": 1, "theme": "山", "voiceGender": false,
	})
	assert.Equal(t, http.StatusBadRequest, second.Code)

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeDuplicateRequest, body.Code)

	count, err := models.CountPendingRequests(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSubmitRequestValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	// Missing theme.
	w := doJSON(r, http.MethodPost, "/api/queue", gin.H{"userId": 1, "voiceGender": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Empty theme.
	w = doJSON(r, http.MethodPost, "/api/queue", gin.H{"userId": 1, "theme": "", "voiceGender": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing voiceGender.
	w = doJSON(r, http.MethodPost, "/api/queue", gin.H{"userId": 1, "theme": "海"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueStatusForQueuedUser(t *testing.T) {
	r, db := newTestRouter(t)
	createUser(t, db, 1)
	_, err := models.CreatePendingRequest(db, 1, "海", models.GenderFemale)
	require.NoError(t, err)

	w := doJSON(r, http.MethodGet, "/api/queue/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data QueueStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data.QueueInfo)
	assert.Equal(t, "海", body.Data.QueueInfo.Theme)
	// Position 0, cycle 0: today's run at 12:00 UTC.
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), body.Data.BatchDate)
}

func TestQueueStatusForUnqueuedUser(t *testing.T) {
	r, db := newTestRouter(t)
	createUser(t, db, 1)

	w := doJSON(r, http.MethodGet, "/api/queue/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data QueueStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Data.QueueInfo)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), body.Data.BatchDate)
}

func TestQueueStatusInvalidUserID(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/api/queue/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArtifactEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	require.NoError(t, models.CreateArtifact(db, &models.Artifact{
		DisplayName: "本日のスリープ音声",
		LocationURL: "http://store/sleep-audio/tracks/x.mp3",
		VoiceGender: models.GenderMale,
	}))

	w := doJSON(r, http.MethodGet, "/api/artifacts", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data struct {
			Artifacts []models.Artifact `json:"artifacts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data.Artifacts, 1)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/artifacts/%d", list.Data.Artifacts[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/artifacts/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
