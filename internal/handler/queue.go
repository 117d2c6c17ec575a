package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/internal/pipeline"
	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/response"
)

const queueLengthCacheKey = "queue:length"

// QueueStatus answers "when will my request run" without waiting for a
// batch execution.
type QueueStatus struct {
	QueueInfo *models.PendingRequest `json:"queueInfo"`
	BatchDate time.Time              `json:"batchDate"`
}

func (h *Handlers) handleQueueStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.Fail(c, errors.CodeValidation, "invalid user id")
		return
	}

	req, err := models.GetPendingRequestByUserID(h.db, uint(userID))
	if err != nil {
		h.log.Error("queue status lookup failed", zapError(err))
		response.FailStatus(c, http.StatusInternalServerError, 0, "queue lookup failed")
		return
	}

	var cycle int
	if req != nil {
		position, err := models.PendingQueuePosition(h.db, uint(userID))
		if err != nil || position < 0 {
			h.log.Error("queue position lookup failed", zapError(err))
			response.FailStatus(c, http.StatusInternalServerError, 0, "queue lookup failed")
			return
		}
		cycle = pipeline.CycleForPosition(position, h.cfg.RecordsPerBatch)
	} else {
		length, err := h.queueLength(c)
		if err != nil {
			h.log.Error("queue length lookup failed", zapError(err))
			response.FailStatus(c, http.StatusInternalServerError, 0, "queue lookup failed")
			return
		}
		cycle = pipeline.CycleForQueueLength(length, h.cfg.RecordsPerBatch)
	}

	response.Success(c, "queue status", QueueStatus{
		QueueInfo: req,
		BatchDate: pipeline.Estimate(h.now(), h.cfg.BatchExecHourGMT, cycle),
	})
}

// submitRequest is the wire shape of a new request. voiceGender is a
// boolean on the wire (true = female), kept for client compatibility.
type submitRequest struct {
	UserID      uint   `json:"userId" binding:"required"`
	Theme       string `json:"theme" binding:"required"`
	VoiceGender *bool  `json:"voiceGender" binding:"required"`
}

func (h *Handlers) handleSubmitRequest(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errors.CodeValidation, err.Error())
		return
	}

	gender := models.GenderMale
	if *req.VoiceGender {
		gender = models.GenderFemale
	}

	created, err := models.CreatePendingRequest(h.db, req.UserID, req.Theme, gender)
	if err != nil {
		if errors.IsDuplicateRequest(err) {
			response.Fail(c, errors.CodeDuplicateRequest, "a pending request already exists for this user")
			return
		}
		h.log.Error("request creation failed", zapError(err))
		response.FailStatus(c, http.StatusInternalServerError, 0, "request creation failed")
		return
	}

	// The cached length is stale the moment a row lands.
	_ = h.cache.Delete(c, queueLengthCacheKey)

	position, err := models.PendingQueuePosition(h.db, req.UserID)
	if err != nil || position < 0 {
		position = 0
	}
	batchDate := pipeline.Estimate(h.now(), h.cfg.BatchExecHourGMT,
		pipeline.CycleForPosition(position, h.cfg.RecordsPerBatch))

	response.Created(c, "request queued", gin.H{
		"request":   created,
		"batchDate": batchDate,
	})
}

// queueLength returns the pending-queue length, cached briefly: the
// status endpoint is polled and the count only needs to be roughly
// fresh for cycle math.
func (h *Handlers) queueLength(c *gin.Context) (int, error) {
	if v, ok := h.cache.Get(c, queueLengthCacheKey); ok {
		if n, ok := v.(int); ok {
			return n, nil
		}
	}
	total, err := models.CountPendingRequests(h.db)
	if err != nil {
		return 0, err
	}
	_ = h.cache.Set(c, queueLengthCacheKey, int(total), 15*time.Second)
	return int(total), nil
}
