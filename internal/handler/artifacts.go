package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/internal/pipeline"
	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/response"
)

func (h *Handlers) handleListArtifacts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	artifacts, err := models.ListArtifacts(h.db, limit, offset)
	if err != nil {
		h.log.Error("artifact listing failed", zapError(err))
		response.FailStatus(c, http.StatusInternalServerError, 0, "artifact listing failed")
		return
	}
	response.Success(c, "artifacts", gin.H{"artifacts": artifacts})
}

// handleGetArtifact returns the artifact plus a readiness flag. The
// location URL is recorded at dispatch time and may reference a task
// still completing, so presence in the object store is probed here.
func (h *Handlers) handleGetArtifact(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Fail(c, errors.CodeValidation, "invalid artifact id")
		return
	}

	artifact, err := models.GetArtifact(h.db, uint(id))
	if err != nil {
		h.log.Error("artifact lookup failed", zapError(err))
		response.FailStatus(c, http.StatusInternalServerError, 0, "artifact lookup failed")
		return
	}
	if artifact == nil {
		response.FailStatus(c, http.StatusNotFound, 0, "artifact not found")
		return
	}

	ready := false
	if h.store != nil {
		if key := objectKeyFromLocation(artifact.LocationURL); key != "" {
			if exists, err := h.store.Exists(c, key); err == nil {
				ready = exists
			}
		}
	}

	response.Success(c, "artifact", gin.H{"artifact": artifact, "ready": ready})
}

func objectKeyFromLocation(location string) string {
	idx := strings.Index(location, pipeline.ObjectKeyPrefix)
	if idx < 0 {
		return ""
	}
	return location[idx:]
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}
