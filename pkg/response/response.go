package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the JSON envelope every API handler responds with.
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: message, Data: data})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Code: 0, Message: message, Data: data})
}

// Fail writes a 400 envelope with an application error code.
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Body{Code: code, Message: message})
}

// FailStatus writes an envelope with an explicit HTTP status.
func FailStatus(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, Body{Code: code, Message: message})
}
