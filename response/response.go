// Package response writes the uniform result envelope returned by every operation.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"user-accounts-backend/apperror"
)

// Envelope is the body of every response, success or failure.
type Envelope struct {
	Code     int       `json:"code"`
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Data     any       `json:"data,omitempty"`
	PageInfo *PageInfo `json:"pageInfo,omitempty"`
}

// PageInfo is the pagination metadata attached to list results.
type PageInfo struct {
	TotalUsers  int64 `json:"totalUsers"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// Success builds a successful envelope.
func Success(code int, message string, data any) Envelope {
	return Envelope{Code: code, Success: true, Message: message, Data: data}
}

// Failure builds the envelope for err.
func Failure(err error) Envelope {
	code := apperror.StatusCode(err)
	return Envelope{Code: code, Success: false, Message: apperror.Message(err)}
}

// OK writes a 200 envelope.
func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Success(http.StatusOK, message, data))
}

// Created writes a 201 envelope.
func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Success(http.StatusCreated, message, data))
}

// Page writes a 200 envelope with pagination metadata.
func Page(c *gin.Context, message string, data any, info PageInfo) {
	env := Success(http.StatusOK, message, data)
	env.PageInfo = &info
	c.JSON(http.StatusOK, env)
}

// Fail writes the envelope for err and records it on the context for logging.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	env := Failure(err)
	c.JSON(env.Code, env)
}

// Abort is Fail for middleware: the remaining handlers are not run.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	env := Failure(err)
	c.AbortWithStatusJSON(env.Code, env)
}
