// Package dto provides data transfer objects for the application layer.
package dto

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool                  `json:"success"`
	Data      interface{}           `json:"data,omitempty"`
	Error     *errors.ErrorResponse `json:"error,omitempty"`
	RequestID string                `json:"request_id,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, requestID string) *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     errors.ToErrorResponse(err),
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// SendSuccess writes data in the success envelope.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse(data, c.GetString(string(constants.ContextKeyRequestID))))
}

// SendError writes err in the error envelope with the status it maps to, and records it
// on the context so the logging middleware can report it.
func SendError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(err), ErrorResponse(err, c.GetString(string(constants.ContextKeyRequestID))))
}
