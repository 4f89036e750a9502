package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tokengate/tokengate/pkg/errors"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const codeOK = "OK"

// OK writes a success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: codeOK, Data: data})
}

// Fail writes a failure envelope. With alwaysSuccessStatus the HTTP status
// is pinned to 200 and the error kind travels in the body only.
func Fail(c *gin.Context, err error, alwaysSuccessStatus bool) {
	response := errors.ToErrorResponse(err)
	status := errors.HTTPStatusOf(err)
	if alwaysSuccessStatus {
		status = http.StatusOK
	}
	c.JSON(status, Response{Code: response.Error, Message: response.Message})
}

// AbortFail writes a failure envelope and stops the handler chain.
func AbortFail(c *gin.Context, err error, alwaysSuccessStatus bool) {
	Fail(c, err, alwaysSuccessStatus)
	c.Abort()
}
