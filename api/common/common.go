package common

import (
	"log"
	"net/http"
	"strconv"

	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/utils"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status string      `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Status: status,
		Msg:    message,
		Data:   data,
	})
}

// RespondSuccess sends a success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage sends a success response with message and data.
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, "success", message, data)
}

// RespondCreated 201
func RespondCreated(c *gin.Context, data interface{}) {
	Respond(c, http.StatusCreated, "success", "", data)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// RespondErrorAbort 中间件使用，写入错误并终止后续处理
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	RespondError(c, httpStatus, message)
	c.Abort()
}

// RespondServiceError 按业务错误码输出，内部错误只返回通用信息
func RespondServiceError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		log.Printf("[API] %s %s: unexpected error: %v", c.Request.Method, c.FullPath(), err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if appErr.Code == apperr.CodeInternal {
		log.Printf("[API] %s %s: %s", c.Request.Method, c.FullPath(), utils.SanitizeLogMessage(appErr.Error()))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	Respond(c, appErr.HTTPStatus(), "error", appErr.Message, gin.H{"code": appErr.Code})
}

// ParseUintParam 解析路径中的数字 ID，失败时直接返回 400
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		RespondError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}
