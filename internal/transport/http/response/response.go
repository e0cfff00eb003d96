package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUserExists         = 40001
	CodeAlreadyLiked       = 40002
	CodeNotLiked           = 40003
	CodeConflict           = 40004
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeForbidden          = 40300
	CodeNotFound           = 40400
	CodeUserNotFound       = 40401
	CodeProfileNotFound    = 40402
	CodePostNotFound       = 40403
	CodeCommentNotFound    = 40404
	CodeTooManyRequests    = 42900
	CodeInternalServer     = 50000
)

type FieldError struct {
	Field string `json:"field,omitempty"`
	Msg   string `json:"msg"`
}

type APIResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
		Errors:  []FieldError{{Msg: message}},
	})
}

func Invalid(c *gin.Context, httpStatus int, message string, fields []FieldError) {
	c.JSON(httpStatus, APIResponse{
		Code:    CodeBadRequest,
		Message: message,
		Errors:  fields,
	})
}
