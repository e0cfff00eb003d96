package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"devconnector/internal/app"
	"devconnector/internal/transport/http/response"
)

type errorMapping struct {
	target  error
	status  int
	code    int
	message string
}

var errorMappings = []errorMapping{
	{app.ErrUserExists, http.StatusBadRequest, response.CodeUserExists, "User already exists."},
	{app.ErrInvalidCredential, http.StatusBadRequest, response.CodeInvalidCredentials, "Invalid Credentials"},
	{app.ErrAlreadyLiked, http.StatusBadRequest, response.CodeAlreadyLiked, "Post already liked"},
	{app.ErrNotLiked, http.StatusBadRequest, response.CodeNotLiked, "Post has not yet been liked"},
	{app.ErrConflict, http.StatusBadRequest, response.CodeConflict, "Request already in progress, try again"},
	{app.ErrUnauthorized, http.StatusUnauthorized, response.CodeUnauthorized, "No token, authorization denied"},
	{app.ErrForbidden, http.StatusForbidden, response.CodeForbidden, "User not authorized"},
	{app.ErrUserNotFound, http.StatusNotFound, response.CodeUserNotFound, "User not found"},
	{app.ErrProfileNotFound, http.StatusNotFound, response.CodeProfileNotFound, "There is no profile for this user"},
	{app.ErrPostNotFound, http.StatusNotFound, response.CodePostNotFound, "Post not found"},
	{app.ErrCommentNotFound, http.StatusNotFound, response.CodeCommentNotFound, "Comment does not exist"},
}

// writeError translates a service failure into the response envelope.
// Anything unrecognised is logged and answered with a generic 500.
func writeError(c *gin.Context, log logrus.FieldLogger, err error, op string) {
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		fields := make([]response.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, response.FieldError{Field: f.Field, Msg: f.Msg})
		}
		response.Invalid(c, http.StatusBadRequest, "validation failed", fields)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			response.Error(c, m.status, m.code, m.message)
			return
		}
	}

	log.WithError(err).WithFields(logrus.Fields{
		"op":     op,
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "Server Error")
}

func badPayload(c *gin.Context) {
	response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
}
