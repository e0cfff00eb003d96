package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"devconnector/internal/app"
	"devconnector/internal/transport/http/middleware"
	"devconnector/internal/transport/http/response"
)

type PostHandler struct {
	postService *app.PostService
	log         logrus.FieldLogger
}

func NewPostHandler(postService *app.PostService, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{postService: postService, log: log}
}

func (h *PostHandler) Create(c *gin.Context) {
	var req app.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	userID, _ := middleware.UserID(c)
	post, err := h.postService.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.log, err, "create post")
		return
	}
	response.OK(c, post)
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err, "list posts")
		return
	}
	response.OK(c, posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "get post")
		return
	}
	response.OK(c, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.postService.DeletePost(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, h.log, err, "delete post")
		return
	}
	response.OK(c, gin.H{"msg": "Post removed"})
}

func (h *PostHandler) Like(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	likes, err := h.postService.Like(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "like post")
		return
	}
	response.OK(c, likes)
}

func (h *PostHandler) Unlike(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	likes, err := h.postService.Unlike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "unlike post")
		return
	}
	response.OK(c, likes)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req app.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	userID, _ := middleware.UserID(c)
	comments, err := h.postService.AddComment(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		writeError(c, h.log, err, "add comment")
		return
	}
	response.OK(c, comments)
}

func (h *PostHandler) RemoveComment(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	comments, err := h.postService.RemoveComment(c.Request.Context(), userID, c.Param("id"), c.Param("comment_id"))
	if err != nil {
		writeError(c, h.log, err, "remove comment")
		return
	}
	response.OK(c, comments)
}
