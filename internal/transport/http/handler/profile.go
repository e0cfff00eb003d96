package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"devconnector/internal/app"
	"devconnector/internal/transport/http/middleware"
	"devconnector/internal/transport/http/response"
)

type ProfileHandler struct {
	profileService *app.ProfileService
	log            logrus.FieldLogger
}

func NewProfileHandler(profileService *app.ProfileService, log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	profile, err := h.profileService.GetOwnProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err, "get own profile")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) Upsert(c *gin.Context) {
	var req app.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	userID, _ := middleware.UserID(c)
	profile, err := h.profileService.UpsertProfile(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.log, err, "upsert profile")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.profileService.DeleteProfile(c.Request.Context(), userID); err != nil {
		writeError(c, h.log, err, "delete profile")
		return
	}
	response.OK(c, gin.H{"msg": "Profile deleted"})
}

func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.profileService.ListProfiles(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err, "list profiles")
		return
	}
	response.OK(c, profiles)
}

func (h *ProfileHandler) ByUser(c *gin.Context) {
	profile, err := h.profileService.GetByUserID(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, h.log, err, "get profile by user")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	var req app.ExperienceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	userID, _ := middleware.UserID(c)
	profile, err := h.profileService.AddExperience(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.log, err, "add experience")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	profile, err := h.profileService.RemoveExperience(c.Request.Context(), userID, c.Param("exp_id"))
	if err != nil {
		writeError(c, h.log, err, "remove experience")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) AddEducation(c *gin.Context) {
	var req app.EducationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	userID, _ := middleware.UserID(c)
	profile, err := h.profileService.AddEducation(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.log, err, "add education")
		return
	}
	response.OK(c, profile)
}

func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	profile, err := h.profileService.RemoveEducation(c.Request.Context(), userID, c.Param("edu_id"))
	if err != nil {
		writeError(c, h.log, err, "remove education")
		return
	}
	response.OK(c, profile)
}
