package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/repository"
	"tutor-hub/internal/service"
)

// EnrollmentHandler mantiene dependencias para solicitudes de inscripcion.
type EnrollmentHandler struct {
	logger        *zap.Logger
	enrollmentSvc *service.EnrollmentService
}

func NewEnrollmentHandler(logger *zap.Logger, enrollmentSvc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		logger:        logger,
		enrollmentSvc: enrollmentSvc,
	}
}

// Create maneja POST /enrollment-applications (solo student).
func (h *EnrollmentHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req struct {
		TutorID           string `json:"tutorId" binding:"required"`
		Subject           string `json:"subject" binding:"required"`
		Grade             string `json:"grade" binding:"required"`
		PreferredSchedule string `json:"preferredSchedule" binding:"required"`
		Goals             string `json:"goals" binding:"required"`
		Experience        string `json:"experience"`
		AdditionalNotes   string `json:"additionalNotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid enrollment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	app, err := h.enrollmentSvc.Create(c.Request.Context(), claims.Subject, service.CreateEnrollmentInput{
		TutorID:           req.TutorID,
		Subject:           req.Subject,
		Grade:             req.Grade,
		PreferredSchedule: req.PreferredSchedule,
		Goals:             req.Goals,
		Experience:        req.Experience,
		AdditionalNotes:   req.AdditionalNotes,
	})
	if err != nil {
		h.logger.Error("create enrollment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create application"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// ListByStudent maneja GET /enrollment-applications/student.
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	apps, err := h.enrollmentSvc.ListByStudent(c.Request.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("list student enrollments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ListByTutor maneja GET /enrollment-applications/tutor/:tutorId con
// paginacion y filtro opcional de estado. El tutor solo lista lo suyo.
func (h *EnrollmentHandler) ListByTutor(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	tutorID := c.Param("tutorId")
	if tutorID != claims.Subject {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	page, err := parsePositiveInt(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid page: must be a positive number"})
		return
	}
	limit, err := parsePositiveInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit: must be a positive number"})
		return
	}

	result, err := h.enrollmentSvc.ListByTutor(c.Request.Context(), tutorID, repository.EnrollmentFilter{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
	})
	if err != nil {
		h.logger.Error("list tutor enrollments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load applications"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Decide maneja PATCH /enrollment-applications/:id (solo el tutor dueño).
func (h *EnrollmentHandler) Decide(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req struct {
		Status        string `json:"status" binding:"required,oneof=accepted rejected"`
		TutorResponse string `json:"tutorResponse"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid enrollment update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	app, err := h.enrollmentSvc.Decide(c.Request.Context(), claims.Subject, c.Param("id"), domain.EnrollmentStatus(req.Status), req.TutorResponse)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		case errors.Is(err, service.ErrEnrollmentForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		case errors.Is(err, service.ErrEnrollmentDecided):
			c.JSON(http.StatusConflict, gin.H{"message": "Application already decided"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		default:
			h.logger.Error("update enrollment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update application"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
