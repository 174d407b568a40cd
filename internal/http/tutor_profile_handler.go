package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/service"
	"tutor-hub/internal/storage"
)

var (
	imageTypes    = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true}
	documentTypes = map[string]bool{"application/pdf": true, "image/jpeg": true, "image/png": true}
)

// TutorProfileHandler mantiene dependencias para endpoints de perfiles.
type TutorProfileHandler struct {
	logger     *zap.Logger
	profileSvc *service.TutorProfileService
	uploader   storage.Uploader
}

func NewTutorProfileHandler(logger *zap.Logger, profileSvc *service.TutorProfileService, uploader storage.Uploader) *TutorProfileHandler {
	return &TutorProfileHandler{
		logger:     logger,
		profileSvc: profileSvc,
		uploader:   uploader,
	}
}

type tutorProfileRequest struct {
	FullName     string   `json:"fullName" binding:"required"`
	Bio          string   `json:"bio" binding:"required"`
	Experience   string   `json:"experience" binding:"required"`
	ProfileImage string   `json:"profileImage"`
	Subjects     []string `json:"subjects" binding:"required,min=1"`
	Grades       []string `json:"grades" binding:"required,min=1"`
	Availability []string `json:"availability"`
	PhoneNumber  string   `json:"phoneNumber"`
	Location     string   `json:"location"`
}

// Save maneja POST y PATCH /tutor-profile (upsert).
func (h *TutorProfileHandler) Save(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req tutorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid tutor profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	profile, err := h.profileSvc.Save(c.Request.Context(), claims.Subject, service.TutorProfileInput{
		FullName:     req.FullName,
		Bio:          req.Bio,
		Experience:   req.Experience,
		ProfileImage: req.ProfileImage,
		Subjects:     req.Subjects,
		Grades:       req.Grades,
		Availability: req.Availability,
		PhoneNumber:  req.PhoneNumber,
		Location:     req.Location,
	})
	if err != nil {
		h.logger.Error("save tutor profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Get maneja GET /tutor-profile.
func (h *TutorProfileHandler) Get(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	profile, err := h.profileSvc.GetByUserID(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Tutor profile not found"})
			return
		}
		h.logger.Error("get tutor profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ListAll maneja GET /tutor-profile/all, publico para la busqueda de tutores.
func (h *TutorProfileHandler) ListAll(c *gin.Context) {
	profiles, err := h.profileSvc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list tutor profiles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// UploadProfileImage maneja POST /tutor-profile/upload-profile-image.
func (h *TutorProfileHandler) UploadProfileImage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	url, ok := h.uploadFormFile(c, "profile-images", imageTypes, "Only JPEG, PNG files are allowed")
	if !ok {
		return
	}
	if err := h.profileSvc.SetProfileImage(c.Request.Context(), claims.Subject, url); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Tutor profile not found"})
			return
		}
		h.logger.Error("set profile image failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save profile image"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profileImage": url})
}

// UploadCertificate maneja POST /tutor-profile/upload-certificate.
func (h *TutorProfileHandler) UploadCertificate(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	subject := c.PostForm("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Subject is required"})
		return
	}
	url, ok := h.uploadFormFile(c, "certificates", documentTypes, "Only PDF, JPEG, PNG files are allowed")
	if !ok {
		return
	}
	cert := domain.Certificate{Subject: subject, CertificateURL: url}
	if err := h.profileSvc.AddCertificate(c.Request.Context(), claims.Subject, cert); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Tutor profile not found"})
			return
		}
		h.logger.Error("add certificate failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save certificate"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificateUrl": url, "subject": subject})
}

// uploadFormFile valida el multipart "file" contra la lista de tipos y lo
// sube al storage. Devuelve la URL publica.
func (h *TutorProfileHandler) uploadFormFile(c *gin.Context, folder string, allowed map[string]bool, typeMsg string) (string, bool) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Uploads unavailable"})
		return "", false
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return "", false
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowed[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"message": typeMsg})
		return "", false
	}

	url, err := h.storeFile(c, folder, fileHeader, contentType)
	if err != nil {
		h.logger.Error("file upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return "", false
	}
	return url, true
}

func (h *TutorProfileHandler) storeFile(c *gin.Context, folder string, fileHeader *multipart.FileHeader, contentType string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	name := uuid.NewString() + path.Ext(fileHeader.Filename)
	return h.uploader.Upload(c.Request.Context(), folder, name, contentType, file, fileHeader.Size)
}
