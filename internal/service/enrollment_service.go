package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/repository"
)

var (
	ErrEnrollmentNotFound  = errors.New("enrollment application not found")
	ErrEnrollmentForbidden = errors.New("enrollment application not owned by tutor")
	ErrEnrollmentDecided   = errors.New("enrollment application already decided")
	ErrInvalidStatus       = errors.New("invalid enrollment status")
)

// EnrollmentService mantiene reglas de negocio de solicitudes de inscripcion.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
}

func NewEnrollmentService(enrollments repository.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments}
}

type CreateEnrollmentInput struct {
	TutorID           string
	Subject           string
	Grade             string
	PreferredSchedule string
	Goals             string
	Experience        string
	AdditionalNotes   string
}

func (s *EnrollmentService) Create(ctx context.Context, studentID string, input CreateEnrollmentInput) (domain.EnrollmentApplication, error) {
	now := time.Now().UTC()
	app := domain.EnrollmentApplication{
		ID:                uuid.NewString(),
		StudentID:         studentID,
		TutorID:           input.TutorID,
		Subject:           input.Subject,
		Grade:             input.Grade,
		PreferredSchedule: input.PreferredSchedule,
		Goals:             input.Goals,
		Experience:        input.Experience,
		AdditionalNotes:   input.AdditionalNotes,
		Status:            domain.EnrollmentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.enrollments.Create(ctx, app); err != nil {
		return domain.EnrollmentApplication{}, err
	}
	return app, nil
}

func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]domain.EnrollmentApplication, error) {
	return s.enrollments.ListByStudent(ctx, studentID)
}

func (s *EnrollmentService) ListByTutor(ctx context.Context, tutorID string, filter repository.EnrollmentFilter) (domain.EnrollmentPage, error) {
	apps, total, err := s.enrollments.ListByTutor(ctx, tutorID, filter)
	if err != nil {
		return domain.EnrollmentPage{}, err
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	return domain.EnrollmentPage{
		Applications: apps,
		Page:         page,
		Limit:        limit,
		Total:        total,
		TotalPages:   totalPages,
	}, nil
}

// Decide aplica la unica transicion permitida: pending -> accepted|rejected.
// Solo el tutor destinatario puede decidir.
func (s *EnrollmentService) Decide(ctx context.Context, tutorID, id string, status domain.EnrollmentStatus, tutorResponse string) (domain.EnrollmentApplication, error) {
	if status != domain.EnrollmentAccepted && status != domain.EnrollmentRejected {
		return domain.EnrollmentApplication{}, ErrInvalidStatus
	}
	app, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EnrollmentApplication{}, ErrEnrollmentNotFound
		}
		return domain.EnrollmentApplication{}, err
	}
	if app.TutorID != tutorID {
		return domain.EnrollmentApplication{}, ErrEnrollmentForbidden
	}
	if app.Status != domain.EnrollmentPending {
		return domain.EnrollmentApplication{}, ErrEnrollmentDecided
	}
	return s.enrollments.Update(ctx, id, status, tutorResponse)
}
