package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/repository"
)

var ErrProfileNotFound = errors.New("tutor profile not found")

// TutorProfileService mantiene reglas de negocio para perfiles de tutores.
type TutorProfileService struct {
	profiles repository.TutorProfileRepository
}

func NewTutorProfileService(profiles repository.TutorProfileRepository) *TutorProfileService {
	return &TutorProfileService{profiles: profiles}
}

type TutorProfileInput struct {
	FullName     string
	Bio          string
	Experience   string
	ProfileImage string
	Subjects     []string
	Grades       []string
	Availability []string
	PhoneNumber  string
	Location     string
}

// Save crea o actualiza el perfil del tutor (upsert por user id).
func (s *TutorProfileService) Save(ctx context.Context, userID string, input TutorProfileInput) (domain.TutorProfile, error) {
	profile := domain.TutorProfile{
		ID:           uuid.NewString(),
		UserID:       userID,
		FullName:     strings.TrimSpace(input.FullName),
		Bio:          strings.TrimSpace(input.Bio),
		Experience:   strings.TrimSpace(input.Experience),
		ProfileImage: input.ProfileImage,
		Subjects:     input.Subjects,
		Grades:       input.Grades,
		Certificates: []domain.Certificate{},
		Availability: input.Availability,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		Location:     strings.TrimSpace(input.Location),
	}
	return s.profiles.Upsert(ctx, profile)
}

func (s *TutorProfileService) GetByUserID(ctx context.Context, userID string) (domain.TutorProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TutorProfile{}, ErrProfileNotFound
		}
		return domain.TutorProfile{}, err
	}
	return profile, nil
}

func (s *TutorProfileService) List(ctx context.Context) ([]domain.TutorProfile, error) {
	return s.profiles.List(ctx)
}

// SetProfileImage guarda la URL publica de la imagen subida.
func (s *TutorProfileService) SetProfileImage(ctx context.Context, userID, url string) error {
	err := s.profiles.SetProfileImage(ctx, userID, url)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	return err
}

// AddCertificate agrega un certificado (materia + URL) al perfil.
func (s *TutorProfileService) AddCertificate(ctx context.Context, userID string, cert domain.Certificate) error {
	err := s.profiles.AddCertificate(ctx, userID, cert)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	return err
}
