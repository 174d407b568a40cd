package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutor-hub/internal/domain"
)

// TutorProfileRepository define la persistencia de perfiles de tutores.
type TutorProfileRepository interface {
	Upsert(ctx context.Context, profile domain.TutorProfile) (domain.TutorProfile, error)
	GetByUserID(ctx context.Context, userID string) (domain.TutorProfile, error)
	List(ctx context.Context) ([]domain.TutorProfile, error)
	AddCertificate(ctx context.Context, userID string, cert domain.Certificate) error
	SetProfileImage(ctx context.Context, userID, url string) error
}

// PgTutorProfileRepository implementa TutorProfileRepository usando pgxpool.
// Certificados se guardan como JSONB; listas simples como arrays de texto.
type PgTutorProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgTutorProfileRepository(pool *pgxpool.Pool) *PgTutorProfileRepository {
	return &PgTutorProfileRepository{pool: pool}
}

const tutorProfileColumns = `id, user_id, full_name, bio, experience, profile_image, subjects, grades, certificates, availability, phone_number, location, is_verified, created_at, updated_at`

func (r *PgTutorProfileRepository) Upsert(ctx context.Context, profile domain.TutorProfile) (domain.TutorProfile, error) {
	certs, err := json.Marshal(profile.Certificates)
	if err != nil {
		return domain.TutorProfile{}, err
	}
	const query = `
		INSERT INTO tutor_profiles (id, user_id, full_name, bio, experience, profile_image, subjects, grades, certificates, availability, phone_number, location, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			bio = EXCLUDED.bio,
			experience = EXCLUDED.experience,
			profile_image = COALESCE(NULLIF(EXCLUDED.profile_image, ''), tutor_profiles.profile_image),
			subjects = EXCLUDED.subjects,
			grades = EXCLUDED.grades,
			certificates = EXCLUDED.certificates,
			availability = EXCLUDED.availability,
			phone_number = EXCLUDED.phone_number,
			location = EXCLUDED.location,
			updated_at = now()
		RETURNING ` + tutorProfileColumns

	row := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.UserID,
		profile.FullName,
		profile.Bio,
		profile.Experience,
		profile.ProfileImage,
		profile.Subjects,
		profile.Grades,
		certs,
		profile.Availability,
		profile.PhoneNumber,
		profile.Location,
		profile.IsVerified,
	)
	return scanTutorProfile(row)
}

func (r *PgTutorProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.TutorProfile, error) {
	const query = `SELECT ` + tutorProfileColumns + ` FROM tutor_profiles WHERE user_id = $1`
	return scanTutorProfile(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgTutorProfileRepository) List(ctx context.Context) ([]domain.TutorProfile, error) {
	const query = `SELECT ` + tutorProfileColumns + ` FROM tutor_profiles ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.TutorProfile, 0)
	for rows.Next() {
		p, err := scanTutorProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *PgTutorProfileRepository) AddCertificate(ctx context.Context, userID string, cert domain.Certificate) error {
	payload, err := json.Marshal(cert)
	if err != nil {
		return err
	}
	const query = `
		UPDATE tutor_profiles
		SET certificates = certificates || $2::jsonb, updated_at = now()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgTutorProfileRepository) SetProfileImage(ctx context.Context, userID, url string) error {
	const query = `
		UPDATE tutor_profiles
		SET profile_image = $2, updated_at = now()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTutorProfile(row rowScanner) (domain.TutorProfile, error) {
	var (
		p     domain.TutorProfile
		certs []byte
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.Bio,
		&p.Experience,
		&p.ProfileImage,
		&p.Subjects,
		&p.Grades,
		&certs,
		&p.Availability,
		&p.PhoneNumber,
		&p.Location,
		&p.IsVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.TutorProfile{}, err
	}
	if len(certs) > 0 {
		if err := json.Unmarshal(certs, &p.Certificates); err != nil {
			return domain.TutorProfile{}, err
		}
	}
	if p.Certificates == nil {
		p.Certificates = []domain.Certificate{}
	}
	return p, nil
}
