package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutor-hub/internal/domain"
)

// EnrollmentFilter acota el listado paginado de un tutor.
type EnrollmentFilter struct {
	Page   int
	Limit  int
	Status string // vacio o "all" listan todo
}

// EnrollmentRepository define la persistencia de solicitudes de inscripcion.
type EnrollmentRepository interface {
	Create(ctx context.Context, app domain.EnrollmentApplication) error
	GetByID(ctx context.Context, id string) (domain.EnrollmentApplication, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.EnrollmentApplication, error)
	ListByTutor(ctx context.Context, tutorID string, filter EnrollmentFilter) ([]domain.EnrollmentApplication, int, error)
	Update(ctx context.Context, id string, status domain.EnrollmentStatus, tutorResponse string) (domain.EnrollmentApplication, error)
}

// PgEnrollmentRepository implementa EnrollmentRepository usando pgxpool.
type PgEnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgEnrollmentRepository(pool *pgxpool.Pool) *PgEnrollmentRepository {
	return &PgEnrollmentRepository{pool: pool}
}

const enrollmentColumns = `id, student_id, tutor_id, subject, grade, preferred_schedule, goals, experience, additional_notes, status, tutor_response, created_at, updated_at`

func (r *PgEnrollmentRepository) Create(ctx context.Context, app domain.EnrollmentApplication) error {
	const query = `
		INSERT INTO enrollment_applications (id, student_id, tutor_id, subject, grade, preferred_schedule, goals, experience, additional_notes, status, tutor_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.StudentID,
		app.TutorID,
		app.Subject,
		app.Grade,
		app.PreferredSchedule,
		app.Goals,
		app.Experience,
		app.AdditionalNotes,
		app.Status,
		app.TutorResponse,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

func (r *PgEnrollmentRepository) GetByID(ctx context.Context, id string) (domain.EnrollmentApplication, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollment_applications WHERE id = $1`
	return scanEnrollment(r.pool.QueryRow(ctx, query, id))
}

func (r *PgEnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.EnrollmentApplication, error) {
	const query = `
		SELECT ` + enrollmentColumns + `
		FROM enrollment_applications
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

func (r *PgEnrollmentRepository) ListByTutor(ctx context.Context, tutorID string, filter EnrollmentFilter) ([]domain.EnrollmentApplication, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	withStatus := filter.Status != "" && filter.Status != "all"

	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollment_applications
		WHERE tutor_id = $1
	`
	countQuery := `SELECT count(*) FROM enrollment_applications WHERE tutor_id = $1`
	args := []any{tutorID}
	countArgs := []any{tutorID}
	if withStatus {
		query += ` AND status = $2`
		countQuery += ` AND status = $2`
		args = append(args, filter.Status)
		countArgs = append(countArgs, filter.Status)
	}
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps, err := collectEnrollments(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *PgEnrollmentRepository) Update(ctx context.Context, id string, status domain.EnrollmentStatus, tutorResponse string) (domain.EnrollmentApplication, error) {
	const query = `
		UPDATE enrollment_applications
		SET status = $2, tutor_response = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.pool.QueryRow(ctx, query, id, status, tutorResponse))
}

func collectEnrollments(rows pgx.Rows) ([]domain.EnrollmentApplication, error) {
	apps := make([]domain.EnrollmentApplication, 0)
	for rows.Next() {
		app, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanEnrollment(row rowScanner) (domain.EnrollmentApplication, error) {
	var app domain.EnrollmentApplication
	err := row.Scan(
		&app.ID,
		&app.StudentID,
		&app.TutorID,
		&app.Subject,
		&app.Grade,
		&app.PreferredSchedule,
		&app.Goals,
		&app.Experience,
		&app.AdditionalNotes,
		&app.Status,
		&app.TutorResponse,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return domain.EnrollmentApplication{}, err
	}
	return app, nil
}
