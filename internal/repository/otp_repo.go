package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tutor-hub/internal/domain"
)

// OTPRepository persiste codigos de recuperacion de contraseña.
type OTPRepository interface {
	// Replace borra todo codigo previo para (email, purpose) e inserta el
	// nuevo, manteniendo un solo codigo activo por destinatario.
	Replace(ctx context.Context, otp domain.PasswordResetOTP) error
	FindActive(ctx context.Context, email, code, purpose string, now time.Time) (domain.PasswordResetOTP, error)
	DeleteForEmail(ctx context.Context, email, purpose string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PgOTPRepository implementa OTPRepository usando pgxpool.
type PgOTPRepository struct {
	pool *pgxpool.Pool
}

func NewPgOTPRepository(pool *pgxpool.Pool) *PgOTPRepository {
	return &PgOTPRepository{pool: pool}
}

func (r *PgOTPRepository) Replace(ctx context.Context, otp domain.PasswordResetOTP) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const del = `DELETE FROM password_reset_otps WHERE email = $1 AND purpose = $2`
	if _, err := tx.Exec(ctx, del, otp.Email, otp.Purpose); err != nil {
		return err
	}

	const ins = `
		INSERT INTO password_reset_otps (id, email, code, purpose, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, ins,
		otp.ID,
		otp.Email,
		otp.Code,
		otp.Purpose,
		otp.CreatedAt,
		otp.ExpiresAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgOTPRepository) FindActive(ctx context.Context, email, code, purpose string, now time.Time) (domain.PasswordResetOTP, error) {
	const query = `
		SELECT id, email, code, purpose, created_at, expires_at
		FROM password_reset_otps
		WHERE email = $1 AND code = $2 AND purpose = $3 AND expires_at > $4
	`
	var o domain.PasswordResetOTP
	err := r.pool.QueryRow(ctx, query, email, code, purpose, now).Scan(
		&o.ID,
		&o.Email,
		&o.Code,
		&o.Purpose,
		&o.CreatedAt,
		&o.ExpiresAt,
	)
	if err != nil {
		return domain.PasswordResetOTP{}, err
	}
	return o, nil
}

func (r *PgOTPRepository) DeleteForEmail(ctx context.Context, email, purpose string) error {
	const query = `DELETE FROM password_reset_otps WHERE email = $1 AND purpose = $2`
	_, err := r.pool.Exec(ctx, query, email, purpose)
	return err
}

func (r *PgOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM password_reset_otps WHERE expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
