package domain

import "time"

// PurposePasswordReset es el unico proposito de OTP soportado hoy.
const PurposePasswordReset = "password-reset"

// PasswordResetOTP es el codigo efimero usado para autorizar un reset.
// Como maximo existe un codigo activo por (email, purpose).
type PasswordResetOTP struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	Purpose   string    `json:"purpose"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (o PasswordResetOTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
