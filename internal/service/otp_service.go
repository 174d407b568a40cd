package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/repository"
)

const otpTTL = 10 * time.Minute

var ErrOTPInvalid = errors.New("invalid or expired code")

// OTPService emite y verifica codigos de un solo uso para reset de contraseña.
type OTPService struct {
	otps repository.OTPRepository
}

func NewOTPService(otps repository.OTPRepository) *OTPService {
	return &OTPService{otps: otps}
}

// Issue genera un codigo de 6 digitos y reemplaza cualquier codigo previo
// activo para (email, purpose).
func (s *OTPService) Issue(ctx context.Context, email, purpose string) (domain.PasswordResetOTP, error) {
	code, err := generateOTPCode()
	if err != nil {
		return domain.PasswordResetOTP{}, err
	}
	now := time.Now().UTC()
	otp := domain.PasswordResetOTP{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(otpTTL),
	}
	if err := s.otps.Replace(ctx, otp); err != nil {
		return domain.PasswordResetOTP{}, err
	}
	return otp, nil
}

// Verify busca una coincidencia exacta no expirada. No consume el codigo:
// verificar y resetear son llamadas independientes, el codigo sigue valido
// hasta el reset o su expiracion.
func (s *OTPService) Verify(ctx context.Context, email, code, purpose string) error {
	if !isValidOTPCode(code) {
		return ErrOTPInvalid
	}
	_, err := s.otps.FindActive(ctx, email, code, purpose, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOTPInvalid
		}
		return err
	}
	return nil
}

// Consume borra todos los codigos de (email, purpose) tras un reset exitoso.
func (s *OTPService) Consume(ctx context.Context, email, purpose string) error {
	return s.otps.DeleteForEmail(ctx, email, purpose)
}

// generateOTPCode devuelve un entero uniforme en [100000, 999999], siempre
// seis digitos.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
