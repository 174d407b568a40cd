package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/email"
	"tutor-hub/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrPhoneExists        = errors.New("phone number already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password too weak")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrEmailSendFailure   = errors.New("email send failed")
)

// AuthService coordina registro, login y los flujos de contraseña.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	otpSvc      *OTPService
	emailSender email.Sender
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, otpSvc *OTPService, emailSender email.Sender) *AuthService {
	return &AuthService{
		logger:      logger,
		users:       users,
		otpSvc:      otpSvc,
		emailSender: emailSender,
	}
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	Age             *int
}

// RegisterStudent crea una cuenta con rol student. El rol nunca viene del
// cliente en este flujo.
func (s *AuthService) RegisterStudent(ctx context.Context, input RegisterInput) (domain.User, error) {
	return s.register(ctx, input, domain.RoleStudent)
}

// RegisterTutor crea una cuenta con rol tutor.
func (s *AuthService) RegisterTutor(ctx context.Context, input RegisterInput) (domain.User, error) {
	input.Age = nil
	return s.register(ctx, input, domain.RoleTutor)
}

func (s *AuthService) register(ctx context.Context, input RegisterInput, role domain.Role) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	phone := strings.TrimSpace(input.PhoneNumber)

	if input.Password != input.ConfirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}
	if !ValidPasswordStrength(input.Password) {
		return domain.User{}, ErrWeakPassword
	}

	// Chequeo previo para mensajes amigables; el indice unico es el respaldo
	// real ante altas concurrentes. Email primero, luego telefono.
	if err := s.checkUniqueFields(ctx, emailAddr, phone); err != nil {
		return domain.User{}, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        emailAddr,
		PhoneNumber:  phone,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		Age:          input.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.User{}, ErrEmailExists
		case errors.Is(err, repository.ErrDuplicatePhone):
			return domain.User{}, ErrPhoneExists
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) checkUniqueFields(ctx context.Context, emailAddr, phone string) error {
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	// El telefono vacio no participa de la unicidad (cuentas de Google).
	if phone == "" {
		return nil
	}
	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return ErrPhoneExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}

// Login autentica por email y contraseña. Usuario inexistente y contraseña
// incorrecta devuelven el mismo error, sin revelar existencia.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// LoginWithGoogle resuelve la cuenta para un email ya verificado por Google:
// la devuelve si existe o crea una nueva con rol student. La cuenta creada no
// tiene contraseña ni telefono; el login por contraseña queda deshabilitado
// hasta un reset.
func (s *AuthService) LoginWithGoogle(ctx context.Context, emailAddr, firstName, lastName string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     emailAddr,
		Role:      domain.RoleStudent,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Alta concurrente por el mismo email: la cuenta ya existe, usarla.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return s.users.GetByEmail(ctx, emailAddr)
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Age         *int
}

// UpdateProfile aplica cambios parciales al perfil. Cambios de email o
// telefono repiten el chequeo de unicidad.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		newEmail := normalizeEmail(*input.Email)
		if newEmail != user.Email {
			if _, err := s.users.GetByEmail(ctx, newEmail); err == nil {
				return domain.User{}, ErrEmailExists
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return domain.User{}, err
			}
			user.Email = newEmail
		}
	}
	if input.PhoneNumber != nil {
		newPhone := strings.TrimSpace(*input.PhoneNumber)
		if newPhone != user.PhoneNumber {
			// El telefono vacio no participa de la unicidad (cuentas de Google).
			if newPhone != "" {
				if _, err := s.users.GetByPhone(ctx, newPhone); err == nil {
					return domain.User{}, ErrPhoneExists
				} else if !errors.Is(err, pgx.ErrNoRows) {
					return domain.User{}, err
				}
			}
			user.PhoneNumber = newPhone
		}
	}
	if input.Age != nil {
		user.Age = input.Age
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.User{}, ErrEmailExists
		case errors.Is(err, repository.ErrDuplicatePhone):
			return domain.User{}, ErrPhoneExists
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	user.UpdatedAt = time.Now().UTC()
	return user, nil
}

// ForgotPassword emite y envia un OTP de reset si la cuenta existe. La
// respuesta no revela existencia: un email desconocido tambien "funciona".
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if s.logger != nil {
				s.logger.Debug("forgot password for unknown email", zap.String("email", emailAddr))
			}
			return nil
		}
		return err
	}

	otp, err := s.otpSvc.Issue(ctx, emailAddr, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendPasswordResetOTP(ctx, emailAddr, otp.Code, otp.ExpiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send reset otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// VerifyResetOTP valida el codigo sin consumirlo.
func (s *AuthService) VerifyResetOTP(ctx context.Context, emailAddr, code string) error {
	emailAddr = normalizeEmail(emailAddr)
	return s.otpSvc.Verify(ctx, emailAddr, strings.TrimSpace(code), domain.PurposePasswordReset)
}

// ResetPassword valida el codigo, persiste la nueva contraseña y consume
// todos los codigos pendientes del email.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, code, password, confirm string) error {
	emailAddr = normalizeEmail(emailAddr)
	if password != confirm {
		return ErrPasswordMismatch
	}
	if !ValidPasswordStrength(password) {
		return ErrWeakPassword
	}
	if err := s.otpSvc.Verify(ctx, emailAddr, strings.TrimSpace(code), domain.PurposePasswordReset); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOTPInvalid
		}
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	return s.otpSvc.Consume(ctx, emailAddr, domain.PurposePasswordReset)
}

// ChangePassword exige la contraseña actual antes de cualquier otra
// validacion o escritura.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if !ValidPasswordStrength(newPassword) {
		return ErrWeakPassword
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
