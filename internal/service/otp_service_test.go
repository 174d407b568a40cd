package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"tutor-hub/internal/domain"
)

type mockOTPRepo struct {
	otps []domain.PasswordResetOTP
}

func (m *mockOTPRepo) Replace(_ context.Context, otp domain.PasswordResetOTP) error {
	kept := m.otps[:0]
	for _, existing := range m.otps {
		if existing.Email == otp.Email && existing.Purpose == otp.Purpose {
			continue
		}
		kept = append(kept, existing)
	}
	m.otps = append(kept, otp)
	return nil
}

func (m *mockOTPRepo) FindActive(_ context.Context, email, code, purpose string, now time.Time) (domain.PasswordResetOTP, error) {
	for _, otp := range m.otps {
		if otp.Email == email && otp.Code == code && otp.Purpose == purpose && otp.ExpiresAt.After(now) {
			return otp, nil
		}
	}
	return domain.PasswordResetOTP{}, pgx.ErrNoRows
}

func (m *mockOTPRepo) DeleteForEmail(_ context.Context, email, purpose string) error {
	kept := m.otps[:0]
	for _, otp := range m.otps {
		if otp.Email == email && otp.Purpose == purpose {
			continue
		}
		kept = append(kept, otp)
	}
	m.otps = kept
	return nil
}

func (m *mockOTPRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	kept := m.otps[:0]
	for _, otp := range m.otps {
		if !otp.ExpiresAt.After(now) {
			removed++
			continue
		}
		kept = append(kept, otp)
	}
	m.otps = kept
	return removed, nil
}

func (m *mockOTPRepo) activeFor(email, purpose string) []domain.PasswordResetOTP {
	var found []domain.PasswordResetOTP
	for _, otp := range m.otps {
		if otp.Email == email && otp.Purpose == purpose {
			found = append(found, otp)
		}
	}
	return found
}

func TestOTPServiceIssueSixDigits(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := NewOTPService(repo)

	for i := 0; i < 50; i++ {
		otp, err := svc.Issue(context.Background(), "a@x.com", domain.PurposePasswordReset)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if len(otp.Code) != 6 {
			t.Fatalf("code %q is not 6 digits", otp.Code)
		}
		for _, r := range otp.Code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", otp.Code)
			}
		}
		if otp.Code[0] == '0' {
			t.Fatalf("code %q has leading zero", otp.Code)
		}
	}
}

func TestOTPServiceSingleActiveCode(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := NewOTPService(repo)

	first, err := svc.Issue(context.Background(), "a@x.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := svc.Issue(context.Background(), "a@x.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	active := repo.activeFor("a@x.com", domain.PurposePasswordReset)
	if len(active) != 1 {
		t.Fatalf("expected 1 active code, got %d", len(active))
	}
	if active[0].ID != second.ID {
		t.Fatal("newest code must survive")
	}

	// El codigo anterior quedo invalidado aunque no haya expirado.
	if first.Code != second.Code {
		if err := svc.Verify(context.Background(), "a@x.com", first.Code, domain.PurposePasswordReset); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("superseded code still verifies: %v", err)
		}
	}
	if err := svc.Verify(context.Background(), "a@x.com", second.Code, domain.PurposePasswordReset); err != nil {
		t.Fatalf("current code rejected: %v", err)
	}
}

func TestOTPServiceVerifyDoesNotConsume(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := NewOTPService(repo)

	otp, err := svc.Issue(context.Background(), "a@x.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.Verify(context.Background(), "a@x.com", otp.Code, domain.PurposePasswordReset); err != nil {
			t.Fatalf("verify #%d: %v", i+1, err)
		}
	}
	if err := svc.Consume(context.Background(), "a@x.com", domain.PurposePasswordReset); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := svc.Verify(context.Background(), "a@x.com", otp.Code, domain.PurposePasswordReset); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("consumed code still verifies: %v", err)
	}
}

func TestOTPServiceVerifyRejectsBadCodes(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := NewOTPService(repo)

	if _, err := svc.Issue(context.Background(), "a@x.com", domain.PurposePasswordReset); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, code := range []string{"", "12345", "1234567", "12345a", "000000"} {
		if err := svc.Verify(context.Background(), "a@x.com", code, domain.PurposePasswordReset); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("code %q: expected ErrOTPInvalid, got %v", code, err)
		}
	}
}

func TestOTPServiceExpiredCode(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := NewOTPService(repo)

	now := time.Now().UTC()
	repo.otps = append(repo.otps, domain.PasswordResetOTP{
		ID:        "otp-1",
		Email:     "a@x.com",
		Code:      "123456",
		Purpose:   domain.PurposePasswordReset,
		CreatedAt: now.Add(-11 * time.Minute),
		ExpiresAt: now.Add(-time.Minute),
	})

	if err := svc.Verify(context.Background(), "a@x.com", "123456", domain.PurposePasswordReset); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expired code accepted: %v", err)
	}

	removed, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}
