package service

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost es fijo; cambiarlo requiere redeploy.
const bcryptCost = 12

const (
	passwordMinLen = 8
	passwordMaxLen = 128
)

// HashPassword genera un hash bcrypt con salt para la contraseña dada.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compara en tiempo constante la contraseña contra el hash.
// Nunca distingue "hash ausente" de "no coincide".
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidPasswordStrength exige minimo una minuscula, una mayuscula, un digito
// y un caracter especial, con largo entre 8 y 128.
func ValidPasswordStrength(password string) bool {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	return lower && upper && digit && special
}
