package security

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrWeakPassword : пароль не прошёл политику сложности.
// Оборачивается с человекочитаемой причиной, проверяется через errors.Is.
var ErrWeakPassword = errors.New("слабый пароль")

const passwordMinLength = 12

// PasswordPolicy проверяет минимальную сложность пароля в одном месте
type PasswordPolicy struct {
	minLength int
	blocked   map[string]struct{}
}

func NewPasswordPolicy() *PasswordPolicy {
	blocked := map[string]struct{}{
		"Password123!": {},
		"Admin123!":    {},
		"1234567890!":  {},
		"Qwerty123!":   {},
		"Senha@123":    {},
	}
	return &PasswordPolicy{minLength: passwordMinLength, blocked: blocked}
}

// Validate возвращает ErrWeakPassword с причиной, если пароль не проходит политику
func (p *PasswordPolicy) Validate(password string) error {
	if len([]rune(password)) < p.minLength {
		return fmt.Errorf("%w: минимум %d символов", ErrWeakPassword, p.minLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("%w: нужна хотя бы одна заглавная буква", ErrWeakPassword)
	}
	if !hasLower {
		return fmt.Errorf("%w: нужна хотя бы одна строчная буква", ErrWeakPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: нужна хотя бы одна цифра", ErrWeakPassword)
	}
	if !hasSpecial {
		return fmt.Errorf("%w: нужен хотя бы один специальный символ", ErrWeakPassword)
	}
	if _, found := p.blocked[password]; found {
		return fmt.Errorf("%w: пароль из списка запрещённых", ErrWeakPassword)
	}

	return nil
}
