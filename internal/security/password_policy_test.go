package security_test

import (
	"testing"

	"brokerage-backoffice/internal/security"

	"github.com/stretchr/testify/assert"
)

// 1. Хороший пароль проходит политику
func TestPasswordPolicy_ValidPassword(t *testing.T) {
	policy := security.NewPasswordPolicy()

	assert.NoError(t, policy.Validate("Corretora#2026-ok"))
}

// 2. Короткий пароль отклоняется
func TestPasswordPolicy_TooShort(t *testing.T) {
	policy := security.NewPasswordPolicy()

	err := policy.Validate("Ab1!")
	assert.ErrorIs(t, err, security.ErrWeakPassword)
}

// 3. Каждый недостающий класс символов отклоняется
func TestPasswordPolicy_MissingCharacterClass(t *testing.T) {
	policy := security.NewPasswordPolicy()

	passwords := []string{
		"nouppercase1!aaaa", // нет заглавной
		"NOLOWERCASE1!AAAA", // нет строчной
		"NoDigitsHere!!aa",  // нет цифры
		"NoSpecials123aaa",  // нет спецсимвола
	}

	for _, password := range passwords {
		err := policy.Validate(password)
		assert.ErrorIs(t, err, security.ErrWeakPassword, "пароль %q должен быть отклонён", password)
	}
}

// 4. Пароль из списка запрещённых отклоняется, даже если формально сложный
func TestPasswordPolicy_BlockedPassword(t *testing.T) {
	policy := security.NewPasswordPolicy()

	err := policy.Validate("Password123!")
	assert.ErrorIs(t, err, security.ErrWeakPassword)
}
