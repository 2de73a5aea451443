package service

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/pribylovaa/bearer-auth/internal/password"
)

// RegisterInput — данные регистрации.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// UpdateInput — частичное обновление профиля; nil-поля не меняются.
type UpdateInput struct {
	Email    *string
	Password *string
	FullName *string
}

const maxFullNameLength = 255

// passwordRule ограничивает пароль пределом bcrypt в байтах.
var passwordRule = validation.By(func(v interface{}) error {
	v, isNil := validation.Indirect(v)
	s, _ := v.(string)
	if !isNil && len(s) > password.MaxLength {
		return fmt.Errorf("must be no more than %d bytes long", password.MaxLength)
	}

	return nil
})

// Validate проверяет данные регистрации.
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, passwordRule),
		validation.Field(&r.FullName, validation.Length(0, maxFullNameLength)),
	)
}

// Validate проверяет данные обновления профиля.
func (u UpdateInput) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.NilOrNotEmpty, validation.Length(3, 254), is.Email),
		validation.Field(&u.Password, validation.NilOrNotEmpty, passwordRule),
		validation.Field(&u.FullName, validation.Length(0, maxFullNameLength)),
	)
}

// normalizeEmail обрезает пробелы и приводит email к нижнему регистру.
func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// invalidInput оборачивает ошибку валидации в ErrInvalidInput,
// сохраняя текст ошибок по полям.
func invalidInput(op string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidInput, verrs.Error())
	}

	return fmt.Errorf("%s: %w: %w", op, ErrInvalidInput, err)
}
