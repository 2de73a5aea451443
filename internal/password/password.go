// password реализует проверку учётных данных поверх bcrypt:
// выпуск верификатора пароля и сравнение открытого пароля с сохранённым хэшем.
//
// Верификатор является непрозрачной строкой; формат за пределами пакета не разбирается.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength — предел длины пароля в байтах (ограничение входа bcrypt).
const MaxLength = 72

var (
	// ErrEmpty — пароль пустой.
	ErrEmpty = errors.New("password is empty")
	// ErrTooLong — пароль длиннее MaxLength байт.
	ErrTooLong = errors.New("password is too long")
)

// Hasher выпускает bcrypt-хэши с фиксированной стоимостью.
// Экземпляр неизменяем и безопасен для конкурентного использования.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher. Стоимость вне [bcrypt.MinCost, bcrypt.MaxCost]
// заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash хэширует пароль с солью.
func (h *Hasher) Hash(plain string) (string, error) {
	const op = "password.Hash"

	if plain == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmpty)
	}

	if len(plain) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// Verify сравнивает пароль с сохранённым верификатором.
// Битый или пустой верификатор даёт false, ошибка наружу не возвращается.
func Verify(plain, stored string) bool {
	if stored == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
