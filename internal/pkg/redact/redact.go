// redact маскирует чувствительные данные перед записью в логи.
package redact

import (
	"strconv"
	"strings"
)

// Email маскирует e-mail для логирования.
//
// Правила:
//   - строка должна содержать ровно один '@', иначе возвращается "***";
//   - локальная часть заменяется на первые два символа (по рунам) + "***",
//     при длине ≤ 2 целиком на "***";
//   - домен возвращается без изменений.
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Bearer возвращает безопасное представление bearer-токена:
// только длину, без содержимого.
func Bearer(token string) string {
	if token == "" {
		return "<empty>"
	}

	return "[REDACTED_TOKEN len=" + strconv.Itoa(len(token)) + "]"
}
