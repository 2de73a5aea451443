// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход принимает ошибку сервисного слоя, на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный код и безопасное сообщение без утечки деталей.
//
// Ошибки токена различаются кодом, но все дают 403.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/bearer-auth/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// mapping — строка таблицы сопоставления; порядок важен:
// конкретные причины отказа токена проверяются раньше общего ErrForbidden.
type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var table = []mapping{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input", "invalid input"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials", "incorrect email or password"},
	{service.ErrInactiveAccount, http.StatusBadRequest, "inactive_user", "inactive user"},
	{service.ErrInsufficientPrivilege, http.StatusBadRequest, "insufficient_privileges", "the user doesn't have enough privileges"},

	{service.ErrMissingToken, http.StatusForbidden, "not_authenticated", "not authenticated"},
	{service.ErrTokenExpired, http.StatusForbidden, "token_expired", "could not validate credentials"},
	{service.ErrWrongTokenType, http.StatusForbidden, "wrong_token_type", "could not validate credentials"},
	{service.ErrInvalidSignature, http.StatusForbidden, "invalid_signature", "could not validate credentials"},
	{service.ErrMalformed, http.StatusForbidden, "malformed_token", "could not validate credentials"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "could not validate credentials"},

	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
	{service.ErrDuplicateRegistration, http.StatusConflict, "already_exists", "the user with this email already exists"},

	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - err не найдена в таблице - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if errors.Is(err, m.target) {
				return m.status, ErrorResponse{
					Error: APIError{Code: m.code, Message: m.message},
				}
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров и мидлваров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
