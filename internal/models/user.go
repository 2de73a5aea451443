package models

import "time"

// User — модель пользователя в системе.
//
// PasswordHash — непрозрачный верификатор пароля (bcrypt), наружу никогда не отдаётся.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}


// ProfileUpdate — частичное обновление профиля. nil-поля не меняются;
// флагов прав здесь нет, их не меняет ни один пользовательский запрос.
type ProfileUpdate struct {
	Email        *string
	PasswordHash *string
	FullName     *string
	UpdatedAt    time.Time
}
