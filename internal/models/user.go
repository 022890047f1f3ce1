// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи и хэш пароля.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int    // Уникальный идентификатор пользователя
	Username     string // Имя пользователя
	Email        string // Электронная почта (уникальная)
	PasswordHash string // Хэш пароля пользователя
}
