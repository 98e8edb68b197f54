// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и служебные флаги.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	FirstName    string    // Имя
	LastName     string    // Фамилия
	PasswordHash string    // Хэш пароля пользователя
	IsActive     bool      // Активен ли аккаунт
	IsStaff      bool      // Доступ к административным функциям
	IsSuperuser  bool      // Полные права
	DateJoined   time.Time // Дата регистрации
}

var (
	// ErrEmptyEmail возвращается, если при создании пользователя не указан email.
	ErrEmptyEmail = errors.New("users must have an email address")
	// ErrEmptyFirstName возвращается, если не указано имя.
	ErrEmptyFirstName = errors.New("users must have a first name")
	// ErrEmptyLastName возвращается, если не указана фамилия.
	ErrEmptyLastName = errors.New("users must have a last name")
	// ErrSuperuserFlags возвращается, если суперпользователь создается без обязательных флагов.
	ErrSuperuserFlags = errors.New("superuser must have is_staff=true and is_superuser=true")
)

// NewUser создает обычного пользователя. Email, имя и фамилия обязательны.
// Новый пользователь активен, без служебных прав.
func NewUser(email, firstName, lastName string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmptyEmail
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, ErrEmptyFirstName
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, ErrEmptyLastName
	}
	return &User{
		Email:      normalizeEmail(email),
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
		DateJoined: time.Now().UTC(),
	}, nil
}

// NewSuperuser создает суперпользователя. Оба флага должны быть установлены явно,
// попытка создать суперпользователя с is_staff=false или is_superuser=false — ошибка.
func NewSuperuser(email, firstName, lastName string, isStaff, isSuperuser bool) (*User, error) {
	if !isStaff || !isSuperuser {
		return nil, ErrSuperuserFlags
	}
	u, err := NewUser(email, firstName, lastName)
	if err != nil {
		return nil, err
	}
	u.IsStaff = true
	u.IsSuperuser = true
	return u, nil
}

// FullName возвращает имя и фамилию через пробел.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) String() string {
	return fmt.Sprintf("%s <%s>", u.FullName(), u.Email)
}

// normalizeEmail приводит доменную часть адреса к нижнему регистру.
func normalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
