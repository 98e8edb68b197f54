package models

import "errors"

// Ошибки доменного уровня, по которым HTTP-слой выбирает статус ответа.
var (
	// ErrNotFound — запись не существует.
	ErrNotFound = errors.New("not found")
	// ErrNotPermitted — запись принадлежит другому пользователю.
	ErrNotPermitted = errors.New("not permitted")
)
