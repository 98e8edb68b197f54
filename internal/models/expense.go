package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense представляет разовую трату пользователя.
type Expense struct {
	ID         int             // Идентификатор записи
	Title      string          // Название траты
	Amount     decimal.Decimal // Сумма, два знака после запятой
	Category   string          // Категория
	IncurredOn time.Time       // Дата траты
	Notes      string          // Произвольные заметки
	File       *string         // Имя приложенного файла, nil если файла нет
	UserUID    string          // Владелец записи
	Updated    time.Time       // Обновляется при каждой мутации
}

// DummyExpense используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Expense.
type DummyExpense struct {
	Title      string `json:"title" validate:"required,max=500"`                    // Название траты
	Amount     string `json:"amount" validate:"required"`                           // Сумма, строка вида "12.50"
	Category   string `json:"category" validate:"required,max=30"`                  // Категория
	IncurredOn string `json:"incurred_on" validate:"required,datetime=2006-01-02"`  // Дата траты
	Notes      string `json:"notes,omitempty" validate:"omitempty"`                 // Заметки (опционально)
	File       string `json:"file,omitempty" validate:"omitempty,max=255"`          // Имя файла (опционально)
}
