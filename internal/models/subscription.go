// Package models содержит доменные структуры, описывающие подписку,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RenewalCycles — допустимые значения периода продления подписки в днях.
var RenewalCycles = []int{30, 60, 90, 120, 150, 180}

// Subscription представляет собой основную модель подписки,
// используемую в бизнес-логике и хранилище.
// StartDate — дата СЛЕДУЮЩЕГО продления (календарная дата без времени):
// после каждого продления поле сдвигается вперед на RenewalCycleDays дней.
type Subscription struct {
	ID               int             // Идентификатор записи
	Title            string          // Название сервиса подписки
	Price            decimal.Decimal // Цена за период, два знака после запятой
	StartDate        time.Time       // Дата следующего продления
	RenewalCycleDays int             // Период продления в днях, одно из RenewalCycles
	UserUID          string          // Владелец подписки, неизменяем после создания
	Updated          time.Time       // Обновляется при каждой мутации
}

// DummySubscription используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Subscription.
// Дата приходит строкой, чтобы её можно было валидировать и парсить вручную.
type DummySubscription struct {
	Title            string `json:"title" validate:"required,max=100"`                                  // Название сервиса
	Price            string `json:"price" validate:"required"`                                          // Цена, строка вида "9.99"
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`                 // Дата следующего продления
	RenewalCycleDays int    `json:"renewal_cycle_days" validate:"required,oneof=30 60 90 120 150 180"` // Период продления
}

// ReminderEntry — строка выборки для напоминаний: подписка вместе
// с email владельца. Используется только движком напоминаний.
type ReminderEntry struct {
	ID               int
	Title            string
	StartDate        time.Time
	RenewalCycleDays int
	Email            string
}
