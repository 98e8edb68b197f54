// Package services содержит бизнес-логику для управления разовыми тратами.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// ExpenseRepository определяет методы для работы с тратами в хранилище.
type ExpenseRepository interface {
	// CreateExpense добавляет новую трату и возвращает её ID.
	CreateExpense(ctx context.Context, exp models.Expense) (int, error)
	// ReadExpense возвращает трату по ID.
	ReadExpense(ctx context.Context, id int) (*models.Expense, error)
	// UpdateExpense обновляет данные траты по ID.
	UpdateExpense(ctx context.Context, exp models.Expense, id int) (int, error)
	// RemoveExpense удаляет трату по ID и возвращает количество удалённых записей.
	RemoveExpense(ctx context.Context, id int) (int, error)
	// ListExpenses возвращает список трат пользователя с пагинацией.
	ListExpenses(ctx context.Context, userUID string, limit, offset int) ([]*models.Expense, error)
}

// ExpenseService реализует бизнес-логику работы с тратами.
type ExpenseService struct {
	repo ExpenseRepository
	log  *slog.Logger
}

// NewExpenseService создает новый экземпляр ExpenseService.
func NewExpenseService(repo ExpenseRepository, log *slog.Logger) *ExpenseService {
	return &ExpenseService{
		repo: repo,
		log:  log,
	}
}

// Create создает новую трату для пользователя и возвращает её ID.
func (s *ExpenseService) Create(ctx context.Context, userUID string, req models.DummyExpense) (int, error) {
	exp, err := buildExpense(userUID, req)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateExpense(ctx, *exp)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new expense", slog.Int("id", id))
	return id, nil
}

// Read возвращает трату по ID. Чужая трата недоступна.
func (s *ExpenseService) Read(ctx context.Context, userUID string, id int) (*models.Expense, error) {
	exp, err := s.repo.ReadExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.UserUID != userUID {
		return nil, models.ErrNotPermitted
	}
	return exp, nil
}

// Update обновляет трату пользователя. Владелец не меняется.
func (s *ExpenseService) Update(ctx context.Context, userUID string, req models.DummyExpense, id int) (int, error) {
	existing, err := s.repo.ReadExpense(ctx, id)
	if err != nil {
		return 0, err
	}
	if existing.UserUID != userUID {
		return 0, models.ErrNotPermitted
	}

	exp, err := buildExpense(userUID, req)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.UpdateExpense(ctx, *exp, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated expense", slog.Int("id", id))
	return count, nil
}

// Remove удаляет трату пользователя по ID.
func (s *ExpenseService) Remove(ctx context.Context, userUID string, id int) (int, error) {
	existing, err := s.repo.ReadExpense(ctx, id)
	if err != nil {
		return 0, err
	}
	if existing.UserUID != userUID {
		return 0, models.ErrNotPermitted
	}
	return s.repo.RemoveExpense(ctx, id)
}

// List возвращает список трат пользователя с пагинацией.
func (s *ExpenseService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Expense, error) {
	return s.repo.ListExpenses(ctx, userUID, limit, offset)
}

func buildExpense(userUID string, req models.DummyExpense) (*models.Expense, error) {
	incurredOn, err := time.Parse("2006-01-02", req.IncurredOn)
	if err != nil {
		return nil, fmt.Errorf("invalid incurred date: %w", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}

	exp := &models.Expense{
		Title:      req.Title,
		Amount:     amount.Round(2),
		Category:   req.Category,
		IncurredOn: incurredOn,
		Notes:      req.Notes,
		UserUID:    userUID,
	}
	if req.File != "" {
		file := req.File
		exp.File = &file
	}
	return exp, nil
}
