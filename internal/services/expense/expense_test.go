package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

type ExpenseRepoMock struct {
	mock.Mock
}

func (m *ExpenseRepoMock) CreateExpense(ctx context.Context, exp models.Expense) (int, error) {
	args := m.Called(ctx, exp)
	return args.Int(0), args.Error(1)
}

func (m *ExpenseRepoMock) ReadExpense(ctx context.Context, id int) (*models.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *ExpenseRepoMock) UpdateExpense(ctx context.Context, exp models.Expense, id int) (int, error) {
	args := m.Called(ctx, exp, id)
	return args.Int(0), args.Error(1)
}

func (m *ExpenseRepoMock) RemoveExpense(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *ExpenseRepoMock) ListExpenses(ctx context.Context, userUID string, limit, offset int) ([]*models.Expense, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const ownerUID = "owner-uuid"

func validRequest() models.DummyExpense {
	return models.DummyExpense{
		Title:      "Groceries",
		Amount:     "42.50",
		Category:   "food",
		IncurredOn: "2026-08-30",
		Notes:      "weekly shopping",
	}
}

func TestExpenseService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyExpense
		setupMocks func(r *ExpenseRepoMock)
		wantID     int
		wantErr    bool
		errMsg     string
	}{
		{
			name: "successful creation",
			req:  validRequest(),
			setupMocks: func(r *ExpenseRepoMock) {
				r.On("CreateExpense", mock.Anything, mock.MatchedBy(func(exp models.Expense) bool {
					return exp.Title == "Groceries" &&
						exp.Amount.Equal(decimal.RequireFromString("42.50")) &&
						exp.Category == "food" &&
						exp.UserUID == ownerUID &&
						exp.File == nil
				})).Return(5, nil).Once()
			},
			wantID: 5,
		},
		{
			name: "file name stored when present",
			req: models.DummyExpense{
				Title: "Laptop", Amount: "999.00", Category: "tech",
				IncurredOn: "2026-08-30", File: "receipt.pdf",
			},
			setupMocks: func(r *ExpenseRepoMock) {
				r.On("CreateExpense", mock.Anything, mock.MatchedBy(func(exp models.Expense) bool {
					return exp.File != nil && *exp.File == "receipt.pdf"
				})).Return(6, nil).Once()
			},
			wantID: 6,
		},
		{
			name: "invalid date",
			req: models.DummyExpense{
				Title: "Groceries", Amount: "42.50", Category: "food", IncurredOn: "30-08-2026",
			},
			setupMocks: func(_ *ExpenseRepoMock) {},
			wantErr:    true,
			errMsg:     "invalid incurred date",
		},
		{
			name: "invalid amount",
			req: models.DummyExpense{
				Title: "Groceries", Amount: "abc", Category: "food", IncurredOn: "2026-08-30",
			},
			setupMocks: func(_ *ExpenseRepoMock) {},
			wantErr:    true,
			errMsg:     "invalid amount",
		},
		{
			name: "repository error",
			req:  validRequest(),
			setupMocks: func(r *ExpenseRepoMock) {
				r.On("CreateExpense", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()
			},
			wantErr: true,
			errMsg:  "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(ExpenseRepoMock)
			svc := NewExpenseService(repo, newNoopLogger())

			tt.setupMocks(repo)

			id, err := svc.Create(context.Background(), ownerUID, tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestExpenseService_OwnershipEnforced(t *testing.T) {
	existing := &models.Expense{
		ID:      9,
		Title:   "Groceries",
		UserUID: ownerUID,
	}

	t.Run("read foreign expense", func(t *testing.T) {
		repo := new(ExpenseRepoMock)
		svc := NewExpenseService(repo, newNoopLogger())

		repo.On("ReadExpense", mock.Anything, 9).Return(existing, nil).Once()

		_, err := svc.Read(context.Background(), "intruder-uuid", 9)
		require.ErrorIs(t, err, models.ErrNotPermitted)
	})

	t.Run("update foreign expense", func(t *testing.T) {
		repo := new(ExpenseRepoMock)
		svc := NewExpenseService(repo, newNoopLogger())

		repo.On("ReadExpense", mock.Anything, 9).Return(existing, nil).Once()

		_, err := svc.Update(context.Background(), "intruder-uuid", validRequest(), 9)
		require.ErrorIs(t, err, models.ErrNotPermitted)
		repo.AssertNotCalled(t, "UpdateExpense", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("remove foreign expense", func(t *testing.T) {
		repo := new(ExpenseRepoMock)
		svc := NewExpenseService(repo, newNoopLogger())

		repo.On("ReadExpense", mock.Anything, 9).Return(existing, nil).Once()

		_, err := svc.Remove(context.Background(), "intruder-uuid", 9)
		require.ErrorIs(t, err, models.ErrNotPermitted)
		repo.AssertNotCalled(t, "RemoveExpense", mock.Anything, mock.Anything)
	})

	t.Run("owner passes through", func(t *testing.T) {
		repo := new(ExpenseRepoMock)
		svc := NewExpenseService(repo, newNoopLogger())

		repo.On("ReadExpense", mock.Anything, 9).Return(existing, nil).Once()
		repo.On("RemoveExpense", mock.Anything, 9).Return(1, nil).Once()

		count, err := svc.Remove(context.Background(), ownerUID, 9)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		repo.AssertExpectations(t)
	})
}

func TestExpenseService_List(t *testing.T) {
	repo := new(ExpenseRepoMock)
	svc := NewExpenseService(repo, newNoopLogger())

	expenses := []*models.Expense{
		{ID: 1, Title: "Groceries", UserUID: ownerUID},
	}
	repo.On("ListExpenses", mock.Anything, ownerUID, 20, 0).Return(expenses, nil).Once()

	got, err := svc.List(context.Background(), ownerUID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	repo.AssertExpectations(t)
}
