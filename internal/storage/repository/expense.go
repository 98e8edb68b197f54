package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// CreateExpense вставляет новую запись траты и возвращает её ID.
func (s *Storage) CreateExpense(ctx context.Context, exp models.Expense) (int, error) {
	const op = "storage.CreateExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expenses (title, amount, category, incurred_on, notes, file, user_uid, updated)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		exp.Title, exp.Amount, exp.Category, exp.IncurredOn, exp.Notes, exp.File, exp.UserUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadExpense возвращает данные траты по её ID.
func (s *Storage) ReadExpense(ctx context.Context, id int) (*models.Expense, error) {
	const op = "storage.ReadExpense"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, amount, category, incurred_on, notes, file, user_uid, updated
			  FROM expenses WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Expense
	if err := row.Scan(&result.ID, &result.Title, &result.Amount, &result.Category,
		&result.IncurredOn, &result.Notes, &result.File, &result.UserUID, &result.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateExpense обновляет данные траты по её ID и возвращает количество изменённых строк.
// Владелец записи не меняется.
func (s *Storage) UpdateExpense(ctx context.Context, exp models.Expense, id int) (int, error) {
	const op = "storage.UpdateExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expenses
			  SET title = $1, amount = $2, category = $3, incurred_on = $4,
			      notes = $5, file = $6, updated = NOW()
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		exp.Title, exp.Amount, exp.Category, exp.IncurredOn, exp.Notes, exp.File, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveExpense удаляет трату по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveExpense(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM expenses WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListExpenses возвращает список трат пользователя с пагинацией,
// отсортированный по дате траты от новых к старым.
func (s *Storage) ListExpenses(ctx context.Context, userUID string, limit, offset int) ([]*models.Expense, error) {
	const op = "storage.ListExpenses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, amount, category, incurred_on, notes, file, user_uid, updated
			  FROM expenses
			  WHERE user_uid = $1
			  ORDER BY incurred_on DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Expense
	for rows.Next() {
		var item models.Expense
		if err := rows.Scan(&item.ID, &item.Title, &item.Amount, &item.Category,
			&item.IncurredOn, &item.Notes, &item.File, &item.UserUID, &item.Updated); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
