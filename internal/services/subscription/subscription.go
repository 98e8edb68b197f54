// Package services содержит бизнес-логику для управления подписками и кешированием.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// ReadSubscription возвращает подписку по ID.
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// UpdateSubscription обновляет данные подписки по ID.
	UpdateSubscription(ctx context.Context, sub models.Subscription, id int) (int, error)
	// RemoveSubscription удаляет подписку по ID и возвращает количество удалённых записей.
	RemoveSubscription(ctx context.Context, id int) (int, error)
	// ListSubscriptions возвращает список подписок пользователя с пагинацией.
	ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую подписку для пользователя, кеширует её и возвращает ID.
func (s *SubscriptionService) Create(ctx context.Context, userUID string, req models.DummySubscription) (int, error) {
	sub, err := s.buildSubscription(userUID, req)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateSubscription(ctx, *sub)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new subscription", slog.Int("id", id))

	sub.ID = id
	cacheKey := fmt.Sprintf("subscription:%d", id)
	if err := s.cache.Set(cacheKey, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// Read возвращает подписку по ID, используя кеш или репозиторий.
// Чужая подписка недоступна.
func (s *SubscriptionService) Read(ctx context.Context, userUID string, id int) (*models.Subscription, error) {
	var result *models.Subscription
	cacheKey := fmt.Sprintf("subscription:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
		found = false
	}
	if !found {
		result, err = s.repo.ReadSubscription(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	if result.UserUID != userUID {
		return nil, models.ErrNotPermitted
	}
	return result, nil
}

// Update обновляет подписку пользователя и обновляет кеш. Владелец не меняется.
func (s *SubscriptionService) Update(ctx context.Context, userUID string, req models.DummySubscription, id int) (int, error) {
	existing, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return 0, err
	}
	if existing.UserUID != userUID {
		return 0, models.ErrNotPermitted
	}

	sub, err := s.buildSubscription(userUID, req)
	if err != nil {
		return 0, err
	}

	res, err := s.repo.UpdateSubscription(ctx, *sub, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated subscription", slog.Int("id", id))

	sub.ID = id
	cacheKey := fmt.Sprintf("subscription:%d", id)
	if err := s.cache.Set(cacheKey, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет подписку пользователя по ID и инвалидирует кеш.
func (s *SubscriptionService) Remove(ctx context.Context, userUID string, id int) (int, error) {
	existing, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return 0, err
	}
	if existing.UserUID != userUID {
		return 0, models.ErrNotPermitted
	}

	cacheKey := fmt.Sprintf("subscription:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return s.repo.RemoveSubscription(ctx, id)
}

// List возвращает список подписок пользователя с пагинацией.
func (s *SubscriptionService) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, userUID, limit, offset)
}

// buildSubscription валидирует запрос и собирает доменную модель подписки.
func (s *SubscriptionService) buildSubscription(userUID string, req models.DummySubscription) (*models.Subscription, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	if !slices.Contains(models.RenewalCycles, req.RenewalCycleDays) {
		return nil, fmt.Errorf("invalid renewal cycle: %d days", req.RenewalCycleDays)
	}

	return &models.Subscription{
		Title:            req.Title,
		Price:            price.Round(2),
		StartDate:        startDate,
		RenewalCycleDays: req.RenewalCycleDays,
		UserUID:          userUID,
	}, nil
}
