package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) FindSubscriptionsRenewingOn(ctx context.Context, day time.Time) ([]*models.ReminderEntry, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReminderEntry), args.Error(1)
}

func (m *MockReminderRepository) AdvanceRenewalDate(ctx context.Context, id int, from, to time.Time) (int, error) {
	args := m.Called(ctx, id, from, to)
	return args.Int(0), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(msg models.EmailMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const testFrom = "noreply@email.com"

func TestReminderService_Run_FarHorizonAggregatesPerOwner(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	// Запуск посреди дня: выборка должна идти по календарным датам
	now := time.Date(2026, 8, 31, 15, 42, 11, 0, time.UTC)
	farDay := day(2026, 9, 7)
	nearDay := day(2026, 9, 2)

	farEntries := []*models.ReminderEntry{
		{ID: 1, Title: "Netflix", StartDate: farDay, RenewalCycleDays: 30, Email: "alice@example.com"},
		{ID: 2, Title: "Spotify", StartDate: farDay, RenewalCycleDays: 60, Email: "alice@example.com"},
		{ID: 3, Title: "Hulu", StartDate: farDay, RenewalCycleDays: 30, Email: "bob@example.com"},
	}

	repo.On("FindSubscriptionsRenewingOn", mock.Anything, farDay).Return(farEntries, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, nearDay).Return([]*models.ReminderEntry{}, nil).Once()

	dispatcher.On("Send", models.EmailMessage{
		To:      []string{"alice@example.com"},
		From:    testFrom,
		Subject: SubjectFar,
		Body: "Upcoming payment dates: \n" +
			"Your Netflix will be renewed on 2026-09-07 \n" +
			"Your Spotify will be renewed on 2026-09-07 \n",
	}).Return(nil).Once()
	dispatcher.On("Send", models.EmailMessage{
		To:      []string{"bob@example.com"},
		From:    testFrom,
		Subject: SubjectFar,
		Body: "Upcoming payment dates: \n" +
			"Your Hulu will be renewed on 2026-09-07 \n",
	}).Return(nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FarNotifications)
	assert.Equal(t, 0, report.NearNotifications)
	assert.Equal(t, 0, report.Advanced)
	assert.Equal(t, 0, report.DispatchErrors)

	repo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
	// Дальний горизонт не сдвигает даты
	repo.AssertNotCalled(t, "AdvanceRenewalDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderService_Run_NearHorizonAdvancesByOwnCycle(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	now := day(2026, 8, 31)
	farDay := day(2026, 9, 7)
	nearDay := day(2026, 9, 2)

	nearEntries := []*models.ReminderEntry{
		{ID: 10, Title: "Spotify", StartDate: nearDay, RenewalCycleDays: 30, Email: "carol@example.com"},
		{ID: 11, Title: "Hulu", StartDate: nearDay, RenewalCycleDays: 60, Email: "carol@example.com"},
	}

	repo.On("FindSubscriptionsRenewingOn", mock.Anything, farDay).Return([]*models.ReminderEntry{}, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, nearDay).Return(nearEntries, nil).Once()

	dispatcher.On("Send", models.EmailMessage{
		To:      []string{"carol@example.com"},
		From:    testFrom,
		Subject: SubjectNear,
		Body: "Upcoming payment dates: \n" +
			"Your Spotify will be renewed on 2026-09-02 \n" +
			"Your Hulu will be renewed on 2026-09-02 \n",
	}).Return(nil).Once()

	// Каждая подписка сдвигается на свой собственный период
	repo.On("AdvanceRenewalDate", mock.Anything, 10, nearDay, nearDay.AddDate(0, 0, 30)).Return(1, nil).Once()
	repo.On("AdvanceRenewalDate", mock.Anything, 11, nearDay, nearDay.AddDate(0, 0, 60)).Return(1, nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, report.FarNotifications)
	assert.Equal(t, 1, report.NearNotifications)
	assert.Equal(t, 2, report.Advanced)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.AdvanceErrors)

	repo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestReminderService_Run_EmptyHorizons(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	now := day(2026, 8, 31)
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 7)).Return([]*models.ReminderEntry{}, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 2)).Return([]*models.ReminderEntry{}, nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, &RunReport{}, report)

	repo.AssertExpectations(t)
	dispatcher.AssertNotCalled(t, "Send", mock.Anything)
}

func TestReminderService_Run_EmptyHorizonsStillReported(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{}))
	service := NewReminderService(repo, dispatcher, logger, testFrom)

	now := day(2026, 8, 31)
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 7)).Return([]*models.ReminderEntry{}, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 2)).Return([]*models.ReminderEntry{}, nil).Once()

	_, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	// Строка-отчет пишется для каждого горизонта, даже когда он пуст.
	logged := buf.String()
	assert.Equal(t, 2, strings.Count(logged, "email report was sent"))
	assert.Contains(t, logged, "horizon=far")
	assert.Contains(t, logged, "horizon=near")
	assert.Equal(t, 2, strings.Count(logged, "subscriptions=0"))
	assert.Equal(t, 2, strings.Count(logged, "messages=0"))
}

func TestReminderService_Run_DispatchFailureIsolation(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	now := day(2026, 8, 31)
	farDay := day(2026, 9, 7)
	nearDay := day(2026, 9, 2)

	farEntries := []*models.ReminderEntry{
		{ID: 1, Title: "Netflix", StartDate: farDay, RenewalCycleDays: 30, Email: "alice@example.com"},
		{ID: 2, Title: "Hulu", StartDate: farDay, RenewalCycleDays: 30, Email: "bob@example.com"},
	}
	nearEntries := []*models.ReminderEntry{
		{ID: 3, Title: "Spotify", StartDate: nearDay, RenewalCycleDays: 30, Email: "carol@example.com"},
	}

	repo.On("FindSubscriptionsRenewingOn", mock.Anything, farDay).Return(farEntries, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, nearDay).Return(nearEntries, nil).Once()

	// Первое письмо не уходит, остальные владельцы и горизонты не страдают
	dispatcher.On("Send", mock.MatchedBy(func(msg models.EmailMessage) bool {
		return msg.To[0] == "alice@example.com"
	})).Return(errors.New("broker unavailable")).Once()
	dispatcher.On("Send", mock.MatchedBy(func(msg models.EmailMessage) bool {
		return msg.To[0] == "bob@example.com"
	})).Return(nil).Once()
	dispatcher.On("Send", mock.MatchedBy(func(msg models.EmailMessage) bool {
		return msg.To[0] == "carol@example.com"
	})).Return(nil).Once()

	repo.On("AdvanceRenewalDate", mock.Anything, 3, nearDay, nearDay.AddDate(0, 0, 30)).Return(1, nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FarNotifications)
	assert.Equal(t, 1, report.NearNotifications)
	assert.Equal(t, 1, report.DispatchErrors)
	assert.Equal(t, 1, report.Advanced)

	repo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestReminderService_Run_AdvanceFailureIsolation(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	now := day(2026, 8, 31)
	nearDay := day(2026, 9, 2)

	nearEntries := []*models.ReminderEntry{
		{ID: 20, Title: "Netflix", StartDate: nearDay, RenewalCycleDays: 30, Email: "dave@example.com"},
		{ID: 21, Title: "Spotify", StartDate: nearDay, RenewalCycleDays: 90, Email: "erin@example.com"},
	}

	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 7)).Return([]*models.ReminderEntry{}, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, nearDay).Return(nearEntries, nil).Once()

	dispatcher.On("Send", mock.Anything).Return(nil).Twice()

	repo.On("AdvanceRenewalDate", mock.Anything, 20, nearDay, nearDay.AddDate(0, 0, 30)).
		Return(0, errors.New("connection reset")).Once()
	repo.On("AdvanceRenewalDate", mock.Anything, 21, nearDay, nearDay.AddDate(0, 0, 90)).Return(1, nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.AdvanceErrors)
	assert.Equal(t, 1, report.Advanced)
	assert.Equal(t, 0, report.Skipped)

	repo.AssertExpectations(t)
}

func TestReminderService_Run_AlreadyAdvancedCountsAsSkipped(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	now := day(2026, 8, 31)
	nearDay := day(2026, 9, 2)

	nearEntries := []*models.ReminderEntry{
		{ID: 30, Title: "Netflix", StartDate: nearDay, RenewalCycleDays: 30, Email: "frank@example.com"},
	}

	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 7)).Return([]*models.ReminderEntry{}, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, nearDay).Return(nearEntries, nil).Once()

	dispatcher.On("Send", mock.Anything).Return(nil).Once()

	// Дата уже сдвинута параллельным запуском: изменённых строк нет
	repo.On("AdvanceRenewalDate", mock.Anything, 30, nearDay, nearDay.AddDate(0, 0, 30)).Return(0, nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Advanced)
	assert.Equal(t, 0, report.AdvanceErrors)

	repo.AssertExpectations(t)
}

func TestReminderService_Run_FarQueryErrorAbortsRun(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	now := day(2026, 8, 31)
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 7)).
		Return(nil, errors.New("database unavailable")).Once()

	report, err := service.Run(context.Background(), now)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "reminder.Run")

	repo.AssertExpectations(t)
	dispatcher.AssertNotCalled(t, "Send", mock.Anything)
	repo.AssertNotCalled(t, "AdvanceRenewalDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderService_Run_SubscriptionOutsideHorizonsUntouched(t *testing.T) {
	repo := new(MockReminderRepository)
	dispatcher := new(MockDispatcher)
	service := NewReminderService(repo, dispatcher, newNoopLogger(), testFrom)

	// Подписка с продлением через три дня не попадает ни в одну выборку:
	// движок запрашивает только day+7 и day+2.
	now := day(2026, 8, 31)
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 7)).Return([]*models.ReminderEntry{}, nil).Once()
	repo.On("FindSubscriptionsRenewingOn", mock.Anything, day(2026, 9, 2)).Return([]*models.ReminderEntry{}, nil).Once()

	report, err := service.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, &RunReport{}, report)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "FindSubscriptionsRenewingOn", 2)
	repo.AssertNotCalled(t, "AdvanceRenewalDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
