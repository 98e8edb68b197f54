// Package services содержит движок напоминаний о продлении подписок.
//
// Движок сканирует подписки на двух горизонтах (за неделю и за два дня до
// продления), собирает по одному письму на владельца и передает их диспетчеру.
// Для ближнего горизонта после рассылки дата продления сдвигается вперед
// на период подписки.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/metrics"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// Темы писем для двух горизонтов напоминаний.
const (
	SubjectFar  = "Upcoming subscription renewals in one week!"
	SubjectNear = "REMINDER!!! Upcoming subscription renewals in two days!"
)

const bodyHeader = "Upcoming payment dates: \n"

const (
	farOffsetDays  = 7
	nearOffsetDays = 2
)

// ReminderRepository описывает выборки и мутации хранилища, нужные движку.
type ReminderRepository interface {
	// FindSubscriptionsRenewingOn возвращает подписки с датой продления,
	// точно равной указанному дню, вместе с email владельца.
	FindSubscriptionsRenewingOn(ctx context.Context, day time.Time) ([]*models.ReminderEntry, error)
	// AdvanceRenewalDate сдвигает дату продления с from на to, возвращает
	// количество изменённых строк.
	AdvanceRenewalDate(ctx context.Context, id int, from, to time.Time) (int, error)
}

// Dispatcher отправляет собранное письмо получателю.
type Dispatcher interface {
	Send(msg models.EmailMessage) error
}

// RunReport — итог одного прохода движка.
type RunReport struct {
	FarNotifications  int // Писем отправлено на дальнем горизонте
	NearNotifications int // Писем отправлено на ближнем горизонте
	Advanced          int // Подписок со сдвинутой датой продления
	Skipped           int // Подписок, пропущенных из-за уже изменённой даты
	DispatchErrors    int // Ошибок отправки писем
	AdvanceErrors     int // Ошибок сдвига даты
}

// ReminderService реализует движок напоминаний.
type ReminderService struct {
	repo       ReminderRepository
	dispatcher Dispatcher
	log        *slog.Logger
	from       string
}

// NewReminderService создает новый экземпляр ReminderService.
func NewReminderService(repo ReminderRepository, dispatcher Dispatcher, log *slog.Logger, from string) *ReminderService {
	return &ReminderService{
		repo:       repo,
		dispatcher: dispatcher,
		log:        log,
		from:       from,
	}
}

// Run выполняет один проход движка: сначала полностью обрабатывается дальний
// горизонт, затем ближний, затем сдвигаются даты продления ближнего горизонта.
// Ошибка выборки любого горизонта прерывает проход; ошибки отправки и сдвига
// изолированы на уровне отдельного письма или подписки.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (*RunReport, error) {
	const op = "reminder.Run"

	day := toCalendarDate(now)
	report := &RunReport{}

	farEntries, err := s.repo.FindSubscriptionsRenewingOn(ctx, day.AddDate(0, 0, farOffsetDays))
	if err != nil {
		metrics.ReminderErrors.WithLabelValues("scan").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	report.FarNotifications = s.dispatchHorizon(farEntries, "far", SubjectFar, report)

	nearEntries, err := s.repo.FindSubscriptionsRenewingOn(ctx, day.AddDate(0, 0, nearOffsetDays))
	if err != nil {
		metrics.ReminderErrors.WithLabelValues("scan").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	report.NearNotifications = s.dispatchHorizon(nearEntries, "near", SubjectNear, report)

	s.advanceRenewals(ctx, nearEntries, report)

	return report, nil
}

// dispatchHorizon группирует записи горизонта по email владельца, отправляет
// по одному письму на владельца и возвращает количество отправленных писем.
// Строка-отчет пишется всегда, даже если горизонт пуст.
func (s *ReminderService) dispatchHorizon(entries []*models.ReminderEntry, horizon, subject string, report *RunReport) int {
	sent := 0
	for _, group := range groupByEmail(entries) {
		msg := models.EmailMessage{
			To:      []string{group.email},
			From:    s.from,
			Subject: subject,
			Body:    buildBody(group.entries),
		}
		if err := s.dispatcher.Send(msg); err != nil {
			report.DispatchErrors++
			metrics.ReminderErrors.WithLabelValues("dispatch").Inc()
			s.log.Error("failed to dispatch reminder",
				slog.String("horizon", horizon),
				slog.String("email", group.email),
				sl.Err(err))
			continue
		}
		sent++
		metrics.RemindersSent.WithLabelValues(horizon).Inc()
	}

	s.log.Info("email report was sent",
		slog.String("horizon", horizon),
		slog.Int("subscriptions", len(entries)),
		slog.Int("messages", sent))
	return sent
}

// advanceRenewals сдвигает дату продления каждой подписки ближнего горизонта
// на её собственный период. Нулевое количество изменённых строк означает, что
// дата уже была сдвинута другим запуском, такая подписка пропускается.
func (s *ReminderService) advanceRenewals(ctx context.Context, entries []*models.ReminderEntry, report *RunReport) {
	for _, entry := range entries {
		next := entry.StartDate.AddDate(0, 0, entry.RenewalCycleDays)
		rows, err := s.repo.AdvanceRenewalDate(ctx, entry.ID, entry.StartDate, next)
		if err != nil {
			report.AdvanceErrors++
			metrics.ReminderErrors.WithLabelValues("advance").Inc()
			s.log.Error("failed to advance renewal date",
				slog.Int("id", entry.ID),
				slog.String("title", entry.Title),
				sl.Err(err))
			continue
		}
		if rows == 0 {
			report.Skipped++
			s.log.Warn("renewal date already advanced, skipping",
				slog.Int("id", entry.ID),
				slog.String("title", entry.Title))
			continue
		}
		report.Advanced++
		metrics.RenewalsAdvanced.Inc()
	}
}

type emailGroup struct {
	email   string
	entries []*models.ReminderEntry
}

// groupByEmail собирает записи по владельцам, сохраняя порядок выборки.
func groupByEmail(entries []*models.ReminderEntry) []emailGroup {
	var groups []emailGroup
	index := make(map[string]int)
	for _, entry := range entries {
		i, ok := index[entry.Email]
		if !ok {
			i = len(groups)
			index[entry.Email] = i
			groups = append(groups, emailGroup{email: entry.Email})
		}
		groups[i].entries = append(groups[i].entries, entry)
	}
	return groups
}

func buildBody(entries []*models.ReminderEntry) string {
	var b strings.Builder
	b.WriteString(bodyHeader)
	for _, entry := range entries {
		fmt.Fprintf(&b, "Your %s will be renewed on %s \n",
			entry.Title, entry.StartDate.Format("2006-01-02"))
	}
	return b.String()
}

// toCalendarDate отбрасывает время суток, чтобы совпадение дат не зависело
// от момента запуска в течение дня.
func toCalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
