// Package metrics содержит счетчики Prometheus для движка напоминаний
// и сервиса отправки писем.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersSent — количество отправленных писем-напоминаний по горизонтам.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_emails_sent_total",
		Help: "Total number of reminder emails dispatched, by horizon.",
	}, []string{"horizon"})

	// RenewalsAdvanced — количество подписок, у которых дата продления сдвинута вперед.
	RenewalsAdvanced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscription_renewals_advanced_total",
		Help: "Total number of subscriptions whose renewal date was advanced.",
	})

	// ReminderErrors — количество ошибок движка напоминаний по стадиям.
	ReminderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_errors_total",
		Help: "Total number of reminder engine errors, by stage.",
	}, []string{"stage"})

	// EmailsDelivered — количество писем, успешно переданных SMTP-серверу.
	EmailsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emails_delivered_total",
		Help: "Total number of emails handed off to the SMTP server.",
	})
)
