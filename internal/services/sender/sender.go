// Package services реализует отправку писем-напоминаний, полученных из очереди.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/expense-tracker/internal/metrics"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// Transport описывает SMTP-транспорт, через который уходят письма.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// SenderService потребляет сообщения очереди напоминаний и отправляет их по SMTP.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendEmailMessage разбирает сообщение очереди и отправляет письмо.
// Используется как обработчик rabbitmq.ConsumerMessage: ошибка возвращает
// сообщение в очередь.
func (s *SenderService) SendEmailMessage(body []byte) error {
	var message models.EmailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if len(message.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	return s.sendEmail(message)
}

func (s *SenderService) sendEmail(message models.EmailMessage) error {
	msg := strings.Join([]string{
		"From: " + message.From,
		"To: " + strings.Join(message.To, ";"),
		"Subject: " + message.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		message.Body,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range message.To {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	metrics.EmailsDelivered.Inc()
	s.log.Info("email sent successfully", "to", message.To, "subject", message.Subject)
	return nil
}
