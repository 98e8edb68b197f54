package services

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// QueueDispatcher публикует письма в очередь уведомлений RabbitMQ,
// откуда их забирает сервис отправки.
type QueueDispatcher struct {
	ch *amqp.Channel
}

// NewQueueDispatcher создает новый экземпляр QueueDispatcher.
func NewQueueDispatcher(ch *amqp.Channel) *QueueDispatcher {
	return &QueueDispatcher{ch: ch}
}

// Send публикует письмо в exchange "notifications" с ключом напоминаний.
func (d *QueueDispatcher) Send(msg models.EmailMessage) error {
	const op = "reminder.QueueDispatcher.Send"
	if err := rabbitmq.PublishMessage(d.ch, "notifications", rabbitmq.ReminderRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
