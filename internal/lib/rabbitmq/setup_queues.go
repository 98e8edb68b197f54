package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации внутри exchange "notifications".
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ReminderQueue — очередь писем-напоминаний о продлении подписок.
const (
	ReminderQueue      = "notifications.reminders"
	ReminderRoutingKey = "reminders"
)

// GetNotificationQueues возвращает очереди, которые должны существовать
// до запуска движка напоминаний и сервиса отправки.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ReminderQueue, RoutingKey: ReminderRoutingKey},
	}
}
