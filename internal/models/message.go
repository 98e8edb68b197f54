package models

// EmailMessage — сообщение для отправки письма, публикуемое движком
// напоминаний в очередь и потребляемое сервисом отправки.
type EmailMessage struct {
	To      []string `json:"to"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}
