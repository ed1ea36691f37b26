package services

import (
	"log"
	"os"
	"strconv"

	"vehicle-tracker/internal/middleware"

	"gopkg.in/gomail.v2"
)

// EmailService отправляет почтовые уведомления.
// Отправка выключена, пока не установлена переменная окружения MAIL_ENABLED=1.
type EmailService struct {
	enabled  bool
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService() *EmailService {
	port := 587
	if val, err := strconv.Atoi(os.Getenv("MAIL_PORT")); err == nil && val > 0 {
		port = val
	}

	host := os.Getenv("MAIL_SERVER")
	if host == "" {
		host = "smtp.gmail.com"
	}

	from := os.Getenv("MAIL_DEFAULT_SENDER")
	if from == "" {
		from = "noreply@cosme-project.org"
	}

	return &EmailService{
		enabled:  os.Getenv("MAIL_ENABLED") == "1",
		host:     host,
		port:     port,
		username: os.Getenv("MAIL_USERNAME"),
		password: os.Getenv("MAIL_PASSWORD"),
		from:     from,
	}
}

// Send отправляет письмо в фоне. Ошибки отправки логируются и не влияют
// на обработку запроса: уведомления работают по принципу "отправил и забыл".
func (s *EmailService) Send(subject string, recipients []string, body string) {
	if !s.enabled || len(recipients) == 0 {
		return
	}

	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", recipients...)
		m.SetHeader("Subject", subject)
		m.SetBody("text/plain", body)

		d := gomail.NewDialer(s.host, s.port, s.username, s.password)
		if err := d.DialAndSend(m); err != nil {
			middleware.EmailFailuresTotal.Inc()
			log.Printf("Не удалось отправить письмо '%s': %v", subject, err)
		}
	}()
}
