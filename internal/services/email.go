package services

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"sync"

	"mahattati/internal/config"
	"mahattati/internal/logger"

	"go.uber.org/zap"
)

var ErrMailQueueFull = errors.New("mail queue is full")

type EmailService struct {
	auth smtp.Auth
	from string
	host string
	port string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		auth: smtp.PlainAuth("", cfg.EmailUser, cfg.EmailPass, cfg.EmailHost),
		from: cfg.EmailUser,
		host: cfg.EmailHost,
		port: cfg.EmailPort,
	}
}

func (s *EmailService) Configured() bool {
	return s.host != "" && s.from != ""
}

func buildHTMLMessage(from, to, subject, html string) []byte {
	return []byte("From: Mahattati <" + from + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"utf-8\"\r\n\r\n" +
		html)
}

// Send отправляет письмо синхронно. ctx не прерывает SMTP-сессию: net/smtp его не принимает.
func (s *EmailService) Send(_ context.Context, to, subject, html string) error {
	if !s.Configured() {
		return errors.New("smtp is not configured")
	}
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, []string{to}, buildHTMLMessage(s.from, to, subject, html))
}

type EmailJob struct {
	To      string
	Subject string
	Body    string
}

// MailQueue: буферизованная очередь писем с пулом воркеров.
// Send не блокирует запрос: письмо ставится в очередь или отбрасывается с ошибкой.
type MailQueue struct {
	sender Mailer
	jobs   chan EmailJob
	wg     sync.WaitGroup
	once   sync.Once
}

func NewMailQueue(sender Mailer, size int) *MailQueue {
	if size <= 0 {
		size = 100
	}
	return &MailQueue{sender: sender, jobs: make(chan EmailJob, size)}
}

func (q *MailQueue) Send(_ context.Context, to, subject, html string) error {
	select {
	case q.jobs <- EmailJob{To: to, Subject: subject, Body: html}:
		return nil
	default:
		return ErrMailQueueFull
	}
}

// Start запускает workers горутин. Они работают, пока очередь не закрыта через Stop.
func (q *MailQueue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				if err := q.sender.Send(context.Background(), job.To, job.Subject, job.Body); err != nil {
					logger.Log.Error("Не удалось отправить письмо", zap.String("to", job.To), zap.Error(err))
				}
			}
		}()
	}
}

// Stop закрывает очередь и дожидается отправки оставшихся писем.
func (q *MailQueue) Stop() {
	q.once.Do(func() { close(q.jobs) })
	q.wg.Wait()
}
