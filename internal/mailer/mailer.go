// Package mailer delivers transactional email through a Redis-backed queue.
//
// Enqueue pushes a message onto a Redis list and returns immediately; a
// background worker pops messages and hands them to SMTP. When Redis is
// unavailable the message is sent inline so signup confirmation still
// goes out.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const queueKey = "pressroom:mail:queue"

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender accepts messages for delivery.
type Sender interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Mailer queues messages in Redis and delivers them over SMTP.
type Mailer struct {
	rdb      *redis.Client
	host     string
	port     string
	username string
	password string
	from     string
}

// New builds a Mailer from configuration. rdb may be nil, in which case
// every Enqueue sends inline.
func New(cfg *config.Config, rdb *redis.Client) *Mailer {
	return &Mailer{
		rdb:      rdb,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.MailFrom,
	}
}

// Enqueue queues msg for background delivery.
func (m *Mailer) Enqueue(ctx context.Context, msg Message) error {
	if m.rdb == nil {
		return m.send(msg)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode mail message: %w", err)
	}
	if err := m.rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		middleware.Logger.Warn("Mail queue unavailable, sending inline", slog.String("error", err.Error()))
		return m.send(msg)
	}
	return nil
}

// StartWorker consumes the queue until ctx is cancelled. It is a no-op
// without a Redis client.
func (m *Mailer) StartWorker(ctx context.Context) {
	if m.rdb == nil {
		return
	}
	go m.workerLoop(ctx)
}

func (m *Mailer) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result, err := m.rdb.BRPop(ctx, 5*time.Second, queueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			middleware.Logger.Warn("Mail queue read failed", slog.String("error", err.Error()))
			time.Sleep(time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			middleware.Logger.Error("Dropping malformed mail message", slog.String("error", err.Error()))
			continue
		}

		if err := m.send(msg); err != nil {
			middleware.Logger.Error("Mail delivery failed",
				slog.String("to", msg.To),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (m *Mailer) send(msg Message) error {
	addr := m.host + ":" + m.port
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		m.from, msg.To, msg.Subject, msg.Body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{msg.To}, []byte(body)); err != nil {
		middleware.MailDeliveries.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send mail: %w", err)
	}
	middleware.MailDeliveries.WithLabelValues("success").Inc()
	return nil
}

// ConfirmationMessage builds the registration confirmation email.
func ConfirmationMessage(to string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Pressroom",
		Body:    "Your account has been created successfully. You can now sign in and start publishing articles.",
	}
}
