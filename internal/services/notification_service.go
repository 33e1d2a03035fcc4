package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const emailOutboxKey = "assochub:outbox:email"

// NotificationService is the email outbox. Messages are pushed onto a Redis
// list and delivered later by the dispatch job. Delivery is best-effort: a
// message that fails to send is logged and dropped.
type NotificationService interface {
	Enqueue(ctx context.Context, msg *EmailMessage) error
	// EnqueueBestEffort logs enqueue failures instead of returning them.
	EnqueueBestEffort(ctx context.Context, msg *EmailMessage) bool
	// Dispatch sends up to max queued messages and returns how many were sent.
	Dispatch(ctx context.Context, max int) (int, error)
}

type notificationService struct {
	rdb    redis.Cmdable
	mailer Mailer
	log    *logrus.Logger
}

func NewNotificationService(rdb redis.Cmdable, mailer Mailer, log *logrus.Logger) NotificationService {
	return &notificationService{rdb: rdb, mailer: mailer, log: log}
}

func (s *notificationService) Enqueue(ctx context.Context, msg *EmailMessage) error {
	if msg.To == "" {
		return errors.New("email recipient is required")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}
	return s.rdb.LPush(ctx, emailOutboxKey, payload).Err()
}

func (s *notificationService) EnqueueBestEffort(ctx context.Context, msg *EmailMessage) bool {
	if err := s.Enqueue(ctx, msg); err != nil {
		s.log.WithFields(logrus.Fields{
			"template": msg.Template,
			"to":       msg.To,
		}).WithError(err).Warn("failed to enqueue email")
		return false
	}
	return true
}

func (s *notificationService) Dispatch(ctx context.Context, max int) (int, error) {
	sent := 0
	for i := 0; i < max; i++ {
		payload, err := s.rdb.RPop(ctx, emailOutboxKey).Bytes()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return sent, fmt.Errorf("failed to read email outbox: %w", err)
		}

		var msg EmailMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.WithError(err).Error("dropping malformed email payload")
			continue
		}
		if err := s.mailer.Send(ctx, &msg); err != nil {
			s.log.WithFields(logrus.Fields{
				"template": msg.Template,
				"to":       msg.To,
			}).WithError(err).Error("email delivery failed")
			continue
		}
		sent++
	}
	return sent, nil
}
