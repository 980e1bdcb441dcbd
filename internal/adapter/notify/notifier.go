package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
)

// ChannelPrefix prefixes the per-user Redis channel notifications are published on
const ChannelPrefix = "fieldreports:notifications:"

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.WithFields(map[string]interface{}{"component": "notifier"})}
}

func (n *LogNotifier) Notify(ctx context.Context, notification *ports.Notification) error {
	fields := map[string]interface{}{
		"type":      notification.Type,
		"recipient": notification.Recipient,
		"title":     notification.Title,
	}
	if notification.Level == ports.NotificationLevelError {
		n.logger.Warn(ctx, notification.Message, fields)
		return nil
	}
	n.logger.Info(ctx, notification.Message, fields)
	return nil
}

// RedisNotifier publishes notifications as JSON on the recipient's channel
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Channel returns the channel a recipient's notifications are published on
func Channel(recipient string) string {
	return ChannelPrefix + recipient
}

func (n *RedisNotifier) Notify(ctx context.Context, notification *ports.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := n.client.Publish(ctx, Channel(notification.Recipient), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Multi delivers to every notifier and joins their errors
type Multi []ports.NotificationService

func (m Multi) Notify(ctx context.Context, notification *ports.Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
