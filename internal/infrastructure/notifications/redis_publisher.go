// Package notifications fans stored notifications out to live listeners over Redis.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "notifications:"
	inboxPrefix   = "notifications:inbox:"
)

// Channel is the pub/sub channel a recipient's clients subscribe to.
func Channel(recipientID string) string {
	return channelPrefix + recipientID
}

// Inbox is the capped list holding a recipient's most recent notifications.
func Inbox(recipientID string) string {
	return inboxPrefix + recipientID
}

type RedisPublisher struct {
	rdb       redis.UniversalClient
	inboxSize int64
}

func NewRedisPublisher(rdb redis.UniversalClient, inboxSize int64) *RedisPublisher {
	if inboxSize < 1 {
		inboxSize = 1
	}
	return &RedisPublisher{rdb: rdb, inboxSize: inboxSize}
}

// Publish pushes the notification onto the recipient's inbox, trims it, and announces it on the
// recipient channel. The three commands go out in one MULTI/EXEC.
func (p *RedisPublisher) Publish(ctx context.Context, n *models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, Inbox(n.RecipientID), body)
		pipe.LTrim(ctx, Inbox(n.RecipientID), 0, p.inboxSize-1)
		pipe.Publish(ctx, Channel(n.RecipientID), body)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID, err)
	}

	return nil
}

// Recent returns up to limit of the recipient's latest notifications, newest first.
func (p *RedisPublisher) Recent(ctx context.Context, recipientID string, limit int64) ([]models.Notification, error) {
	raw, err := p.rdb.LRange(ctx, Inbox(recipientID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	out := make([]models.Notification, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err = json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}

	return out, nil
}
