package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"time"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DeadLetter is one stream record that could not be persisted, with the reason.
// Key and Value keep the raw record bytes and marshal as base64.
type DeadLetter struct {
	Topic     string    `json:"topic"`
	Partition int32     `json:"partition"`
	Offset    int64     `json:"offset"`
	Key       []byte    `json:"key"`
	Value     []byte    `json:"value"`
	Reason    string    `json:"reason"`
	Error     string    `json:"error"`
	BatchID   string    `json:"batch_id"`
	FailedAt  time.Time `json:"failed_at"`
}

type DeadLetterQueue struct {
	client   *redis.Client
	logger   *zap.Logger
	listName string
	now      func() time.Time
}

func NewDeadLetterQueue(client *redis.Client, logger *zap.Logger, listName string) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, logger: logger, listName: listName, now: time.Now}
}

// Send appends the failed records to the dead letter list in one round trip.
func (r *DeadLetterQueue) Send(ctx context.Context, batchID, reason string, cause error, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	errText := ""
	if cause != nil {
		errText = cause.Error()
	}

	entries := make([]interface{}, 0, len(records))
	for _, record := range records {
		jsonData, err := json.Marshal(DeadLetter{
			Topic:     record.Topic,
			Partition: record.Partition,
			Offset:    record.Offset,
			Key:       record.Key,
			Value:     record.Value,
			Reason:    reason,
			Error:     errText,
			BatchID:   batchID,
			FailedAt:  r.now().UTC(),
		})
		if err != nil {
			r.logger.Error("failed to marshal record", zap.Error(err))
			continue
		}
		entries = append(entries, jsonData)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := r.client.RPush(ctx, r.listName, entries...).Err(); err != nil {
		return err
	}

	r.logger.Info("successfully sent records to dead letter queue",
		zap.String("list", r.listName),
		zap.String("reason", reason),
		zap.Int("count", len(entries)),
	)
	return nil
}

func (r *DeadLetterQueue) Close() error {
	return r.client.Close()
}
