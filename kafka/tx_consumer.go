package kafka

import (
	// Go Internal Packages
	"context"
	"errors"
	"time"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

const commitTimeout = 10 * time.Second

type ConsumerConfig struct {
	Brokers        []string
	Name           string
	Topic          string
	RecordsPerPoll int
	// FromStart makes a group without committed offsets begin at the oldest
	// record instead of the newest.
	FromStart bool
}

type Consumer struct {
	Client    *kgo.Client
	Config    *ConsumerConfig
	Processor TxProcessor
	Logger    *zap.Logger
}

type TxProcessor interface {
	ProcessRecords(ctx context.Context, records []models.Record) error
}

// NewTxConsumer creates a consumer group member for the transactions topic
// (PS: Must call Poll to start consuming the records)
func NewTxConsumer(conf *ConsumerConfig, logger *zap.Logger, processor TxProcessor, metrics *kprom.Metrics) (*Consumer, error) {
	c := &Consumer{Config: conf, Processor: processor, Logger: logger}

	reset := kgo.NewOffset().AtEnd()
	if conf.FromStart {
		reset = kgo.NewOffset().AtStart()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...), // Connects to Kafka brokers
		kgo.ConsumerGroup(conf.Name),     // Specifies the consumer group
		kgo.ConsumeTopics(conf.Topic),    // Specifies a single topic to consume
		kgo.ConsumeResetOffset(reset),
		kgo.DisableAutoCommit(),    // Offsets are committed only after a batch is handled
		kgo.BlockRebalanceOnPoll(), // Blocks rebalancing until the batch is committed
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	c.Client = client
	return c, nil
}

// Poll fetches micro batches and hands them to the processor one at a time.
// Offsets of a batch are committed only when the processor accepted it. A
// rejected batch is not committed and the fetch position is moved back to its
// first record, so the next poll delivers it again.
func (c *Consumer) Poll(ctx context.Context) error {
	defer c.Client.Close()

	for {
		if ctx.Err() != nil {
			c.Logger.Warn("polling stopped: context canceled")
			return nil
		}

		c.Logger.Debug("polling for records", zap.String("consumer", c.Config.Name))
		fetches := c.Client.PollRecords(ctx, c.Config.RecordsPerPoll)

		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if errors.Is(fetches.Err0(), context.Canceled) {
			c.Logger.Warn("polling stopped: context canceled")
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.Logger.Error("fetch error",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Error(err),
			)
		})

		fetched := fetches.Records()
		if len(fetched) == 0 {
			c.Client.AllowRebalance()
			continue
		}

		if err := c.Processor.ProcessRecords(ctx, ToRecords(fetched)); err != nil {
			c.Logger.Error("failed to process records", zap.Int("records", len(fetched)), zap.Error(err))
			c.Client.SetOffsets(firstOffsets(fetched))
			c.Client.AllowRebalance()
			continue // Don't exit on a single failure
		}

		// A handled batch is committed even when shutdown began while it ran.
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
		if err := c.Client.CommitRecords(commitCtx, fetched...); err != nil {
			c.Logger.Error("failed to commit offsets", zap.Error(err))
		}
		cancel()
		c.Client.AllowRebalance()
	}
}

// firstOffsets returns the lowest fetched offset of every topic partition.
func firstOffsets(fetched []*kgo.Record) map[string]map[int32]kgo.EpochOffset {
	offsets := make(map[string]map[int32]kgo.EpochOffset)
	for _, record := range fetched {
		partitions, ok := offsets[record.Topic]
		if !ok {
			partitions = make(map[int32]kgo.EpochOffset)
			offsets[record.Topic] = partitions
		}
		if cur, ok := partitions[record.Partition]; !ok || record.Offset < cur.Offset {
			partitions[record.Partition] = kgo.EpochOffset{Epoch: record.LeaderEpoch, Offset: record.Offset}
		}
	}
	return offsets
}

// ToRecords copies the fetched kafka records into the processor's record model.
func ToRecords(fetched []*kgo.Record) []models.Record {
	records := make([]models.Record, len(fetched))
	for idx, record := range fetched {
		records[idx] = models.Record{
			Key:       record.Key,
			Value:     record.Value,
			Topic:     record.Topic,
			Partition: record.Partition,
			Offset:    record.Offset,
		}
	}
	return records
}
