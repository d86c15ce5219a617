package processors

import (
	// Go Internal Packages
	"context"
	"encoding/json"

	// Local Packages
	errors "fraud-stream/errors"
	"fraud-stream/metrics"
	models "fraud-stream/models"
	"fraud-stream/services/rules"
	"fraud-stream/services/scoring"
	"fraud-stream/utils"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stage is the position of a batch in the scoring pipeline.
type Stage string

const (
	StageReceived      Stage = "RECEIVED"
	StageEncoded       Stage = "ENCODED"
	StageScored        Stage = "SCORED"
	StageScoreFallback Stage = "SCORE_FALLBACK"
	StageOverridden    Stage = "OVERRIDDEN"
	StageEmitted       Stage = "EMITTED"
)

const (
	ReasonDecode    = "decode"
	ReasonSinkWrite = "sink_write"
)

type FeatureEncoder interface {
	Encode(txs []models.TransactionRecord) []models.FeatureVector
}

type Scorer interface {
	Score(ctx context.Context, features []models.FeatureVector) scoring.Result
}

type PredictionsRepository interface {
	InsertPredictions(ctx context.Context, txs []models.ScoredTransaction) error
}

type DeadLetterQueue interface {
	Send(ctx context.Context, batchID, reason string, cause error, records []models.Record) error
}

// Batch is the result of scoring one micro batch.
type Batch struct {
	ID     string
	Stage  Stage
	Scored []models.ScoredTransaction
	Result scoring.Result
}

// TxProcessor turns polled records into scored rows and hands them to the sink.
// It holds only immutable collaborators, so one instance may serve concurrent batches.
type TxProcessor struct {
	Logger  *zap.Logger
	Encoder FeatureEncoder
	Scorer  Scorer
	Repo    PredictionsRepository
	DLQ     DeadLetterQueue
	Metrics metrics.Recorder
	newID   func() string
}

func NewTxProcessor(logger *zap.Logger, encoder FeatureEncoder, scorer Scorer, repo PredictionsRepository,
	dlq DeadLetterQueue, recorder metrics.Recorder) *TxProcessor {
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	return &TxProcessor{
		Logger:  logger,
		Encoder: encoder,
		Scorer:  scorer,
		Repo:    repo,
		DLQ:     dlq,
		Metrics: recorder,
		newID:   uuid.NewString,
	}
}

// ScoreBatch encodes, scores and applies the rule override. Scored rows keep
// the input order; a scoring fallback is reported through Batch.Result.
func (p *TxProcessor) ScoreBatch(ctx context.Context, batchID string, txs []models.TransactionRecord) Batch {
	batch := Batch{ID: batchID, Stage: StageReceived}
	logger := p.Logger.With(zap.String("batch_id", batchID))

	features := p.Encoder.Encode(txs)
	batch.Stage = StageEncoded
	logger.Debug("batch encoded", zap.Int("records", len(features)))

	batch.Result = p.Scorer.Score(ctx, features)
	if len(batch.Result.Predictions) != len(txs) {
		batch.Result = scoring.Result{
			Predictions: make([]int, len(txs)),
			Attempts:    batch.Result.Attempts,
			Outcome:     scoring.Fallback,
			Err:         errors.E(errors.ScoringExhausted, "scorer returned a misaligned prediction vector", batch.Result.Err),
		}
	}
	batch.Stage = StageScored
	if batch.Result.Outcome == scoring.Fallback {
		batch.Stage = StageScoreFallback
		logger.Warn("batch scored with fallback predictions",
			zap.Stringer("kind", errors.KindOf(batch.Result.Err)),
			zap.Int("attempts", batch.Result.Attempts),
			zap.Error(batch.Result.Err),
		)
	} else {
		logger.Debug("batch scored", zap.Int("attempts", batch.Result.Attempts))
	}

	batch.Scored = make([]models.ScoredTransaction, len(txs))
	for i := range txs {
		batch.Scored[i] = txs[i].Score(rules.PotentialFraud(&txs[i]), batch.Result.Predictions[i])
	}
	batch.Stage = StageOverridden

	return batch
}

// ProcessRecords handles one polled batch. Undecodable records and batches the
// sink rejects are dead lettered. An error is returned when some records were
// neither persisted nor dead lettered, meaning its offsets must not be committed.
func (p *TxProcessor) ProcessRecords(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	batchID := p.newID()
	logger := p.Logger.With(zap.String("batch_id", batchID))
	logger.Info("processing batch", zap.Int("records", len(records)))

	var decodeErr error
	txs, kept, rejected := p.decode(logger, records)
	if len(rejected) > 0 {
		decodeErr = p.deadLetter(ctx, logger, batchID, ReasonDecode, errors.DecodeRecordErr(nil), rejected)
	}
	if len(txs) == 0 {
		return decodeErr
	}

	batch := p.ScoreBatch(ctx, batchID, txs)
	if ctx.Err() != nil {
		return multierr.Append(decodeErr, errors.E(errors.Canceled, "batch "+batchID+" abandoned", ctx.Err()))
	}

	if err := p.Repo.InsertPredictions(ctx, batch.Scored); err != nil {
		p.Metrics.SinkFailure()
		writeErr := errors.SinkWriteErr(batchID, err)
		logger.Error("error writing batch to sink", zap.Int("records", len(batch.Scored)), zap.Error(writeErr))

		if dlqErr := p.deadLetter(ctx, logger, batchID, ReasonSinkWrite, writeErr, kept); dlqErr != nil {
			return multierr.Combine(decodeErr, writeErr, dlqErr)
		}
		return decodeErr
	}
	batch.Stage = StageEmitted

	potential, predicted := 0, 0
	ids := make([]int64, 0, len(batch.Scored))
	for _, s := range batch.Scored {
		if s.PotentialFraud != 0 {
			potential++
		}
		if s.PredictedFraud != 0 {
			predicted++
		}
		if s.TransactionID != nil {
			ids = append(ids, *s.TransactionID)
		}
	}
	p.Metrics.Batch(len(batch.Scored), potential, predicted)

	logger.Info("predictions saved",
		zap.String("stage", string(batch.Stage)),
		zap.String("scoring", batch.Result.Outcome.String()),
		zap.Int("records", len(batch.Scored)),
		zap.Int("potential_fraud", potential),
		zap.Int("predicted_fraud", predicted),
	)
	logger.Debug("emitted transactions", zap.String("transaction_ids", utils.JoinInt64Slice(ids)))
	return decodeErr
}

func (p *TxProcessor) decode(logger *zap.Logger, records []models.Record) ([]models.TransactionRecord, []models.Record, []models.Record) {
	txs := make([]models.TransactionRecord, 0, len(records))
	kept := make([]models.Record, 0, len(records))
	var rejected []models.Record

	for _, record := range records {
		var tx models.TransactionRecord
		if err := json.Unmarshal(record.Value, &tx); err != nil {
			logger.Error("failed to unmarshal transaction",
				zap.Int32("partition", record.Partition),
				zap.Int64("offset", record.Offset),
				zap.Error(err),
			)
			rejected = append(rejected, record)
			continue
		}
		txs = append(txs, tx)
		kept = append(kept, record)
	}
	return txs, kept, rejected
}

func (p *TxProcessor) deadLetter(ctx context.Context, logger *zap.Logger, batchID, reason string, cause error, records []models.Record) error {
	if p.DLQ == nil {
		return errors.E(errors.Other, "no dead letter queue configured", nil)
	}
	if err := p.DLQ.Send(ctx, batchID, reason, cause, records); err != nil {
		logger.Error("failed to dead letter records", zap.String("reason", reason), zap.Int("count", len(records)), zap.Error(err))
		return err
	}
	p.Metrics.DeadLettered(reason, len(records))
	return nil
}
