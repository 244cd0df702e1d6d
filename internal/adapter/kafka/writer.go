// Package kafka publishes analysis summaries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/accident-analytics-service/internal/config"
	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces analysis summaries to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// Summary is the published form of a record. Preview rows are omitted.
type Summary struct {
	Filename   string                  `json:"filename"`
	AnalyzedAt time.Time               `json:"analyzed_at"`
	RowCount   int                     `json:"row_count"`
	HourSource domain.HourSource       `json:"hour_source"`
	Weather    []domain.CategoryCount  `json:"weather"`
	Road       []domain.CategoryCount  `json:"road"`
	Hours      []domain.HourCount      `json:"hours"`
	Hotspots   []domain.HotspotCluster `json:"hotspots"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Publish serializes the record summary and writes it keyed by filename, so
// re-analyses of the same file land on the same partition.
func (w *Writer) Publish(ctx context.Context, rec pipeline.Record) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write summary for %s: %w", rec.Filename, err)
	}
	w.logger.Debug("published analysis summary", "filename", rec.Filename, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func summarize(rec pipeline.Record) Summary {
	r := rec.Result
	return Summary{
		Filename:   rec.Filename,
		AnalyzedAt: rec.AnalyzedAt,
		RowCount:   r.RowCount,
		HourSource: r.HourSource,
		Weather:    r.Weather,
		Road:       r.Road,
		Hours:      r.Hours,
		Hotspots:   r.Hotspots,
		Warnings:   r.Warnings,
	}
}

// serializeToMessage marshals a record summary into a Kafka message.
func serializeToMessage(rec pipeline.Record) (kafkago.Message, error) {
	data, err := json.Marshal(summarize(rec))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Filename),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "filename", Value: []byte(rec.Filename)},
			{Key: "analyzed_at", Value: []byte(rec.AnalyzedAt.Format(time.RFC3339))},
		},
	}, nil
}
