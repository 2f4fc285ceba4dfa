package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/model"
	"github.com/copafer/chat-viewer/internal/transcript"
	"github.com/copafer/chat-viewer/pkg/metrics"
)

const (
	// StreamName is the name of the transcripts stream.
	StreamName = "TRANSCRIPTS"

	// ConsumerName identifies the durable viewer consumer.
	ConsumerName = "chat-viewer"
)

// Appender receives decoded records from the live channel.
type Appender interface {
	Append(msgs []model.Message)
}

// Ingester consumes transcript records published to JetStream and appends
// them to the in-memory dataset. Payloads use the same envelope shapes as the
// webhook source, so a publisher can forward the upstream response verbatim.
type Ingester struct {
	client  *Client
	subject string
	sink    Appender
}

// NewIngester creates an ingester reading the given subject.
func NewIngester(client *Client, subject string, sink Appender) *Ingester {
	return &Ingester{client: client, subject: subject, sink: sink}
}

// EnsureStream ensures the transcripts stream exists.
func (i *Ingester) EnsureStream(ctx context.Context) error {
	js := i.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{i.subject},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Live transcript records forwarded from the webhook",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// Start creates the durable consumer and begins delivering records to the
// sink. Delivery stops when ctx is cancelled.
func (i *Ingester) Start(ctx context.Context) error {
	consumer, err := i.client.JetStream().CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       ConsumerName,
		FilterSubject: i.subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		i.handle(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to start consume: %w", err)
	}

	go func() {
		<-ctx.Done()
		cc.Stop()
	}()

	return nil
}

func (i *Ingester) handle(msg jetstream.Msg) {
	records, err := transcript.Normalize(json.RawMessage(msg.Data()))
	if err != nil {
		i.client.logger.Warn("dropping undecodable live record",
			zap.String("subject", msg.Subject()),
			zap.Error(err),
		)
		// Ack anyway: a malformed payload will never become decodable.
		_ = msg.Ack()
		return
	}

	i.sink.Append(records)
	metrics.LiveMessagesTotal.Add(float64(len(records)))
	if err := msg.Ack(); err != nil {
		i.client.logger.Warn("live record ack failed", zap.Error(err))
	}
}
