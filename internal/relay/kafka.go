package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"live-auction/utils"
)

// Event is the cross-instance mutation notice. Room membership is
// process-local, so a bid accepted on one instance must still reach viewers
// connected to another; the relay carries exactly that signal.
type Event struct {
	AuctionID string `json:"auctionId"`
	Type      string `json:"type"`
	Origin    string `json:"origin"`
}

// KafkaRelay publishes local mutation events and re-dispatches remote ones.
// Each instance consumes with its own group id so every instance sees every
// event.
type KafkaRelay struct {
	origin string
	writer *kafka.Writer
	reader *kafka.Reader
}

// NewKafkaRelay creates a relay on the given brokers and topic.
func NewKafkaRelay(brokers []string, topic string) *KafkaRelay {
	origin := utils.GenerateID()
	return &KafkaRelay{
		origin: origin,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     "auction-hub-" + origin,
			StartOffset: kafka.LastOffset,
		}),
	}
}

// Publish sends one mutation event, keyed by auction so per-auction ordering
// is preserved.
func (r *KafkaRelay) Publish(auctionID, event string) error {
	value, err := json.Marshal(Event{AuctionID: auctionID, Type: event, Origin: r.origin})
	if err != nil {
		return fmt.Errorf("relay publish: %w", err)
	}
	return r.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(auctionID),
		Value: value,
	})
}

// Run blocks, feeding remote events into dispatch until the context is
// cancelled. Events this instance published are skipped: the hub already
// delivered them locally.
func (r *KafkaRelay) Run(ctx context.Context, dispatch func(auctionID, event string)) {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			utils.Error("relay read failed", map[string]any{"error": err.Error()})
			continue
		}

		var e Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			utils.Warn("relay dropped malformed event", map[string]any{"error": err.Error()})
			continue
		}
		if e.Origin == r.origin {
			continue
		}
		dispatch(e.AuctionID, e.Type)
	}
}

// Close releases the Kafka writer and reader.
func (r *KafkaRelay) Close() error {
	werr := r.writer.Close()
	rerr := r.reader.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
