package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"bookshelfWs/internal/modules/listing/domain"
)

// readBackoff spaces out retries after a failed read.
const readBackoff = time.Second

type KafkaConsumer struct {
	reader *kafka.Reader
	topic  string
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
		topic: topic,
	}
}

// Consume reads until ctx is done. Handler errors are logged and never stop the loop.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(source string, msg *domain.Message) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.String("topic", c.topic), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(readBackoff):
			}
			continue
		}
		msg := decodeMessage(m.Topic, m.Value, time.Now())
		slog.Info("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", msg.Entity),
			slog.String("action", msg.Action),
			slog.String("resourceId", msg.ResourceID),
		)
		if err := handler(m.Topic, msg); err != nil {
			slog.Warn("kafka handler error", slog.String("topic", m.Topic), slog.Any("error", err))
		}
	}
}

type rawEvent struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	ID         json.RawMessage   `json:"id"`
	Topic      string            `json:"topic"`
	Metadata   map[string]string `json:"metadata"`
	Data       any               `json:"data"`
}

// decodeMessage turns a broker record into a message. Records that are not JSON events are
// kept as raw text with entity and action inferred from the topic name
// ("bookstore.orders.updated" -> orders, updated).
func decodeMessage(topic string, value []byte, at time.Time) *domain.Message {
	entity, action := inferEntityAction(topic)

	var event rawEvent
	if err := json.Unmarshal(value, &event); err != nil {
		msg := domain.NewMessage(entity, action, "", nil, string(value), at)
		msg.Topic = topic
		return msg
	}

	msg := domain.NewMessage(
		strings.ToLower(firstNonEmpty(event.Entity, entity)),
		strings.ToLower(firstNonEmpty(event.Action, action)),
		firstNonEmpty(event.ResourceID, rawID(event.ID)),
		event.Metadata,
		event.Data,
		at,
	)
	if event.Topic != "" {
		msg.Topic = event.Topic
	}
	return msg
}

func inferEntityAction(topic string) (string, string) {
	parts := strings.Split(strings.TrimSpace(topic), ".")
	if len(parts) >= 2 {
		entity := strings.TrimSpace(parts[len(parts)-2])
		action := strings.TrimSpace(parts[len(parts)-1])
		if entity != "" && action != "" {
			return strings.ToLower(entity), strings.ToLower(action)
		}
	}
	if last := strings.TrimSpace(parts[len(parts)-1]); last != "" {
		return strings.ToLower(last), "unknown"
	}
	return "", "unknown"
}

// rawID accepts both numeric and string ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
