package broker

import (
	"context"
	"log/slog"
	"sync"

	"bookshelfWs/internal/modules/listing/domain"
)

// Dispatcher routes a consumed message; source is the topic it was read from.
type Dispatcher interface {
	Dispatch(ctx context.Context, source string, msg *domain.Message) error
}

// StartKafkaConsumers runs one consumer per topic until ctx is done. The returned WaitGroup
// completes once every consumer has closed its reader.
func StartKafkaConsumers(
	ctx context.Context,
	dispatcher Dispatcher,
	brokers []string,
	groupID string,
	topics []string,
) *sync.WaitGroup {
	var wg sync.WaitGroup
	if len(brokers) == 0 {
		slog.Warn("kafka consumers disabled: no brokers configured")
		return &wg
	}
	for _, topic := range topics {
		wg.Add(1)
		go func(tp string) {
			defer wg.Done()
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			err := consumer.Consume(ctx, func(source string, msg *domain.Message) error {
				return dispatcher.Dispatch(ctx, source, msg)
			})
			slog.Info("kafka consumer stopped", slog.String("topic", tp), slog.Any("reason", err))
		}(topic)
	}
	return &wg
}
