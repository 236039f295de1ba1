package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

const rosterChannel = "atcloud:roster"

// SignalService fans roster changes out to realtime listeners over a Redis
// pub/sub channel. Publishing is a display concern: a failed publish is
// logged and does not fail the operation that triggered it.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// Publish sends a roster event to the channel.
func (s *SignalService) Publish(ctx context.Context, event domain.RosterEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, rosterChannel, payload).Err()
}

// Realtime subscribes to the roster channel and forwards decoded events to
// output until ctx is cancelled.
func (s *SignalService) Realtime(ctx context.Context, output chan<- domain.RosterEvent) {
	pubsub := s.rdb.Subscribe(ctx, rosterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event domain.RosterEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode roster event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
