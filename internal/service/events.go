package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/stellarsnaps/stellarsnaps-go/internal/usecase"
)

// EventService broadcasts snap lifecycle events over redis pub/sub so other
// service instances (and websocket subscribers) see them.
type EventService struct {
	rdb *redis.Client
}

func NewEventService(redisClient *redis.Client) *EventService {
	return &EventService{
		rdb: redisClient,
	}
}

func (s *EventService) Publish(ctx context.Context, channel string, event usecase.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe delivers events published on channel until ctx is cancelled.
func (s *EventService) Subscribe(ctx context.Context, channel string) (<-chan usecase.Event, error) {
	pubsub := s.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, err
	}

	out := make(chan usecase.Event)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var event usecase.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
