package redis

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/domain"
)

const eventsPrefix = "challenge:events:"

// ChallengeRelay implements app.ChallengeFeed across instances. Publish goes
// out over Redis pub/sub; Start forwards every instance's events into the
// local hub that websocket subscribers listen on.
type ChallengeRelay struct {
	client *redis.Client
	hub    *app.ChallengeHub
}

func NewChallengeRelay(client *redis.Client, hub *app.ChallengeHub) *ChallengeRelay {
	return &ChallengeRelay{client: client, hub: hub}
}

// Start subscribes to challenge events and relays them until ctx is done.
// It returns once the subscription is confirmed.
func (r *ChallengeRelay) Start(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, eventsPrefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				r.deliver(msg)
			}
		}
	}()
	return nil
}

// Publish sends c to every instance. If Redis is unreachable the update still
// reaches local subscribers.
func (r *ChallengeRelay) Publish(c domain.Challenge) {
	payload, err := json.Marshal(c)
	if err == nil {
		err = r.client.Publish(context.Background(), eventsPrefix+c.Code, payload).Err()
	}
	if err != nil {
		log.Printf("challenge relay publish failed for %s: %v", c.Code, err)
		r.hub.Publish(c)
	}
}

func (r *ChallengeRelay) Subscribe(code string, initial domain.Challenge) (<-chan domain.Challenge, func()) {
	return r.hub.Subscribe(code, initial)
}

func (r *ChallengeRelay) deliver(msg *redis.Message) {
	var c domain.Challenge
	if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
		log.Printf("challenge relay dropped malformed event on %s: %v", msg.Channel, err)
		return
	}
	if c.Code == "" {
		c.Code = strings.TrimPrefix(msg.Channel, eventsPrefix)
	}
	r.hub.Publish(c)
}
