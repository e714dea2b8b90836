package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
	redisclient "github.com/healthcrm/inbox-server-go/internal/redis"
)

// Redis keeps the blob in one Redis key and fans change notifications out
// over a pub/sub channel named after the key. Every running context
// subscribed to the channel sees every write except its own.
type Redis struct {
	client *redisclient.Client
	key    string
	origin string
	ctx    context.Context
	cancel context.CancelFunc
	*notifier
}

var _ Store = (*Redis)(nil)

func NewRedis(client *redisclient.Client, key string) *Redis {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Redis{
		client:   client,
		key:      key,
		origin:   uuid.NewString(),
		ctx:      ctx,
		cancel:   cancel,
		notifier: newNotifier(),
	}
	go r.listen()
	return r
}

func (r *Redis) Load(ctx context.Context) (*model.Aggregate, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		seed := model.Seed()
		if err := r.Save(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return decodeOrSeed(data), nil
}

func (r *Redis) LoadRaw(ctx context.Context) (*model.Aggregate, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyAggregate(), nil
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return decodeStrict(data)
}

func (r *Redis) Save(ctx context.Context, state *model.Aggregate) error {
	data, err := encode(state)
	if err != nil {
		return apperrors.Storage(err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return apperrors.Storage(err)
	}

	payload, err := json.Marshal(envelope{Origin: r.origin, State: state})
	if err != nil {
		return apperrors.Storage(err)
	}
	if err := r.client.Publish(ctx, redisclient.ChangeChannel(r.key), payload).Err(); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (r *Redis) listen() {
	channel := redisclient.ChangeChannel(r.key)
	pubsub := r.client.Subscribe(r.ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("channel", channel).
		Str("origin", r.origin).
		Msg("redis change channel subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-r.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Msg("ignoring malformed change notification")
				continue
			}
			if env.State == nil {
				log.Warn().Msg("ignoring change notification without state")
				continue
			}
			if env.Origin == r.origin {
				// Own write, already applied synchronously by the writer.
				continue
			}

			sanitize(env.State)
			r.notifier.emit(Update{Origin: env.Origin, State: env.State})
		}
	}
}

func (r *Redis) Origin() string {
	return r.origin
}

func (r *Redis) Close() error {
	r.cancel()
	r.notifier.closeAll()
	return nil
}
