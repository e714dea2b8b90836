package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/healthcrm/inbox-server-go/internal/database"
	apperrors "github.com/healthcrm/inbox-server-go/internal/errors"
	"github.com/healthcrm/inbox-server-go/internal/model"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
)

// Postgres keeps the blob in a single chat_state row and uses LISTEN/NOTIFY
// as the change channel. NOTIFY payloads are size-limited, so only the
// writer's origin tag travels on the channel; receivers re-read the row,
// which the writer committed before notifying.
type Postgres struct {
	db       *database.DB
	key      string
	origin   string
	listener *pq.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	*notifier
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *database.DB, databaseURL, key string) (*Postgres, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_state (
			key        TEXT PRIMARY KEY,
			blob       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return nil, fmt.Errorf("ensure chat_state table: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Postgres{
		db:       db,
		key:      key,
		origin:   uuid.NewString(),
		ctx:      ctx,
		cancel:   cancel,
		notifier: newNotifier(),
	}

	p.listener = pq.NewListener(databaseURL, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("chat_state listener event")
		}
	})
	if err := p.listener.Listen(p.channel()); err != nil {
		cancel()
		p.listener.Close()
		return nil, fmt.Errorf("listen %s: %w", p.channel(), err)
	}

	go p.listen()
	return p, nil
}

func (p *Postgres) channel() string {
	return "chat_state_" + p.key
}

func (p *Postgres) Load(ctx context.Context) (*model.Aggregate, error) {
	var data []byte
	err := p.db.GetContext(ctx, &data, `SELECT blob FROM chat_state WHERE key = $1`, p.key)
	if errors.Is(err, sql.ErrNoRows) {
		seed := model.Seed()
		if err := p.Save(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return decodeOrSeed(data), nil
}

func (p *Postgres) LoadRaw(ctx context.Context) (*model.Aggregate, error) {
	var data []byte
	err := p.db.GetContext(ctx, &data, `SELECT blob FROM chat_state WHERE key = $1`, p.key)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyAggregate(), nil
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return decodeStrict(data)
}

func (p *Postgres) Save(ctx context.Context, state *model.Aggregate) error {
	data, err := encode(state)
	if err != nil {
		return apperrors.Storage(err)
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Storage(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_state (key, blob, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, updated_at = NOW()
	`, p.key, data); err != nil {
		return apperrors.Storage(err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, p.channel(), p.origin); err != nil {
		return apperrors.Storage(err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (p *Postgres) listen() {
	defer p.listener.Close()

	for {
		select {
		case <-p.ctx.Done():
			return

		case n, ok := <-p.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnect; state may have changed while away.
				p.deliver("")
				continue
			}
			if n.Extra == p.origin {
				continue
			}
			p.deliver(n.Extra)
		}
	}
}

// deliver re-reads the blob and emits it to subscribers.
func (p *Postgres) deliver(origin string) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	var data []byte
	if err := p.db.GetContext(ctx, &data, `SELECT blob FROM chat_state WHERE key = $1`, p.key); err != nil {
		log.Error().Err(err).Msg("failed to read chat_state after notification")
		return
	}

	state, ok := decodeNotification(data)
	if !ok {
		return
	}
	p.notifier.emit(Update{Origin: origin, State: state})
}

func (p *Postgres) Origin() string {
	return p.origin
}

func (p *Postgres) Close() error {
	p.cancel()
	p.notifier.closeAll()
	return nil
}
