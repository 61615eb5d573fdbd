package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

const DefaultChannel = "lifepilot:realtime"

var errNotReady = errors.New("realtime bus: redis client not initialized")

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// envelope is the pub/sub payload. Origin identifies the publishing process
// so forwarded traffic can be attributed in logs.
type envelope struct {
	Origin string           `json:"origin"`
	SentAt time.Time        `json:"sentAt"`
	Msg    realtime.Message `json:"msg"`
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

// NewRedisBus connects and pings before returning so a bad REDIS_ADDR fails startup.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, errors.New("realtime bus: logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("realtime bus: REDIS_ADDR is empty")
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("realtime bus: ping %s: %w", addr, err)
	}

	origin := uuid.NewString()
	return &redisBus{
		log:     log.With("service", "RealtimeBus", "channel", channel, "origin", origin),
		rdb:     rdb,
		channel: channel,
		origin:  origin,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.Message) error {
	if b == nil || b.rdb == nil {
		return errNotReady
	}
	if !strings.HasPrefix(msg.Room, "user:") {
		return fmt.Errorf("realtime bus: refusing to publish to room %q", msg.Room)
	}
	raw, err := json.Marshal(envelope{Origin: b.origin, SentAt: time.Now().UTC(), Msg: msg})
	if err != nil {
		return fmt.Errorf("realtime bus: encode %s: %w", msg.Event, err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes and hands every decoded message to onMsg until ctx ends.
// It returns once the subscription is confirmed.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	if b == nil || b.rdb == nil {
		return errNotReady
	}
	if onMsg == nil {
		return errors.New("realtime bus: forwarder callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("realtime bus: subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.Message)) {
	defer sub.Close()
	in := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				b.log.Warn("realtime subscription closed")
				return
			}
			msg, ok := b.decode(m.Payload)
			if !ok {
				continue
			}
			onMsg(msg)
		}
	}
}

func (b *redisBus) decode(payload string) (realtime.Message, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Warn("dropping undecodable realtime payload", "error", err)
		return realtime.Message{}, false
	}
	if !strings.HasPrefix(env.Msg.Room, "user:") {
		b.log.Warn("dropping realtime payload for non-user room", "room", env.Msg.Room, "from", env.Origin)
		return realtime.Message{}, false
	}
	if env.Origin != b.origin {
		b.log.Debug("forwarding remote realtime event", "event", env.Msg.Event, "from", env.Origin)
	}
	return env.Msg, true
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
