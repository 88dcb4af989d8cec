package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/api/metrics"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// ErrRetriesExhausted is returned by Run when the reconnect budget is spent.
var ErrRetriesExhausted = errors.New("feed: reconnect attempts exhausted")

const handshakeTimeout = 10 * time.Second

// Config captures the feed endpoint and its reconnect schedule.
type Config struct {
	URL   string
	Token string
	Retry RetryPolicy
}

// Client keeps the live feed connected and forwards what it receives:
// events to the batching queue, shipment overrides and location status to
// the dashboard service.
type Client struct {
	cfg    Config
	queue  ports.EventQueue
	svc    ports.DashboardService
	dialer *websocket.Dialer
	sleep  Sleeper
	log    zerolog.Logger
}

// NewClient creates a Client. Unset fields of cfg.Retry fall back to
// DefaultRetryPolicy. Call Run to start it.
func NewClient(cfg Config, queue ports.EventQueue, svc ports.DashboardService, log zerolog.Logger) *Client {
	cfg.Retry = cfg.Retry.withDefaults()
	return &Client{
		cfg:   cfg,
		queue: queue,
		svc:   svc,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		sleep: sleepContext,
		log:   log,
	}
}

// Run connects and reconnects until ctx is cancelled, which is the normal
// shutdown path and returns ctx.Err(). A successful connection resets the
// backoff.
func (c *Client) Run(ctx context.Context) error {
	target, err := c.endpoint()
	if err != nil {
		return err
	}

	attempt := 0
	for {
		opened, err := c.session(ctx, target)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opened {
			attempt = 0
		}
		attempt++

		if c.cfg.Retry.Exhausted(attempt) {
			return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempt-1, err)
		}
		delay := c.cfg.Retry.Delay(attempt)
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("feed disconnected, reconnecting")
		metrics.FeedReconnectsTotal.Inc()

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// session dials once and reads until the connection drops. opened reports
// whether the handshake succeeded.
func (c *Client) session(ctx context.Context, target string) (opened bool, err error) {
	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log := c.log.With().Str("session_id", sessionID).Logger()
	log.Info().Msg("feed connected")
	metrics.FeedConnected.Set(1)
	defer metrics.FeedConnected.Set(0)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		c.dispatch(log, Parse(frame))
	}
}

func (c *Client) dispatch(log zerolog.Logger, msg Message) {
	metrics.FeedMessagesTotal.WithLabelValues(string(msg.Kind)).Inc()

	switch msg.Kind {
	case KindEvents:
		if len(msg.Events) == 0 {
			return
		}
		if err := c.queue.Enqueue(msg.Events...); err != nil {
			log.Warn().Err(err).Int("events", len(msg.Events)).Msg("feed events not queued")
		}
	case KindShipments:
		if len(msg.Shipments) > 0 {
			c.svc.UpsertShipments(msg.Shipments)
		}
	case KindStatus:
		_, err := c.svc.UpsertLocationStatus(*msg.Status)
		metrics.ObserveStatusPush(err)
		if err != nil {
			log.Debug().Err(err).Str("location_id", msg.Status.LocationID).Msg("feed status push rejected")
		}
	case KindUnknown:
		log.Debug().Msg("unrecognised feed message")
	}
}

// endpoint appends the token as a query parameter when one is configured.
func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("feed url: %w", err)
	}
	if c.cfg.Token != "" {
		q := u.Query()
		q.Set("token", c.cfg.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
