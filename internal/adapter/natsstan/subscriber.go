// Package natsstan delivers catalog refresh notifications from NATS
// Streaming.
package natsstan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/obs"
)

const (
	queueGroup     = "storefront-workers"
	handlerTimeout = 30 * time.Second
	ackWait        = 60 * time.Second
)

type Subscriber struct {
	ClusterID string
	ClientID  string
	URL       string
	Subject   string
	Durable   string

	// Now is the clock used to stamp refreshes; nil means time.Now.
	Now func() time.Time

	mu          sync.Mutex
	lastRefresh time.Time
}

// Subscribe connects and registers handler. The connection is closed when
// ctx is done. A notice whose refresh fails is not acked and gets
// redelivered after the ack wait.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, n domain.RefreshNotice) error) error {
	clientID := s.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("storefront-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(s.ClusterID, clientID, stan.NatsURL(s.URL))
	if err != nil {
		return fmt.Errorf("stan connect: %w", err)
	}
	go func() {
		<-ctx.Done()
		sc.Close()
	}()
	_, err = sc.QueueSubscribe(s.Subject, queueGroup, func(m *stan.Msg) {
		s.deliver(ctx, m.Data, handler, m.Ack)
	}, stan.DurableName(s.Durable), stan.SetManualAckMode(), stan.AckWait(ackWait), stan.DeliverAllAvailable())
	if err != nil {
		return fmt.Errorf("stan subscribe %q: %w", s.Subject, err)
	}
	obs.Logger().Info("catalog_subscriber_started", "subject", s.Subject, "client_id", clientID)
	return nil
}

func (s *Subscriber) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// decodeNotice parses a refresh notice. An empty payload is a notice with
// no reason and no timestamp.
func decodeNotice(raw []byte) (domain.RefreshNotice, error) {
	var n domain.RefreshNotice
	if len(bytes.TrimSpace(raw)) == 0 {
		return n, nil
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return domain.RefreshNotice{}, err
	}
	return n, nil
}

// deliver runs one notice. Malformed notices and notices requested before
// the last successful refresh are acked without refetching; the replay of
// a durable subscription therefore costs one refetch, not one per notice.
func (s *Subscriber) deliver(ctx context.Context, raw []byte, handler func(ctx context.Context, n domain.RefreshNotice) error, ack func() error) {
	n, err := decodeNotice(raw)
	if err != nil {
		obs.Logger().Warn("catalog_notice_invalid", "subject", s.Subject, "error", err)
		s.ack(ack)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !n.RequestedAt.IsZero() && !s.lastRefresh.IsZero() && n.RequestedAt.Before(s.lastRefresh) {
		obs.Logger().Debug("catalog_notice_stale", "requested_at", n.RequestedAt, "last_refresh", s.lastRefresh)
		s.ack(ack)
		return
	}

	started := s.now()
	hCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	if err := handler(hCtx, n); err != nil {
		obs.Logger().Warn("catalog_refresh_failed", "subject", s.Subject, "reason", n.Reason, "error", err)
		return
	}
	s.lastRefresh = started
	s.ack(ack)
}

func (s *Subscriber) ack(ack func() error) {
	if err := ack(); err != nil {
		obs.Logger().Warn("ack_failed", "subject", s.Subject, "error", err)
	}
}

var _ domain.MessageSubscriber = (*Subscriber)(nil)
