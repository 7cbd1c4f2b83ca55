package natsstan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain"
)

type recorder struct {
	notices []domain.RefreshNotice
	err     error
	acks    int
}

func (r *recorder) handle(_ context.Context, n domain.RefreshNotice) error {
	r.notices = append(r.notices, n)
	return r.err
}

func (r *recorder) ack() error {
	r.acks++
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestDeliverDecodesNoticeAndAcks(t *testing.T) {
	s := &Subscriber{Subject: "catalog.refresh"}
	r := &recorder{}
	s.deliver(context.Background(), []byte(`{"reason":"restock","requested_at":"2026-10-19T08:00:00Z"}`), r.handle, r.ack)

	require.Len(t, r.notices, 1)
	assert.Equal(t, "restock", r.notices[0].Reason)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), r.notices[0].RequestedAt)
	assert.Equal(t, 1, r.acks)
}

func TestDeliverEmptyPayloadRefreshes(t *testing.T) {
	s := &Subscriber{}
	r := &recorder{}
	s.deliver(context.Background(), nil, r.handle, r.ack)

	require.Len(t, r.notices, 1)
	assert.True(t, r.notices[0].RequestedAt.IsZero())
	assert.Equal(t, 1, r.acks)
}

func TestDeliverSkipsAckOnFailure(t *testing.T) {
	s := &Subscriber{Subject: "catalog.refresh"}
	r := &recorder{err: errors.New("catalog refresh: offline")}
	s.deliver(context.Background(), []byte(`{"reason":"restock"}`), r.handle, r.ack)

	assert.Len(t, r.notices, 1)
	assert.Zero(t, r.acks, "failed refresh must be redelivered")
}

func TestDeliverAcksMalformedNotice(t *testing.T) {
	s := &Subscriber{}
	r := &recorder{}
	s.deliver(context.Background(), []byte(`{"requested_at":`), r.handle, r.ack)

	assert.Empty(t, r.notices)
	assert.Equal(t, 1, r.acks)
}

// Replayed notices older than the last refresh are acked without a refetch.
func TestDeliverSkipsNoticesOlderThanLastRefresh(t *testing.T) {
	refreshedAt := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := &Subscriber{Now: fixedClock(refreshedAt)}
	r := &recorder{}

	s.deliver(context.Background(), []byte(`{"requested_at":"2026-10-19T07:00:00Z"}`), r.handle, r.ack)
	s.deliver(context.Background(), []byte(`{"requested_at":"2026-10-19T08:00:00Z"}`), r.handle, r.ack)
	s.deliver(context.Background(), []byte(`{"requested_at":"2026-10-19T10:00:00Z"}`), r.handle, r.ack)

	require.Len(t, r.notices, 2)
	assert.Equal(t, 7, r.notices[0].RequestedAt.Hour())
	assert.Equal(t, 10, r.notices[1].RequestedAt.Hour())
	assert.Equal(t, 3, r.acks)
}

func TestDeliverFailedRefreshKeepsWindowOpen(t *testing.T) {
	s := &Subscriber{Now: fixedClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))}
	r := &recorder{err: errors.New("offline")}
	s.deliver(context.Background(), []byte(`{"requested_at":"2026-10-19T07:00:00Z"}`), r.handle, r.ack)

	r.err = nil
	s.deliver(context.Background(), []byte(`{"requested_at":"2026-10-19T07:00:00Z"}`), r.handle, r.ack)
	assert.Len(t, r.notices, 2, "redelivered notice is retried after a failure")
	assert.Equal(t, 1, r.acks)
}

func TestDeliverHandlerContextBounded(t *testing.T) {
	s := &Subscriber{}
	s.deliver(context.Background(), nil, func(ctx context.Context, _ domain.RefreshNotice) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	}, func() error { return nil })
}
