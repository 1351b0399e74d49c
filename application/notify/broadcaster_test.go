package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamsqa-backend/domain"
	apperrors "teamsqa-backend/pkg/errors"
)

type staticRecipients struct {
	subs map[string][]domain.Subscriber
}

func (s *staticRecipients) Recipients(ctx context.Context, channel string) ([]domain.Subscriber, error) {
	return s.subs[channel], nil
}

type fakeEmailSender struct {
	mu       sync.Mutex
	sent     []string
	failFor  map[string]error
	inFlight int32
	maxSeen  int32
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, cur) {
			break
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakePushSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakePushSender) SendPush(ctx context.Context, connectionID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, connectionID)
	return nil
}

func emailSubscribers(n int) []domain.Subscriber {
	subs := make([]domain.Subscriber, n)
	for i := range subs {
		subs[i] = domain.Subscriber{
			ID:       string(rune('a' + i%26)),
			Email:    string(rune('a'+i%26)) + "@example.com",
			Channels: []string{domain.ChannelEmail},
		}
	}
	return subs
}

func TestSendCollectsPerRecipientFailures(t *testing.T) {
	email := &fakeEmailSender{failFor: map[string]error{
		"b@example.com": errors.New("mailbox full"),
	}}
	recipients := &staticRecipients{subs: map[string][]domain.Subscriber{
		domain.ChannelEmail: {
			{Email: "a@example.com"},
			{Email: "b@example.com"},
			{Email: "c@example.com"},
		},
	}}
	b := NewBroadcaster(recipients, email, nil, nil, nil)

	report, err := b.Send(context.Background(), BroadcastRequest{
		Subject:  "Schedule change",
		Body:     "The Go course moves to Monday.",
		Channels: []string{domain.ChannelEmail},
	})
	require.NoError(t, err, "per-recipient failures must not fail the broadcast")
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Delivered)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "b@example.com", report.Failures[0].Email)
	assert.Equal(t, "mailbox full", report.Failures[0].Reason)
}

func TestSendBoundedConcurrency(t *testing.T) {
	email := &fakeEmailSender{}
	recipients := &staticRecipients{subs: map[string][]domain.Subscriber{
		domain.ChannelEmail: emailSubscribers(200),
	}}
	b := NewBroadcaster(recipients, email, nil, nil, nil)

	report, err := b.Send(context.Background(), BroadcastRequest{
		Subject:  "Hello",
		Body:     "World",
		Channels: []string{domain.ChannelEmail},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, report.Attempted)
	assert.Equal(t, 200, report.Delivered)
	assert.LessOrEqual(t, atomic.LoadInt32(&email.maxSeen), int32(maxConcurrency))
}

func TestSendPushChannel(t *testing.T) {
	push := &fakePushSender{}
	recipients := &staticRecipients{subs: map[string][]domain.Subscriber{
		domain.ChannelPush: {
			{Email: "a@example.com", ConnectionID: "conn-1", Channels: []string{domain.ChannelPush}},
			{Email: "b@example.com", Channels: []string{domain.ChannelPush}}, // never connected
		},
	}}
	b := NewBroadcaster(recipients, nil, push, nil, nil)

	report, err := b.Send(context.Background(), BroadcastRequest{
		Subject:  "Hello",
		Body:     "World",
		Channels: []string{domain.ChannelPush},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Delivered)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "b@example.com", report.Failures[0].Email)
	assert.Equal(t, []string{"conn-1"}, push.sent)
}

func TestSendValidation(t *testing.T) {
	b := NewBroadcaster(&staticRecipients{}, nil, nil, nil, nil)

	_, err := b.Send(context.Background(), BroadcastRequest{Subject: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = b.Send(context.Background(), BroadcastRequest{
		Subject:  "x",
		Body:     "y",
		Channels: []string{"sms"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSendNoSenderConfigured(t *testing.T) {
	recipients := &staticRecipients{subs: map[string][]domain.Subscriber{
		domain.ChannelEmail: {{Email: "a@example.com"}},
	}}
	b := NewBroadcaster(recipients, nil, nil, nil, nil)

	report, err := b.Send(context.Background(), BroadcastRequest{
		Subject:  "x",
		Body:     "y",
		Channels: []string{domain.ChannelEmail},
	})
	require.NoError(t, err)
	assert.Zero(t, report.Delivered)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Reason, "no email sender")
}
