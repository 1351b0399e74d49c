package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamsqa-backend/application/query"
	"teamsqa-backend/domain"
	"teamsqa-backend/infrastructure/cache"
	"teamsqa-backend/infrastructure/persistence/memory"
)

func newSubscriberFixture(t *testing.T) (*SubscriberService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	cacheStore := cache.NewStore(nil)
	exec := query.NewExecutor(store, cacheStore, nil, nil)
	inv := query.NewInvalidator(cacheStore, nil, nil)
	return NewSubscriberService(store, exec, inv, nil), store
}

func TestSubscribeIdempotent(t *testing.T) {
	svc, store := newSubscriberFixture(t)
	ctx := context.Background()

	first, err := svc.Subscribe(ctx, SubscribeRequest{Email: "Dana@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", first.Email, "emails are normalized")
	assert.Equal(t, []string{domain.ChannelEmail}, first.Channels, "email is the default channel")

	second, err := svc.Subscribe(ctx, SubscribeRequest{
		Email:    "dana@example.com",
		Channels: []string{domain.ChannelEmail, domain.ChannelPush},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "resubscribing keeps the same record")
	assert.Equal(t, 1, store.Len(domain.CollectionSubscribers))
	assert.True(t, second.HasChannel(domain.ChannelPush))
}

func TestUnsubscribe(t *testing.T) {
	svc, store := newSubscriberFixture(t)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, SubscribeRequest{Email: "dana@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(ctx, "DANA@example.com"))
	assert.Zero(t, store.Len(domain.CollectionSubscribers))

	// Unknown emails must not error; the link in a sent mail can be stale.
	assert.NoError(t, svc.Unsubscribe(ctx, "ghost@example.com"))
}

func TestRecipientsByChannel(t *testing.T) {
	svc, _ := newSubscriberFixture(t)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, SubscribeRequest{Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, SubscribeRequest{
		Email:    "b@example.com",
		Channels: []string{domain.ChannelPush},
	})
	require.NoError(t, err)

	emailRecipients, err := svc.Recipients(ctx, domain.ChannelEmail)
	require.NoError(t, err)
	require.Len(t, emailRecipients, 1)
	assert.Equal(t, "a@example.com", emailRecipients[0].Email)

	pushRecipients, err := svc.Recipients(ctx, domain.ChannelPush)
	require.NoError(t, err)
	require.Len(t, pushRecipients, 1)
	assert.Equal(t, "b@example.com", pushRecipients[0].Email)
}
