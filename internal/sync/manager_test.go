package sync

import (
	"context"
	"testing"
	"time"

	"hospital-portal/internal/notify"
	"hospital-portal/internal/sector"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, channel notify.Channel, cfg ManagerConfig) *Manager {
	t.Helper()
	m := NewManager(
		newTestDB(t),
		channel,
		nil,
		newFakeProfileRepo(),
		newFakeRoomRepo(),
		newFakeAllocationRepo(),
		testLogger(),
		cfg,
	)
	t.Cleanup(m.Stop)
	return m
}

func TestManagerReusesSessionPerUser(t *testing.T) {
	channel := notify.NewMemoryChannel(testLogger())
	defer channel.Close()

	m := newTestManager(t, channel, ManagerConfig{})
	identity := sector.Identity{ID: uuid.New(), Name: "Recepção"}

	first, err := m.Acquire(context.Background(), identity)
	require.NoError(t, err)
	second, err := m.Acquire(context.Background(), identity)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Count())
	// One session runs three synchronizers, one subscription each.
	assert.Equal(t, 3, channel.SubscriberCount())

	other, err := m.Acquire(context.Background(), sector.Identity{ID: uuid.New()})
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, 6, channel.SubscriberCount())
}

func TestManagerStopReleasesEverySubscription(t *testing.T) {
	channel := notify.NewMemoryChannel(testLogger())
	defer channel.Close()

	m := newTestManager(t, channel, ManagerConfig{})
	_, err := m.Acquire(context.Background(), sector.Identity{ID: uuid.New()})
	require.NoError(t, err)
	_, err = m.Acquire(context.Background(), sector.Identity{ID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, 6, channel.SubscriberCount())

	m.Stop()
	m.Stop() // safe to call twice

	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, channel.SubscriberCount())
}

func TestManagerSweepsIdleSessions(t *testing.T) {
	channel := notify.NewMemoryChannel(testLogger())
	defer channel.Close()

	m := newTestManager(t, channel, ManagerConfig{
		IdleTTL:       50 * time.Millisecond,
		SweepInterval: 20 * time.Millisecond,
	})

	_, err := m.Acquire(context.Background(), sector.Identity{ID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())

	require.Eventually(t, func() bool {
		return m.Count() == 0 && channel.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)
}
