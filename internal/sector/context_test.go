package sector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hospital-portal/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelectionStore struct {
	mu        sync.Mutex
	saved     map[uuid.UUID]string
	loadErr   error
	saveErr   error
	saveCalls int
}

func newFakeSelectionStore() *fakeSelectionStore {
	return &fakeSelectionStore{saved: make(map[uuid.UUID]string)}
}

func (s *fakeSelectionStore) Load(ctx context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.saved[userID], nil
}

func (s *fakeSelectionStore) Save(ctx context.Context, userID uuid.UUID, sector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[userID] = sector
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestNewContextDefaultsWithoutSelection(t *testing.T) {
	c := NewContext(context.Background(), Identity{ID: uuid.New()}, newFakeSelectionStore(), testLogger())
	assert.Equal(t, entity.DefaultSector, c.Current())
}

func TestNewContextRestoresPersistedSelection(t *testing.T) {
	store := newFakeSelectionStore()
	id := uuid.New()
	store.saved[id] = "UTI"

	c := NewContext(context.Background(), Identity{ID: id}, store, testLogger())
	assert.Equal(t, "UTI", c.Current())
}

func TestNewContextIgnoresUnknownPersistedSelection(t *testing.T) {
	store := newFakeSelectionStore()
	id := uuid.New()
	store.saved[id] = "Setor Fantasma"

	c := NewContext(context.Background(), Identity{ID: id}, store, testLogger())
	assert.Equal(t, entity.DefaultSector, c.Current())
}

func TestSwitchRejectsUnknownSector(t *testing.T) {
	c := NewContext(context.Background(), Identity{ID: uuid.New()}, newFakeSelectionStore(), testLogger())

	err := c.Switch(context.Background(), "Heliponto")
	assert.ErrorIs(t, err, ErrUnknownSector)
	assert.Equal(t, entity.DefaultSector, c.Current())
}

func TestSwitchPersistsAndNotifiesWatchers(t *testing.T) {
	store := newFakeSelectionStore()
	id := uuid.New()
	c := NewContext(context.Background(), Identity{ID: id}, store, testLogger())

	var notified []string
	cancel := c.Watch(func(sector string) {
		notified = append(notified, sector)
	})
	defer cancel()

	require.NoError(t, c.Switch(context.Background(), "UTI"))
	assert.Equal(t, "UTI", c.Current())
	assert.Equal(t, []string{"UTI"}, notified)
	assert.Equal(t, "UTI", store.saved[id])

	// Re-selecting the current sector is a no-op.
	require.NoError(t, c.Switch(context.Background(), "UTI"))
	assert.Equal(t, []string{"UTI"}, notified)
	assert.Equal(t, 1, store.saveCalls)
}

func TestSwitchSurvivesStoreFailure(t *testing.T) {
	store := newFakeSelectionStore()
	store.saveErr = errors.New("redis down")
	c := NewContext(context.Background(), Identity{ID: uuid.New()}, store, testLogger())

	require.NoError(t, c.Switch(context.Background(), "UTI"))
	assert.Equal(t, "UTI", c.Current())
}

func TestWatchCancelStopsNotifications(t *testing.T) {
	c := NewContext(context.Background(), Identity{ID: uuid.New()}, newFakeSelectionStore(), testLogger())

	calls := 0
	cancel := c.Watch(func(string) { calls++ })

	require.NoError(t, c.Switch(context.Background(), "UTI"))
	cancel()
	cancel() // safe to call twice
	require.NoError(t, c.Switch(context.Background(), "CDU"))

	assert.Equal(t, 1, calls)
}
