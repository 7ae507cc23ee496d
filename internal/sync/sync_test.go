package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"

	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/sector"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// newTestDB hands out a *gorm.DB the fake repositories can ignore.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db
}

func newTestSector(t *testing.T, label string) *sector.Context {
	t.Helper()
	c := sector.NewContext(context.Background(), sector.Identity{ID: uuid.New(), Name: "Plantonista"}, nil, testLogger())
	if label != "" && label != c.Current() {
		require.NoError(t, c.Switch(context.Background(), label))
	}
	return c
}

// fakeRoomRepo serves rooms per sector from memory.

type fakeRoomRepo struct {
	mu       stdsync.Mutex
	bySector map[string][]entity.Room
	err      error
	calls    int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{bySector: make(map[string][]entity.Room)}
}

func (f *fakeRoomRepo) setRooms(sector string, rooms ...entity.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bySector[sector] = rooms
}

func (f *fakeRoomRepo) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRoomRepo) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRoomRepo) FindBySector(db *gorm.DB, sector string) ([]entity.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Room, len(f.bySector[sector]))
	copy(out, f.bySector[sector])
	return out, nil
}

func (f *fakeRoomRepo) Create(db *gorm.DB, room *entity.Room) error        { return nil }
func (f *fakeRoomRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Room, error) { return nil, nil }
func (f *fakeRoomRepo) Update(db *gorm.DB, room *entity.Room) error        { return nil }
func (f *fakeRoomRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error)    { return 0, nil }

// fakeProfileRepo serves the doctor list from memory.

type fakeProfileRepo struct {
	mu      stdsync.Mutex
	doctors []entity.Profile
	err     error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{}
}

func (f *fakeProfileRepo) setDoctors(doctors ...entity.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doctors = doctors
}

func (f *fakeProfileRepo) FindByRole(db *gorm.DB, role string) ([]entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Profile, len(f.doctors))
	copy(out, f.doctors)
	return out, nil
}

func (f *fakeProfileRepo) Create(db *gorm.DB, profile *entity.Profile) error { return nil }
func (f *fakeProfileRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	return nil, nil
}
func (f *fakeProfileRepo) FindByEmail(db *gorm.DB, email string) (*entity.Profile, error) {
	return nil, nil
}
func (f *fakeProfileRepo) FindAll(db *gorm.DB) ([]entity.Profile, error) { return nil, nil }
func (f *fakeProfileRepo) Update(db *gorm.DB, profile *entity.Profile) error { return nil }
func (f *fakeProfileRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.ProfileStatus) (int64, error) {
	return 0, nil
}
func (f *fakeProfileRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) { return 0, nil }

// fakeAllocationRepo keeps the slot map in memory with upsert semantics
// matching the store: one row per (room, date, shift), last write wins.

type fakeAllocationRepo struct {
	mu         stdsync.Mutex
	byKey      map[string]entity.RoomAllocation
	roomSector map[uuid.UUID]string
	err        error
}

func newFakeAllocationRepo() *fakeAllocationRepo {
	return &fakeAllocationRepo{
		byKey:      make(map[string]entity.RoomAllocation),
		roomSector: make(map[uuid.UUID]string),
	}
}

func (f *fakeAllocationRepo) trackRoom(roomID uuid.UUID, sector string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomSector[roomID] = sector
}

func slotKey(roomID uuid.UUID, date string, shift entity.Shift) string {
	return fmt.Sprintf("%s|%s|%s", roomID, date, shift)
}

func (f *fakeAllocationRepo) Upsert(db *gorm.DB, allocation *entity.RoomAllocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if allocation.ID == uuid.Nil {
		allocation.ID = uuid.New()
	}
	key := slotKey(allocation.RoomID, allocation.DateKey(), allocation.Shift)
	if existing, ok := f.byKey[key]; ok {
		allocation.ID = existing.ID
	}
	f.byKey[key] = *allocation
	return nil
}

func (f *fakeAllocationRepo) FindByFilter(db *gorm.DB, filter *entity.AllocationFilter) ([]entity.RoomAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.RoomAllocation
	for _, a := range f.byKey {
		if filter != nil && filter.Date != "" && a.DateKey() != filter.Date {
			continue
		}
		if filter != nil && filter.Sector != "" && f.roomSector[a.RoomID] != filter.Sector {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAllocationRepo) FindBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (*entity.RoomAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.byKey[slotKey(roomID, date, shift)]; ok {
		out := a
		return &out, nil
	}
	return nil, nil
}

func (f *fakeAllocationRepo) DeleteBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	key := slotKey(roomID, date, shift)
	if _, ok := f.byKey[key]; !ok {
		return 0, nil
	}
	delete(f.byKey, key)
	return 1, nil
}
