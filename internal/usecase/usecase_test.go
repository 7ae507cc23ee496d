package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/service"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// In-memory repository fakes. The db handle is accepted and ignored;
// transaction tests pair them with sqlmock Begin/Commit expectations.

type fakeProfileRepo struct {
	profiles  map[uuid.UUID]*entity.Profile
	createErr error
	updateErr error
	findErr   error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*entity.Profile)}
}

func (r *fakeProfileRepo) add(p entity.Profile) {
	clone := p
	r.profiles[p.ID] = &clone
}

func (r *fakeProfileRepo) Create(db *gorm.DB, profile *entity.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProfileRepo) FindByEmail(db *gorm.DB, email string) (*entity.Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, p := range r.profiles {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) FindAll(db *gorm.DB) ([]entity.Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]entity.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProfileRepo) FindByRole(db *gorm.DB, role string) ([]entity.Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]entity.Profile, 0)
	for _, p := range r.profiles {
		if p.Role == role {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) Update(db *gorm.DB, profile *entity.Profile) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.ProfileStatus) (int64, error) {
	p, ok := r.profiles[id]
	if !ok {
		return 0, nil
	}
	p.Status = status
	return 1, nil
}

func (r *fakeProfileRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := r.profiles[id]; !ok {
		return 0, nil
	}
	delete(r.profiles, id)
	return 1, nil
}

type fakeRoomRepo struct {
	rooms     map[uuid.UUID]*entity.Room
	createErr error
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]*entity.Room)}
}

func (r *fakeRoomRepo) add(room entity.Room) {
	clone := room
	r.rooms[room.ID] = &clone
}

func (r *fakeRoomRepo) Create(db *gorm.DB, room *entity.Room) error {
	if r.createErr != nil {
		return r.createErr
	}
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r *fakeRoomRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	clone := *room
	return &clone, nil
}

func (r *fakeRoomRepo) FindBySector(db *gorm.DB, sector string) ([]entity.Room, error) {
	out := make([]entity.Room, 0)
	for _, room := range r.rooms {
		if room.Sector == sector {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) Update(db *gorm.DB, room *entity.Room) error {
	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r *fakeRoomRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := r.rooms[id]; !ok {
		return 0, nil
	}
	delete(r.rooms, id)
	return 1, nil
}

type fakeAllocationRepo struct {
	byKey     map[string]*entity.RoomAllocation
	upsertErr error
}

func newFakeAllocationRepo() *fakeAllocationRepo {
	return &fakeAllocationRepo{byKey: make(map[string]*entity.RoomAllocation)}
}

func slotKey(roomID uuid.UUID, date string, shift entity.Shift) string {
	return fmt.Sprintf("%s|%s|%s", roomID, date, shift)
}

func (r *fakeAllocationRepo) Upsert(db *gorm.DB, allocation *entity.RoomAllocation) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	key := slotKey(allocation.RoomID, allocation.DateKey(), allocation.Shift)
	if existing, ok := r.byKey[key]; ok {
		allocation.ID = existing.ID
	} else if allocation.ID == uuid.Nil {
		allocation.ID = uuid.New()
	}
	clone := *allocation
	r.byKey[key] = &clone
	return nil
}

func (r *fakeAllocationRepo) FindByFilter(db *gorm.DB, filter *entity.AllocationFilter) ([]entity.RoomAllocation, error) {
	out := make([]entity.RoomAllocation, 0)
	for _, a := range r.byKey {
		if filter != nil && filter.Date != "" && a.DateKey() != filter.Date {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAllocationRepo) FindBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (*entity.RoomAllocation, error) {
	a, ok := r.byKey[slotKey(roomID, date, shift)]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAllocationRepo) DeleteBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (int64, error) {
	key := slotKey(roomID, date, shift)
	if _, ok := r.byKey[key]; !ok {
		return 0, nil
	}
	delete(r.byKey, key)
	return 1, nil
}

type fakeAuditRepo struct {
	entries   []entity.AuditLog
	createErr error
}

func (r *fakeAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(db *gorm.DB, limit, offset int) ([]entity.AuditLog, error) {
	sorted := append([]entity.AuditLog(nil), r.entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if offset > len(sorted) {
		offset = len(sorted)
	}
	sorted = sorted[offset:]
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (r *fakeAuditRepo) Count(db *gorm.DB) (int64, error) {
	return int64(len(r.entries)), nil
}

func (r *fakeAuditRepo) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			clone := r.entries[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeGateway struct {
	nextID     uuid.UUID
	createErr  error
	disableErr error
	created    []string
	disabled   []uuid.UUID
}

func (g *fakeGateway) CreateUser(ctx context.Context, email, name string) (uuid.UUID, error) {
	if g.createErr != nil {
		return uuid.Nil, g.createErr
	}
	g.created = append(g.created, email)
	if g.nextID == uuid.Nil {
		g.nextID = uuid.New()
	}
	return g.nextID, nil
}

func (g *fakeGateway) DisableUser(ctx context.Context, id uuid.UUID) error {
	if g.disableErr != nil {
		return g.disableErr
	}
	g.disabled = append(g.disabled, id)
	return nil
}

func newAuditService(db *gorm.DB, repo *fakeAuditRepo) service.AuditService {
	return service.NewAuditService(db, testLogger(), repo)
}
