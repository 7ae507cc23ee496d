package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/notify"
)

func setupRoomUsecase(t *testing.T) (RoomUsecase, *fakeRoomRepo, *fakeAuditRepo, *notify.MemoryChannel, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := setupMockDB(t)
	roomRepo := newFakeRoomRepo()
	auditRepo := &fakeAuditRepo{}
	channel := notify.NewMemoryChannel(testLogger())

	uc := NewRoomUsecase(db, testLogger(), roomRepo, newAuditService(db, auditRepo), channel)
	return uc, roomRepo, auditRepo, channel, mock
}

func TestCreateRoomScopedToSessionSector(t *testing.T) {
	uc, repo, auditRepo, channel, mock := setupRoomUsecase(t)
	ctx := context.Background()

	sub, err := channel.Subscribe(ctx, notify.Filter{Sector: "CDU"}, notify.TableRooms)
	require.NoError(t, err)
	defer sub.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := uc.CreateRoom(ctx, uuid.New(), "CDU", &dto.CreateRoomRequest{
		Name:      "Sala 1",
		Extension: "201",
	})
	require.NoError(t, err)
	assert.Equal(t, "CDU", resp.Sector)
	assert.Equal(t, "201", resp.Extension)

	stored, _ := repo.FindByID(nil, resp.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "CDU", stored.Sector)

	assert.Equal(t, []string{entity.AuditActionRoomCreate}, auditRepo.actions())

	event := recvEvent(t, sub)
	assert.Equal(t, notify.TableRooms, event.Table)
	assert.Equal(t, "CDU", event.Sector)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomRejectsUnknownSector(t *testing.T) {
	uc, _, _, _, mock := setupRoomUsecase(t)

	_, err := uc.CreateRoom(context.Background(), uuid.New(), "Basement", &dto.CreateRoomRequest{Name: "Sala X"})
	assert.ErrorIs(t, err, ErrInvalidSector)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomSucceedsWhenAuditWriteFails(t *testing.T) {
	uc, repo, auditRepo, _, mock := setupRoomUsecase(t)

	auditRepo.createErr = errors.New("audit insert failed")

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := uc.CreateRoom(context.Background(), uuid.New(), "CDU", &dto.CreateRoomRequest{Name: "Sala 1"})
	require.NoError(t, err, "a failed audit write must not block the mutation")

	stored, _ := repo.FindByID(nil, resp.ID)
	assert.NotNil(t, stored)
	assert.Empty(t, auditRepo.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoomKeepsSector(t *testing.T) {
	uc, repo, _, _, mock := setupRoomUsecase(t)

	id := uuid.New()
	repo.add(entity.Room{ID: id, Name: "Sala 1", Extension: "201", Sector: "CDU"})

	mock.ExpectBegin()
	mock.ExpectCommit()

	empty := ""
	resp, err := uc.UpdateRoom(context.Background(), uuid.New(), id, &dto.UpdateRoomRequest{
		Name:      "Sala 1A",
		Extension: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sala 1A", resp.Name)
	assert.Equal(t, "", resp.Extension)
	assert.Equal(t, "CDU", resp.Sector, "sector is fixed at creation")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoomNotFound(t *testing.T) {
	uc, _, _, _, _ := setupRoomUsecase(t)

	_, err := uc.UpdateRoom(context.Background(), uuid.New(), uuid.New(), &dto.UpdateRoomRequest{Name: "Sala X"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDeleteRoomNotifiesBothCollections(t *testing.T) {
	uc, repo, auditRepo, channel, mock := setupRoomUsecase(t)
	ctx := context.Background()

	id := uuid.New()
	repo.add(entity.Room{ID: id, Name: "Sala 1", Sector: "CDU"})

	roomSub, err := channel.Subscribe(ctx, notify.Filter{}, notify.TableRooms)
	require.NoError(t, err)
	defer roomSub.Close()

	allocSub, err := channel.Subscribe(ctx, notify.Filter{}, notify.TableAllocations)
	require.NoError(t, err)
	defer allocSub.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, uc.DeleteRoom(ctx, uuid.New(), id))

	stored, _ := repo.FindByID(nil, id)
	assert.Nil(t, stored)
	assert.Equal(t, []string{entity.AuditActionRoomDelete}, auditRepo.actions())

	roomEvent := recvEvent(t, roomSub)
	assert.Equal(t, notify.OpDelete, roomEvent.Op)

	// Allocations vanish with the room via the cascade, so those views
	// refetch too.
	allocEvent := recvEvent(t, allocSub)
	assert.Equal(t, notify.TableAllocations, allocEvent.Table)
	assert.Equal(t, notify.OpDelete, allocEvent.Op)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoomsBySector(t *testing.T) {
	uc, repo, _, _, _ := setupRoomUsecase(t)

	repo.add(entity.Room{ID: uuid.New(), Name: "Sala 1", Sector: "CDU"})
	repo.add(entity.Room{ID: uuid.New(), Name: "Box 1", Sector: "UTI"})

	resp, err := uc.GetRoomsBySector(context.Background(), "CDU")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Sala 1", resp.Rooms[0].Name)

	_, err = uc.GetRoomsBySector(context.Background(), "Basement")
	assert.ErrorIs(t, err, ErrInvalidSector)
}
