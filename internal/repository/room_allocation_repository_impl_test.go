package repository

import (
	"regexp"
	"testing"
	"time"

	"hospital-portal/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomAllocationUpsertTargetsSlotKey(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomAllocationRepository()

	roomID := uuid.New()
	doctorID := uuid.New()
	createdBy := uuid.New()
	date, err := time.Parse("2006-01-02", "2024-01-10")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("room_id","date","shift") DO UPDATE SET`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err = repo.Upsert(db, &entity.RoomAllocation{
		RoomID:    roomID,
		Date:      date,
		Shift:     entity.ShiftMorning,
		DoctorID:  doctorID,
		CreatedBy: &createdBy,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomAllocationFindByFilterJoinsSector(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomAllocationRepository()

	allocID := uuid.New()
	roomID := uuid.New()
	doctorID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN rooms ON rooms.id = room_allocations.room_id`)).
		WithArgs("2024-01-10", "CDU").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "date", "shift", "doctor_id"}).
			AddRow(allocID, roomID, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "morning", doctorID))
	// Preloads for Room and Doctor
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(doctorID, "Dra. Helena"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "rooms"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sector"}).AddRow(roomID, "Sala 1", "CDU"))

	allocations, err := repo.FindByFilter(db, &entity.AllocationFilter{Date: "2024-01-10", Sector: "CDU"})
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, entity.ShiftMorning, allocations[0].Shift)
	assert.Equal(t, roomID, allocations[0].RoomID)
}

func TestRoomAllocationFindBySlotNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomAllocationRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "room_allocations"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	allocation, err := repo.FindBySlot(db, uuid.New(), "2024-01-10", entity.ShiftAfternoon)
	require.NoError(t, err)
	assert.Nil(t, allocation)
}

func TestRoomAllocationDeleteBySlotReportsAffected(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomAllocationRepository()

	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "room_allocations"`)).
		WithArgs(roomID, "2024-01-10", "morning").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := repo.DeleteBySlot(db, roomID, "2024-01-10", entity.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Clearing an already empty slot reports zero rows, not an error.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "room_allocations"`)).
		WithArgs(roomID, "2024-01-10", "morning").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err = repo.DeleteBySlot(db, roomID, "2024-01-10", entity.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
