package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/domain/entity"
)

func TestGetAllAuditLogsPaginatesNewestFirst(t *testing.T) {
	db, _ := setupMockDB(t)
	auditRepo := &fakeAuditRepo{}
	for i := 1; i <= 5; i++ {
		auditRepo.entries = append(auditRepo.entries, entity.AuditLog{ID: int64(i), Action: entity.AuditActionRoomCreate})
	}

	uc := NewAuditLogUsecase(db, testLogger(), auditRepo)
	ctx := context.Background()

	logs, total, err := uc.GetAllAuditLogs(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(5), logs[0].ID)
	assert.Equal(t, int64(4), logs[1].ID)

	// The last page carries the remainder; the total stays the same.
	logs, total, err = uc.GetAllAuditLogs(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(1), logs[0].ID)
}

func TestGetAuditLogNotFound(t *testing.T) {
	db, _ := setupMockDB(t)
	uc := NewAuditLogUsecase(db, testLogger(), &fakeAuditRepo{})

	_, err := uc.GetAuditLog(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
