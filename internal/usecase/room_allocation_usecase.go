package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hospital-portal/internal/converter"
	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/domain/repository"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/service"
)

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrNotADoctor        = errors.New("profile is not a doctor")
	ErrInvalidShift      = errors.New("invalid shift, use morning or afternoon")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
)

type RoomAllocationUsecase interface {
	AssignDoctor(ctx context.Context, actorID uuid.UUID, req *dto.AssignAllocationRequest) (*dto.AllocationResponse, error)
	ClearSlot(ctx context.Context, actorID uuid.UUID, req *dto.ClearAllocationRequest) error
	GetAllocations(ctx context.Context, sector, date string) (*dto.AllocationListResponse, error)
}

type roomAllocationUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	allocRepo    repository.RoomAllocationRepository
	roomRepo     repository.RoomRepository
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
	channel      notify.Channel
}

func NewRoomAllocationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	allocRepo repository.RoomAllocationRepository,
	roomRepo repository.RoomRepository,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
	channel notify.Channel,
) RoomAllocationUsecase {
	return &roomAllocationUsecase{
		db:           db,
		log:          log,
		allocRepo:    allocRepo,
		roomRepo:     roomRepo,
		profileRepo:  profileRepo,
		auditService: auditService,
		channel:      channel,
	}
}

func (u *roomAllocationUsecase) publish(ctx context.Context, op notify.Op, sector string, rowID uuid.UUID) {
	event := notify.Event{
		Table:  notify.TableAllocations,
		Op:     op,
		Sector: sector,
		RowID:  rowID.String(),
		At:     time.Now(),
	}
	if err := u.channel.Publish(ctx, event); err != nil {
		u.log.Warnf("Failed to publish allocation change: %+v", err)
	}
}

// AssignDoctor books a doctor into a room slot. The write is an upsert
// on (room, date, shift): assigning an occupied slot replaces the
// previous doctor rather than erroring, so the last write wins.
func (u *roomAllocationUsecase) AssignDoctor(ctx context.Context, actorID uuid.UUID, req *dto.AssignAllocationRequest) (*dto.AllocationResponse, error) {
	shift := entity.Shift(req.Shift)
	if !shift.IsValid() {
		return nil, ErrInvalidShift
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	room, err := u.roomRepo.FindByID(u.db.WithContext(ctx), req.RoomID)
	if err != nil {
		u.log.Warnf("Failed to find room: %+v", err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	doctor, err := u.profileRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsDoctor() {
		return nil, ErrNotADoctor
	}

	allocation := &entity.RoomAllocation{
		RoomID:    req.RoomID,
		Date:      date,
		Shift:     shift,
		DoctorID:  req.DoctorID,
		CreatedBy: &actorID,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	prior, err := u.allocRepo.FindBySlot(tx, req.RoomID, req.Date, shift)
	if err != nil {
		u.log.Warnf("Failed to read slot: %+v", err)
		return nil, err
	}

	if err := u.allocRepo.Upsert(tx, allocation); err != nil {
		if isForeignKeyError(err, "room") {
			return nil, ErrRoomNotFound
		}
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to upsert allocation: %+v", err)
		return nil, err
	}

	op := notify.OpInsert
	if prior != nil {
		op = notify.OpUpdate
		err = u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionAllocationSet, "room_allocations", allocation.ID.String(), prior, allocation)
	} else {
		err = u.auditService.LogCreate(ctx, tx, &actorID, entity.AuditActionAllocationSet, "room_allocations", allocation.ID.String(), allocation)
	}
	if err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publish(ctx, op, room.Sector, allocation.ID)

	allocation.Room = *room
	allocation.Doctor = *doctor
	return converter.AllocationToResponse(allocation), nil
}

// ClearSlot removes whatever allocation occupies the slot. Clearing an
// empty slot is a no-op, not an error, and publishes nothing.
func (u *roomAllocationUsecase) ClearSlot(ctx context.Context, actorID uuid.UUID, req *dto.ClearAllocationRequest) error {
	shift := entity.Shift(req.Shift)
	if !shift.IsValid() {
		return ErrInvalidShift
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return ErrInvalidDateFormat
	}

	room, err := u.roomRepo.FindByID(u.db.WithContext(ctx), req.RoomID)
	if err != nil {
		u.log.Warnf("Failed to find room: %+v", err)
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	existing, err := u.allocRepo.FindBySlot(u.db.WithContext(ctx), req.RoomID, req.Date, shift)
	if err != nil {
		u.log.Warnf("Failed to read slot: %+v", err)
		return err
	}
	if existing == nil {
		return nil
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.allocRepo.DeleteBySlot(tx, req.RoomID, req.Date, shift)
	if err != nil {
		u.log.Warnf("Failed to clear slot: %+v", err)
		return err
	}
	if affected == 0 {
		// Lost a race with another clear; the slot is already empty.
		return nil
	}

	if err := u.auditService.LogDelete(ctx, tx, &actorID, entity.AuditActionAllocationClear, "room_allocations", existing.ID.String(), existing); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.publish(ctx, notify.OpDelete, room.Sector, existing.ID)

	return nil
}

func (u *roomAllocationUsecase) GetAllocations(ctx context.Context, sector, date string) (*dto.AllocationListResponse, error) {
	if sector != "" && !entity.IsValidSector(sector) {
		return nil, ErrInvalidSector
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, ErrInvalidDateFormat
		}
	}

	allocations, err := u.allocRepo.FindByFilter(u.db.WithContext(ctx), &entity.AllocationFilter{
		Date:   date,
		Sector: sector,
	})
	if err != nil {
		u.log.Warnf("Failed to list allocations: %+v", err)
		return nil, err
	}

	responses := converter.AllocationsToResponses(allocations)
	return &dto.AllocationListResponse{
		Allocations: responses,
		Date:        date,
		Total:       len(responses),
	}, nil
}
