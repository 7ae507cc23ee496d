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

var ErrRoomNotFound = errors.New("room not found")

type RoomUsecase interface {
	CreateRoom(ctx context.Context, actorID uuid.UUID, sector string, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*dto.RoomResponse, error)
	GetRoomsBySector(ctx context.Context, sector string) (*dto.RoomListResponse, error)
	UpdateRoom(ctx context.Context, actorID, id uuid.UUID, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	DeleteRoom(ctx context.Context, actorID, id uuid.UUID) error
}

type roomUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	roomRepo     repository.RoomRepository
	auditService service.AuditService
	channel      notify.Channel
}

func NewRoomUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	roomRepo repository.RoomRepository,
	auditService service.AuditService,
	channel notify.Channel,
) RoomUsecase {
	return &roomUsecase{
		db:           db,
		log:          log,
		roomRepo:     roomRepo,
		auditService: auditService,
		channel:      channel,
	}
}

func (u *roomUsecase) publish(ctx context.Context, table string, op notify.Op, sector string, rowID uuid.UUID) {
	event := notify.Event{
		Table:  table,
		Op:     op,
		Sector: sector,
		RowID:  rowID.String(),
		At:     time.Now(),
	}
	if err := u.channel.Publish(ctx, event); err != nil {
		u.log.Warnf("Failed to publish room change: %+v", err)
	}
}

// CreateRoom files the room under the sector the creating session had
// selected. The sector never changes afterwards; moving a room between
// sectors means delete and recreate.
func (u *roomUsecase) CreateRoom(ctx context.Context, actorID uuid.UUID, sector string, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if !entity.IsValidSector(sector) {
		return nil, ErrInvalidSector
	}

	room := &entity.Room{
		Name:         req.Name,
		Extension:    req.Extension,
		Sector:       sector,
		DisplayOrder: req.DisplayOrder,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.roomRepo.Create(tx, room); err != nil {
		u.log.Warnf("Failed to create room: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &actorID, entity.AuditActionRoomCreate, "rooms", room.ID.String(), room); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publish(ctx, notify.TableRooms, notify.OpInsert, room.Sector, room.ID)

	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) GetRoom(ctx context.Context, id uuid.UUID) (*dto.RoomResponse, error) {
	room, err := u.roomRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find room: %+v", err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) GetRoomsBySector(ctx context.Context, sector string) (*dto.RoomListResponse, error) {
	if !entity.IsValidSector(sector) {
		return nil, ErrInvalidSector
	}

	rooms, err := u.roomRepo.FindBySector(u.db.WithContext(ctx), sector)
	if err != nil {
		u.log.Warnf("Failed to list rooms: %+v", err)
		return nil, err
	}

	responses := converter.RoomsToResponses(rooms)
	return &dto.RoomListResponse{
		Rooms: responses,
		Total: len(responses),
	}, nil
}

func (u *roomUsecase) UpdateRoom(ctx context.Context, actorID, id uuid.UUID, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	room, err := u.roomRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find room: %+v", err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	old := *room

	if req.Name != "" {
		room.Name = req.Name
	}
	if req.Extension != nil {
		room.Extension = *req.Extension
	}
	if req.DisplayOrder != nil {
		room.DisplayOrder = *req.DisplayOrder
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.roomRepo.Update(tx, room); err != nil {
		u.log.Warnf("Failed to update room: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionRoomUpdate, "rooms", room.ID.String(), old, room); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publish(ctx, notify.TableRooms, notify.OpUpdate, room.Sector, room.ID)

	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) DeleteRoom(ctx context.Context, actorID, id uuid.UUID) error {
	room, err := u.roomRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find room: %+v", err)
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.roomRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete room: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrRoomNotFound
	}

	if err := u.auditService.LogDelete(ctx, tx, &actorID, entity.AuditActionRoomDelete, "rooms", id.String(), room); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	// The delete cascades to the room's allocations; both collections
	// need a refetch on open sessions.
	u.publish(ctx, notify.TableRooms, notify.OpDelete, room.Sector, room.ID)
	u.publish(ctx, notify.TableAllocations, notify.OpDelete, room.Sector, room.ID)

	return nil
}
