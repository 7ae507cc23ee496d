package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
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
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidSector      = errors.New("invalid sector")
	ErrSelfDelete         = errors.New("cannot delete own profile")
	ErrSelfDemote         = errors.New("cannot revoke own admin access")
)

// IdentityGateway provisions and disables login identities at the
// external auth provider. Profiles mirror those identities locally.
type IdentityGateway interface {
	CreateUser(ctx context.Context, email, name string) (uuid.UUID, error)
	DisableUser(ctx context.Context, id uuid.UUID) error
}

type ProfileUsecase interface {
	CreateProfile(ctx context.Context, actorID uuid.UUID, req *dto.CreateProfileRequest) (*dto.ProfileResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error)
	GetAllProfiles(ctx context.Context) (*dto.ProfileListResponse, error)
	GetDoctors(ctx context.Context) (*dto.ProfileListResponse, error)
	UpdateProfile(ctx context.Context, actorID, id uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UpdateOwnStatus(ctx context.Context, actorID uuid.UUID, req *dto.UpdateStatusRequest) (*dto.ProfileResponse, error)
	DeleteProfile(ctx context.Context, actorID, id uuid.UUID) error
}

type profileUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
	identityGate IdentityGateway
	channel      notify.Channel
	redisClient  *redis.Client
}

func NewProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
	identityGate IdentityGateway,
	channel notify.Channel,
	redisClient *redis.Client,
) ProfileUsecase {
	return &profileUsecase{
		db:           db,
		log:          log,
		profileRepo:  profileRepo,
		auditService: auditService,
		identityGate: identityGate,
		channel:      channel,
		redisClient:  redisClient,
	}
}

// Profile events carry no sector: staff lists are global, every
// connected session re-fetches on any profile change.
func (u *profileUsecase) publish(ctx context.Context, table string, op notify.Op, rowID uuid.UUID) {
	event := notify.Event{
		Table: table,
		Op:    op,
		RowID: rowID.String(),
		At:    time.Now(),
	}
	if err := u.channel.Publish(ctx, event); err != nil {
		u.log.Warnf("Failed to publish profile change: %+v", err)
	}
}

func (u *profileUsecase) invalidateIdentity(ctx context.Context, id uuid.UUID) {
	if err := u.redisClient.Del(ctx, identityCacheKey(id)).Err(); err != nil {
		u.log.Warnf("Failed to invalidate identity cache: %+v", err)
	}
}

// disableOrphanedIdentity cleans up a provider identity whose profile
// row never landed. Best effort; the provider side tolerates re-runs.
func (u *profileUsecase) disableOrphanedIdentity(ctx context.Context, id uuid.UUID) {
	if err := u.identityGate.DisableUser(ctx, id); err != nil {
		u.log.Warnf("Failed to disable orphaned identity %s: %+v", id, err)
	}
}

func (u *profileUsecase) CreateProfile(ctx context.Context, actorID uuid.UUID, req *dto.CreateProfileRequest) (*dto.ProfileResponse, error) {
	if !entity.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	if req.Status != "" && !entity.ProfileStatus(req.Status).IsValid() {
		return nil, ErrInvalidStatus
	}
	if req.Sector != "" && !entity.IsValidSector(req.Sector) {
		return nil, ErrInvalidSector
	}

	existing, err := u.profileRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to check email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	// The provider issues the id; the profile row reuses it so tokens
	// map straight onto rows.
	userID, err := u.identityGate.CreateUser(ctx, req.Email, req.Name)
	if err != nil {
		u.log.Warnf("Failed to provision identity: %+v", err)
		return nil, err
	}

	status := entity.ProfileStatus(req.Status)
	if status == "" {
		status = entity.DefaultStatus(req.Role)
	}

	profile := &entity.Profile{
		ID:        userID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Specialty: req.Specialty,
		Sector:    req.Sector,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Status:    status,
		IsAdmin:   req.IsAdmin,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.profileRepo.Create(tx, profile); err != nil {
		u.disableOrphanedIdentity(ctx, userID)
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &actorID, entity.AuditActionProfileCreate, "profiles", profile.ID.String(), profile); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		u.disableOrphanedIdentity(ctx, userID)
		return nil, err
	}

	u.publish(ctx, notify.TableProfiles, notify.OpInsert, profile.ID)

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) GetAllProfiles(ctx context.Context) (*dto.ProfileListResponse, error) {
	profiles, err := u.profileRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list profiles: %+v", err)
		return nil, err
	}

	responses := converter.ProfilesToResponses(profiles)
	return &dto.ProfileListResponse{
		Profiles: responses,
		Total:    len(responses),
	}, nil
}

func (u *profileUsecase) GetDoctors(ctx context.Context) (*dto.ProfileListResponse, error) {
	doctors, err := u.profileRepo.FindByRole(u.db.WithContext(ctx), entity.RoleDoctor)
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	responses := converter.ProfilesToResponses(doctors)
	return &dto.ProfileListResponse{
		Profiles: responses,
		Total:    len(responses),
	}, nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, actorID, id uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if actorID == id && profile.IsAdmin && req.IsAdmin != nil && !*req.IsAdmin {
		return nil, ErrSelfDemote
	}

	old := *profile

	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.Role != "" {
		if !entity.IsValidRole(req.Role) {
			return nil, ErrInvalidRole
		}
		profile.Role = req.Role
	}
	if req.Specialty != "" {
		profile.Specialty = req.Specialty
	}
	if req.Sector != "" {
		if !entity.IsValidSector(req.Sector) {
			return nil, ErrInvalidSector
		}
		profile.Sector = req.Sector
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Avatar != "" {
		profile.Avatar = req.Avatar
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.Status != "" {
		status := entity.ProfileStatus(req.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		profile.Status = status
	}
	if req.IsAdmin != nil {
		profile.IsAdmin = *req.IsAdmin
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.profileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionProfileUpdate, "profiles", profile.ID.String(), old, profile); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.invalidateIdentity(ctx, id)
	u.publish(ctx, notify.TableProfiles, notify.OpUpdate, profile.ID)

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) UpdateOwnStatus(ctx context.Context, actorID uuid.UUID, req *dto.UpdateStatusRequest) (*dto.ProfileResponse, error) {
	status := entity.ProfileStatus(req.Status)
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), actorID)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	oldStatus := profile.Status

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.profileRepo.UpdateStatus(tx, actorID, status)
	if err != nil {
		u.log.Warnf("Failed to update status: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrProfileNotFound
	}

	err = u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionProfileStatus, "profiles", actorID.String(),
		entity.JSON{"status": oldStatus},
		entity.JSON{"status": status},
	)
	if err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	profile.Status = status

	u.invalidateIdentity(ctx, actorID)
	u.publish(ctx, notify.TableProfiles, notify.OpUpdate, actorID)

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) DeleteProfile(ctx context.Context, actorID, id uuid.UUID) error {
	// Checked before anything leaves this process: a session must never
	// remove its own account.
	if actorID == id {
		return ErrSelfDelete
	}

	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	// Disable at the provider first so no new tokens arrive for a row
	// that is about to vanish.
	if err := u.identityGate.DisableUser(ctx, id); err != nil {
		u.log.Warnf("Failed to disable identity: %+v", err)
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.profileRepo.Delete(tx, id)
	if err != nil {
		u.log.Warnf("Failed to delete profile: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	if err := u.auditService.LogDelete(ctx, tx, &actorID, entity.AuditActionProfileDelete, "profiles", id.String(), profile); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.invalidateIdentity(ctx, id)
	u.publish(ctx, notify.TableProfiles, notify.OpDelete, id)
	// The row delete cascades to the doctor's allocations, which can sit
	// in any sector; open room maps need a refetch too.
	u.publish(ctx, notify.TableAllocations, notify.OpDelete, id)

	return nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
