package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hospital-portal/internal/converter"
	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/domain/repository"
)

var ErrIdentityNotFound = errors.New("identity not found")

// identityCacheTTL bounds how stale a cached identity can get. Profile
// writes invalidate the entry eagerly; the TTL covers invalidations
// lost to crashes.
const identityCacheTTL = time.Minute

func identityCacheKey(id uuid.UUID) string {
	return "portal:identity:" + id.String()
}

type SessionUsecase interface {
	ResolveIdentity(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	BuildSession(ctx context.Context, userID uuid.UUID, sector string) (*dto.SessionResponse, error)
	InvalidateIdentity(ctx context.Context, userID uuid.UUID)
}

type sessionUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	profileRepo repository.ProfileRepository
	redisClient *redis.Client
}

func NewSessionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	redisClient *redis.Client,
) SessionUsecase {
	return &sessionUsecase{
		db:          db,
		log:         log,
		profileRepo: profileRepo,
		redisClient: redisClient,
	}
}

// ResolveIdentity maps a verified token subject to its profile row.
// Tokens themselves come from the external auth provider; this service
// only knows the mirrored profile.
func (u *sessionUsecase) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	key := identityCacheKey(userID)

	cached, err := u.redisClient.Get(ctx, key).Result()
	if err == nil {
		var profile entity.Profile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			return &profile, nil
		}
		u.log.Warnf("Failed to decode cached identity: %+v", err)
	} else if !errors.Is(err, redis.Nil) {
		u.log.Warnf("Failed to read identity cache: %+v", err)
	}

	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find profile by ID: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrIdentityNotFound
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := u.redisClient.Set(ctx, key, data, identityCacheTTL).Err(); err != nil {
			u.log.Warnf("Failed to cache identity: %+v", err)
		}
	}

	return profile, nil
}

// BuildSession assembles what a client needs on connect: who it is,
// which sector is selected, and which sectors exist.
func (u *sessionUsecase) BuildSession(ctx context.Context, userID uuid.UUID, sector string) (*dto.SessionResponse, error) {
	profile, err := u.ResolveIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		User:    converter.ProfileToResponse(profile),
		Sector:  sector,
		Sectors: entity.Sectors,
	}, nil
}

// InvalidateIdentity drops the cached profile after a write so the next
// request sees the fresh row. Best effort; the TTL is the fallback.
func (u *sessionUsecase) InvalidateIdentity(ctx context.Context, userID uuid.UUID) {
	if err := u.redisClient.Del(ctx, identityCacheKey(userID)).Err(); err != nil {
		u.log.Warnf("Failed to invalidate identity cache: %+v", err)
	}
}
