package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "chatwire/internal/infrastructure/cache/port"
	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

const (
	userProfileKeyPrefix = "user:profile:"
	userProfileTTL       = 5 * time.Minute
)

// cachedProfile is the JSON shape stored in the cache. Presence fields are
// excluded: status and last-seen move too fast to cache.
type cachedProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// GetUserUseCase resolves a user profile through a read-through cache. The
// message fan-out path calls this once per send to populate sender info, so
// hot profiles stay out of the database. A nil cache degrades to direct reads.
type GetUserUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
}

func NewGetUserUseCase(repo repository.ChatRepository, cache cacheport.Cache) *GetUserUseCase {
	return &GetUserUseCase{Repo: repo, Cache: cache}
}

func (uc *GetUserUseCase) Execute(ctx context.Context, userID string) (*chat.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	key := userProfileKeyPrefix + userID
	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var p cachedProfile
			if json.Unmarshal([]byte(raw), &p) == nil && p.ID != "" {
				return &chat.User{ID: p.ID, Username: p.Username, Avatar: p.Avatar}, nil
			}
		}
		// Misses and cache transport errors both fall through to the store.
	}

	user, err := uc.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	user.PasswordHash = ""

	if uc.Cache != nil {
		if raw, err := json.Marshal(cachedProfile{ID: user.ID, Username: user.Username, Avatar: user.Avatar}); err == nil {
			// Best effort; a failed write just means the next read hits the store.
			_ = uc.Cache.Set(ctx, key, string(raw), userProfileTTL)
		}
	}
	return user, nil
}
