package realtime

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StatusStore persists presence transitions. Satisfied by the chat repository.
type StatusStore interface {
	UpdateUserStatus(ctx context.Context, userID string, status string, lastSeen time.Time) error
}

// Presence derives online/offline status from registry transitions: a user is
// online iff the registry holds a live connection for them. Each transition is
// persisted best-effort and announced to every live connection; sockets that
// fail to accept the announcement are skipped, presence converges on the next
// snapshot fetch.
type Presence struct {
	registry *Registry
	store    StatusStore
	logger   zerolog.Logger
	timeout  time.Duration
}

// NewPresence constructs a Presence tracker over the registry.
func NewPresence(registry *Registry, store StatusStore, logger zerolog.Logger) *Presence {
	return &Presence{
		registry: registry,
		store:    store,
		logger:   logger,
		timeout:  3 * time.Second,
	}
}

// Ensure the registry can observe us
var _ PresenceListener = (*Presence)(nil)

// UserConnected handles a registry attach.
func (p *Presence) UserConnected(userID string) {
	p.transition(userID, "online")
}

// UserDisconnected handles removal of a user's current connection.
func (p *Presence) UserDisconnected(userID string) {
	p.transition(userID, "offline")
}

func (p *Presence) transition(userID string, status string) {
	if p.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.store.UpdateUserStatus(ctx, userID, status, time.Now().UTC()); err != nil {
			p.logger.Warn().Err(err).Str("user_id", userID).Str("status", status).
				Msg("presence update not persisted")
		}
		cancel()
	}

	payload, err := EncodeEvent(EventUserStatusChange, StatusChangePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("encode status change")
		return
	}
	p.registry.BroadcastAll(payload, "")
}
