package adapter

import (
	"context"
	"errors"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.ChatRepository = (*PgChatRepository)(nil)

// mapErr converts pgx sentinel errors to the repository's typed errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repository.ErrConflict
	}
	return err
}

// ===================== Messages =====================

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (room_id, sender_id, content, is_private, recipient_id, file_url, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5::uuid, $6, $7)
		RETURNING id::text
	`, m.RoomID, m.SenderID, m.Content, m.IsPrivate, m.RecipientID, m.FileURL, m.CreatedAt).Scan(&id)
	return id, mapErr(err)
}

func (r *PgChatRepository) ListMessagesByRoom(ctx context.Context, roomID string, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, room_id::text, sender_id::text, content, is_private, recipient_id::text, file_url, created_at
		FROM chat.message
		WHERE room_id = $1::uuid
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.IsPrivate,
			&msg.RecipientID, &msg.FileURL, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

// ===================== Rooms =====================

func (r *PgChatRepository) CreateRoom(ctx context.Context, room chat.Room) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.room (name, is_private, created_at)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, room.Name, room.IsPrivate, room.CreatedAt).Scan(&id)
	if err != nil {
		return "", mapErr(err)
	}

	for _, uid := range room.ParticipantIDs {
		if uid == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat.room_participant (room_id, user_id)
			VALUES ($1::uuid, $2::uuid)
			ON CONFLICT (room_id, user_id) DO NOTHING
		`, id, uid); err != nil {
			return "", mapErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", mapErr(err)
	}
	return id, nil
}

func (r *PgChatRepository) GetRoom(ctx context.Context, roomID string) (*chat.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.scanRoom(ctx, `
		SELECT rm.id::text, rm.name, rm.is_private, rm.created_at,
		       COALESCE(array_agg(p.user_id::text) FILTER (WHERE p.user_id IS NOT NULL), '{}')
		FROM chat.room rm
		LEFT JOIN chat.room_participant p ON p.room_id = rm.id
		WHERE rm.id = $1::uuid
		GROUP BY rm.id
	`, roomID)
}

func (r *PgChatRepository) FindRoomByPairingKey(ctx context.Context, key string) (*chat.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.scanRoom(ctx, `
		SELECT rm.id::text, rm.name, rm.is_private, rm.created_at,
		       COALESCE(array_agg(p.user_id::text) FILTER (WHERE p.user_id IS NOT NULL), '{}')
		FROM chat.room rm
		LEFT JOIN chat.room_participant p ON p.room_id = rm.id
		WHERE rm.name = $1 AND rm.is_private
		GROUP BY rm.id
	`, key)
}

func (r *PgChatRepository) scanRoom(ctx context.Context, query string, arg any) (*chat.Room, error) {
	var room chat.Room
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&room.ID, &room.Name, &room.IsPrivate, &room.CreatedAt, &room.ParticipantIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	return &room, nil
}

func (r *PgChatRepository) ListPublicRooms(ctx context.Context) ([]chat.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.scanRooms(ctx, `
		SELECT rm.id::text, rm.name, rm.is_private, rm.created_at,
		       COALESCE(array_agg(p.user_id::text) FILTER (WHERE p.user_id IS NOT NULL), '{}')
		FROM chat.room rm
		LEFT JOIN chat.room_participant p ON p.room_id = rm.id
		WHERE NOT rm.is_private
		GROUP BY rm.id
		ORDER BY rm.created_at ASC
	`)
}

func (r *PgChatRepository) FindRoomsByParticipant(ctx context.Context, userID string) ([]chat.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.scanRooms(ctx, `
		SELECT rm.id::text, rm.name, rm.is_private, rm.created_at,
		       COALESCE(array_agg(p.user_id::text) FILTER (WHERE p.user_id IS NOT NULL), '{}')
		FROM chat.room rm
		LEFT JOIN chat.room_participant p ON p.room_id = rm.id
		WHERE rm.id IN (
			SELECT room_id FROM chat.room_participant WHERE user_id = $1::uuid
		)
		GROUP BY rm.id
		ORDER BY rm.created_at ASC
	`, userID)
}

func (r *PgChatRepository) scanRooms(ctx context.Context, query string, args ...any) ([]chat.Room, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []chat.Room
	for rows.Next() {
		var room chat.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.IsPrivate, &room.CreatedAt, &room.ParticipantIDs); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rooms, nil
}

func (r *PgChatRepository) AddParticipant(ctx context.Context, roomID string, userID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.room_participant (room_id, user_id)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, roomID, userID)
	return mapErr(err)
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, roomID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx,
		"SELECT user_id::text FROM chat.room_participant WHERE room_id = $1::uuid", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, roomID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.room_participant
			WHERE room_id = $1::uuid AND user_id = $2::uuid
		)
	`, roomID, userID).Scan(&exists)
	return exists, err
}

// ===================== Users =====================

func (r *PgChatRepository) CreateUser(ctx context.Context, u chat.User) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.app_user (username, password_hash, avatar, status, last_seen)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text
	`, u.Username, u.PasswordHash, u.Avatar, string(u.Status), u.LastSeen).Scan(&id)
	return id, mapErr(err)
}

func (r *PgChatRepository) FindUserByID(ctx context.Context, id string) (*chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.scanUser(ctx, `
		SELECT id::text, username, password_hash, avatar, status, last_seen
		FROM chat.app_user WHERE id = $1::uuid
	`, id)
}

func (r *PgChatRepository) FindUserByUsername(ctx context.Context, username string) (*chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	return r.scanUser(ctx, `
		SELECT id::text, username, password_hash, avatar, status, last_seen
		FROM chat.app_user WHERE username = $1
	`, username)
}

func (r *PgChatRepository) scanUser(ctx context.Context, query string, arg any) (*chat.User, error) {
	var u chat.User
	var status string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Avatar, &status, &u.LastSeen)
	if err != nil {
		return nil, mapErr(err)
	}
	u.Status = chat.UserStatus(status)
	return &u, nil
}

func (r *PgChatRepository) ListUsers(ctx context.Context) ([]chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, username, password_hash, avatar, status, last_seen
		FROM chat.app_user
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []chat.User
	for rows.Next() {
		var u chat.User
		var status string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Avatar, &status, &u.LastSeen); err != nil {
			return nil, err
		}
		u.Status = chat.UserStatus(status)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgChatRepository) UpdateUserStatus(ctx context.Context, userID string, status string, lastSeen time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.app_user
		SET status = $2, last_seen = $3
		WHERE id = $1::uuid
	`, userID, status, lastSeen)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
