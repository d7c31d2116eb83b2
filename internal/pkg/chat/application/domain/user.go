package chat

import "time"

// UserStatus is the presence state derived from live connections.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
)

// User is an account in the chat system. PasswordHash never leaves the
// persistence/auth boundary; presentation layers serialize users without it.
type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Avatar       string     `db:"avatar"`
	Status       UserStatus `db:"status"`
	LastSeen     time.Time  `db:"last_seen"`
}
