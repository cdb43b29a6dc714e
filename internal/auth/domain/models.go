package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Session is an opaque bearer session. Only the token hash is stored;
// the raw token is returned once at login.
type Session struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	TenantID   snowflake.ID `gorm:"not null;index"`
	TokenHash  string       `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt  time.Time    `gorm:"not null;index"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// NewToken generates a raw session token.
func NewToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "sit_" + base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken derives the stored lookup hash for a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
