package domain

import "time"

// RefreshSession is the server-side record of one issued refresh token.
// A refresh token is honored only while a row with its jti exists and
// has not expired; deleting the row revokes the token regardless of
// its signature validity.
type RefreshSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	JTI       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"jti"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	UserAgent *string   `json:"user_agent,omitempty"`
	IPAddress *string   `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
