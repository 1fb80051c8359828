package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:120;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:190;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	IsActive     bool      `gorm:"default:true" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Channel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   uint      `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ChannelID uint       `gorm:"index;not null" json:"channel_id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	IsEdited  bool       `gorm:"default:false" json:"is_edited"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MessageReport rows are append-only; the composite unique index keeps it
// to one report per user per message.
type MessageReport struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MessageID      uint      `gorm:"not null;uniqueIndex:uq_message_report_per_user" json:"message_id"`
	ReporterUserID uint      `gorm:"not null;uniqueIndex:uq_message_report_per_user" json:"-"`
	Label          string    `gorm:"size:50;not null" json:"label"`
	CreatedAt      time.Time `json:"created_at"`
}
