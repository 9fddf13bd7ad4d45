package models

import "time"

// Comment is attached to one task. UserID goes nil when the authoring
// user is deleted.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}
