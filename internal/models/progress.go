package models

import "time"

// ProgressUpdate records a percentage report (0-100) against a task.
type ProgressUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}
