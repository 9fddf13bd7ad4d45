package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultTaskStatus = "todo"

// Task is a node in a per-project tree: ParentTaskID points at another
// task in the same project, or is nil for a root task.
type Task struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ProjectID    uint   `gorm:"not null;index" json:"project_id"`
	CreatorID    *uint  `gorm:"index" json:"creator_id"`
	ParentTaskID *uint  `gorm:"index" json:"parent_task_id"`
	Title        string `gorm:"not null" json:"title"`
	Description  string `json:"description"`

	Status   string `gorm:"not null;default:todo" json:"status"`
	Priority int    `gorm:"default:3" json:"priority"`

	DueAt            *time.Time `json:"due_at"`
	StartAt          *time.Time `json:"start_at"`
	EstimatedMinutes *int       `json:"estimated_minutes"`

	// Last reported progress value; written by the progress service.
	ProgressPercentage int `gorm:"default:0" json:"progress_percentage"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Creator   *User            `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"-"`
	Parent    *Task            `gorm:"foreignKey:ParentTaskID;constraint:OnDelete:SET NULL" json:"-"`
	Assignees []User           `gorm:"many2many:task_assignees;constraint:OnDelete:CASCADE" json:"-"`
	Tags      []Tag            `gorm:"many2many:task_tags;constraint:OnDelete:CASCADE" json:"-"`
	Comments  []Comment        `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	Progress  []ProgressUpdate `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// AssigneeIDs returns the ids of the loaded assignee set.
func (t *Task) AssigneeIDs() []uint {
	ids := make([]uint, 0, len(t.Assignees))
	for _, u := range t.Assignees {
		ids = append(ids, u.ID)
	}
	return ids
}

// TagIDs returns the ids of the loaded tag set.
func (t *Task) TagIDs() []uint {
	ids := make([]uint, 0, len(t.Tags))
	for _, tag := range t.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
