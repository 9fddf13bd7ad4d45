package models

import "time"

// Project-scoped roles, ordered weakest to strongest.
const (
	MembershipRoleMember  = "member"
	MembershipRoleManager = "manager"
	MembershipRoleOwner   = "owner"
)

// ValidMembershipRole reports whether role is one of the known
// project-scoped roles.
func ValidMembershipRole(role string) bool {
	switch role {
	case MembershipRoleMember, MembershipRoleManager, MembershipRoleOwner:
		return true
	}
	return false
}

// Membership binds a (project, user) pair to exactly one role. The pair
// is unique: at most one membership per user per project.
type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_members_project_user" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_members_project_user" json:"user_id"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	AddedBy   *uint     `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`

	Project     *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	User        *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AddedByUser *User    `gorm:"foreignKey:AddedBy;constraint:OnDelete:SET NULL" json:"-"`
}

func (Membership) TableName() string { return "project_members" }
