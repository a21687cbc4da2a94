package model

import "time"

// Role controls what a dashboard user may do. Viewers get read-only access;
// admins may mutate.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// ParseRole validates a role label.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleViewer:
		return Role(s), true
	}
	return "", false
}

// User represents a dashboard user stored in the database.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:viewer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
