package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an admin account. Regular attendees never have accounts; the
// submission flow is anonymous.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_user_email"`
	Password  string    `gorm:"column:password;type:varchar(255);not null"`
	Role      string    `gorm:"column:role;type:varchar(20);not null;default:admin"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
