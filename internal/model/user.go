package model

import "time"

// User represents an account as stored in the `users` table.  Rows are
// created by the OAuth sign-in flow the first time a person logs in; the
// carpool core only reads and references them.
//
// Fields:
//
//	ID        – opaque identifier issued by the identity provider.
//	Name      – display name, used to order participant lists.
//	Email     – unique email address.
//	Image     – avatar URL (may be empty).
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type User struct {
	ID        string    `gorm:"type:varchar(191);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;default:''" json:"name"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex:ux_users_email" json:"-"`
	Image     string    `gorm:"type:varchar(1024);not null;default:''" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
