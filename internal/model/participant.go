package model

import "time"

// CarpoolParticipant links a user to a carpool.  The composite primary key
// (user_id, carpool_id) guarantees a user joins a given carpool at most once.
// The creator's row is inserted together with the carpool.
type CarpoolParticipant struct {
	UserID    string    `gorm:"type:varchar(191);primaryKey" json:"user_id"`
	CarpoolID string    `gorm:"type:varchar(26);primaryKey;index" json:"carpool_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Carpool *Carpool `gorm:"foreignKey:CarpoolID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CarpoolParticipant) TableName() string { return "carpool_participants" }

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &Carpool{}, &CarpoolParticipant{}}
}
