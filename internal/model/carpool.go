package model

import "time"

// Carpool is a single scheduled trip with a fixed seat capacity.  It maps to
// the `carpools` table.  AvailableSeats is the live counter adjusted as
// participants join and leave; TotalSeats is fixed at creation.
//
// Fields:
//
//	ID                  – ULID primary key.
//	Title               – "<departure> → <arrival>", derived at creation.
//	Departure/Arrival   – free text locations.
//	Description         – optional, at most 500 characters.
//	DepartureDate       – calendar day of departure (UTC midnight).
//	DepartureTime       – wall clock time "HH:MM".
//	AvailableSeats      – seats left, 0..TotalSeats.
//	TotalSeats          – capacity chosen by the creator (1..20).
//	IsDriverSoberNeeded – whether a sober driver must be designated.
//	SoberDriverFound    – true when a sober driver is assigned or none is needed.
//	SoberDriverID       – currently assigned sober driver (nullable).
//	IsPrivate           – hidden from the public listing, joinable by code.
//	InvitationCode      – unique code used to join directly.
//	IsArchived          – paused by the creator, reversible.
//	IsFinished          – terminal state.
//	CreatorID           – user who created the carpool.
type Carpool struct {
	ID                  string    `gorm:"type:varchar(26);primaryKey" json:"id"`
	Title               string    `gorm:"type:varchar(512);not null" json:"title"`
	Departure           string    `gorm:"type:varchar(255);not null" json:"departure"`
	Arrival             string    `gorm:"type:varchar(255);not null" json:"arrival"`
	Description         string    `gorm:"type:varchar(500);not null;default:''" json:"description"`
	DepartureDate       time.Time `gorm:"not null;index:idx_carpools_departure" json:"departure_date"`
	DepartureTime       string    `gorm:"type:varchar(5);not null;index:idx_carpools_departure" json:"departure_time"`
	AvailableSeats      int       `gorm:"not null" json:"available_seats"`
	TotalSeats          int       `gorm:"not null" json:"total_seats"`
	IsDriverSoberNeeded bool      `gorm:"not null;default:false" json:"is_driver_sober_needed"`
	SoberDriverFound    bool      `gorm:"not null;default:false" json:"sober_driver_found"`
	SoberDriverID       *string   `gorm:"type:varchar(191);index" json:"sober_driver_id"`
	IsPrivate           bool      `gorm:"not null;default:false" json:"is_private"`
	InvitationCode      string    `gorm:"type:varchar(12);not null;uniqueIndex:ux_carpools_invitation_code" json:"invitation_code"`
	IsArchived          bool      `gorm:"not null;default:false;index" json:"is_archived"`
	IsFinished          bool      `gorm:"not null;default:false;index" json:"is_finished"`
	CreatorID           string    `gorm:"type:varchar(191);not null;index" json:"creator_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Creator     *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	SoberDriver *User `gorm:"foreignKey:SoberDriverID;constraint:OnDelete:SET NULL" json:"sober_driver,omitempty"`
}

func (Carpool) TableName() string { return "carpools" }

// Active reports whether the carpool still accepts joins and roster changes.
func (c *Carpool) Active() bool { return !c.IsFinished && !c.IsArchived }
