package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orgatagova/orgatagova/internal/model"
)

// ParticipantRepo manages carpool_participants.  The composite primary key
// (user_id, carpool_id) rejects a second membership for the same pair.
type ParticipantRepo struct{ db *gorm.DB }

func NewParticipantRepo(db *gorm.DB) *ParticipantRepo { return &ParticipantRepo{db: db} }

// Exists reports whether userID is a participant of carpoolID.
func (r *ParticipantRepo) Exists(ctx context.Context, userID, carpoolID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CarpoolParticipant{}).
		Where("user_id = ? AND carpool_id = ?", userID, carpoolID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count participant: %w", err)
	}
	return n > 0, nil
}

// Add inserts a membership row.  ErrDuplicate is returned when it already
// exists and ErrInvalidReference when the user or carpool row is missing.
func (r *ParticipantRepo) Add(ctx context.Context, userID, carpoolID string) error {
	p := model.CarpoolParticipant{UserID: userID, CarpoolID: carpoolID}
	return translate(r.db.WithContext(ctx).Omit("User", "Carpool").Create(&p).Error)
}

// Remove deletes a membership row.  It returns false when there was none.
func (r *ParticipantRepo) Remove(ctx context.Context, userID, carpoolID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND carpool_id = ?", userID, carpoolID).
		Delete(&model.CarpoolParticipant{})
	if res.Error != nil {
		return false, fmt.Errorf("delete participant: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RemoveAll deletes every membership of carpoolID.
func (r *ParticipantRepo) RemoveAll(ctx context.Context, carpoolID string) error {
	err := r.db.WithContext(ctx).
		Where("carpool_id = ?", carpoolID).
		Delete(&model.CarpoolParticipant{}).Error
	if err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}

// CountExcept counts the participants of carpoolID other than userID.
func (r *ParticipantRepo) CountExcept(ctx context.Context, carpoolID, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CarpoolParticipant{}).
		Where("carpool_id = ? AND user_id <> ?", carpoolID, userID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// ListUsers returns the users taking part in carpoolID ordered by name.
func (r *ParticipantRepo) ListUsers(ctx context.Context, carpoolID string) ([]model.User, error) {
	var out []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN carpool_participants cp ON cp.user_id = users.id").
		Where("cp.carpool_id = ?", carpoolID).
		Order("users.name ASC, users.id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return out, nil
}
