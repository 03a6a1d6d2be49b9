package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orgatagova/orgatagova/internal/model"
)

// CarpoolRepo reads and mutates rows of the carpools table.  Seat and sober
// driver mutations are guarded conditional updates: the WHERE clause carries
// the precondition and the affected row count tells the caller whether it
// held at write time.
type CarpoolRepo struct{ db *gorm.DB }

func NewCarpoolRepo(db *gorm.DB) *CarpoolRepo { return &CarpoolRepo{db: db} }

const listOrder = "departure_date ASC, departure_time ASC, id ASC"

// Create inserts c.  ErrDuplicate signals an invitation code collision and
// ErrInvalidReference a creator id with no user row.
func (r *CarpoolRepo) Create(ctx context.Context, c *model.Carpool) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

// GetByID fetches a carpool by id.
func (r *CarpoolRepo) GetByID(ctx context.Context, id string) (*model.Carpool, error) {
	var c model.Carpool
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetByIDForUpdate fetches a carpool and locks its row until the enclosing
// transaction ends.  Dialects without row locks (SQLite) omit the clause.
func (r *CarpoolRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Carpool, error) {
	var c model.Carpool
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetByInvitationCode resolves a carpool from its invitation code.
func (r *CarpoolRepo) GetByInvitationCode(ctx context.Context, code string) (*model.Carpool, error) {
	var c model.Carpool
	if err := r.db.WithContext(ctx).First(&c, "invitation_code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// InvitationCodeExists reports whether code is already taken.
func (r *CarpoolRepo) InvitationCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Carpool{}).Where("invitation_code = ?", code).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count invitation code: %w", err)
	}
	return n > 0, nil
}

// TakeSeat decrements available_seats when at least one seat is free and the
// carpool is neither finished nor archived.  It returns false when the
// guard did not match.
func (r *CarpoolRepo) TakeSeat(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Carpool{}).
		Where("id = ? AND available_seats > 0 AND is_finished = ? AND is_archived = ?", id, false, false).
		Update("available_seats", gorm.Expr("available_seats - 1"))
	if res.Error != nil {
		return false, fmt.Errorf("take seat: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSeat increments available_seats unless it already equals
// total_seats.  It returns false when the counter was already at capacity.
func (r *CarpoolRepo) ReleaseSeat(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Carpool{}).
		Where("id = ? AND available_seats < total_seats", id).
		Update("available_seats", gorm.Expr("available_seats + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("release seat: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ClaimSoberDriver assigns userID as sober driver only while no one holds
// the role.  It returns false when another driver was assigned first.
func (r *CarpoolRepo) ClaimSoberDriver(ctx context.Context, id, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Carpool{}).
		Where("id = ? AND sober_driver_id IS NULL", id).
		Updates(map[string]any{"sober_driver_id": userID, "sober_driver_found": true})
	if res.Error != nil {
		return false, fmt.Errorf("claim sober driver: %w", translate(res.Error))
	}
	return res.RowsAffected == 1, nil
}

// SetSoberDriver unconditionally reassigns the sober driver role.  Callers
// hold the row lock, so a missing row is not reported here.
func (r *CarpoolRepo) SetSoberDriver(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Model(&model.Carpool{}).
		Where("id = ?", id).
		Updates(map[string]any{"sober_driver_id": userID, "sober_driver_found": true})
	if res.Error != nil {
		return fmt.Errorf("set sober driver: %w", translate(res.Error))
	}
	return nil
}

// ClearSoberDriver removes the role from userID.  A carpool whose role has
// already moved to someone else is left untouched; the returned bool tells
// whether a row changed.
func (r *CarpoolRepo) ClearSoberDriver(ctx context.Context, id, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Carpool{}).
		Where("id = ? AND sober_driver_id = ?", id, userID).
		Updates(map[string]any{"sober_driver_id": nil, "sober_driver_found": false})
	if res.Error != nil {
		return false, fmt.Errorf("clear sober driver: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// SetFinished marks the carpool finished.
func (r *CarpoolRepo) SetFinished(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{"is_finished": true})
}

// SetArchived toggles the archived flag.
func (r *CarpoolRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.update(ctx, id, map[string]any{"is_archived": archived})
}

// UpdateFields applies a column to value patch.  Callers validate the keys.
func (r *CarpoolRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return r.update(ctx, id, fields)
}

func (r *CarpoolRepo) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Carpool{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update carpool: %w", res.Error)
	}
	return nil
}

// Delete removes the carpool row.  Participants must be removed first.
func (r *CarpoolRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Carpool{})
	if res.Error != nil {
		return fmt.Errorf("delete carpool: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByParticipant returns the carpools userID takes part in.  finished
// selects finished-but-not-archived carpools; otherwise active ones.
func (r *CarpoolRepo) ListByParticipant(ctx context.Context, userID string, finished bool) ([]model.Carpool, error) {
	var out []model.Carpool
	err := r.db.WithContext(ctx).
		Joins("JOIN carpool_participants cp ON cp.carpool_id = carpools.id").
		Where("cp.user_id = ? AND carpools.is_finished = ? AND carpools.is_archived = ?", userID, finished, false).
		Order("carpools.departure_date ASC, carpools.departure_time ASC, carpools.id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list participant carpools: %w", err)
	}
	return out, nil
}

// ListOwnedUnfinished returns carpools created by userID that are not
// finished, archived ones included.
func (r *CarpoolRepo) ListOwnedUnfinished(ctx context.Context, userID string) ([]model.Carpool, error) {
	var out []model.Carpool
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND is_finished = ?", userID, false).
		Order(listOrder).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list owned carpools: %w", err)
	}
	return out, nil
}
