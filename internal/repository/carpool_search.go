package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orgatagova/orgatagova/internal/model"
)

// CarpoolSearchQuery defines filters & pagination for the public listing.
// Empty Departure and Arrival list every open carpool.
type CarpoolSearchQuery struct {
	Departure string
	Arrival   string
	Page      int
	PageSize  int
}

// SearchOpen returns public carpools that are neither finished nor archived
// and still have a free seat, ordered by departure date then time.  The
// departure and arrival filters are case-insensitive substring matches.
func (r *CarpoolRepo) SearchOpen(ctx context.Context, q CarpoolSearchQuery) ([]model.Carpool, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Carpool{}).
		Where("is_finished = ? AND is_archived = ? AND is_private = ? AND available_seats > 0", false, false, false)

	if q.Departure != "" {
		tx = tx.Where("LOWER(departure) LIKE ?", "%"+strings.ToLower(q.Departure)+"%")
	}
	if q.Arrival != "" {
		tx = tx.Where("LOWER(arrival) LIKE ?", "%"+strings.ToLower(q.Arrival)+"%")
	}

	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count carpools: %w", err)
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	out := make([]model.Carpool, 0, limit)
	if err := tx.Order(listOrder).Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("search carpools: %w", err)
	}
	return out, total, nil
}
