package service

import (
	"context"
	"errors"
	"strings"

	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/repository"
)

type Status string

const (
	StatusOngoing  Status = "ongoing"
	StatusArchived Status = "archived"
	StatusFinished Status = "finished"
)

// StatusOf derives the lifecycle status; finished wins over archived.
func StatusOf(c *model.Carpool) Status {
	switch {
	case c.IsFinished:
		return StatusFinished
	case c.IsArchived:
		return StatusArchived
	}
	return StatusOngoing
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is one page of a public carpool listing.
type Page struct {
	Items    []model.Carpool `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// SearchParams filters the public listing.  Empty filters match everything.
type SearchParams struct {
	Departure string
	Arrival   string
	Page      int
	PageSize  int
}

// CarpoolDetail is the full view of a single carpool.
type CarpoolDetail struct {
	Carpool      model.Carpool `json:"carpool"`
	Status       Status        `json:"status"`
	Participants []model.User  `json:"participants"`
}

func (s *Service) carpool(ctx context.Context, id string) (*model.Carpool, error) {
	if err := validateCarpoolID(id); err != nil {
		return nil, err
	}
	c, err := s.store.Carpools().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCarpoolNotFound
	}
	if err != nil {
		return nil, internal(ctx, "load carpool", err)
	}
	return c, nil
}

// GetStatus returns "finished", "archived" or "ongoing".
func (s *Service) GetStatus(ctx context.Context, id string) (Status, error) {
	c, err := s.carpool(ctx, id)
	if err != nil {
		return "", err
	}
	return StatusOf(c), nil
}

// GetParticipants lists the participants of a carpool ordered by name.
func (s *Service) GetParticipants(ctx context.Context, id string) ([]model.User, error) {
	if _, err := s.carpool(ctx, id); err != nil {
		return nil, err
	}
	users, err := s.store.Participants().ListUsers(ctx, id)
	if err != nil {
		return nil, internal(ctx, "load participants", err)
	}
	return users, nil
}

// GetSoberDriver returns the id of the current sober driver, or "" when the
// role is vacant.
func (s *Service) GetSoberDriver(ctx context.Context, id string) (string, error) {
	c, err := s.carpool(ctx, id)
	if err != nil {
		return "", err
	}
	if c.SoberDriverID == nil {
		return "", nil
	}
	return *c.SoberDriverID, nil
}

// GetCarpool returns the carpool with its creator, sober driver and roster.
func (s *Service) GetCarpool(ctx context.Context, id string) (*CarpoolDetail, error) {
	c, err := s.carpool(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.Participants().ListUsers(ctx, id)
	if err != nil {
		return nil, internal(ctx, "load carpool", err)
	}

	ids := []string{c.CreatorID}
	if c.SoberDriverID != nil {
		ids = append(ids, *c.SoberDriverID)
	}
	users, err := s.store.Users().MapByIDs(ctx, ids)
	if err != nil {
		return nil, internal(ctx, "load carpool", err)
	}
	if u, ok := users[c.CreatorID]; ok {
		c.Creator = &u
	}
	if c.SoberDriverID != nil {
		if u, ok := users[*c.SoberDriverID]; ok {
			c.SoberDriver = &u
		}
	}
	return &CarpoolDetail{Carpool: *c, Status: StatusOf(c), Participants: participants}, nil
}

// ListActive pages through public carpools that still accept joins.
func (s *Service) ListActive(ctx context.Context, page, pageSize int) (*Page, error) {
	return s.Search(ctx, SearchParams{Page: page, PageSize: pageSize})
}

// Search filters the public listing by departure and arrival substrings,
// ignoring case.
func (s *Service) Search(ctx context.Context, p SearchParams) (*Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	items, total, err := s.store.Carpools().SearchOpen(ctx, repository.CarpoolSearchQuery{
		Departure: strings.TrimSpace(p.Departure),
		Arrival:   strings.TrimSpace(p.Arrival),
		Page:      p.Page,
		PageSize:  p.PageSize,
	})
	if err != nil {
		return nil, internal(ctx, "list carpools", err)
	}
	if err := s.withCreators(ctx, items); err != nil {
		return nil, internal(ctx, "list carpools", err)
	}
	return &Page{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

// ListForUser returns the active carpools userID takes part in.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]model.Carpool, error) {
	return s.listFor(ctx, userID, func(r *repository.CarpoolRepo) ([]model.Carpool, error) {
		return r.ListByParticipant(ctx, userID, false)
	})
}

// ListOwnedByUser returns the carpools userID created and has not finished.
func (s *Service) ListOwnedByUser(ctx context.Context, userID string) ([]model.Carpool, error) {
	return s.listFor(ctx, userID, func(r *repository.CarpoolRepo) ([]model.Carpool, error) {
		return r.ListOwnedUnfinished(ctx, userID)
	})
}

// ListFinishedForUser returns finished, non archived carpools userID took
// part in.
func (s *Service) ListFinishedForUser(ctx context.Context, userID string) ([]model.Carpool, error) {
	return s.listFor(ctx, userID, func(r *repository.CarpoolRepo) ([]model.Carpool, error) {
		return r.ListByParticipant(ctx, userID, true)
	})
}

func (s *Service) listFor(ctx context.Context, userID string, list func(*repository.CarpoolRepo) ([]model.Carpool, error)) ([]model.Carpool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	items, err := list(s.store.Carpools())
	if err != nil {
		return nil, internal(ctx, "list carpools", err)
	}
	if err := s.withCreators(ctx, items); err != nil {
		return nil, internal(ctx, "list carpools", err)
	}
	return items, nil
}

// withCreators attaches each carpool's creator using one IN query for the
// distinct creator ids.
func (s *Service) withCreators(ctx context.Context, items []model.Carpool) error {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, c := range items {
		if _, ok := seen[c.CreatorID]; ok {
			continue
		}
		seen[c.CreatorID] = struct{}{}
		ids = append(ids, c.CreatorID)
	}
	users, err := s.store.Users().MapByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if u, ok := users[items[i].CreatorID]; ok {
			items[i].Creator = &u
		}
	}
	return nil
}

// GetUser returns a user's public profile.
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	u, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, internal(ctx, "load user", err)
	}
	return u, nil
}
