package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orgatagova/orgatagova/internal/idx"
	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/repository"
)

// maxCodeAttempts bounds invitation code generation on collisions.
const maxCodeAttempts = 5

// CreateCarpool validates data and creates an active carpool owned by
// creatorID.  The creator is inserted as the first participant in the same
// transaction and holds the sober driver role when none is needed.
func (s *Service) CreateCarpool(ctx context.Context, creatorID string, data CreateCarpoolData) (*model.Carpool, error) {
	c, err := s.createCarpool(ctx, creatorID, data)
	record("create", err)
	return c, err
}

func (s *Service) createCarpool(ctx context.Context, creatorID string, data CreateCarpoolData) (*model.Carpool, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, ErrUnauthenticated
	}
	now := s.Now()
	if err := ValidateCarpoolCreation(data, now); err != nil {
		return nil, err
	}

	exists, err := s.store.Users().Exists(ctx, creatorID)
	if err != nil {
		return nil, internal(ctx, "create carpool", err)
	}
	if !exists {
		return nil, ErrStaleSession
	}

	seats, _ := strconv.Atoi(strings.TrimSpace(data.AvailableSeats))
	day, _ := time.ParseInLocation(DateLayout, strings.TrimSpace(data.DepartureDate), time.UTC)
	clock, _ := parseClock(data.DepartureTime)
	departure := strings.TrimSpace(data.Departure)
	arrival := strings.TrimSpace(data.Arrival)

	c := &model.Carpool{
		ID:                  idx.NewAt(now).String(),
		Title:               departure + " → " + arrival,
		Departure:           departure,
		Arrival:             arrival,
		Description:         strings.TrimSpace(data.Description),
		DepartureDate:       day,
		DepartureTime:       clock.Format(TimeLayout),
		AvailableSeats:      seats,
		TotalSeats:          seats,
		IsDriverSoberNeeded: data.IsDriverSoberNeeded,
		SoberDriverFound:    !data.IsDriverSoberNeeded,
		IsPrivate:           data.IsPrivate,
		CreatorID:           creatorID,
	}
	if c.SoberDriverFound {
		driver := creatorID
		c.SoberDriverID = &driver
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, internal(ctx, "create carpool", err)
		}
		taken, err := s.store.Carpools().InvitationCodeExists(ctx, code)
		if err != nil {
			return nil, internal(ctx, "create carpool", err)
		}
		if taken {
			continue
		}
		c.InvitationCode = code

		err = s.store.WithTx(ctx, func(tx *repository.Store) error {
			if err := tx.Carpools().Create(ctx, c); err != nil {
				return err
			}
			return tx.Participants().Add(ctx, creatorID, c.ID)
		})
		switch {
		case err == nil:
			s.publish(ctx, queue.CarpoolEvent{
				Type:           queue.CarpoolCreated,
				CarpoolID:      c.ID,
				Title:          c.Title,
				ActorID:        creatorID,
				AvailableSeats: &c.AvailableSeats,
			})
			return c, nil
		case errors.Is(err, repository.ErrDuplicate):
			// lost a race for the code
			continue
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, ErrInvalidReference
		default:
			return nil, internal(ctx, "create carpool", err)
		}
	}
	return nil, ErrCodeGenerationFailed
}

// transition loads the carpool under lock, lets check decide whether the
// change is allowed and applies apply in the same transaction.
func (s *Service) transition(ctx context.Context, carpoolID, acting, action string,
	check func(c *model.Carpool) error, apply func(tx *repository.Store) error) error {
	if strings.TrimSpace(acting) == "" {
		return ErrUnauthenticated
	}
	if err := validateCarpoolID(carpoolID); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		c, err := tx.Carpools().GetByIDForUpdate(ctx, carpoolID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCarpoolNotFound
		}
		if err != nil {
			return err
		}
		if err := RequireCreator(c, acting); err != nil {
			return err
		}
		if err := check(c); err != nil {
			return err
		}
		return apply(tx)
	})
	if err != nil {
		return internal(ctx, action, err)
	}
	return nil
}

// Finish moves an active carpool to the terminal finished state.
func (s *Service) Finish(ctx context.Context, carpoolID, acting string) error {
	err := s.transition(ctx, carpoolID, acting, "finish carpool",
		func(c *model.Carpool) error {
			if c.IsFinished {
				return ErrAlreadyFinished
			}
			if c.IsArchived {
				return ErrFinishArchived
			}
			return nil
		},
		func(tx *repository.Store) error { return tx.Carpools().SetFinished(ctx, carpoolID) },
	)
	record("finish", err)
	if err == nil {
		s.publish(ctx, queue.CarpoolEvent{Type: queue.CarpoolFinished, CarpoolID: carpoolID, ActorID: acting})
	}
	return err
}

// Archive pauses an active carpool.
func (s *Service) Archive(ctx context.Context, carpoolID, acting string) error {
	err := s.transition(ctx, carpoolID, acting, "archive carpool",
		func(c *model.Carpool) error {
			if c.IsFinished {
				return ErrArchiveFinished
			}
			if c.IsArchived {
				return ErrAlreadyArchived
			}
			return nil
		},
		func(tx *repository.Store) error { return tx.Carpools().SetArchived(ctx, carpoolID, true) },
	)
	record("archive", err)
	if err == nil {
		s.publish(ctx, queue.CarpoolEvent{Type: queue.CarpoolArchived, CarpoolID: carpoolID, ActorID: acting})
	}
	return err
}

// Unarchive makes an archived carpool active again.
func (s *Service) Unarchive(ctx context.Context, carpoolID, acting string) error {
	err := s.transition(ctx, carpoolID, acting, "unarchive carpool",
		func(c *model.Carpool) error {
			if c.IsFinished {
				return ErrUnarchiveFinished
			}
			if !c.IsArchived {
				return ErrNotArchived
			}
			return nil
		},
		func(tx *repository.Store) error { return tx.Carpools().SetArchived(ctx, carpoolID, false) },
	)
	record("unarchive", err)
	if err == nil {
		s.publish(ctx, queue.CarpoolEvent{Type: queue.CarpoolUnarchived, CarpoolID: carpoolID, ActorID: acting})
	}
	return err
}

// DeleteCarpool removes a carpool once only its creator is left on the
// roster.  Participant rows and the carpool row go in one transaction.
func (s *Service) DeleteCarpool(ctx context.Context, carpoolID, acting string) error {
	var creator string
	err := s.transition(ctx, carpoolID, acting, "delete carpool",
		func(c *model.Carpool) error {
			creator = c.CreatorID
			return nil
		},
		func(tx *repository.Store) error {
			others, err := tx.Participants().CountExcept(ctx, carpoolID, creator)
			if err != nil {
				return err
			}
			if others > 0 {
				return ErrHasParticipants
			}
			if err := tx.Participants().RemoveAll(ctx, carpoolID); err != nil {
				return err
			}
			return tx.Carpools().Delete(ctx, carpoolID)
		},
	)
	record("delete", err)
	if err == nil {
		s.publish(ctx, queue.CarpoolEvent{Type: queue.CarpoolDeleted, CarpoolID: carpoolID, ActorID: acting})
	}
	return err
}

// JoinByCode resolves a carpool from its invitation code and joins it.  The
// returned carpool reflects the seat taken.
func (s *Service) JoinByCode(ctx context.Context, code, userID string) (*model.Carpool, error) {
	c, err := s.joinByCode(ctx, code, userID)
	record("join_by_code", err)
	return c, err
}

func (s *Service) joinByCode(ctx context.Context, code, userID string) (*model.Carpool, error) {
	if err := ValidateInvitationCode(code); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	c, err := s.store.Carpools().GetByInvitationCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, internal(ctx, "join carpool", err)
	}
	if err := ValidateCarpoolActive(c); err != nil {
		return nil, err
	}
	seats, err := s.addParticipant(ctx, userID, c.ID, "join carpool")
	if err != nil {
		return nil, err
	}
	c.AvailableSeats = seats
	return c, nil
}

// DetailsPatch lists the fields a creator may change after creation.  Nil
// fields are left untouched.
type DetailsPatch struct {
	Description   *string `json:"description"`
	DepartureTime *string `json:"departureTime"`
	IsPrivate     *bool   `json:"isPrivate"`
}

func (p DetailsPatch) columns() (map[string]any, error) {
	fields := map[string]any{}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if utf8.RuneCountInString(d) > MaxDescriptionLen {
			return nil, Validation("Description cannot exceed 500 characters")
		}
		fields["description"] = d
	}
	if p.DepartureTime != nil {
		t, err := parseClock(*p.DepartureTime)
		if err != nil {
			return nil, err
		}
		fields["departure_time"] = t.Format(TimeLayout)
	}
	if p.IsPrivate != nil {
		fields["is_private"] = *p.IsPrivate
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	return fields, nil
}

// UpdateDetails applies patch to an active carpool owned by acting and
// returns the updated row.
func (s *Service) UpdateDetails(ctx context.Context, carpoolID string, patch DetailsPatch, acting string) (*model.Carpool, error) {
	c, err := s.updateDetails(ctx, carpoolID, patch, acting)
	record("update", err)
	return c, err
}

func (s *Service) updateDetails(ctx context.Context, carpoolID string, patch DetailsPatch, acting string) (*model.Carpool, error) {
	fields, err := patch.columns()
	if err != nil {
		return nil, err
	}
	var updated *model.Carpool
	err = s.transition(ctx, carpoolID, acting, "update carpool",
		ValidateCarpoolActive,
		func(tx *repository.Store) error {
			if err := tx.Carpools().UpdateFields(ctx, carpoolID, fields); err != nil {
				return err
			}
			var err error
			updated, err = tx.Carpools().GetByID(ctx, carpoolID)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.CarpoolEvent{Type: queue.CarpoolUpdated, CarpoolID: carpoolID, Title: updated.Title, ActorID: acting})
	return updated, nil
}

// Template returns creation defaults (tomorrow at 08:00, four seats) with
// every non-empty field of partial taking precedence.
func Template(now time.Time, partial CreateCarpoolData) CreateCarpoolData {
	out := CreateCarpoolData{
		DepartureDate:  now.AddDate(0, 0, 1).Format(DateLayout),
		DepartureTime:  "08:00",
		AvailableSeats: "4",
	}
	if partial.Departure != "" {
		out.Departure = partial.Departure
	}
	if partial.Arrival != "" {
		out.Arrival = partial.Arrival
	}
	if partial.Description != "" {
		out.Description = partial.Description
	}
	if partial.DepartureDate != "" {
		out.DepartureDate = partial.DepartureDate
	}
	if partial.DepartureTime != "" {
		out.DepartureTime = partial.DepartureTime
	}
	if partial.AvailableSeats != "" {
		out.AvailableSeats = partial.AvailableSeats
	}
	out.IsDriverSoberNeeded = partial.IsDriverSoberNeeded
	out.IsPrivate = partial.IsPrivate
	return out
}

// Template is the package level Template evaluated at the service clock.
func (s *Service) Template(partial CreateCarpoolData) CreateCarpoolData {
	return Template(s.Now(), partial)
}
