package service

import (
	"context"
	"errors"
	"strings"

	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/repository"
	"github.com/orgatagova/orgatagova/internal/slogx"
)

// AddParticipant makes userID a participant of carpoolID and takes one seat,
// all in one transaction.  It returns the seats left afterwards.
func (s *Service) AddParticipant(ctx context.Context, userID, carpoolID string) (int, error) {
	seats, err := s.addParticipant(ctx, userID, carpoolID, "add participant")
	record("add_participant", err)
	return seats, err
}

// Join is AddParticipant for a user picking a carpool from the listing.
func (s *Service) Join(ctx context.Context, carpoolID, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		record("join", ErrUnauthenticated)
		return 0, ErrUnauthenticated
	}
	seats, err := s.addParticipant(ctx, userID, carpoolID, "join carpool")
	record("join", err)
	return seats, err
}

func (s *Service) addParticipant(ctx context.Context, userID, carpoolID, action string) (int, error) {
	if err := ValidateIDs(userID, carpoolID); err != nil {
		return 0, err
	}
	var seats int
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		seats, err = takeSeat(ctx, tx, userID, carpoolID)
		return err
	})
	if err != nil {
		return 0, internal(ctx, action, err)
	}
	s.publish(ctx, queue.CarpoolEvent{
		Type:           queue.ParticipantJoined,
		CarpoolID:      carpoolID,
		UserID:         userID,
		AvailableSeats: &seats,
	})
	return seats, nil
}

// takeSeat runs the membership checks and writes inside tx.  The carpool row
// is locked before the seat check and the decrement is guarded, so the last
// seat can only be taken once.
func takeSeat(ctx context.Context, tx *repository.Store, userID, carpoolID string) (int, error) {
	exists, err := tx.Participants().Exists(ctx, userID, carpoolID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrAlreadyParticipant
	}

	c, err := tx.Carpools().GetByIDForUpdate(ctx, carpoolID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrCarpoolNotFound
	}
	if err != nil {
		return 0, err
	}
	if err := ValidateCarpoolActive(c); err != nil {
		return 0, err
	}
	if c.AvailableSeats <= 0 {
		return 0, ErrCarpoolFull
	}

	switch err := tx.Participants().Add(ctx, userID, carpoolID); {
	case errors.Is(err, repository.ErrDuplicate):
		return 0, ErrAlreadyParticipant
	case errors.Is(err, repository.ErrInvalidReference):
		return 0, ErrInvalidReference
	case err != nil:
		return 0, err
	}

	ok, err := tx.Carpools().TakeSeat(ctx, carpoolID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrCarpoolFull
	}
	return c.AvailableSeats - 1, nil
}

// RemoveParticipant deletes userID's membership of carpoolID and gives the
// seat back, never raising available seats above the total.  When userID
// held the sober driver role it is cleared once the seat transaction has
// committed.  The creator's own membership cannot be removed.
func (s *Service) RemoveParticipant(ctx context.Context, userID, carpoolID string) (int, error) {
	seats, err := s.removeParticipant(ctx, userID, carpoolID, "")
	record("remove_participant", err)
	return seats, err
}

func (s *Service) removeParticipant(ctx context.Context, userID, carpoolID, actorID string) (int, error) {
	if err := ValidateIDs(userID, carpoolID); err != nil {
		return 0, err
	}
	log := slogx.FromContext(ctx).With("carpool_id", carpoolID, "user_id", userID)

	var (
		seats    int
		wasSober bool
	)
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		c, err := tx.Carpools().GetByIDForUpdate(ctx, carpoolID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCarpoolNotFound
		}
		if err != nil {
			return err
		}
		if userID == c.CreatorID {
			return ErrCreatorSelfRemoval
		}

		removed, err := tx.Participants().Remove(ctx, userID, carpoolID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrParticipantNotFound
		}

		released, err := tx.Carpools().ReleaseSeat(ctx, carpoolID)
		if err != nil {
			return err
		}
		if released {
			seats = c.AvailableSeats + 1
		} else {
			log.Warn("seat counter already at capacity, clamped",
				"available_seats", c.AvailableSeats, "total_seats", c.TotalSeats)
			seats = c.TotalSeats
		}
		wasSober = c.SoberDriverID != nil && *c.SoberDriverID == userID
		return nil
	})
	if err != nil {
		return 0, internal(ctx, "remove participant", err)
	}

	s.publish(ctx, queue.CarpoolEvent{
		Type:           queue.ParticipantLeft,
		CarpoolID:      carpoolID,
		UserID:         userID,
		ActorID:        actorID,
		AvailableSeats: &seats,
	})

	if wasSober {
		cleared, err := s.store.Carpools().ClearSoberDriver(ctx, carpoolID, userID)
		if err != nil {
			// membership change is already committed
			log.Error("clear sober driver failed", "err", err)
		} else if cleared {
			s.publish(ctx, queue.CarpoolEvent{Type: queue.SoberDriverCleared, CarpoolID: carpoolID, UserID: userID})
		}
	}
	return seats, nil
}

// RemoveParticipantAs removes targetID from carpoolID on behalf of acting.
// The creator may remove others, anyone else only themselves, and finished
// carpools keep their roster.
func (s *Service) RemoveParticipantAs(ctx context.Context, carpoolID, targetID, acting string) (int, error) {
	seats, err := s.removeParticipantAs(ctx, carpoolID, targetID, acting)
	record("remove_participant", err)
	return seats, err
}

func (s *Service) removeParticipantAs(ctx context.Context, carpoolID, targetID, acting string) (int, error) {
	if strings.TrimSpace(acting) == "" {
		return 0, ErrUnauthenticated
	}
	if err := ValidateIDs(carpoolID, targetID); err != nil {
		return 0, err
	}
	c, err := s.store.Carpools().GetByID(ctx, carpoolID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrCarpoolNotFound
	}
	if err != nil {
		return 0, internal(ctx, "remove participant", err)
	}
	if err := CanManageParticipant(acting, targetID, c.CreatorID); err != nil {
		return 0, err
	}
	if c.IsFinished {
		return 0, ErrCarpoolFinished
	}
	return s.removeParticipant(ctx, targetID, carpoolID, acting)
}
