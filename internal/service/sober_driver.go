package service

import (
	"context"
	"errors"
	"strings"

	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/repository"
)

// JoinAsSoberDriver claims the sober driver role of carpoolID for userID.
// A user who is not yet a participant joins in the same transaction and
// takes a seat like any other join.  The claim itself only succeeds while
// nobody holds the role.
func (s *Service) JoinAsSoberDriver(ctx context.Context, carpoolID, userID string) (*model.Carpool, error) {
	c, err := s.joinAsSoberDriver(ctx, carpoolID, userID)
	record("join_sober_driver", err)
	return c, err
}

func (s *Service) joinAsSoberDriver(ctx context.Context, carpoolID, userID string) (*model.Carpool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if err := ValidateIDs(carpoolID, userID); err != nil {
		return nil, err
	}

	var (
		c      *model.Carpool
		joined bool
	)
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		c, err = tx.Carpools().GetByIDForUpdate(ctx, carpoolID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCarpoolNotFound
		}
		if err != nil {
			return err
		}
		if err := ValidateCarpoolActive(c); err != nil {
			return err
		}
		if !c.IsDriverSoberNeeded {
			return ErrSoberNotNeeded
		}
		if c.SoberDriverID != nil {
			return ErrSoberAssigned
		}

		member, err := tx.Participants().Exists(ctx, userID, carpoolID)
		if err != nil {
			return err
		}
		if !member {
			seats, err := takeSeat(ctx, tx, userID, carpoolID)
			if err != nil {
				return err
			}
			c.AvailableSeats = seats
			joined = true
		}

		claimed, err := tx.Carpools().ClaimSoberDriver(ctx, carpoolID, userID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrSoberAssigned
		}
		c.SoberDriverID = &userID
		c.SoberDriverFound = true
		return nil
	})
	if err != nil {
		return nil, internal(ctx, "join as sober driver", err)
	}

	if joined {
		s.publish(ctx, queue.CarpoolEvent{
			Type:           queue.ParticipantJoined,
			CarpoolID:      carpoolID,
			UserID:         userID,
			AvailableSeats: &c.AvailableSeats,
		})
	}
	s.publish(ctx, queue.CarpoolEvent{Type: queue.SoberDriverAssigned, CarpoolID: carpoolID, UserID: userID})
	return c, nil
}

// SwapSoberDriver hands the sober driver role to newDriverID, who must
// already be a participant.  Only the creator or the current sober driver
// may do this, and only while the carpool is active.
func (s *Service) SwapSoberDriver(ctx context.Context, carpoolID, newDriverID, acting string) error {
	err := s.swapSoberDriver(ctx, carpoolID, newDriverID, acting)
	record("swap_sober_driver", err)
	return err
}

func (s *Service) swapSoberDriver(ctx context.Context, carpoolID, newDriverID, acting string) error {
	if strings.TrimSpace(acting) == "" {
		return ErrUnauthenticated
	}
	if err := ValidateIDs(carpoolID, newDriverID); err != nil {
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
		if !c.IsDriverSoberNeeded {
			return ErrSoberNotNeeded
		}
		if err := ValidateCarpoolActive(c); err != nil {
			return err
		}
		isDriver := c.SoberDriverID != nil && *c.SoberDriverID == acting
		if c.CreatorID != acting && !isDriver {
			return ErrSoberSwapForbidden
		}
		member, err := tx.Participants().Exists(ctx, newDriverID, carpoolID)
		if err != nil {
			return err
		}
		if !member {
			return ErrSoberNotParticipant
		}
		return tx.Carpools().SetSoberDriver(ctx, carpoolID, newDriverID)
	})
	if err != nil {
		return internal(ctx, "swap sober driver", err)
	}
	s.publish(ctx, queue.CarpoolEvent{Type: queue.SoberDriverAssigned, CarpoolID: carpoolID, UserID: newDriverID, ActorID: acting})
	return nil
}
