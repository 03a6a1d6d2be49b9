package service

import "github.com/orgatagova/orgatagova/internal/model"

// CanManageParticipant decides whether acting may remove target from a
// carpool created by creator.  The creator may remove anyone but
// themselves; any other participant may only remove themselves.
func CanManageParticipant(acting, target, creator string) error {
	actingIsCreator := acting == creator
	targetIsCreator := target == creator
	actingIsTarget := acting == target

	switch {
	case targetIsCreator && actingIsTarget:
		return ErrCreatorSelfRemoval
	case actingIsCreator && !targetIsCreator:
		return nil
	case actingIsTarget && !targetIsCreator:
		return nil
	}
	return ErrNotAllowed
}

// RequireCreator fails unless acting created c.
func RequireCreator(c *model.Carpool, acting string) error {
	if c == nil {
		return ErrCarpoolNotFound
	}
	if acting == "" || c.CreatorID != acting {
		return ErrNotCreator
	}
	return nil
}
