package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/service"
)

func TestJoinAsSoberDriver(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "Carla")
	alice := f.user(t, "alice", "Alice")
	bob := f.user(t, "bob", "Bob")
	c := f.carpool(t, creator, "3", soberNeeded)

	got, err := f.svc.JoinAsSoberDriver(ctx, c.ID, alice)
	require.NoError(t, err)
	require.True(t, got.SoberDriverFound)
	require.Equal(t, alice, *got.SoberDriverID)
	require.Equal(t, 2, got.AvailableSeats)

	stored := f.reload(t, c.ID)
	require.True(t, stored.SoberDriverFound)
	require.Equal(t, alice, *stored.SoberDriverID)
	require.Equal(t, 2, stored.AvailableSeats)

	_, err = f.svc.JoinAsSoberDriver(ctx, c.ID, bob)
	require.ErrorIs(t, err, service.ErrSoberAssigned)
	member, err := f.store.Participants().Exists(ctx, bob, c.ID)
	require.NoError(t, err)
	require.False(t, member)

	driver, err := f.svc.GetSoberDriver(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, alice, driver)
}

func TestJoinAsSoberDriverExistingParticipantKeepsSeats(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "Carla")
	alice := f.user(t, "alice", "Alice")
	c := f.carpool(t, creator, "3", soberNeeded)

	_, err := f.svc.Join(ctx, c.ID, alice)
	require.NoError(t, err)

	got, err := f.svc.JoinAsSoberDriver(ctx, c.ID, alice)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableSeats)
	require.Equal(t, 2, f.reload(t, c.ID).AvailableSeats)
}

func TestJoinAsSoberDriverRejects(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "Carla")
	alice := f.user(t, "alice", "Alice")
	bob := f.user(t, "bob", "Bob")

	notNeeded := f.carpool(t, creator, "3")
	_, err := f.svc.JoinAsSoberDriver(ctx, notNeeded.ID, alice)
	require.ErrorIs(t, err, service.ErrSoberNotNeeded)

	full := f.carpool(t, creator, "1", soberNeeded)
	_, err = f.svc.Join(ctx, full.ID, bob)
	require.NoError(t, err)
	_, err = f.svc.JoinAsSoberDriver(ctx, full.ID, alice)
	require.ErrorIs(t, err, service.ErrCarpoolFull)
	require.Nil(t, f.reload(t, full.ID).SoberDriverID)

	finished := f.carpool(t, creator, "3", soberNeeded)
	require.NoError(t, f.svc.Finish(ctx, finished.ID, creator))
	_, err = f.svc.JoinAsSoberDriver(ctx, finished.ID, alice)
	require.ErrorIs(t, err, service.ErrCarpoolFinished)

	_, err = f.svc.JoinAsSoberDriver(ctx, "missing", alice)
	require.ErrorIs(t, err, service.ErrCarpoolNotFound)
	_, err = f.svc.JoinAsSoberDriver(ctx, finished.ID, "")
	require.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestRemovingSoberDriverClearsRole(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "Carla")
	alice := f.user(t, "alice", "Alice")
	c := f.carpool(t, creator, "3", soberNeeded)

	_, err := f.svc.JoinAsSoberDriver(ctx, c.ID, alice)
	require.NoError(t, err)

	seats, err := f.svc.RemoveParticipantAs(ctx, c.ID, alice, alice)
	require.NoError(t, err)
	require.Equal(t, 3, seats)

	stored := f.reload(t, c.ID)
	require.Nil(t, stored.SoberDriverID)
	require.False(t, stored.SoberDriverFound)
	require.Contains(t, f.events.types(), queue.SoberDriverCleared)
}

func TestSwapSoberDriver(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	creator := f.user(t, "creator", "Carla")
	alice := f.user(t, "alice", "Alice")
	bob := f.user(t, "bob", "Bob")
	eve := f.user(t, "eve", "Eve")
	c := f.carpool(t, creator, "4", soberNeeded)

	_, err := f.svc.JoinAsSoberDriver(ctx, c.ID, alice)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, c.ID, bob)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, c.ID, eve)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.SwapSoberDriver(ctx, c.ID, eve, bob), service.ErrSoberSwapForbidden)

	outsider := f.user(t, "olga", "Olga")
	require.ErrorIs(t, f.svc.SwapSoberDriver(ctx, c.ID, outsider, alice), service.ErrSoberNotParticipant)

	// current driver hands over
	require.NoError(t, f.svc.SwapSoberDriver(ctx, c.ID, bob, alice))
	require.Equal(t, bob, *f.reload(t, c.ID).SoberDriverID)

	// creator reassigns
	require.NoError(t, f.svc.SwapSoberDriver(ctx, c.ID, eve, creator))
	stored := f.reload(t, c.ID)
	require.Equal(t, eve, *stored.SoberDriverID)
	require.True(t, stored.SoberDriverFound)

	notNeeded := f.carpool(t, creator, "2")
	require.ErrorIs(t, f.svc.SwapSoberDriver(ctx, notNeeded.ID, creator, creator), service.ErrSoberNotNeeded)

	require.NoError(t, f.svc.Archive(ctx, c.ID, creator))
	require.ErrorIs(t, f.svc.SwapSoberDriver(ctx, c.ID, bob, creator), service.ErrCarpoolArchived)
}

func TestConcurrentSoberDriverClaims(t *testing.T) {
	f := setupRaceService(t)
	ctx := context.Background()
	creator := f.uniqueUser(t, "creator")
	c := f.carpool(t, creator, "5", soberNeeded)

	const n = 4
	users := make([]string, n)
	for i := range users {
		users[i] = f.uniqueUser(t, fmt.Sprintf("driver%d", i))
	}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.JoinAsSoberDriver(ctx, c.ID, users[i])
		}(i)
	}
	close(start)
	wg.Wait()

	winner := ""
	for i, err := range errs {
		if err == nil {
			require.Empty(t, winner, "two drivers claimed the role")
			winner = users[i]
			continue
		}
		require.ErrorIs(t, err, service.ErrSoberAssigned)
	}
	require.NotEmpty(t, winner)

	stored := f.reload(t, c.ID)
	require.True(t, stored.SoberDriverFound)
	require.Equal(t, winner, *stored.SoberDriverID)
	require.Equal(t, 4, stored.AvailableSeats)

	roster, err := f.svc.GetParticipants(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
}
