package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/service"
)

func ids(items []model.Carpool) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

func TestListActiveAndSearch(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	carla := f.user(t, "carla", "Carla")
	dan := f.user(t, "dan", "Dan")
	alice := f.user(t, "alice", "Alice")

	later := f.carpool(t, carla, "2", func(d *service.CreateCarpoolData) { d.DepartureDate = "2030-05-10" })
	sooner := f.carpool(t, dan, "2", func(d *service.CreateCarpoolData) {
		d.DepartureDate = "2030-05-03"
		d.Departure = "Grenoble Gare"
		d.Arrival = "Lyon Perrache"
	})
	sameDayEarly := f.carpool(t, carla, "2", func(d *service.CreateCarpoolData) {
		d.DepartureDate = "2030-05-10"
		d.DepartureTime = "06:00"
	})
	full := f.carpool(t, dan, "1")
	_, err := f.svc.Join(ctx, full.ID, alice)
	require.NoError(t, err)
	private := f.carpool(t, carla, "2", func(d *service.CreateCarpoolData) { d.IsPrivate = true })
	archived := f.carpool(t, carla, "2")
	require.NoError(t, f.svc.Archive(ctx, archived.ID, carla))
	finished := f.carpool(t, carla, "2")
	require.NoError(t, f.svc.Finish(ctx, finished.ID, carla))

	page, err := f.svc.ListActive(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []string{sooner.ID, sameDayEarly.ID, later.ID}, ids(page.Items))
	require.EqualValues(t, 3, page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 20, page.PageSize)
	require.NotContains(t, ids(page.Items), private.ID)

	// creators are attached
	require.NotNil(t, page.Items[0].Creator)
	require.Equal(t, "Dan", page.Items[0].Creator.Name)
	require.Equal(t, "Carla", page.Items[2].Creator.Name)

	page, err = f.svc.ListActive(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, []string{later.ID}, ids(page.Items))
	require.EqualValues(t, 3, page.Total)

	page, err = f.svc.Search(ctx, service.SearchParams{Departure: "grenoble"})
	require.NoError(t, err)
	require.Equal(t, []string{sooner.ID}, ids(page.Items))

	page, err = f.svc.Search(ctx, service.SearchParams{Arrival: "BASTILLE"})
	require.NoError(t, err)
	require.Equal(t, []string{sameDayEarly.ID, later.ID}, ids(page.Items))

	page, err = f.svc.Search(ctx, service.SearchParams{Departure: "lyon", Arrival: "perrache"})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	page, err = f.svc.Search(ctx, service.SearchParams{PageSize: 1000})
	require.NoError(t, err)
	require.Equal(t, 100, page.PageSize)
}

func TestUserLists(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	carla := f.user(t, "carla", "Carla")
	alice := f.user(t, "alice", "Alice")

	joined := f.carpool(t, carla, "3")
	_, err := f.svc.Join(ctx, joined.ID, alice)
	require.NoError(t, err)
	done := f.carpool(t, carla, "3")
	_, err = f.svc.Join(ctx, done.ID, alice)
	require.NoError(t, err)
	require.NoError(t, f.svc.Finish(ctx, done.ID, carla))
	paused := f.carpool(t, carla, "3")
	require.NoError(t, f.svc.Archive(ctx, paused.ID, carla))

	mine, err := f.svc.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, []string{joined.ID}, ids(mine))
	require.Equal(t, "Carla", mine[0].Creator.Name)

	finished, err := f.svc.ListFinishedForUser(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, []string{done.ID}, ids(finished))

	owned, err := f.svc.ListOwnedByUser(ctx, carla)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{joined.ID, paused.ID}, ids(owned))

	owned, err = f.svc.ListOwnedByUser(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, owned)

	_, err = f.svc.ListForUser(ctx, "")
	require.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestGetCarpoolAndParticipants(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	carla := f.user(t, "carla", "Carla")
	zoe := f.user(t, "zoe", "Zoe")
	alice := f.user(t, "alice", "Alice")
	c := f.carpool(t, carla, "3", soberNeeded)

	_, err := f.svc.Join(ctx, c.ID, zoe)
	require.NoError(t, err)
	_, err = f.svc.JoinAsSoberDriver(ctx, c.ID, alice)
	require.NoError(t, err)

	users, err := f.svc.GetParticipants(ctx, c.ID)
	require.NoError(t, err)
	names := []string{}
	for _, u := range users {
		names = append(names, u.Name)
	}
	require.Equal(t, []string{"Alice", "Carla", "Zoe"}, names)

	detail, err := f.svc.GetCarpool(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, service.StatusOngoing, detail.Status)
	require.Equal(t, "Carla", detail.Carpool.Creator.Name)
	require.Equal(t, "Alice", detail.Carpool.SoberDriver.Name)
	require.Len(t, detail.Participants, 3)
	require.Equal(t, 1, detail.Carpool.AvailableSeats)

	_, err = f.svc.GetCarpool(ctx, "missing")
	require.ErrorIs(t, err, service.ErrCarpoolNotFound)
	_, err = f.svc.GetParticipants(ctx, "")
	require.ErrorIs(t, err, service.ErrInvalidID)

	none, err := f.svc.GetSoberDriver(ctx, f.carpool(t, carla, "2", soberNeeded).ID)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetUser(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.user(t, "carla", "Carla")

	u, err := f.svc.GetUser(ctx, "carla")
	require.NoError(t, err)
	require.Equal(t, "Carla", u.Name)

	_, err = f.svc.GetUser(ctx, "nobody")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}
