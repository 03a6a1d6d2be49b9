package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orgatagova/orgatagova/internal/config"
	"github.com/orgatagova/orgatagova/internal/database"
	"github.com/orgatagova/orgatagova/internal/idx"
	"github.com/orgatagova/orgatagova/internal/model"
	"github.com/orgatagova/orgatagova/internal/queue"
	"github.com/orgatagova/orgatagova/internal/repository"
	"github.com/orgatagova/orgatagova/internal/service"
)

var fixedNow = time.Date(2030, time.May, 1, 12, 0, 0, 0, time.UTC)

type recordedEvents struct {
	mu     sync.Mutex
	events []queue.CarpoolEvent
}

func (r *recordedEvents) Publish(_ context.Context, ev queue.CarpoolEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc    *service.Service
	store  *repository.Store
	events *recordedEvents
}

func setupService(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	return newFixture(t, config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "carpool.db"),
	}, opts...)
}

// setupRaceService uses the database named by ORGATAGOVA_TEST_DB_DRIVER and
// ORGATAGOVA_TEST_DATABASE_URL (e.g. postgres) when both are set, so racing
// transactions hold real row locks on parallel connections.  Without them
// it falls back to SQLite, whose single connection serializes the racers.
func setupRaceService(t *testing.T) *fixture {
	t.Helper()
	driver, url := os.Getenv("ORGATAGOVA_TEST_DB_DRIVER"), os.Getenv("ORGATAGOVA_TEST_DATABASE_URL")
	if driver == "" || url == "" {
		return setupService(t)
	}
	return newFixture(t, config.Config{DBDriver: driver, DatabaseURL: url})
}

func newFixture(t *testing.T, cfg config.Config, opts ...service.Option) *fixture {
	t.Helper()

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := repository.NewStore(db, 10*time.Second)
	events := &recordedEvents{}
	base := []service.Option{
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithEvents(events),
	}
	return &fixture{
		svc:    service.New(store, append(base, opts...)...),
		store:  store,
		events: events,
	}
}

func (f *fixture) user(t *testing.T, id, name string) string {
	t.Helper()
	u := &model.User{ID: id, Name: name, Email: fmt.Sprintf("%s@example.com", id)}
	require.NoError(t, f.store.Users().Upsert(context.Background(), u))
	return id
}

// uniqueUser creates a user whose id cannot clash with rows left in a
// shared database by earlier runs.
func (f *fixture) uniqueUser(t *testing.T, prefix string) string {
	t.Helper()
	return f.user(t, prefix+"-"+idx.New().String(), prefix)
}

func validData(seats string) service.CreateCarpoolData {
	return service.CreateCarpoolData{
		Departure:      "Lyon Part-Dieu",
		Arrival:        "Paris Bastille",
		Description:    "Leaving from the north exit",
		DepartureDate:  "2030-05-02",
		DepartureTime:  "08:30",
		AvailableSeats: seats,
	}
}

func (f *fixture) carpool(t *testing.T, creator, seats string, mutate ...func(*service.CreateCarpoolData)) *model.Carpool {
	t.Helper()
	data := validData(seats)
	for _, m := range mutate {
		m(&data)
	}
	c, err := f.svc.CreateCarpool(context.Background(), creator, data)
	require.NoError(t, err)
	return c
}

func (f *fixture) reload(t *testing.T, id string) *model.Carpool {
	t.Helper()
	c, err := f.store.Carpools().GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func soberNeeded(d *service.CreateCarpoolData) { d.IsDriverSoberNeeded = true }

func requireKind(t *testing.T, err error, kind service.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, service.KindOf(err), "err: %v", err)
}
