package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/record"
	"idatech-backoffice/internal/repository/memory"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type testEnv struct {
	db        *memory.DB
	bus       *event.InMemoryBus
	activity  *ActivityService
	trash     *TrashService
	records   *RecordService
	dashboard *DashboardService
	actor     model.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memory.New()
	bus := event.NewBus()
	stores := db.Stores()

	activity := NewActivityService(stores, bus)
	activity.now = func() time.Time { return fixedNow }
	trash := NewTrashService(db, record.DefaultRules(), activity, bus)
	trash.now = func() time.Time { return fixedNow }
	records := NewRecordService(stores, trash, activity, bus)
	records.now = func() time.Time { return fixedNow }

	env := &testEnv{
		db:        db,
		bus:       bus,
		activity:  activity,
		trash:     trash,
		records:   records,
		dashboard: NewDashboardService(db, activity),
	}
	env.actor = env.addUser(t, "amina")
	return env
}

func (e *testEnv) addUser(t *testing.T, username string) model.Actor {
	t.Helper()
	user := model.User{ID: username + "-id", Username: username, Role: model.RoleStaff, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, e.db.Stores().Users.Create(context.Background(), user))
	return model.Actor{UserID: user.ID, Username: user.Username, Role: user.Role, IP: "127.0.0.1"}
}

func (e *testEnv) add(t *testing.T, variant model.Variant, raw map[string]string) model.Record {
	t.Helper()
	rec, err := e.records.Add(context.Background(), variant, raw, e.actor)
	require.NoError(t, err)
	return rec
}

func studentFields(name string, kind string, program string) map[string]string {
	return map[string]string{"name": name, "type": kind, "program": program, "level": "beginner"}
}

func expenseFields(kind string, description string, amount string) map[string]string {
	return map[string]string{"type": kind, "description": description, "amount": amount, "date": "2026-03-01"}
}

type mockActivitySink struct {
	mock.Mock
}

func (m *mockActivitySink) Record(ctx context.Context, actor model.Actor, message string, hint string) (model.ActivityLogEntry, error) {
	args := m.Called(ctx, actor, message, hint)
	return args.Get(0).(model.ActivityLogEntry), args.Error(1)
}
