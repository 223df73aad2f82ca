package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindcare/internal/observability/metrics"
)

func TestPastAppointmentExpiresOnRead(t *testing.T) {
	store, clock, backend := newTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")

	yesterday := dateOf(clock.Now().AddDate(0, 0, -1))
	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: yesterday, Time: "10:00", Amount: 500}))
	assert.Equal(t, 1, backend.Len())

	appt, err := sess.ScheduledAppointment(ctx)
	require.NoError(t, err)
	assert.Nil(t, appt)
	assert.Equal(t, 0, backend.Len(), "expired entry should be purged by the read")

	active, err := sess.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAppointmentExpiresWhenClockPassesStart(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")

	today := dateOf(clock.Now())
	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: today, Time: "12:30"}))

	active, err := sess.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.True(t, active)

	clock.Advance(30 * time.Minute)
	active, err = sess.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.False(t, active, "an appointment at exactly now is no longer active")
}

func TestFutureAppointmentReturnedUnchanged(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")

	scheduledAt := clock.Now().Add(-time.Minute)
	want := ScheduledAppointment{
		DoctorID:    "5",
		DoctorName:  "Dr. Rao",
		Date:        dateOf(clock.Now().AddDate(0, 0, 1)),
		Time:        "10:00",
		Amount:      500,
		ScheduledAt: scheduledAt,
	}
	require.NoError(t, sess.SaveScheduledAppointment(ctx, want))

	got, err := sess.ScheduledAppointment(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.DoctorID, got.DoctorID)
	assert.Equal(t, want.DoctorName, got.DoctorName)
	assert.Equal(t, want.Date, got.Date)
	assert.Equal(t, want.Time, got.Time)
	assert.Equal(t, want.Amount, got.Amount)
	assert.True(t, want.ScheduledAt.Equal(got.ScheduledAt))

	require.NoError(t, sess.ClearScheduledAppointment(ctx))
	got, err = sess.ScheduledAppointment(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, sess.ClearScheduledAppointment(ctx))
}

func TestSaveScheduledAppointmentOverwrites(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")
	tomorrow := dateOf(clock.Now().AddDate(0, 0, 1))

	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: tomorrow, Time: "10:00"}))
	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "6", Date: tomorrow, Time: "15:30"}))

	got, err := sess.ScheduledAppointment(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "6", got.DoctorID)
	assert.Equal(t, "15:30", got.Time)
	assert.True(t, got.ScheduledAt.Equal(clock.Now()))
}

func TestMalformedAppointmentIsTrusted(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")

	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: "someday", Time: "noon"}))
	got, err := sess.ScheduledAppointment(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "someday", got.Date)
}

func TestAppointmentScopedByUser(t *testing.T) {
	store, clock, backend := newTestStore(t)
	ctx := context.Background()
	tomorrow := dateOf(clock.Now().AddDate(0, 0, 1))

	tab := store.Session("shared-browser")
	require.NoError(t, tab.SetCurrent(ctx, User{ID: "alice"}))
	require.NoError(t, tab.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: tomorrow, Time: "10:00"}))
	_, err := backend.Get(ctx, "scheduled_appointment:alice")
	require.NoError(t, err)

	require.NoError(t, tab.Clear(ctx))
	require.NoError(t, tab.SetCurrent(ctx, User{ID: "bob"}))
	active, err := tab.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.False(t, active, "bob must not see alice's appointment")

	require.NoError(t, tab.Clear(ctx))
	require.NoError(t, tab.SetCurrent(ctx, User{ID: "alice"}))
	active, err = tab.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestAnonymousAppointmentScopedBySession(t *testing.T) {
	store, clock, backend := newTestStore(t)
	ctx := context.Background()
	tomorrow := dateOf(clock.Now().AddDate(0, 0, 1))

	require.NoError(t, store.Session("s1").SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: tomorrow, Time: "10:00"}))
	_, err := backend.Get(ctx, "scheduled_appointment:session:s1")
	require.NoError(t, err)

	active, err := store.Session("s2").HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestGlobalAppointmentScope(t *testing.T) {
	store, clock, backend := newTestStore(t, WithAppointmentScope(ScopeGlobal))
	ctx := context.Background()
	tomorrow := dateOf(clock.Now().AddDate(0, 0, 1))

	require.NoError(t, store.Session("s1").SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: tomorrow, Time: "10:00"}))
	_, err := backend.Get(ctx, KeyScheduledAppointment)
	require.NoError(t, err)

	active, err := store.Session("s2").HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.True(t, active, "global scope shares one appointment across sessions")
}

func TestParseAppointmentScope(t *testing.T) {
	assert.Equal(t, ScopeGlobal, ParseAppointmentScope("global"))
	assert.Equal(t, ScopeUser, ParseAppointmentScope("user"))
	assert.Equal(t, ScopeUser, ParseAppointmentScope(""))
}

func TestExpiryIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStoreMetrics(reg)
	store, clock, _ := newTestStore(t, WithMetrics(m))
	ctx := context.Background()
	sess := store.Session("tab-1")

	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{Date: dateOf(clock.Now().AddDate(0, 0, -2)), Time: "09:00"}))
	_, err := sess.ScheduledAppointment(ctx)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "mindcare_session_store_appointments_expired_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP mindcare_session_store_appointments_expired_total Scheduled appointments purged on read after their slot passed
# TYPE mindcare_session_store_appointments_expired_total counter
mindcare_session_store_appointments_expired_total 1
`), "mindcare_session_store_appointments_expired_total"))
}

func TestSignupToCancellationScenario(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")

	require.NoError(t, store.SaveUser(ctx, User{ID: "1", Email: "a@b.com", PasswordHash: "secret1"}))
	found, err := store.FindUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "1", found.ID)

	tomorrow := dateOf(clock.Now().AddDate(0, 0, 1))
	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: tomorrow, Time: "10:00", Amount: 500}))

	active, err := sess.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, sess.ClearScheduledAppointment(ctx))
	active, err = sess.HasActiveAppointment(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAppointmentsOverRedis(t *testing.T) {
	store, clock, mr := newRedisTestStore(t)
	ctx := context.Background()
	sess := store.Session("tab-1")

	require.NoError(t, sess.SaveScheduledAppointment(ctx, ScheduledAppointment{DoctorID: "5", Date: dateOf(clock.Now()), Time: "13:00"}))
	assert.True(t, mr.Exists("mindcare:scheduled_appointment:session:tab-1"))

	clock.Advance(2 * time.Hour)
	appt, err := sess.ScheduledAppointment(ctx)
	require.NoError(t, err)
	assert.Nil(t, appt)
	assert.False(t, mr.Exists("mindcare:scheduled_appointment:session:tab-1"))
}
