package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"washcenter-backend/models"
	"washcenter-backend/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentSMS struct {
	to   string
	body string
}

type fakeNotifier struct {
	sent []sentSMS
	fail map[string]error
}

func (n *fakeNotifier) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := n.fail[to]; err != nil {
		return "", err
	}
	n.sent = append(n.sent, sentSMS{to: to, body: body})
	return "SM" + to, nil
}

type reminderFixture struct {
	store    *store.PebbleStore
	notifier *fakeNotifier
	svc      *ReminderService
	today    time.Time
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	s, err := store.OpenPebbleInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	n := &fakeNotifier{fail: map[string]error{}}
	today := time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)
	svc := NewReminderService(s, n)
	svc.now = func() time.Time { return today }
	return &reminderFixture{store: s, notifier: n, svc: svc, today: today}
}

func (f *reminderFixture) center(t *testing.T, name, contact string) *models.Center {
	t.Helper()
	c := &models.Center{ID: uuid.New(), Name: name, Location: "Main St", Contact: contact}
	require.NoError(t, f.store.CreateCenter(context.Background(), c))
	return c
}

func (f *reminderFixture) booking(t *testing.T, centerID uuid.UUID, customer string, at time.Time, status models.BookingStatus) {
	t.Helper()
	require.NoError(t, f.store.CreateBooking(context.Background(), &models.Booking{
		ID:           uuid.New(),
		CustomerName: customer,
		CenterID:     centerID,
		Service:      "Wash",
		Date:         at,
		Status:       status,
	}))
}

func TestSendDailyRemindersTomorrowOnly(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	tomorrow := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

	sparkle := f.center(t, "Sparkle", "+1 555-010-2030")
	f.booking(t, sparkle.ID, "Bob", tomorrow.Add(14*time.Hour), models.BookingStatusPending)
	f.booking(t, sparkle.ID, "Alice", tomorrow.Add(9*time.Hour), models.BookingStatusInProgress)
	f.booking(t, sparkle.ID, "Carol", tomorrow.Add(11*time.Hour), models.BookingStatusCancelled)
	f.booking(t, sparkle.ID, "Dan", f.today.Add(2*time.Hour), models.BookingStatusPending)
	f.booking(t, sparkle.ID, "Eve", tomorrow.AddDate(0, 0, 1), models.BookingStatusPending)

	sent, err := f.svc.SendDailyReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, f.notifier.sent, 1)
	msg := f.notifier.sent[0]
	assert.Equal(t, "+15550102030", msg.to)
	assert.Equal(t, "Hi Sparkle, you have 2 booking(s) on Tue Jun 11: 09:00 Wash (Alice); 14:00 Wash (Bob)", msg.body)

	logs, err := f.svc.ReminderLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ReminderStatusSent, logs[0].Status)
	assert.Equal(t, 2, logs[0].BookingCount)
	assert.Equal(t, sparkle.ID, logs[0].CenterID)
}

func TestSendDailyRemindersSkipsAndFailures(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)

	noPhone := f.center(t, "No Phone", "")
	broken := f.center(t, "Broken", "+15550009999")
	f.booking(t, noPhone.ID, "Alice", at, models.BookingStatusPending)
	f.booking(t, broken.ID, "Bob", at, models.BookingStatusPending)
	f.booking(t, uuid.New(), "Ghost", at, models.BookingStatusPending)
	f.notifier.fail["+15550009999"] = errors.New("undeliverable")

	sent, err := f.svc.SendDailyReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, f.notifier.sent)

	logs, err := f.svc.ReminderLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ReminderStatusFailed, logs[0].Status)
	assert.Equal(t, "undeliverable", logs[0].ErrorMessage)
}

func TestReminderLogsEmpty(t *testing.T) {
	f := newReminderFixture(t)

	logs, err := f.svc.ReminderLogs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestStartSchedulerRejectsBadSchedule(t *testing.T) {
	f := newReminderFixture(t)

	_, err := f.svc.StartScheduler("every morning")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid reminder schedule"))

	c, err := f.svc.StartScheduler("0 9 * * *")
	require.NoError(t, err)
	c.Stop()
}
