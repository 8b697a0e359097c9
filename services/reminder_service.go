// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"washcenter-backend/models"
	"washcenter-backend/store"
	"washcenter-backend/utils"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers a text message and returns the provider message id.
type Notifier interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(accountSid, authToken, from string) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: from,
	}
}

func (n *TwilioNotifier) SendSMS(ctx context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

type reminderStore interface {
	store.BookingStore
	store.CenterStore
	store.ReminderStore
}

// ReminderService texts every center a digest of its open bookings for the
// next day.
type ReminderService struct {
	store    reminderStore
	notifier Notifier
	now      func() time.Time
}

func NewReminderService(s reminderStore, n Notifier) *ReminderService {
	return &ReminderService{store: s, notifier: n, now: time.Now}
}

// StartScheduler runs SendDailyReminders on schedule (standard 5-field cron).
func (s *ReminderService) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.SendDailyReminders(context.Background()); err != nil {
			log.Printf("[reminder] run failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Printf("[reminder] scheduler started (%s)", schedule)
	return c, nil
}

// SendDailyReminders returns the number of messages sent successfully.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (int, error) {
	log.Println("[reminder] starting daily reminder processing...")

	day := now.With(s.now()).BeginningOfDay().AddDate(0, 0, 1)
	next := day.AddDate(0, 0, 1)
	bookings, err := s.store.ListBookings(ctx, store.BookingFilter{
		Statuses: []models.BookingStatus{models.BookingStatusPending, models.BookingStatusInProgress},
		DateFrom: &day,
		DateTo:   &next,
	})
	if err != nil {
		return 0, &StorageError{Op: "list bookings", Err: err}
	}

	byCenter := make(map[uuid.UUID][]models.Booking)
	var centerIDs []uuid.UUID
	for _, b := range bookings {
		if _, seen := byCenter[b.CenterID]; !seen {
			centerIDs = append(centerIDs, b.CenterID)
		}
		byCenter[b.CenterID] = append(byCenter[b.CenterID], b)
	}

	sent := 0
	for _, id := range centerIDs {
		ok, err := s.remindCenter(ctx, id, day, byCenter[id])
		if err != nil {
			log.Printf("[reminder] center %s: %v", id, err)
			continue
		}
		if ok {
			sent++
		}
	}

	log.Printf("[reminder] daily reminder processing completed: %d sent", sent)
	return sent, nil
}

func (s *ReminderService) remindCenter(ctx context.Context, centerID uuid.UUID, day time.Time, bookings []models.Booking) (bool, error) {
	center, err := s.store.GetCenter(ctx, centerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("[reminder] center %s was removed, skipping %d bookings", centerID, len(bookings))
			return false, nil
		}
		return false, err
	}
	if !utils.ValidatePhone(center.Contact) {
		log.Printf("[reminder] center %s has no valid contact number", center.Name)
		return false, nil
	}

	message := reminderMessage(center.Name, day, bookings)
	to := utils.CleanPhone(center.Contact)
	sid, sendErr := s.notifier.SendSMS(ctx, to, message)

	reminderLog := models.ReminderLog{
		ID:           uuid.New(),
		CenterID:     center.ID,
		CenterName:   center.Name,
		ServiceDate:  day,
		BookingCount: len(bookings),
		To:           to,
		Message:      message,
		Status:       models.ReminderStatusSent,
		Channel:      "sms",
		SentAt:       s.now(),
	}
	if sendErr != nil {
		log.Printf("Failed to send reminder to %s: %v", to, sendErr)
		reminderLog.Status = models.ReminderStatusFailed
		reminderLog.ErrorMessage = sendErr.Error()
	} else {
		log.Printf("Reminder sent to %s, SID: %s", to, sid)
	}

	if err := s.store.CreateReminderLog(ctx, &reminderLog); err != nil {
		log.Printf("Failed to log reminder for center %s: %v", center.ID, err)
	}
	return sendErr == nil, nil
}

func reminderMessage(centerName string, day time.Time, bookings []models.Booking) string {
	sorted := make([]models.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	lines := make([]string, 0, len(sorted))
	for _, b := range sorted {
		lines = append(lines, fmt.Sprintf("%s %s (%s)", b.Date.Format("15:04"), b.Service, b.CustomerName))
	}
	return fmt.Sprintf("Hi %s, you have %d booking(s) on %s: %s",
		centerName, len(sorted), day.Format("Mon Jan 2"), strings.Join(lines, "; "))
}

// ReminderLogs lists reminder attempts, newest first.
func (s *ReminderService) ReminderLogs(ctx context.Context) ([]models.ReminderLog, error) {
	logs, err := s.store.ListReminderLogs(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list reminder logs", Err: err}
	}
	if logs == nil {
		logs = []models.ReminderLog{}
	}
	return logs, nil
}
