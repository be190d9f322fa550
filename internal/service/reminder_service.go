package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/doctor"
	"github.com/pulseai-health/clinic-api/internal/domain/notification"
	"github.com/pulseai-health/clinic-api/pkg/metrics"
)

// ReminderService sweeps upcoming appointments and dispatches WhatsApp
// reminders at the 3-day, 1-day, and 1-hour marks.
//
// Classification uses exact whole-hour and whole-day equality (floor), so
// the sweep must run at least once per hour or an appointment can cross the
// 1-hour mark between runs and never get that reminder. Idempotence comes
// from the notifications store: a sent record per (appointment, kind) blocks
// re-sends, and its unique index makes that hold under overlapping runs.
// Failed records do not block: the next sweep retries as long as the
// appointment still classifies.
type ReminderService struct {
	repo       appointment.Repository
	doctorRepo doctor.Repository
	users      UserDirectory
	notifRepo  notification.Repository
	messenger  Messenger
	metrics    *metrics.Collector
	log        *zap.Logger
	loc        *time.Location
	clinicName string
}

func NewReminderService(
	repo appointment.Repository,
	doctorRepo doctor.Repository,
	users UserDirectory,
	notifRepo notification.Repository,
	messenger Messenger,
	m *metrics.Collector,
	log *zap.Logger,
	loc *time.Location,
	clinicName string,
) *ReminderService {
	return &ReminderService{
		repo:       repo,
		doctorRepo: doctorRepo,
		users:      users,
		notifRepo:  notifRepo,
		messenger:  messenger,
		metrics:    m,
		log:        log,
		loc:        loc,
		clinicName: clinicName,
	}
}

// Summary reports one sweep's outcomes.
type Summary struct {
	RemindersSent    int `json:"reminders_sent"`
	RemindersFailed  int `json:"reminders_failed"`
	SkippedDuplicate int `json:"skipped_duplicate"`
}

// ClassifyReminder returns which reminder kind, if any, is due for an
// appointment starting at startsAt when evaluated at now. Deltas are floored
// whole units; 2 or 4 days out is not "3 days". The 1-hour kind tolerates
// sweep drift of under half an hour past the top of the hour, but 90 minutes
// out is not "1 hour" and yields nothing this run.
func ClassifyReminder(startsAt, now time.Time) (notification.Kind, bool) {
	delta := startsAt.Sub(now)
	if delta < 0 {
		return "", false
	}
	hours := int(delta.Hours())
	days := hours / 24

	switch {
	case days == 3:
		return notification.KindThreeDays, true
	case days == 1:
		return notification.KindOneDay, true
	case hours == 1 && delta < 90*time.Minute:
		return notification.KindOneHour, true
	}
	return "", false
}

// Run performs one reminder sweep evaluated at now. Each appointment's
// dispatch is independent: gateway failures are recorded and counted, never
// propagated, so a bad number or a provider outage for one patient cannot
// starve the rest of the batch.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (*Summary, error) {
	start := time.Now()
	defer func() { s.metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	fromDate := now.In(s.loc).Format(appointment.DateLayout)
	appts, err := s.repo.ListUpcoming(ctx, fromDate)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming appointments: %w", err)
	}

	summary := &Summary{}
	for _, a := range appts {
		if err := ctx.Err(); err != nil {
			// Partial batches are safe to abandon: the uniqueness guard
			// lets the next sweep resume where this one stopped.
			return summary, err
		}
		s.dispatchOne(ctx, a, now, summary)
	}

	s.log.Info("reminder sweep completed",
		zap.Int("candidates", len(appts)),
		zap.Int("sent", summary.RemindersSent),
		zap.Int("failed", summary.RemindersFailed),
		zap.Int("skipped_duplicate", summary.SkippedDuplicate),
		zap.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

func (s *ReminderService) dispatchOne(ctx context.Context, a *appointment.Appointment, now time.Time, summary *Summary) {
	startsAt, err := a.StartsAt(s.loc)
	if err != nil {
		s.log.Error("appointment has unparseable date/time",
			zap.String("appointment_id", a.ID.String()), zap.Error(err))
		return
	}

	kind, due := ClassifyReminder(startsAt, now)
	if !due {
		return
	}

	sent, err := s.notifRepo.HasSent(ctx, a.ID, kind)
	if err != nil {
		s.log.Error("reminder dedup check failed",
			zap.String("appointment_id", a.ID.String()), zap.Error(err))
		summary.RemindersFailed++
		s.metrics.RemindersTotal.WithLabelValues(string(kind), "failed").Inc()
		return
	}
	if sent {
		summary.SkippedDuplicate++
		s.metrics.RemindersTotal.WithLabelValues(string(kind), "skipped_duplicate").Inc()
		return
	}

	patient, err := s.users.GetByID(ctx, a.PatientID)
	if err != nil || patient.Mobile == "" {
		s.log.Warn("reminder undeliverable: no patient mobile",
			zap.String("appointment_id", a.ID.String()))
		summary.RemindersFailed++
		s.metrics.RemindersTotal.WithLabelValues(string(kind), "failed").Inc()
		return
	}

	doc, err := s.doctorRepo.GetByID(ctx, a.DoctorID)
	if err != nil {
		s.log.Error("reminder skipped: doctor lookup failed",
			zap.String("appointment_id", a.ID.String()), zap.Error(err))
		summary.RemindersFailed++
		s.metrics.RemindersTotal.WithLabelValues(string(kind), "failed").Inc()
		return
	}

	msg := notification.ReminderMessage(kind, doc.Name, s.clinicName, a.AppointmentDate, a.AppointmentTime)

	n := &notification.Notification{
		AppointmentID: a.ID,
		UserID:        a.PatientID,
		Kind:          kind,
		Message:       msg,
	}

	sid, sendErr := s.messenger.Send(ctx, patient.Mobile, msg)
	if sendErr != nil {
		n.Status = notification.StatusFailed
		summary.RemindersFailed++
		s.metrics.RemindersTotal.WithLabelValues(string(kind), "failed").Inc()
		s.log.Warn("reminder delivery failed",
			zap.String("appointment_id", a.ID.String()),
			zap.String("kind", string(kind)),
			zap.Error(sendErr),
		)
	} else {
		n.Status = notification.StatusSent
		n.ProviderMessageID = sid
		summary.RemindersSent++
		s.metrics.RemindersTotal.WithLabelValues(string(kind), "sent").Inc()
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		if err == notification.ErrAlreadySent {
			// A concurrent sweep won the insert race after our HasSent check.
			if sendErr == nil {
				summary.RemindersSent--
			} else {
				summary.RemindersFailed--
			}
			summary.SkippedDuplicate++
			return
		}
		s.log.Error("failed to record reminder notification",
			zap.String("appointment_id", a.ID.String()), zap.Error(err))
	}
}
