package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/jobstate"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

const defaultDisplayName = "User"

// Sender delivers one notification to address.
type Sender interface {
	Send(ctx context.Context, n *models.Notification, address, displayName string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n *models.Notification, address, displayName string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, n *models.Notification, address, displayName string) error {
	return f(ctx, n, address, displayName)
}

// Outcome is the result of delivering one notification.
type Outcome string

const (
	// OutcomeSent means the email was delivered and the notification marked sent.
	OutcomeSent Outcome = "sent"
	// OutcomeSkipped means the recipient disabled emails and the notification was marked sent.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the notification stays unsent and is retried by the next run.
	OutcomeFailed Outcome = "failed"
)

// DispatchStats counts what one ProcessUnsent call did.
type DispatchStats struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Worker emails unsent notifications.
type Worker struct {
	store     Store
	resolver  *Resolver
	sender    Sender
	guard     RunGuard
	batchSize int
	delay     time.Duration
	now       func() time.Time
}

// NewWorker returns a Worker sending through sender. A nil guard limits runs to one per Worker.
func NewWorker(store Store, resolver *Resolver, sender Sender, cfg config.Dispatch, guard RunGuard) *Worker {
	if guard == nil {
		guard = &LocalGuard{}
	}

	w := &Worker{
		store:     store,
		resolver:  resolver,
		sender:    sender,
		guard:     guard,
		batchSize: cfg.BatchSize,
		delay:     cfg.SendDelay,
		now:       time.Now,
	}

	if w.batchSize <= 0 {
		w.batchSize = 50
	}

	return w
}

// ProcessUnsent delivers the oldest unsent notifications, at most one batch.
// When another run holds the guard it returns zero stats and no error.
// A failing notification is counted and left unsent; it does not stop the batch.
func (w *Worker) ProcessUnsent(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats

	release, ok, err := w.guard.TryAcquire(ctx)
	if err != nil {
		return stats, err
	}

	if !ok {
		dispatchBusy.Inc()
		ctxLogger(ctx).Info().Msg("dispatch already running, skipping")

		return stats, nil
	}
	defer release()

	runID := uuid.NewString()
	l := ctxLogger(ctx).With().Str("run", runID).Logger()
	ctx = l.WithContext(ctx)
	started := w.now().UTC()

	stats, err = w.processBatch(ctx)

	ev := l.Info()
	if err != nil {
		ev = l.Error().Err(err)
	}

	ev.Int("processed", stats.Processed).
		Int("sent", stats.Sent).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Msg("dispatch finished")

	jr := jobstate.Report{
		RunID:      runID,
		Job:        jobstate.JobAlertDispatch,
		StartedAt:  started,
		FinishedAt: w.now().UTC(),
		Counters: map[string]int{
			"processed": stats.Processed,
			"sent":      stats.Sent,
			"failed":    stats.Failed,
			"skipped":   stats.Skipped,
		},
	}

	if err != nil {
		jr.Error = err.Error()
	}

	// the report survives a cancelled run
	if serr := w.store.SaveJobReport(context.WithoutCancel(ctx), jr); serr != nil {
		l.Error().Err(serr).Msg("failed to save dispatch report")
	}

	return stats, err
}

func (w *Worker) processBatch(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats

	batch, err := w.store.ListUnsentNotifications(ctx, w.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list unsent notifications: %w", err)
	}

	prev := OutcomeSkipped

	for i := range batch {
		if prev != OutcomeSkipped {
			if err := w.pause(ctx); err != nil {
				return stats, err
			}
		}

		prev = w.deliver(ctx, &batch[i])

		stats.Processed++

		switch prev {
		case OutcomeSent:
			stats.Sent++
		case OutcomeSkipped:
			stats.Skipped++
		case OutcomeFailed:
			stats.Failed++
		}
	}

	return stats, nil
}

func (w *Worker) pause(ctx context.Context) error {
	if w.delay <= 0 {
		return ctx.Err() //nolint:wrapcheck
	}

	t := time.NewTimer(w.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case <-t.C:
		return nil
	}
}

// CreateAndSendNotification stores n and delivers it right away with the same rules as ProcessUnsent.
// Only a failing insert is returned as error; delivery problems are reported through the Outcome.
func (w *Worker) CreateAndSendNotification(ctx context.Context, n *models.Notification) (Outcome, error) {
	if err := w.store.CreateNotification(ctx, n); err != nil {
		return OutcomeFailed, fmt.Errorf("create notification: %w", err)
	}

	return w.deliver(ctx, n), nil
}

// NotifyPendingVerification tells every active admin that u registered and waits for verification.
// It returns the number of notifications created.
func (w *Worker) NotifyPendingVerification(ctx context.Context, u models.User) (int, error) {
	admins, err := w.store.ActiveAdmins(ctx)
	if err != nil {
		return 0, fmt.Errorf("list admins: %w", err)
	}

	var (
		created int
		errs    []error
	)

	for _, admin := range admins {
		userID := u.ID

		n := &models.Notification{
			UserID:      admin.ID,
			Type:        models.NotificationNewUnverifiedUser,
			Title:       "New account pending verification",
			Message:     fmt.Sprintf("%s (%s) registered and waits for verification.", u.Username, u.Email),
			RelatedID:   &userID,
			RelatedType: models.RelatedTypeUser,
		}

		if _, err := w.CreateAndSendNotification(ctx, n); err != nil {
			errs = append(errs, err)
			continue
		}

		created++
	}

	return created, errors.Join(errs...)
}

// deliver applies the delivery rules to one stored notification. It never panics.
func (w *Worker) deliver(ctx context.Context, n *models.Notification) (outcome Outcome) {
	l := ctxLogger(ctx).With().Uint64("notification", n.ID).Uint64("user", n.UserID).Logger()

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Msg("notification delivery panicked")

			outcome = OutcomeFailed
		}

		dispatchOutcomes.WithLabelValues(string(outcome)).Inc()
	}()

	settings, err := w.resolver.GetSettings(ctx, n.UserID)
	if err != nil {
		l.Error().Err(err).Msg("failed to resolve alert settings")
		return OutcomeFailed
	}

	if !settings.EmailEnabled {
		if err := w.store.MarkEmailSent(ctx, n.ID); err != nil {
			l.Error().Err(err).Msg("failed to mark notification as handled")
			return OutcomeFailed
		}

		n.EmailSent = true

		return OutcomeSkipped
	}

	user, err := w.store.GetUser(ctx, n.UserID)
	if err != nil {
		l.Error().Err(err).Msg("failed to load recipient")
		return OutcomeFailed
	}

	if user.Email == "" {
		l.Warn().Err(ErrNoRecipientAddress).Msg("notification not sent")
		return OutcomeFailed
	}

	if err := w.sender.Send(ctx, n, user.Email, user.DisplayName(defaultDisplayName)); err != nil {
		l.Error().Err(err).Str("address", user.Email).Msg("failed to send notification email")
		return OutcomeFailed
	}

	// a cancelled run must still record a delivered email
	if err := w.store.MarkEmailSent(context.WithoutCancel(ctx), n.ID); err != nil {
		l.Error().Err(err).Msg("email sent but notification could not be marked")
		return OutcomeFailed
	}

	n.EmailSent = true

	return OutcomeSent
}

// RunCycle runs one scan followed by one dispatch. The dispatch runs even when the scan failed.
func RunCycle(ctx context.Context, s *Scanner, w *Worker) (ScanReport, DispatchStats, error) {
	report, scanErr := s.RunAll(ctx)
	stats, dispatchErr := w.ProcessUnsent(ctx)

	return report, stats, errors.Join(scanErr, dispatchErr)
}
