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

// ClassReport counts what a scan did for one asset class.
type ClassReport struct {
	Assets     int `json:"assets"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// ScanReport is the result of Scanner.RunAll.
type ScanReport struct {
	RunID      string      `json:"runId"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	Licenses   ClassReport `json:"licenses"`
	Equipment  ClassReport `json:"equipment"`
}

// Created returns the number of notifications created by the run.
func (r ScanReport) Created() int {
	return r.Licenses.Created + r.Equipment.Created
}

// candidate is one asset date matched against the thresholds of one recipient.
type candidate struct {
	class     string
	typ       models.NotificationType
	relatedID uint64
	related   string
	subject   Subject
}

// Scanner creates threshold notifications for licenses and equipment.
type Scanner struct {
	store    Store
	resolver *Resolver
	composer Composer
	loc      *time.Location
	window   time.Duration
	days     int
	now      func() time.Time
}

// NewScanner returns a Scanner using the calendar and dedup settings of cfg.
func NewScanner(store Store, resolver *Resolver, cfg config.Alerts) *Scanner {
	s := &Scanner{
		store:    store,
		resolver: resolver,
		composer: NewComposer(),
		loc:      cfg.Location(),
		window:   cfg.DedupWindow,
		days:     cfg.LookaheadDays,
		now:      time.Now,
	}

	if s.window <= 0 {
		s.window = day
	}

	if s.days <= 0 {
		s.days = 366
	}

	return s
}

// RunAll scans licenses then equipment. A failing class does not stop the other one;
// the returned error joins the class errors.
func (s *Scanner) RunAll(ctx context.Context) (ScanReport, error) {
	report := ScanReport{RunID: uuid.NewString(), StartedAt: s.now().UTC()}
	l := ctxLogger(ctx).With().Str("run", report.RunID).Logger()
	ctx = l.WithContext(ctx)

	timer := time.Now()

	var licErr, eqErr error
	report.Licenses, licErr = s.ScanLicenses(ctx)
	report.Equipment, eqErr = s.ScanEquipment(ctx)
	err := errors.Join(licErr, eqErr)

	report.FinishedAt = s.now().UTC()
	scanDuration.Observe(time.Since(timer).Seconds())

	ev := l.Info()
	if err != nil {
		ev = l.Error().Err(err)
	}

	ev.Int("licenses", report.Licenses.Assets).
		Int("equipment", report.Equipment.Assets).
		Int("created", report.Created()).
		Int("duplicates", report.Licenses.Duplicates+report.Equipment.Duplicates).
		Int("errors", report.Licenses.Errors+report.Equipment.Errors).
		Msg("alert scan finished")

	s.record(ctx, report, err)

	return report, err
}

func (s *Scanner) record(ctx context.Context, r ScanReport, runErr error) {
	jr := jobstate.Report{
		RunID:      r.RunID,
		Job:        jobstate.JobAlertScan,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Counters: map[string]int{
			"licenses":             r.Licenses.Assets,
			"licenses_created":     r.Licenses.Created,
			"licenses_duplicates":  r.Licenses.Duplicates,
			"licenses_errors":      r.Licenses.Errors,
			"equipment":            r.Equipment.Assets,
			"equipment_created":    r.Equipment.Created,
			"equipment_duplicates": r.Equipment.Duplicates,
			"equipment_errors":     r.Equipment.Errors,
		},
	}

	if runErr != nil {
		jr.Error = runErr.Error()
	}

	if err := s.store.SaveJobReport(ctx, jr); err != nil {
		ctxLogger(ctx).Error().Err(err).Msg("failed to save alert scan report")
	}
}

// ScanLicenses creates expiry notifications for licenses expiring inside the lookahead window.
func (s *Scanner) ScanLicenses(ctx context.Context) (ClassReport, error) {
	var report ClassReport

	now := s.now()
	from := Today(now, s.loc)

	licenses, err := s.store.LicensesExpiringBetween(ctx, from, from.AddDate(0, 0, s.days))
	if err != nil {
		alertsErrors.WithLabelValues(classLicense).Inc()
		return report, fmt.Errorf("fetch expiring licenses: %w", err)
	}

	staff, err := s.store.ActiveStaff(ctx)
	if err != nil {
		alertsErrors.WithLabelValues(classLicense).Inc()
		return report, fmt.Errorf("fetch staff recipients: %w", err)
	}

	clients := make(recipientCache)

	for i := range licenses {
		lic := &licenses[i]
		report.Assets++

		c := candidate{
			class:     classLicense,
			typ:       models.NotificationLicenseExpiry,
			relatedID: lic.ID,
			related:   models.RelatedTypeLicense,
			subject: Subject{
				Milestone: models.MilestoneExpiry,
				Name:      lic.Name,
				Date:      dateOf(lic.ExpiryDate),
				Days:      DaysUntil(now, lic.ExpiryDate, s.loc),
			},
		}

		s.scanAsset(ctx, &report, now, c, staff, clients, lic.ClientID)
	}

	return report, nil
}

// ScanEquipment creates notifications for equipment whose obsolescence or end-of-sale date is
// inside the lookahead window. Both dates use the equipment day-set and dedup independently.
func (s *Scanner) ScanEquipment(ctx context.Context) (ClassReport, error) {
	var report ClassReport

	now := s.now()
	from := Today(now, s.loc)

	units, err := s.store.EquipmentDueBetween(ctx, from, from.AddDate(0, 0, s.days))
	if err != nil {
		alertsErrors.WithLabelValues(classEquipment).Inc()
		return report, fmt.Errorf("fetch due equipment: %w", err)
	}

	staff, err := s.store.ActiveStaff(ctx)
	if err != nil {
		alertsErrors.WithLabelValues(classEquipment).Inc()
		return report, fmt.Errorf("fetch staff recipients: %w", err)
	}

	clients := make(recipientCache)

	for i := range units {
		eq := &units[i]
		report.Assets++

		milestones := []struct {
			milestone models.Milestone
			date      *time.Time
		}{
			{models.MilestoneObsolescence, eq.EstimatedObsolescenceDate},
			{models.MilestoneEndOfSale, eq.EndOfSale},
		}

		for _, m := range milestones {
			if m.date == nil {
				continue
			}

			c := candidate{
				class:     classEquipment,
				typ:       models.NotificationEquipmentObsolescence,
				relatedID: eq.ID,
				related:   models.RelatedTypeEquipment,
				subject: Subject{
					Milestone: m.milestone,
					Name:      eq.Name,
					Serial:    eq.SerialNumber,
					Date:      dateOf(*m.date),
					Days:      DaysUntil(now, *m.date, s.loc),
				},
			}

			s.scanAsset(ctx, &report, now, c, staff, clients, eq.ClientID)
		}
	}

	return report, nil
}

// recipientCache holds the active users of each client seen during one scan.
type recipientCache map[uint64][]models.User

func (s *Scanner) clientUsers(ctx context.Context, cache recipientCache, clientID uint64) ([]models.User, error) {
	if users, ok := cache[clientID]; ok {
		return users, nil
	}

	users, err := s.store.ActiveClientUsers(ctx, clientID)
	if err != nil {
		return nil, err
	}

	cache[clientID] = users

	return users, nil
}

// scanAsset evaluates one asset date for every recipient. Errors are logged and counted.
func (s *Scanner) scanAsset(
	ctx context.Context,
	report *ClassReport,
	now time.Time,
	c candidate,
	staff []models.User,
	cache recipientCache,
	clientID uint64,
) {
	if c.subject.Days < 0 {
		return
	}

	l := ctxLogger(ctx).With().
		Str("class", c.class).
		Uint64("asset", c.relatedID).
		Str("milestone", string(c.subject.Milestone)).
		Logger()

	clientUsers, err := s.clientUsers(ctx, cache, clientID)
	if err != nil {
		l.Error().Err(err).Uint64("client", clientID).Msg("failed to load client recipients")
		s.countError(report, c.class)

		// staff still get their alert
		clientUsers = nil
	}

	recipients := make([]models.User, 0, len(staff)+len(clientUsers))
	recipients = append(recipients, staff...)
	recipients = append(recipients, clientUsers...)

	for i := range recipients {
		if err := s.evaluate(ctx, report, now, c, &recipients[i]); err != nil {
			l.Error().Err(err).Uint64("user", recipients[i].ID).Msg("failed to evaluate alert")
			s.countError(report, c.class)
		}
	}
}

func (s *Scanner) countError(report *ClassReport, class string) {
	report.Errors++
	alertsErrors.WithLabelValues(class).Inc()
}

// evaluate creates the notification of c for u when the day count matches exactly and no
// identical notification exists inside the dedup window.
func (s *Scanner) evaluate(ctx context.Context, report *ClassReport, now time.Time, c candidate, u *models.User) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r) //nolint:err113
		}
	}()

	settings, err := s.resolver.GetSettings(ctx, u.ID)
	if err != nil {
		return err
	}

	var match bool
	if c.typ == models.NotificationLicenseExpiry {
		match = settings.HasLicenseAlertDay(c.subject.Days)
	} else {
		match = settings.HasEquipmentAlertDay(c.subject.Days)
	}

	if !match {
		return nil
	}

	exists, err := s.store.RecentNotificationExists(ctx, u.ID, c.typ, c.relatedID, c.subject.Milestone, now.Add(-s.window))
	if err != nil {
		return fmt.Errorf("dedup lookup: %w", err)
	}

	if exists {
		report.Duplicates++
		alertsDuplicate.WithLabelValues(c.class).Inc()

		return nil
	}

	msg := s.composer.Compose(AudienceOf(u.Role), c.subject)
	relatedID := c.relatedID

	n := &models.Notification{
		UserID:      u.ID,
		Type:        c.typ,
		Title:       msg.Title,
		Message:     msg.Body,
		RelatedID:   &relatedID,
		RelatedType: c.related,
		Milestone:   c.subject.Milestone,
		EmailSent:   !settings.EmailEnabled,
		CreatedAt:   now.UTC(),
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	report.Created++
	alertsCreated.WithLabelValues(c.class).Inc()

	return nil
}
