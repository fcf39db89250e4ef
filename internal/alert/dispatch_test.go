package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/jobstate"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/notification"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dbtest"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

func (e *testEnv) worker(sender Sender, batch int, guard RunGuard) *Worker {
	return NewWorker(e.store, e.resolver, sender, config.Dispatch{BatchSize: batch}, guard)
}

func (e *testEnv) notify(t *testing.T, userID uint64, title string) *models.Notification {
	t.Helper()

	n := &models.Notification{UserID: userID, Type: models.NotificationGeneral, Title: title}
	require.NoError(t, notification.Create(e.db, n))

	return n
}

func (e *testEnv) reload(t *testing.T, id uint64) *models.Notification {
	t.Helper()

	n, err := notification.Get(e.db, id)
	require.NoError(t, err)

	return n
}

func TestProcessUnsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	named := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	require.NoError(t, env.db.Model(&named).Updates(map[string]any{"first_name": "Ada", "last_name": "Lovelace"}).Error)

	anonymous := dbtest.User(t, env.db, "tech", models.RoleTechnician, 0)
	quiet := dbtest.User(t, env.db, "quiet", models.RoleTechnician, 0)
	broken := dbtest.User(t, env.db, "broken", models.RoleTechnician, 0)

	_, err := env.resolver.UpdateSettings(ctx, quiet.ID, SettingsPatch{EmailEnabled: boolp(false)})
	require.NoError(t, err)

	first := env.notify(t, named.ID, "first")
	second := env.notify(t, anonymous.ID, "second")
	skipped := env.notify(t, quiet.ID, "skipped")
	failing := env.notify(t, broken.ID, "failing")

	sender := &recordingSender{fail: map[string]error{broken.Email: errors.New("mailbox full")}}

	stats, err := env.worker(sender, 50, nil).ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Processed: 4, Sent: 2, Failed: 1, Skipped: 1}, stats)

	assert.Equal(t, []sentMail{
		{NotificationID: first.ID, Address: "ada@example.com", Name: "Ada Lovelace"},
		{NotificationID: second.ID, Address: "tech@example.com", Name: "User"},
	}, sender.Sent())

	assert.True(t, env.reload(t, first.ID).EmailSent)
	assert.True(t, env.reload(t, second.ID).EmailSent)
	assert.True(t, env.reload(t, skipped.ID).EmailSent)
	assert.False(t, env.reload(t, failing.ID).EmailSent, "failed sends are retried")

	// the next run only sees the failed notification
	delete(sender.fail, broken.Email)

	stats, err = env.worker(sender, 50, nil).ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Processed: 1, Sent: 1}, stats)
	assert.True(t, env.reload(t, failing.ID).EmailSent)

	report, err := jobstate.Load(env.db, jobstate.JobAlertDispatch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Counters["sent"])
	assert.Empty(t, report.Error)
}

func TestProcessUnsentBatchIsOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)

	var ids []uint64
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, env.notify(t, u.ID, title).ID)
	}

	sender := &recordingSender{}

	stats, err := env.worker(sender, 2, nil).ProcessUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, ids[0], sent[0].NotificationID)
	assert.Equal(t, ids[1], sent[1].NotificationID)
	assert.False(t, env.reload(t, ids[2]).EmailSent)
}

func TestProcessUnsentBusyGuard(t *testing.T) {
	env := newTestEnv(t)
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	env.notify(t, u.ID, "pending")

	guard := &LocalGuard{}
	release, ok, err := guard.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	sender := &recordingSender{}

	stats, err := env.worker(sender, 50, guard).ProcessUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{}, stats)
	assert.Empty(t, sender.Sent())

	release()

	stats, err = env.worker(sender, 50, guard).ProcessUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
}

func TestProcessUnsentSingleRunAtATime(t *testing.T) {
	env := newTestEnv(t)
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	env.notify(t, u.ID, "pending")

	entered := make(chan struct{})
	unblock := make(chan struct{})

	sender := &recordingSender{hook: func(context.Context, *models.Notification) {
		close(entered)
		<-unblock
	}}
	w := env.worker(sender, 50, nil)

	var (
		wg    sync.WaitGroup
		first DispatchStats
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		first, _ = w.ProcessUnsent(context.Background())
	}()

	<-entered

	second, err := w.ProcessUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{}, second)

	close(unblock)
	wg.Wait()

	assert.Equal(t, DispatchStats{Processed: 1, Sent: 1}, first)
}

func TestProcessUnsentDelayHonoursCancel(t *testing.T) {
	env := newTestEnv(t)
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	env.notify(t, u.ID, "one")
	env.notify(t, u.ID, "two")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &recordingSender{hook: func(context.Context, *models.Notification) { cancel() }}
	w := NewWorker(env.store, env.resolver, sender, config.Dispatch{BatchSize: 50, SendDelay: time.Hour}, nil)

	done := make(chan struct{})

	var (
		stats DispatchStats
		err   error
	)

	go func() {
		defer close(done)

		stats, err = w.ProcessUnsent(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch did not stop on cancel")
	}

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, DispatchStats{Processed: 1, Sent: 1}, stats)

	report, lerr := jobstate.Load(env.db, jobstate.JobAlertDispatch)
	require.NoError(t, lerr)
	assert.Contains(t, report.Error, context.Canceled.Error())
}

func TestDeliverRecoversPanics(t *testing.T) {
	env := newTestEnv(t)
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	n := env.notify(t, u.ID, "boom")

	sender := SenderFunc(func(context.Context, *models.Notification, string, string) error {
		panic("smtp client exploded")
	})

	stats, err := env.worker(sender, 50, nil).ProcessUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Processed: 1, Failed: 1}, stats)
	assert.False(t, env.reload(t, n.ID).EmailSent)
}

func TestCreateAndSendNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	quiet := dbtest.User(t, env.db, "quiet", models.RoleAdmin, 0)

	_, err := env.resolver.UpdateSettings(ctx, quiet.ID, SettingsPatch{EmailEnabled: boolp(false)})
	require.NoError(t, err)

	sender := &recordingSender{}
	w := env.worker(sender, 50, nil)

	n := &models.Notification{UserID: u.ID, Type: models.NotificationGeneral, Title: "Maintenance tonight"}
	outcome, err := w.CreateAndSendNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)
	assert.NotZero(t, n.ID)
	assert.True(t, env.reload(t, n.ID).EmailSent)

	q := &models.Notification{UserID: quiet.ID, Type: models.NotificationGeneral, Title: "Maintenance tonight"}
	outcome, err = w.CreateAndSendNotification(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.True(t, env.reload(t, q.ID).EmailSent)

	assert.Len(t, sender.Sent(), 1)

	_, err = w.CreateAndSendNotification(ctx, &models.Notification{UserID: u.ID, Type: models.NotificationGeneral})
	require.ErrorIs(t, err, notification.ErrNotificationInvalid)

	// nothing left for the batch worker
	stats, err := w.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Processed)
}

func TestBatchAndAdHocOutcomesAgree(t *testing.T) {
	tests := []struct {
		name         string
		emailEnabled bool
		failSend     bool
		want         Outcome
		wantSent     bool
	}{
		{name: "delivered", emailEnabled: true, want: OutcomeSent, wantSent: true},
		{name: "email disabled", emailEnabled: false, want: OutcomeSkipped, wantSent: true},
		{name: "sender fails", emailEnabled: true, failSend: true, want: OutcomeFailed, wantSent: false},
	}

	outcomeOf := func(s DispatchStats) Outcome {
		switch {
		case s.Sent == 1:
			return OutcomeSent
		case s.Skipped == 1:
			return OutcomeSkipped
		default:
			return OutcomeFailed
		}
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			batchUser := dbtest.User(t, env.db, "batch", models.RoleAdmin, 0)
			adHocUser := dbtest.User(t, env.db, "adhoc", models.RoleAdmin, 0)

			sender := &recordingSender{fail: map[string]error{}}

			for _, u := range []models.User{batchUser, adHocUser} {
				_, err := env.resolver.UpdateSettings(ctx, u.ID, SettingsPatch{EmailEnabled: boolp(tt.emailEnabled)})
				require.NoError(t, err)

				if tt.failSend {
					sender.fail[u.Email] = errors.New("smtp: 421 service not available")
				}
			}

			w := env.worker(sender, 50, nil)

			queued := env.notify(t, batchUser.ID, "Maintenance tonight")
			stats, err := w.ProcessUnsent(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, stats.Processed)

			adHoc := &models.Notification{UserID: adHocUser.ID, Type: models.NotificationGeneral, Title: "Maintenance tonight"}
			outcome, err := w.CreateAndSendNotification(ctx, adHoc)
			require.NoError(t, err)

			assert.Equal(t, tt.want, outcomeOf(stats))
			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, tt.wantSent, env.reload(t, queued.ID).EmailSent)
			assert.Equal(t, tt.wantSent, env.reload(t, adHoc.ID).EmailSent)
			assert.Equal(t, tt.wantSent, adHoc.EmailSent)
		})
	}
}

func TestDeliverWithoutAddress(t *testing.T) {
	env := newTestEnv(t)
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)
	require.NoError(t, env.db.Model(&u).Update("email", "").Error)

	n := env.notify(t, u.ID, "nowhere")
	sender := &recordingSender{}

	stats, err := env.worker(sender, 50, nil).ProcessUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Processed: 1, Failed: 1}, stats)
	assert.Empty(t, sender.Sent())
	assert.False(t, env.reload(t, n.ID).EmailSent)
}

func TestNotifyPendingVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a1 := dbtest.User(t, env.db, "root", models.RoleAdmin, 0)
	a2 := dbtest.User(t, env.db, "boss", models.RoleAdmin, 0)
	tech := dbtest.User(t, env.db, "tech", models.RoleTechnician, 0)
	newcomer := dbtest.User(t, env.db, "newcomer", models.RoleUnverified, 0)

	sender := &recordingSender{}

	created, err := env.worker(sender, 50, nil).NotifyPendingVerification(ctx, newcomer)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, sender.Sent(), 2)

	for _, admin := range []models.User{a1, a2} {
		ns := env.notificationsOf(t, admin.ID)
		require.Len(t, ns, 1)
		assert.Equal(t, models.NotificationNewUnverifiedUser, ns[0].Type)
		assert.Equal(t, models.RelatedTypeUser, ns[0].RelatedType)
		assert.Equal(t, newcomer.ID, *ns[0].RelatedID)
		assert.Contains(t, ns[0].Message, "newcomer@example.com")
	}

	assert.Empty(t, env.notificationsOf(t, tech.ID))
}

func TestRunCycle(t *testing.T) {
	env := newTestEnv(t)
	acme := dbtest.Client(t, env.db, "Acme")
	admin := dbtest.User(t, env.db, "admin", models.RoleAdmin, 0)
	env.license(t, acme.ID, "Office Suite", 30, models.LicenseStatusActive)

	sender := &recordingSender{}

	report, stats, err := RunCycle(context.Background(), env.scanner(env.store), env.worker(sender, 50, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created())
	assert.Equal(t, DispatchStats{Processed: 1, Sent: 1}, stats)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, admin.Email, sent[0].Address)
}
