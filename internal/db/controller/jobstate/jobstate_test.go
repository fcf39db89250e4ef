package jobstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dbtest"
)

func TestSaveAndLoad(t *testing.T) {
	db := dbtest.New(t)

	_, err := Load(db, JobAlertScan)
	require.ErrorIs(t, err, ErrNeverRun)

	started := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	first := Report{
		RunID:      "run-1",
		Job:        JobAlertDispatch,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Counters:   map[string]int{"processed": 3, "sent": 2, "failed": 1, "skipped": 0},
	}
	require.NoError(t, Save(db, first))

	second := first
	second.RunID = "run-2"
	second.Counters = map[string]int{"processed": 1, "sent": 1}
	require.NoError(t, Save(db, second))

	got, err := Load(db, JobAlertDispatch)
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.RunID)
	assert.Equal(t, 1, got.Counters["sent"])
	assert.True(t, got.StartedAt.Equal(started))

	all, err := LoadAll(db, JobAlertScan, JobAlertDispatch)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, JobAlertDispatch, all[0].Job)
}
