// Package jobstate keeps the report of the last run of each background job.
package jobstate

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/setting"
)

// Known jobs.
const (
	JobAlertScan     = "alert_scan"
	JobAlertDispatch = "alert_dispatch"
)

const keyPrefix = "job_"

// ErrNeverRun is returned when a job has no stored report.
var ErrNeverRun = errors.New("job has never run")

// Report describes one finished job run.
type Report struct {
	RunID      string         `json:"runId"`
	Job        string         `json:"job"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Counters   map[string]int `json:"counters"`
	Error      string         `json:"error,omitempty"`
}

// Save stores r as the last run of its job.
func Save(db *gorm.DB, r Report) error {
	return setting.SaveJSON(db, keyPrefix+r.Job, r)
}

// Load returns the last run of job.
func Load(db *gorm.DB, job string) (Report, error) {
	var r Report

	err := setting.LoadJSON(db, keyPrefix+job, &r)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return Report{}, ErrNeverRun
	}

	return r, err
}

// LoadAll returns the stored reports of the given jobs, skipping jobs that never ran.
func LoadAll(db *gorm.DB, jobs ...string) ([]Report, error) {
	reports := make([]Report, 0, len(jobs))

	for _, job := range jobs {
		r, err := Load(db, job)
		if errors.Is(err, ErrNeverRun) {
			continue
		}
		if err != nil {
			return nil, err
		}

		reports = append(reports, r)
	}

	return reports, nil
}
