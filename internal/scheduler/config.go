package scheduler

import (
	"time"
)

// Config controls scheduler cadence and job timeouts.
type Config struct {
	// DispatchCron is the cron expression for the daily run.
	DispatchCron string
	// JobTimeout bounds each job within a run.
	JobTimeout time.Duration
	// LockTTL bounds how long one instance holds the run lock.
	LockTTL time.Duration
	// TrashRetention is how long soft-deleted rows stay recoverable.
	TrashRetention time.Duration
	// SubscriptionReminderDays is how many days before the subscription due
	// date the payment reminder fires.
	SubscriptionReminderDays int
	// EnabledJobs limits which jobs run. Empty means all.
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		DispatchCron:             "0 9 * * *",
		JobTimeout:               10 * time.Minute,
		LockTTL:                  30 * time.Minute,
		TrashRetention:           30 * 24 * time.Hour,
		SubscriptionReminderDays: 5,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.DispatchCron == "" {
		c.DispatchCron = defaults.DispatchCron
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.TrashRetention <= 0 {
		c.TrashRetention = defaults.TrashRetention
	}
	if c.SubscriptionReminderDays <= 0 {
		c.SubscriptionReminderDays = defaults.SubscriptionReminderDays
	}
	return c
}
