package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// Job names
const (
	JobEmailDispatch    = "email-dispatch"
	JobMeetingReminders = "meeting-reminders"
	JobTrialExpiry      = "trial-expiry"
)

// EmailDispatcher drains the email outbox
type EmailDispatcher interface {
	Dispatch(ctx context.Context, max int) (int, error)
}

// ReminderSender enqueues reminders for meetings starting within window
type ReminderSender interface {
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

// TrialExpirer moves lapsed trials to expired
type TrialExpirer interface {
	ExpireTrials(ctx context.Context) (int, error)
}

// Config sets job cadence. Zero values fall back to defaults.
type Config struct {
	EmailDispatchInterval time.Duration
	EmailBatchSize        int
	ReminderInterval      time.Duration
	ReminderWindow        time.Duration
	TrialExpiryInterval   time.Duration
}

func (c *Config) withDefaults() {
	if c.EmailDispatchInterval <= 0 {
		c.EmailDispatchInterval = 30 * time.Second
	}
	if c.EmailBatchSize <= 0 {
		c.EmailBatchSize = 50
	}
	if c.ReminderInterval <= 0 {
		c.ReminderInterval = 15 * time.Minute
	}
	if c.ReminderWindow <= 0 {
		c.ReminderWindow = 24 * time.Hour
	}
	if c.TrialExpiryInterval <= 0 {
		c.TrialExpiryInterval = time.Hour
	}
}

// JobStatus describes one registered job
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run,omitempty"`
	NextRun time.Time `json:"next_run,omitempty"`
}

// JobScheduler runs the periodic side effects: outbox delivery, meeting
// reminders and trial expiry. Each job runs in singleton mode.
type JobScheduler struct {
	scheduler gocron.Scheduler
	mailer    EmailDispatcher
	reminders ReminderSender
	trials    TrialExpirer
	cfg       Config
	log       *logrus.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler and registers all jobs
func NewJobScheduler(mailer EmailDispatcher, reminders ReminderSender, trials TrialExpirer, cfg Config, log *logrus.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	cfg.withDefaults()

	js := &JobScheduler{
		scheduler: scheduler,
		mailer:    mailer,
		reminders: reminders,
		trials:    trials,
		cfg:       cfg,
		log:       log,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.WithField("jobs", len(js.jobs)).Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.log.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	definitions := []struct {
		name     string
		interval time.Duration
		task     func(ctx context.Context) error
	}{
		{JobEmailDispatch, js.cfg.EmailDispatchInterval, js.dispatchEmails},
		{JobMeetingReminders, js.cfg.ReminderInterval, js.sendMeetingReminders},
		{JobTrialExpiry, js.cfg.TrialExpiryInterval, js.expireTrials},
	}

	for _, def := range definitions {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(def.interval),
			gocron.NewTask(def.task, context.Background()),
			gocron.WithName(def.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register job %s: %w", def.name, err)
		}
		js.jobs[def.name] = job
	}

	js.log.WithField("jobs", len(js.jobs)).Info("registered background jobs")
	return nil
}

func (js *JobScheduler) dispatchEmails(ctx context.Context) error {
	sent, err := js.mailer.Dispatch(ctx, js.cfg.EmailBatchSize)
	if err != nil {
		js.log.WithError(err).WithField("job", JobEmailDispatch).Error("email dispatch failed")
		return err
	}
	if sent > 0 {
		js.log.WithFields(logrus.Fields{"job": JobEmailDispatch, "sent": sent}).Info("emails dispatched")
	}
	return nil
}

func (js *JobScheduler) sendMeetingReminders(ctx context.Context) error {
	count, err := js.reminders.SendReminders(ctx, js.cfg.ReminderWindow)
	if err != nil {
		js.log.WithError(err).WithField("job", JobMeetingReminders).Error("meeting reminders failed")
		return err
	}
	if count > 0 {
		js.log.WithFields(logrus.Fields{"job": JobMeetingReminders, "meetings": count}).Info("meeting reminders enqueued")
	}
	return nil
}

func (js *JobScheduler) expireTrials(ctx context.Context) error {
	count, err := js.trials.ExpireTrials(ctx)
	if err != nil {
		js.log.WithError(err).WithField("job", JobTrialExpiry).Error("trial expiry failed")
		return err
	}
	if count > 0 {
		js.log.WithFields(logrus.Fields{"job": JobTrialExpiry, "associations": count}).Info("trials expired")
	}
	return nil
}

// RunNow triggers a registered job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, exists := js.jobs[name]
	js.mu.RUnlock()

	if !exists {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.RunNow()
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		status := JobStatus{Name: name}
		if last, err := job.LastRun(); err == nil {
			status.LastRun = last
		}
		if next, err := job.NextRun(); err == nil {
			status.NextRun = next
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
