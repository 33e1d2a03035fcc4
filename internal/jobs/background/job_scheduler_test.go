package background

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	calls atomic.Int32
	max   atomic.Int32
}

func (f *fakeDispatcher) Dispatch(_ context.Context, max int) (int, error) {
	f.calls.Add(1)
	f.max.Store(int32(max))
	return 2, nil
}

type fakeReminders struct {
	window atomic.Int64
}

func (f *fakeReminders) SendReminders(_ context.Context, window time.Duration) (int, error) {
	f.window.Store(int64(window))
	return 1, nil
}

type fakeTrials struct {
	err   error
	calls atomic.Int32
}

func (f *fakeTrials) ExpireTrials(context.Context) (int, error) {
	f.calls.Add(1)
	return 0, f.err
}

func newTestScheduler(t *testing.T, trials *fakeTrials) (*JobScheduler, *fakeDispatcher, *fakeReminders, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)
	mailer, reminders := &fakeDispatcher{}, &fakeReminders{}

	js, err := NewJobScheduler(mailer, reminders, trials, Config{ReminderWindow: 2 * time.Hour}, log)
	require.NoError(t, err)
	js.Start()
	t.Cleanup(func() { _ = js.Stop() })
	return js, mailer, reminders, hook
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{EmailBatchSize: 10}
	cfg.withDefaults()

	assert.Equal(t, 30*time.Second, cfg.EmailDispatchInterval)
	assert.Equal(t, 10, cfg.EmailBatchSize)
	assert.Equal(t, 15*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, 24*time.Hour, cfg.ReminderWindow)
	assert.Equal(t, time.Hour, cfg.TrialExpiryInterval)
}

func TestGetJobStatus_SortedByName(t *testing.T) {
	js, _, _, _ := newTestScheduler(t, &fakeTrials{})

	statuses := js.GetJobStatus()

	require.Len(t, statuses, 3)
	assert.Equal(t, JobEmailDispatch, statuses[0].Name)
	assert.Equal(t, JobMeetingReminders, statuses[1].Name)
	assert.Equal(t, JobTrialExpiry, statuses[2].Name)
}

func TestRunNow_UnknownJob(t *testing.T) {
	js, _, _, _ := newTestScheduler(t, &fakeTrials{})

	assert.EqualError(t, js.RunNow("nightly-backup"), `unknown job "nightly-backup"`)
}

func TestRunNow_PassesConfiguredArguments(t *testing.T) {
	js, mailer, reminders, _ := newTestScheduler(t, &fakeTrials{})

	require.NoError(t, js.RunNow(JobEmailDispatch))
	require.NoError(t, js.RunNow(JobMeetingReminders))

	assert.Eventually(t, func() bool {
		return mailer.calls.Load() == 1 && reminders.window.Load() == int64(2*time.Hour)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(50), mailer.max.Load())
}

func TestRunNow_TaskFailureIsLogged(t *testing.T) {
	trials := &fakeTrials{err: errors.New("db unavailable")}
	js, _, _, hook := newTestScheduler(t, trials)

	require.NoError(t, js.RunNow(JobTrialExpiry))

	assert.Eventually(t, func() bool {
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.ErrorLevel && entry.Data["job"] == JobTrialExpiry {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), trials.calls.Load())
}
