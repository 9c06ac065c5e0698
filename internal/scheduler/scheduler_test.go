package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_TriggerNow_RunsRegisteredJobImmediately(t *testing.T) {
	s := New(logrus.New())
	var ran bool
	require.NoError(t, s.RegisterInterval("test_job", time.Hour, func(ctx context.Context) error {
		ran = true
		return nil
	}))

	err := s.TriggerNow(context.Background(), "test_job")

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestScheduler_TriggerNow_UnknownJobReturnsError(t *testing.T) {
	s := New(logrus.New())

	err := s.TriggerNow(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestScheduler_TriggerNow_PropagatesJobError(t *testing.T) {
	s := New(logrus.New())
	boom := errors.New("boom")
	require.NoError(t, s.RegisterInterval("failing_job", time.Hour, func(ctx context.Context) error {
		return boom
	}))

	err := s.TriggerNow(context.Background(), "failing_job")

	assert.ErrorIs(t, err, boom)
}

func TestScheduler_RegisterDefaults_RegistersAllThreeJobs(t *testing.T) {
	s := New(logrus.New())
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.RegisterDefaults(noop, noop, noop))

	_, jobs := s.Status()
	names := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		names[j.Name] = true
	}
	assert.True(t, names[JobPriceMonitoring])
	assert.True(t, names[JobDailyPriceCheck])
	assert.True(t, names[JobCleanupPriceHistory])
}
