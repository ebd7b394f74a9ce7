package cronmanager

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemoveJob(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"orphans": {Func: func() {}, Schedule: "0 3 * * *"},
	})
	require.NoError(t, cm.LoadJobs())
	assert.True(t, cm.HasJob("orphans"))

	require.NoError(t, cm.AddJob("block:1", Every(5*time.Minute), func() {}))
	require.NoError(t, cm.AddJob("block:1", Every(time.Minute), func() {}))
	assert.Equal(t, 2, cm.Len())

	assert.Error(t, cm.AddJob("bad", "not a schedule", func() {}))
	assert.False(t, cm.HasJob("bad"))

	cm.RemoveJob("block:1")
	cm.RemoveJob("missing")
	assert.False(t, cm.HasJob("block:1"))
	assert.Equal(t, 1, cm.Len())
}

func TestJobRuns(t *testing.T) {
	cm := NewCronManager(nil)
	var calls atomic.Int32
	require.NoError(t, cm.AddJob("tick", Every(time.Second), func() { calls.Add(1) }))

	cm.Start()
	defer cm.Stop()

	next, ok := cm.Next("tick")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), next, 2*time.Second)

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestEvery(t *testing.T) {
	assert.Equal(t, "@every 5m0s", Every(5*time.Minute))
}
