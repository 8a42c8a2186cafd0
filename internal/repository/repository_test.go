package repository

import (
	"context"
	"testing"
	"time"

	"PortfolioSim/internal/domain/models"
	drepo "PortfolioSim/internal/domain/repository"
	"PortfolioSim/internal/service/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheJobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewCacheJobStore(cache.NewTTLCache(), time.Hour)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, drepo.ErrJobNotFound)

	job := &models.Job{ID: "j1", Status: models.JobRunning, Progress: 40}
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, got.Status)
	assert.Equal(t, 40, got.Progress)

	require.NoError(t, store.Delete(ctx, "j1"))
	_, err = store.Get(ctx, "j1")
	assert.ErrorIs(t, err, drepo.ErrJobNotFound)
}

type capture struct {
	topic string
	key   []byte
	value interface{}
}

func (c *capture) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	c.topic, c.key, c.value = topic, key, value
	return nil
}

func (c *capture) Close() error { return nil }

func TestKafkaEventPublisherSummarisesComplete(t *testing.T) {
	c := &capture{}
	p := NewKafkaEventPublisher(c, "portsim.events")

	res := &models.Result{
		RunID: "r1",
		Paths: []models.Path{
			{Points: []models.PathPoint{{Day: 0, Value: 100}, {Day: 1, Value: 110}}, MaxDrawdown: 0},
			{Points: []models.PathPoint{{Day: 0, Value: 100}, {Day: 1, Value: 90}}, MaxDrawdown: 0.1},
		},
		Stats: models.Stats{Simulations: 2, Days: 1},
	}
	require.NoError(t, p.Publish(context.Background(), models.CompleteEvent(res)))

	assert.Equal(t, "portsim.events", c.topic)
	assert.Equal(t, []byte("r1"), c.key)
	msg, ok := c.value.(LifecycleMessage)
	require.True(t, ok)
	assert.Equal(t, models.EventComplete, msg.Type)
	assert.Equal(t, []PathSummary{{FinalValue: 110}, {FinalValue: 90, MaxDrawdown: 0.1}}, msg.Summary)
	assert.Equal(t, 2, msg.Stats.Simulations)
}

func TestKafkaEventPublisherProgress(t *testing.T) {
	c := &capture{}
	p := NewKafkaEventPublisher(c, "t")
	require.NoError(t, p.Publish(context.Background(), models.ProgressEvent("r2", 35)))

	msg := c.value.(LifecycleMessage)
	assert.Equal(t, 35, msg.Progress)
	assert.Empty(t, msg.Summary)
}
