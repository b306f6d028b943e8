package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayDoublesUpToCap(t *testing.T) {
	p := DefaultBackoff()

	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, 10*time.Second, p.Delay(4), "cap")
	assert.Equal(t, 10*time.Second, p.Delay(20), "stays at cap")
}

func TestRetrySameModelEligibility(t *testing.T) {
	p := BackoffPolicy{Base: time.Second, Cap: 10 * time.Second, MaxRetries: 2}

	assert.True(t, p.RetrySameModel(FailServiceBusy, 0))
	assert.True(t, p.RetrySameModel(FailNetwork, 1))
	assert.True(t, p.RetrySameModel(FailTimeout, 0))
	assert.False(t, p.RetrySameModel(FailServiceBusy, 2), "budget exhausted")

	assert.False(t, p.RetrySameModel(FailRateLimited, 0), "rate limits never retry in place")
	assert.False(t, p.RetrySameModel(FailAuthInvalid, 0))
	assert.False(t, p.RetrySameModel(FailEmptyResponse, 0))
	assert.False(t, p.RetrySameModel(FailUnknown, 0))
}

func TestDefaultBudgetDisablesRetries(t *testing.T) {
	p := DefaultBackoff()
	assert.False(t, p.RetrySameModel(FailServiceBusy, 0))
	assert.False(t, p.RetrySameModel(FailNetwork, 0))
}
