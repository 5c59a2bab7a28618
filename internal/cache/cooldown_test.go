package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownBacksOffExponentiallyAndCaps(t *testing.T) {
	c := NewCooldown()
	fakeNow := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fakeNow }

	d1 := c.RecordFailure("anthropic")
	assert.Equal(t, 2*time.Second, d1)
	assert.True(t, c.Active("anthropic"))

	for i := 0; i < 10; i++ {
		c.RecordFailure("anthropic")
	}
	d := c.RecordFailure("anthropic")
	assert.Equal(t, 5*time.Minute, d)
}

func TestCooldownExpiresAndClearsOnSuccess(t *testing.T) {
	c := NewCooldown()
	fakeNow := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fakeNow }

	c.RecordFailure("openai")
	assert.True(t, c.Active("openai"))

	fakeNow = fakeNow.Add(10 * time.Minute)
	assert.False(t, c.Active("openai"))

	c.RecordFailure("openai")
	c.RecordSuccess("openai")
	assert.False(t, c.Active("openai"))
}
