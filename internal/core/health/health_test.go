package health_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/health"
)

func Test_New_StartsAtFullHealth(t *testing.T) {
	// Arrange / Act
	c := health.New(10)

	// Assert
	assert.Equal(t, 10, c.Current)
	assert.Equal(t, 10, c.Max)
	assert.False(t, c.IsDead())
}

func Test_TakeDamage_FloorsAtZero(t *testing.T) {
	// Arrange
	c := health.New(5)

	// Act
	remaining := c.TakeDamage(9)

	// Assert
	assert.Equal(t, 0, remaining)
	assert.True(t, c.IsDead())
}

func Test_TakeDamage_IgnoresNonPositiveAmount(t *testing.T) {
	// Arrange
	c := health.New(5)

	// Act
	remaining := c.TakeDamage(0)

	// Assert
	assert.Equal(t, 5, remaining)
}
