package rat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/agents/rat"
	"muscle-dreamer/internal/core/ecs"
)

func Test_PollIdle_TransitionsToHuntOnDetection(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{X: 0, Y: 0})
	c.OnCatDetected(ecs.EntityID(7))

	// Act
	c.PollIdle()

	// Assert
	assert.Equal(t, rat.StateHunt, c.Current)
	assert.Equal(t, ecs.EntityID(7), c.TargetID)
	assert.Equal(t, rat.DefaultHuntTurnBudget, c.HuntTurnsLeft)
}

func Test_PollIdle_NoopWithoutDetection(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})

	// Act
	c.PollIdle()

	// Assert
	assert.Equal(t, rat.StateIdle, c.Current)
}

func Test_BeginPlanningPhase_TransitionsToReturnWhenTargetDead(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})
	c.OnCatDetected(ecs.EntityID(1))
	c.PollIdle()

	// Act
	c.BeginPlanningPhase(ecs.Vector2{X: 5}, false)

	// Assert
	assert.Equal(t, rat.StateReturn, c.Current)
}

func Test_BeginPlanningPhase_TransitionsToReturnWhenBudgetExpires(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})
	c.OnCatDetected(ecs.EntityID(1))
	c.PollIdle()
	c.HuntTurnBudget = 1
	c.HuntTurnsLeft = 1

	// Act
	c.BeginPlanningPhase(ecs.Vector2{X: 5}, true)

	// Assert: first planning call consumes the last turn but stays hunting
	assert.Equal(t, rat.StateHunt, c.Current)
	assert.Equal(t, 0, c.HuntTurnsLeft)

	// Act again: budget is now exhausted
	c.BeginPlanningPhase(ecs.Vector2{X: 5}, true)

	// Assert
	assert.Equal(t, rat.StateReturn, c.Current)
}

func Test_ExecuteHuntStep_MovesTowardTargetAtMovementSpeed(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})
	c.OnCatDetected(ecs.EntityID(1))
	c.PollIdle()
	c.MovementSpeed = 10
	c.BeginPlanningPhase(ecs.Vector2{X: 100, Y: 0}, true)

	// Act
	next := c.ExecuteHuntStep(ecs.Vector2{X: 0, Y: 0}, time.Second)

	// Assert
	assert.InDelta(t, 10, next.X, 1e-9)
	assert.InDelta(t, 0, next.Y, 1e-9)
}

func Test_ExecuteReturnStep_ReachesOriginalPositionAndGoesIdle(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{X: 0, Y: 0})
	c.MovementSpeed = 1000
	c.Current = rat.StateReturn

	// Act
	next := c.ExecuteReturnStep(ecs.Vector2{X: 5, Y: 0}, time.Second)

	// Assert
	assert.Equal(t, ecs.Vector2{X: 0, Y: 0}, next)
	assert.Equal(t, rat.StateIdle, c.Current)
}

func Test_TickAttack_EnablesTriggerAfterDelayThenReturnsToIdle(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})
	c.AttackDelay = 100 * time.Millisecond
	c.AttackDuration = 100 * time.Millisecond
	c.BeginAttack()

	// Act & Assert: before delay elapses, trigger is off
	c.TickAttack(50 * time.Millisecond)
	assert.False(t, c.AttackTriggerActive())

	// Act & Assert: delay elapsed, trigger is on
	c.TickAttack(60 * time.Millisecond)
	assert.True(t, c.AttackTriggerActive())
	assert.Equal(t, rat.StateAttack, c.Current)

	// Act & Assert: duration elapsed, back to idle
	c.TickAttack(100 * time.Millisecond)
	assert.Equal(t, rat.StateIdle, c.Current)
	assert.False(t, c.AttackTriggerActive())
}

func Test_TryDamage_AppliesAtMostOncePerVictimPerAttack(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})
	c.AttackDelay = 0
	c.AttackDuration = time.Second
	c.BeginAttack()
	c.TickAttack(0)
	victim := ecs.EntityID(9)

	// Act
	first := c.TryDamage(victim)
	second := c.TryDamage(victim)

	// Assert
	assert.True(t, first)
	assert.False(t, second)
}

func Test_TryDamage_NoopWhenTriggerInactive(t *testing.T) {
	// Arrange
	c := rat.NewComponent(ecs.Vector2{})

	// Act
	hit := c.TryDamage(ecs.EntityID(1))

	// Assert
	assert.False(t, hit)
}
