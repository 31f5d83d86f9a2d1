package eventbus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/eventbus"
)

func Test_Send_InvokesListenersInRegistrationOrder(t *testing.T) {
	// Arrange
	bus := eventbus.NewBus()
	var order []int
	bus.Key.AddListener(eventbus.KeyPressed, func(e *eventbus.KeyEvent) { order = append(order, 1) })
	bus.Key.AddListener(eventbus.KeyPressed, func(e *eventbus.KeyEvent) { order = append(order, 2) })

	// Act
	bus.Key.Send(&eventbus.KeyEvent{Kind: eventbus.KeyPressed, KeyCode: 32})

	// Assert
	assert.Equal(t, []int{1, 2}, order)
}

func Test_Send_StopsAtHandledFlag(t *testing.T) {
	// Arrange
	bus := eventbus.NewBus()
	var secondCalled bool
	bus.Mouse.AddListener(eventbus.MouseButtonPressed, func(e *eventbus.MouseEvent) { e.SetHandled(true) })
	bus.Mouse.AddListener(eventbus.MouseButtonPressed, func(e *eventbus.MouseEvent) { secondCalled = true })

	// Act
	bus.Mouse.Send(&eventbus.MouseEvent{Kind: eventbus.MouseButtonPressed})

	// Assert
	assert.False(t, secondCalled)
}

func Test_RemoveListener_ToleratesDoubleRemoval(t *testing.T) {
	// Arrange
	bus := eventbus.NewBus()
	handle := bus.Window.AddListener(eventbus.WindowClose, func(e *eventbus.WindowEvent) {})

	// Act & Assert: must not panic
	bus.Window.RemoveListener(handle)
	assert.NotPanics(t, func() { bus.Window.RemoveListener(handle) })
}

func Test_RemoveListener_DuringDispatch_StillRunsForRestOfCurrentSend(t *testing.T) {
	// Arrange
	bus := eventbus.NewBus()
	var calledB bool
	var handleB eventbus.HandleID
	bus.Collision.AddListener(eventbus.CollisionEnter, func(e *eventbus.CollisionEvent) {
		bus.Collision.RemoveListener(handleB)
	})
	handleB = bus.Collision.AddListener(eventbus.CollisionEnter, func(e *eventbus.CollisionEvent) { calledB = true })

	// Act
	bus.Collision.Send(&eventbus.CollisionEvent{Kind: eventbus.CollisionEnter, Entity1: 1, Entity2: 2})

	// Assert
	assert.True(t, calledB)
}

func Test_RemoveListener_DuringDispatch_TakesEffectNextSend(t *testing.T) {
	// Arrange
	bus := eventbus.NewBus()
	var callCount int
	var handleB eventbus.HandleID
	bus.Collision.AddListener(eventbus.CollisionEnter, func(e *eventbus.CollisionEvent) {
		bus.Collision.RemoveListener(handleB)
	})
	handleB = bus.Collision.AddListener(eventbus.CollisionEnter, func(e *eventbus.CollisionEvent) { callCount++ })

	// Act
	bus.Collision.Send(&eventbus.CollisionEvent{Kind: eventbus.CollisionEnter, Entity1: 1, Entity2: 2})
	bus.Collision.Send(&eventbus.CollisionEvent{Kind: eventbus.CollisionEnter, Entity1: 1, Entity2: 2})

	// Assert
	assert.Equal(t, 1, callCount)
}

func Test_Send_UnregisteredKind_DoesNothing(t *testing.T) {
	// Arrange
	bus := eventbus.NewBus()

	// Act & Assert
	assert.NotPanics(t, func() {
		bus.Key.Send(&eventbus.KeyEvent{Kind: eventbus.KeyRelease})
	})
}
