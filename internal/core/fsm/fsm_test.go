package fsm_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/fsm"
)

func Test_New_StartsInSplash(t *testing.T) {
	// Arrange & Act
	f := fsm.New(zerolog.Nop())

	// Assert
	assert.Equal(t, fsm.StateSplash, f.Current())
}

func Test_Tick_TransitionsToPlanningAfterSplashDuration(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())

	// Act
	f.Tick(fsm.DefaultSplashDuration)

	// Assert
	assert.Equal(t, fsm.StatePlanning, f.Current())
}

func Test_Tick_DoesNotTransitionBeforeSplashDuration(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())

	// Act
	f.Tick(time.Second)

	// Assert
	assert.Equal(t, fsm.StateSplash, f.Current())
}

func Test_OnKeyEvent_SkipsSplashImmediately(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())

	// Act
	f.OnKeyEvent()

	// Assert
	assert.Equal(t, fsm.StatePlanning, f.Current())
}

func Test_PlanningDeploymentRoundTrip(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())
	f.OnKeyEvent() // SPLASH -> PLANNING

	// Act
	f.EnterDeployment()

	// Assert
	assert.Equal(t, fsm.StateDeployment, f.Current())

	// Act
	f.ExitDeployment()

	// Assert
	assert.Equal(t, fsm.StatePlanning, f.Current())
}

func Test_SignalAllPlansCommitted_MovesToExecute(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())
	f.OnKeyEvent()
	f.EnterDeployment()

	// Act
	f.SignalAllPlansCommitted()

	// Assert
	assert.Equal(t, fsm.StateExecute, f.Current())
}

func Test_SignalExecutionFinished_ReturnsToPlanning(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())
	f.OnKeyEvent()
	f.SignalAllPlansCommitted()

	// Act
	f.SignalExecutionFinished()

	// Assert
	assert.Equal(t, fsm.StatePlanning, f.Current())
}

func Test_PauseResume_RestoresPriorState(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())
	f.OnKeyEvent()
	f.EnterDeployment()

	// Act
	f.Pause()

	// Assert
	assert.Equal(t, fsm.StatePause, f.Current())

	// Act
	f.Resume()

	// Assert
	assert.Equal(t, fsm.StateDeployment, f.Current())
}

func Test_OnWindowLostFocus_Pauses(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())
	f.OnKeyEvent()

	// Act
	f.OnWindowLostFocus()

	// Assert
	assert.Equal(t, fsm.StatePause, f.Current())
}

func Test_SignalNoRatsRemain_IsTerminalWin(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())

	// Act
	f.SignalNoRatsRemain()

	// Assert
	assert.Equal(t, fsm.StateWin, f.Current())
}

func Test_SignalMainCatDefeated_IsTerminalLose(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())

	// Act
	f.SignalMainCatDefeated()

	// Assert
	assert.Equal(t, fsm.StateLose, f.Current())
}

func Test_Changed_TrueUntilEndFrame(t *testing.T) {
	// Arrange
	f := fsm.New(zerolog.Nop())

	// Act
	f.OnKeyEvent()

	// Assert
	assert.True(t, f.Changed())

	// Act
	f.EndFrame()

	// Assert
	assert.False(t, f.Changed())
}
