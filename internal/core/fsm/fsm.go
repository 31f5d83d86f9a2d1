// Package fsm implements the process-wide game state machine, grounded on
// the original engine's GameStateController_v2_0 (GameStates_v2_0 enum,
// pause/resume bookkeeping, splash timer).
package fsm

import (
	"time"

	"github.com/rs/zerolog"
)

// State enumerates the game's top-level states.
type State int

const (
	StateSplash State = iota
	StatePlanning
	StateDeployment
	StateExecute
	StatePause
	StateWin
	StateLose
)

func (s State) String() string {
	switch s {
	case StateSplash:
		return "SPLASH"
	case StatePlanning:
		return "PLANNING"
	case StateDeployment:
		return "DEPLOYMENT"
	case StateExecute:
		return "EXECUTE"
	case StatePause:
		return "PAUSE"
	case StateWin:
		return "WIN"
	case StateLose:
		return "LOSE"
	default:
		return "UNKNOWN"
	}
}

// DefaultSplashDuration matches the original's m_UIFadeTimer-adjacent
// SplashTimer default of 2 seconds.
const DefaultSplashDuration = 2 * time.Second

// FSM is the process-wide turn state machine. Scripts read Current and
// Previous and gate one-shot logic on Current() != Previous(); Previous
// only updates once per frame via EndFrame, so a transition is visible to
// every script for the whole frame it happens in.
type FSM struct {
	current  State
	previous State
	prePause State

	splashDuration time.Duration
	splashElapsed  time.Duration

	log zerolog.Logger
}

// New creates an FSM starting in StateSplash.
func New(log zerolog.Logger) *FSM {
	return &FSM{current: StateSplash, previous: StateSplash, splashDuration: DefaultSplashDuration, log: log}
}

// Current returns the state as of this frame.
func (f *FSM) Current() State { return f.current }

// Previous returns the state as of the start of this frame.
func (f *FSM) Previous() State { return f.previous }

// Changed reports whether a transition has occurred since the last
// EndFrame call.
func (f *FSM) Changed() bool { return f.current != f.previous }

// EndFrame latches the current state as next frame's previous state. The
// frame loop calls this once after all scripts have run.
func (f *FSM) EndFrame() { f.previous = f.current }

func (f *FSM) transition(to State) {
	if f.current == to {
		return
	}
	f.log.Debug().Stringer("from", f.current).Stringer("to", to).Msg("game state transition")
	f.current = to
}

// Tick advances the splash timer; once it elapses, transitions SPLASH to
// PLANNING. A no-op outside StateSplash.
func (f *FSM) Tick(dt time.Duration) {
	if f.current != StateSplash {
		return
	}
	f.splashElapsed += dt
	if f.splashElapsed >= f.splashDuration {
		f.transition(StatePlanning)
	}
}

// OnKeyEvent skips the splash screen immediately on any key press. A no-op
// outside StateSplash.
func (f *FSM) OnKeyEvent() {
	if f.current == StateSplash {
		f.transition(StatePlanning)
	}
}

// EnterDeployment moves from PLANNING to DEPLOYMENT. A no-op from any
// other state.
func (f *FSM) EnterDeployment() {
	if f.current == StatePlanning {
		f.transition(StateDeployment)
	}
}

// ExitDeployment returns from DEPLOYMENT to PLANNING. A no-op from any
// other state.
func (f *FSM) ExitDeployment() {
	if f.current == StateDeployment {
		f.transition(StatePlanning)
	}
}

// SignalAllPlansCommitted moves PLANNING or DEPLOYMENT into EXECUTE, called
// by TurnController once every deployed cat has committed a plan.
func (f *FSM) SignalAllPlansCommitted() {
	if f.current == StatePlanning || f.current == StateDeployment {
		f.transition(StateExecute)
	}
}

// SignalExecutionFinished returns from EXECUTE to PLANNING once every agent
// reports finished execution and deferred animations complete.
func (f *FSM) SignalExecutionFinished() {
	if f.current == StateExecute {
		f.transition(StatePlanning)
	}
}

// Pause enters PAUSE from any non-terminal state, remembering the prior
// state for Resume. A no-op if already paused.
func (f *FSM) Pause() {
	if f.current == StatePause || f.current == StateWin || f.current == StateLose {
		return
	}
	f.prePause = f.current
	f.transition(StatePause)
}

// Resume restores the state Pause was called from. A no-op outside PAUSE.
func (f *FSM) Resume() {
	if f.current != StatePause {
		return
	}
	f.transition(f.prePause)
}

// OnWindowLostFocus pauses the game, matching the original's
// OnWindowOutOfFocus handler.
func (f *FSM) OnWindowLostFocus() { f.Pause() }

// SignalNoRatsRemain moves to the terminal WIN state.
func (f *FSM) SignalNoRatsRemain() { f.transition(StateWin) }

// SignalMainCatDefeated moves to the terminal LOSE state.
func (f *FSM) SignalMainCatDefeated() { f.transition(StateLose) }
