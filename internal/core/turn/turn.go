// Package turn implements the per-scene turn controller: ready-set
// tracking during planning, finishedExecution polling during execution,
// and a global undo stack of committed plan actions. Grounded on
// original_source's Logic/Cat/CatController_v2_0.cpp — the
// m_catUndoStack / AddToUndoStack / UndoCatPlan / ClearCatUndoStack shape
// — generalized from a cat-only controller into a scene-wide turn gate
// that also polls rat completion.
package turn

import (
	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/fsm"
)

// ActionKind distinguishes the two undoable plan actions, matching the
// original's EnumUndoType{UNDO_MOVEMENT, UNDO_ATTACK}.
type ActionKind int

const (
	ActionMovement ActionKind = iota
	ActionAttack
)

// UndoRecord is one committed plan action, popped in LIFO order by a
// right-click undo request.
type UndoRecord struct {
	Entity ecs.EntityID
	Action ActionKind
}

// Controller gates the PLANNING→EXECUTE→PLANNING cycle: it tracks which
// entities have committed their plan (the ready set), and during EXECUTE
// polls each entity's finishedExecution flag before signaling the state
// machine to return to PLANNING.
type Controller struct {
	fsm *fsm.FSM
	log zerolog.Logger

	ready     map[ecs.EntityID]bool
	undoStack []UndoRecord

	executing        map[ecs.EntityID]bool
	finishedPollFunc func(ecs.EntityID) bool
}

// New builds a Controller bound to the scene's GameFSM. finishedPoll
// reports whether a given entity has finished its queued execution (the
// Go analog of each agent's own finishedExecution flag).
func New(gfsm *fsm.FSM, finishedPoll func(ecs.EntityID) bool, log zerolog.Logger) *Controller {
	return &Controller{
		fsm:              gfsm,
		log:              log,
		ready:            map[ecs.EntityID]bool{},
		executing:        map[ecs.EntityID]bool{},
		finishedPollFunc: finishedPoll,
	}
}

// CommitPlan marks id's plan as ready. Once every entity in readyTracked has
// committed, SignalAllPlansCommitted fires the PLANNING→EXECUTE transition
// and EXECUTE begins polling every entity in execTracked for
// finishedExecution. execTracked is deliberately a separate, usually wider,
// set than readyTracked: rats act automatically once EXECUTE begins and
// never call CommitPlan themselves, so they can never join the ready gate,
// but PollExecution still must wait for them before signaling
// EXECUTE→PLANNING.
func (c *Controller) CommitPlan(id ecs.EntityID, readyTracked, execTracked []ecs.EntityID) {
	c.ready[id] = true
	if c.allReady(readyTracked) {
		c.fsm.SignalAllPlansCommitted()
		c.beginExecution(execTracked)
	}
}

func (c *Controller) allReady(tracked []ecs.EntityID) bool {
	for _, id := range tracked {
		if !c.ready[id] {
			return false
		}
	}
	return len(tracked) > 0
}

func (c *Controller) beginExecution(tracked []ecs.EntityID) {
	c.executing = map[ecs.EntityID]bool{}
	for _, id := range tracked {
		c.executing[id] = true
	}
	for id := range c.ready {
		delete(c.ready, id)
	}
}

// PollExecution checks every still-executing entity's finishedExecution
// flag and, once all are done, signals the EXECUTE→PLANNING transition
// and clears the committed-plan undo stack — matching CatController_v2_0
// ::Update's "if GameStateController is EXECUTE, clear the undo stack"
// branch.
func (c *Controller) PollExecution() {
	if c.fsm.Current() != fsm.StateExecute {
		return
	}
	for id := range c.executing {
		if c.finishedPollFunc(id) {
			delete(c.executing, id)
		}
	}
	if len(c.executing) == 0 {
		c.fsm.SignalExecutionFinished()
		c.ClearUndoStack()
	}
}

// AddToUndoStack records a committed plan action for id, matching
// CatController_v2_0::AddToUndoStack.
func (c *Controller) AddToUndoStack(id ecs.EntityID, action ActionKind) {
	c.undoStack = append(c.undoStack, UndoRecord{Entity: id, Action: action})
}

// UndoLastPlan pops the most recently committed plan action, matching
// CatController_v2_0::UndoCatPlan. Returns the popped record and false if
// the stack was empty.
func (c *Controller) UndoLastPlan() (UndoRecord, bool) {
	if len(c.undoStack) == 0 {
		return UndoRecord{}, false
	}
	last := c.undoStack[len(c.undoStack)-1]
	c.undoStack = c.undoStack[:len(c.undoStack)-1]
	delete(c.ready, last.Entity)
	return last, true
}

// ClearUndoStack discards all undo records, matching
// CatController_v2_0::ClearCatUndoStack. PollExecution calls it once
// EXECUTE finishes, since a committed plan can no longer be undone once it
// has run; nothing clears the stack when EXECUTE starts.
func (c *Controller) ClearUndoStack() {
	c.undoStack = c.undoStack[:0]
}

// IsReady reports whether id has committed its plan this planning phase.
func (c *Controller) IsReady(id ecs.EntityID) bool { return c.ready[id] }
