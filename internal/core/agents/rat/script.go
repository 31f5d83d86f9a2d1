package rat

import (
	"time"

	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/eventbus"
	"muscle-dreamer/internal/core/fsm"
	"muscle-dreamer/internal/core/physics"
)

// TargetLookup resolves the current planning target for a hunting rat:
// the cat's world position and whether it is still alive. Injected rather
// than importing agents/cat directly, keeping rat and cat independent of
// each other the way RatHunt_v2_0 only ever held a bare EntityID.
type TargetLookup func() (position ecs.Vector2, alive bool)

// ScriptType drives every attached rat Component through Idle/Hunt/
// Return/Attack once per frame, registered under this package's key with
// script.Runtime. It dispatches on the shared fsm.State rather than
// keeping its own turn clock, matching how every agent script reads the
// same GameStateController_v2_0 phase in the original engine.
type ScriptType struct {
	bus     *eventbus.Bus
	phase   func() fsm.State
	target  TargetLookup
	log     zerolog.Logger

	listeners map[ecs.EntityID]*CollisionListener
	planned   map[ecs.EntityID]bool
}

// Key is the registration key this script type is attached under.
const Key = "rat"

// NewScriptType builds a ScriptType bound to bus for detection-trigger
// wiring, phase for reading the current game state, and target for
// resolving the hunted cat's position each planning phase.
func NewScriptType(bus *eventbus.Bus, phase func() fsm.State, target TargetLookup, log zerolog.Logger) *ScriptType {
	return &ScriptType{
		bus:       bus,
		phase:     phase,
		target:    target,
		log:       log,
		listeners: map[ecs.EntityID]*CollisionListener{},
		planned:   map[ecs.EntityID]bool{},
	}
}

// OnAttach gives id the trigger collider its detection radius implies and
// wires the rat's detection trigger into the event bus, matching
// RatHunt_v2_0's OnTriggerEnterAndStay subscription made at spawn time. The
// same collider doubles as the rat's melee attack hitbox once hunting,
// rather than a second collider spawned for the attack state.
func (s *ScriptType) OnAttach(store *ecs.Store, id ecs.EntityID) error {
	comp, err := ecs.Get[Component](store, id)
	if err != nil {
		return err
	}
	collider := physics.NewCircleCollider(comp.DetectionRadius)
	collider.IsTrigger = true
	ecs.Assign(store, id, collider)

	listener := NewCollisionListener(store, s.bus)
	listener.Subscribe(id)
	s.listeners[id] = listener
	return nil
}

// OnDetach drops the bookkeeping for id's collision listener. The
// Dispatcher handles themselves are intentionally left registered: they
// close over id and become inert once the entity is gone, matching how
// RemoveListener is rarely called in the original for despawning rats.
func (s *ScriptType) OnDetach(_ *ecs.Store, id ecs.EntityID) error {
	delete(s.listeners, id)
	return nil
}

// Init is a no-op; NewComponent already leaves a rat ready in StateIdle.
func (s *ScriptType) Init(_ *ecs.Store, _ ecs.EntityID) error { return nil }

// Destroy is a no-op; a rat carries no external resources to release.
func (s *ScriptType) Destroy(_ *ecs.Store, _ ecs.EntityID) error { return nil }

// Update advances id's rat Component by one frame, reading/writing its
// Transform during the execute phase and resolving its next target during
// planning.
func (s *ScriptType) Update(store *ecs.Store, id ecs.EntityID, dt time.Duration) error {
	comp, err := ecs.Get[Component](store, id)
	if err != nil {
		return err
	}

	switch s.phase() {
	case fsm.StatePlanning:
		comp.PollIdle()
		if comp.Current == StateHunt && !s.planned[id] {
			targetPos, alive := s.target()
			comp.BeginPlanningPhase(targetPos, alive)
			s.planned[id] = true
		}
	case fsm.StateExecute:
		delete(s.planned, id)
		s.tickExecute(store, id, comp, dt)
	}
	return nil
}

func (s *ScriptType) tickExecute(store *ecs.Store, id ecs.EntityID, comp *Component, dt time.Duration) {
	transform, err := ecs.Get[ecs.Transform](store, id)
	if err != nil {
		return
	}

	before := comp.Current
	switch before {
	case StateHunt:
		// One hunt step resolves within the frame it is issued; the hunt
		// itself is bounded by HuntTurnsLeft across turns, not by an
		// arrival condition within a single turn.
		transform.Position = comp.ExecuteHuntStep(transform.Position, dt)
		comp.FinishedExecution = true
	case StateReturn:
		transform.Position = comp.ExecuteReturnStep(transform.Position, dt)
		comp.FinishedExecution = comp.Current != before
	case StateAttack:
		comp.TickAttack(dt)
		comp.FinishedExecution = comp.Current != before
	default:
		comp.FinishedExecution = true
	}
}
