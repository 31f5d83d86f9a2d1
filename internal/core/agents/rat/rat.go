// Package rat implements the rat enemy state machine: Idle, Hunt, Return,
// Attack. Grounded on original_source's Logic/Rat/*_v2_0 state classes —
// RatHunt_v2_0 (targetId, huntingTurnsLeft, StateJustChanged idiom) and
// RatReturn_v2_0/RatAttack_v2_0 for the remaining transitions.
package rat

import (
	"time"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/eventbus"
	"muscle-dreamer/internal/core/health"
)

// State enumerates the rat's four states.
type State int

const (
	StateIdle State = iota
	StateHunt
	StateReturn
	StateAttack
)

// DefaultHuntTurnBudget matches spec.md's "default 3 turns".
const DefaultHuntTurnBudget = 3

// Component is the rat's per-entity agent data, the Go analog of
// RatScript_v2_0_Data plus the hunt/return/attack states' own private
// fields folded into one struct (the Go state machine is one component,
// not one class per state).
type Component struct {
	Current State

	DetectionRadius float64
	OriginalPosition ecs.Vector2
	MovementSpeed    float64
	MinDistanceToTarget float64

	// Hunt
	TargetID        ecs.EntityID
	HuntTurnBudget  int
	HuntTurnsLeft   int
	huntTargetPos   ecs.Vector2

	// Attack
	AttackDelay       time.Duration
	AttackDuration    time.Duration
	Damage            int
	attackElapsed     time.Duration
	attackTriggerOn   bool
	damagedThisAttack map[ecs.EntityID]bool

	FinishedExecution bool

	detectedCat ecs.EntityID // set by OnTriggerEnter/Exit, consumed at next planning phase
	hasDetected bool
}

// Type implements ecs.Component.
func (Component) Type() ecs.ComponentType { return ecs.ComponentTypeRatState }

// NewComponent creates a rat's agent state starting in StateIdle at its
// spawn position, matching the original's "originalPosition" anchor for
// RatReturn_v2_0.
func NewComponent(spawnPosition ecs.Vector2) Component {
	return Component{
		Current:             StateIdle,
		OriginalPosition:     spawnPosition,
		HuntTurnBudget:       DefaultHuntTurnBudget,
		MinDistanceToTarget:  0.1,
		Damage:               1,
		damagedThisAttack:    map[ecs.EntityID]bool{},
	}
}

// OnCatDetected records a non-caged cat entering the detection radius.
// Consumed by the next Idle poll, which transitions to Hunt.
func (c *Component) OnCatDetected(catID ecs.EntityID) {
	c.detectedCat = catID
	c.hasDetected = true
}

// PollIdle transitions StateIdle to StateHunt if a cat has been detected
// since the last physics step, matching "samples detection radius each
// physics step".
func (c *Component) PollIdle() {
	if c.Current != StateIdle || !c.hasDetected {
		return
	}
	c.TargetID = c.detectedCat
	c.HuntTurnsLeft = c.HuntTurnBudget
	c.hasDetected = false
	c.Current = StateHunt
}

// BeginPlanningPhase sets the hunt target position toward the cat's
// current position, called once per planning phase while hunting.
func (c *Component) BeginPlanningPhase(targetPosition ecs.Vector2, targetAlive bool) {
	if c.Current != StateHunt {
		return
	}
	if !targetAlive {
		c.Current = StateReturn
		return
	}
	if c.HuntTurnsLeft <= 0 {
		c.Current = StateReturn
		return
	}
	c.huntTargetPos = targetPosition
	c.HuntTurnsLeft--
}

// ExecuteHuntStep advances position toward huntTargetPos at MovementSpeed
// for one execution-phase tick, matching "each execution phase, moves
// toward it at movementSpeed".
func (c *Component) ExecuteHuntStep(position ecs.Vector2, dt time.Duration) ecs.Vector2 {
	if c.Current != StateHunt {
		return position
	}
	return stepToward(position, c.huntTargetPos, c.MovementSpeed, dt)
}

// ExecuteReturnStep advances position toward OriginalPosition, and
// transitions to StateIdle once within MinDistanceToTarget.
func (c *Component) ExecuteReturnStep(position ecs.Vector2, dt time.Duration) ecs.Vector2 {
	if c.Current != StateReturn {
		return position
	}
	next := stepToward(position, c.OriginalPosition, c.MovementSpeed, dt)
	if next.DistanceTo(c.OriginalPosition) <= c.MinDistanceToTarget {
		c.Current = StateIdle
	}
	return next
}

// BeginAttack switches into StateAttack, arming the attack delay timer.
func (c *Component) BeginAttack() {
	c.Current = StateAttack
	c.attackElapsed = 0
	c.attackTriggerOn = false
	c.damagedThisAttack = map[ecs.EntityID]bool{}
}

// TickAttack advances the attack delay/duration timers. Enables the attack
// trigger collider once the delay elapses; returns to StateIdle once the
// attack duration completes.
func (c *Component) TickAttack(dt time.Duration) {
	if c.Current != StateAttack {
		return
	}
	c.attackElapsed += dt
	if !c.attackTriggerOn && c.attackElapsed >= c.AttackDelay {
		c.attackTriggerOn = true
	}
	if c.attackElapsed >= c.AttackDelay+c.AttackDuration {
		c.Current = StateIdle
		c.attackTriggerOn = false
	}
}

// AttackTriggerActive reports whether the attack's damage trigger is
// currently armed.
func (c *Component) AttackTriggerActive() bool { return c.attackTriggerOn }

// TryDamage applies at most one hit per victim per attack execution,
// matching "damage is applied at most once per execution per victim".
func (c *Component) TryDamage(victim ecs.EntityID) bool {
	if !c.attackTriggerOn || c.damagedThisAttack[victim] {
		return false
	}
	c.damagedThisAttack[victim] = true
	return true
}

func stepToward(from, to ecs.Vector2, speed float64, dt time.Duration) ecs.Vector2 {
	toTarget := to.Sub(from)
	dist := toTarget.Length()
	step := speed * dt.Seconds()
	if step >= dist || dist == 0 {
		return to
	}
	return from.Add(toTarget.Normalized().Scale(step))
}

// CollisionListener wires a rat's detection trigger into the shared event
// bus, matching RatHunt_v2_0's OnTriggerEnterAndStay/OnTriggerExit
// subscriptions that notify the parent rat.
type CollisionListener struct {
	store *ecs.Store
	bus   *eventbus.Bus
}

// NewCollisionListener builds a listener bound to store and bus.
func NewCollisionListener(store *ecs.Store, bus *eventbus.Bus) *CollisionListener {
	return &CollisionListener{store: store, bus: bus}
}

// Subscribe registers the rat's detection-trigger handlers. The same
// trigger contact doubles as the melee hitbox once hunting: reaching the
// target arms the attack, and further contact while armed deals damage,
// matching RatAttack_v2_0::RatHitCat's reuse of the rat's own trigger as
// its attack collider rather than a second telegraph entity. Returns the
// TriggerEnter and TriggerExit handle ids; the TriggerStay handle is not
// returned.
func (l *CollisionListener) Subscribe(ratID ecs.EntityID) (enter, exit eventbus.HandleID) {
	onContact := func(e *eventbus.CollisionEvent) {
		other, ok := l.otherEntity(e, ratID)
		if !ok {
			return
		}
		rat, err := ecs.Get[Component](l.store, ratID)
		if err != nil {
			return
		}
		rat.OnCatDetected(other)
		switch rat.Current {
		case StateHunt:
			rat.BeginAttack()
		case StateAttack:
			if rat.TryDamage(other) {
				applyDamage(l.store, other, rat.Damage)
			}
		}
	}
	enter = l.bus.Collision.AddListener(eventbus.TriggerEnter, onContact)
	l.bus.Collision.AddListener(eventbus.TriggerStay, onContact)
	exit = l.bus.Collision.AddListener(eventbus.TriggerExit, func(e *eventbus.CollisionEvent) {
		_, ok := l.otherEntity(e, ratID)
		if !ok {
			return
		}
		// Exit takes no action: it changes no rat state and never cancels
		// a hunt already in progress.
	})
	return enter, exit
}

// applyDamage reduces victim's Health and destroys it once depleted.
// Entities with no Health component (e.g. a caged cat not yet rescued, or
// a non-combatant prop) silently take no damage.
func applyDamage(store *ecs.Store, victim ecs.EntityID, amount int) {
	hp, err := ecs.Get[health.Component](store, victim)
	if err != nil {
		return
	}
	if hp.TakeDamage(amount) <= 0 {
		store.Destroy(victim)
	}
}

func (l *CollisionListener) otherEntity(e *eventbus.CollisionEvent, self ecs.EntityID) (ecs.EntityID, bool) {
	switch {
	case e.Entity1 == self:
		return e.Entity2, true
	case e.Entity2 == self:
		return e.Entity1, true
	default:
		return ecs.InvalidEntityID, false
	}
}
