// Package cat implements the player cat state machine: Plan,
// MovementExecute, AttackExecute. Grounded on original_source's
// Logic/Cat/CatPlanningState_v2_0, CatMovementStates_v2_0, and
// CatAttackBase_v2_0/GreyCatAttackStates_v2_0 for the attack telegraph and
// damage-application shape.
package cat

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"muscle-dreamer/internal/core/ecs"
)

// State enumerates the cat's three planning/execution states.
type State int

const (
	StatePlan State = iota
	StateMovementExecute
	StateAttackExecute
)

// AttackKind distinguishes the two attack families grounded on
// GreyCatAttackStates_v2_0 (projectile) and OrangeCatAttackStates_v2_0
// (delayed-AoE stomp).
type AttackKind int

const (
	AttackProjectile AttackKind = iota
	AttackStomp
)

// PathNode is one point on a drawn movement path, spaced between
// MinNodeDistance and MaxNodeDistance per AttemptToDrawPath/AddPathNode.
type PathNode struct {
	Position ecs.Vector2
}

// Component is a cat's per-entity agent data: the planning path, movement
// execution progress, and attack telegraph/damage bookkeeping folded into
// one struct, mirroring how rat.Component folds its four states.
type Component struct {
	Current State

	AttackKind AttackKind

	// Plan / path drawing
	Path            []PathNode
	MinNodeDistance float64
	MaxNodeDistance float64
	EnergyBudget    float64
	energyUsed      float64
	doubleClickArm  bool

	// MovementExecute
	pathIndex        int
	MovementSpeed    float64
	ArrivalTolerance float64
	stuckElapsedSec  float64
	segmentTween     *gween.Tween
	segmentFrom      ecs.Vector2
	segmentDir       ecs.Vector2
	segmentDist      float64

	// AttackExecute
	attackArmed       bool
	attackElapsedSec  float64
	AttackWindupSec   float64
	damagedThisAttack map[ecs.EntityID]bool
	telegraphTween    *gween.Tween
	TelegraphAlpha    float64

	// Damage is the hit-point cost TryDamage's caller applies to a
	// successfully damaged victim. ProjectileSpeed/ProjectileLifetime size
	// the bolt AttackProjectile spawns; StompRadius is the AoE test radius
	// AttackStomp checks instead of spawning anything, matching
	// GreyCatAttackVariables::bulletForce/bulletLifeTime and
	// OrangeCatAttackVariables::seismicRadius respectively.
	Damage             int
	ProjectileSpeed    float64
	ProjectileLifetime time.Duration
	StompRadius        float64

	// FacingDirection is the cat's last movement direction, used as the
	// projectile's launch direction when an attack is planned without an
	// intervening movement this turn.
	FacingDirection ecs.Vector2

	IsCaged   bool
	IsMainCat bool

	// attackPlanned is armed by a double-click during planning and
	// consumed once execution begins, selecting AttackExecute over
	// MovementExecute for this turn.
	attackPlanned bool

	// Undo stack of committed plans, one entry per EndPathDrawing commit,
	// popped by a right-click before the plan is locked in for execution.
	undoStack []PlanRecord

	// FollowOffset trails a caged cat's rescued follower behind the main
	// cat along its last motion vector, matching FollowScript_v2_0's
	// fixed-distance chain behavior.
	FollowOffset   ecs.Vector2
	FollowDistance float64
}

// PlanRecord is one committed path snapshot, pushed onto the undo stack
// each time a path finishes drawing.
type PlanRecord struct {
	Path []PathNode
}

// Type implements ecs.Component.
func (Component) Type() ecs.ComponentType { return ecs.ComponentTypeCatState }

// NewComponent builds a cat's agent state in StatePlan with an empty path.
func NewComponent(attack AttackKind) Component {
	damage := 1
	if attack == AttackStomp {
		damage = 2
	}
	return Component{
		Current:            StatePlan,
		AttackKind:         attack,
		MinNodeDistance:    0.5,
		MaxNodeDistance:    2.0,
		ArrivalTolerance:   0.1,
		damagedThisAttack:  map[ecs.EntityID]bool{},
		Damage:             damage,
		ProjectileSpeed:    10,
		ProjectileLifetime: time.Second,
		StompRadius:        3,
		FacingDirection:    ecs.Vector2{X: 1},
	}
}

// AttemptToDrawPath appends a node once the cursor has moved at least
// MinNodeDistance from the last node, filling in straight-line nodes if the
// proposed position is further than MaxNodeDistance away, and stops early
// once EnergyBudget is exhausted — mirroring
// CatMovement_v2_0PLAN::AttemptToDrawPath / AddPathNode.
func (c *Component) AttemptToDrawPath(proposed ecs.Vector2) ecs.Vector2 {
	if c.Current != StatePlan {
		return c.lastNodeOrZero()
	}
	last := c.lastNodeOrZero()
	remaining := proposed.Sub(last)
	dist := remaining.Length()
	if dist < c.MinNodeDistance {
		return last
	}

	for dist > 0 {
		step := dist
		if step > c.MaxNodeDistance {
			step = c.MaxNodeDistance
		}
		if c.EnergyBudget > 0 && c.energyUsed+step > c.EnergyBudget {
			step = c.EnergyBudget - c.energyUsed
			if step <= 0 {
				break
			}
		}
		dir := remaining.Normalized()
		next := last.Add(dir.Scale(step))
		c.Path = append(c.Path, PathNode{Position: next})
		c.energyUsed += step
		last = next
		remaining = proposed.Sub(last)
		dist = remaining.Length()
		if c.EnergyBudget > 0 && c.energyUsed >= c.EnergyBudget {
			break
		}
	}
	return last
}

func (c *Component) lastNodeOrZero() ecs.Vector2 {
	if len(c.Path) == 0 {
		return ecs.Vector2{}
	}
	return c.Path[len(c.Path)-1].Position
}

// RegisterClick feeds a single mouse-down edge into the double-click
// detector; returns true once the second click of a double-click arrives,
// matching Cat_v2_0PLAN's m_doubleClick counter driving attack planning.
func (c *Component) RegisterClick() bool {
	if c.doubleClickArm {
		c.doubleClickArm = false
		return true
	}
	c.doubleClickArm = true
	return false
}

// EndPathDrawing pushes a snapshot of the current path onto the undo stack
// and leaves the path in place as the plan to execute. It does not clear
// the path or move the cat. A no-op when the path is empty.
func (c *Component) EndPathDrawing() {
	if len(c.Path) == 0 {
		return
	}
	committed := make([]PathNode, len(c.Path))
	copy(committed, c.Path)
	c.undoStack = append(c.undoStack, PlanRecord{Path: committed})
}

// UndoLastPlan pops the most recently committed plan, restoring it as the
// active, still-editable path. Matches the original's right-click undo.
func (c *Component) UndoLastPlan() bool {
	if len(c.undoStack) == 0 {
		return false
	}
	last := c.undoStack[len(c.undoStack)-1]
	c.undoStack = c.undoStack[:len(c.undoStack)-1]
	c.Path = last.Path
	c.energyUsed = 0
	for i := 1; i < len(c.Path); i++ {
		c.energyUsed += c.Path[i].Position.DistanceTo(c.Path[i-1].Position)
	}
	return true
}

// ArmAttackPlan marks that the next execution phase should run the attack
// sequence instead of movement, set by a double-click during planning
// matching Cat_v2_0PLAN's m_doubleClick->attack-mode transition.
func (c *Component) ArmAttackPlan() { c.attackPlanned = true }

// ConsumeAttackPlan reports and clears whether an attack was armed this
// planning round.
func (c *Component) ConsumeAttackPlan() bool {
	armed := c.attackPlanned
	c.attackPlanned = false
	return armed
}

// BeginMovementExecute switches into StateMovementExecute at the start of
// the path.
func (c *Component) BeginMovementExecute() {
	c.Current = StateMovementExecute
	c.pathIndex = 0
	c.stuckElapsedSec = 0
	c.segmentTween = nil
}

// ExecuteMovementStep eases position toward the current path node over
// MovementSpeed-derived duration (github.com/tanema/gween, ease.OutQuad —
// "a small forgiveness offset determines arrival" reads as eased, not
// linear, approach), advances to the next node within ArrivalTolerance,
// and anti-wedge-snaps to the next node after 0.5s stuck — matching
// CatMovement_v2_0EXECUTE's m_movementTimer stuck-at-walls guard.
func (c *Component) ExecuteMovementStep(position ecs.Vector2, dtSeconds float64) (next ecs.Vector2, done bool) {
	if c.Current != StateMovementExecute {
		return position, true
	}
	if c.pathIndex >= len(c.Path) {
		c.Current = StatePlan
		return position, true
	}

	target := c.Path[c.pathIndex].Position
	const stuckThresholdSec = 0.5

	var moved ecs.Vector2
	if c.MovementSpeed <= 0 {
		c.stuckElapsedSec += dtSeconds
		moved = position
	} else {
		c.stuckElapsedSec = 0
		if c.segmentTween == nil {
			c.startSegment(position, target)
		}
		progress, _ := c.segmentTween.Update(float32(dtSeconds))
		traveled := float64(progress)
		if traveled > c.segmentDist {
			traveled = c.segmentDist
		}
		moved = c.segmentFrom.Add(c.segmentDir.Scale(traveled))
	}

	if target.Sub(moved).Length() <= c.ArrivalTolerance || c.stuckElapsedSec >= stuckThresholdSec {
		c.pathIndex++
		c.stuckElapsedSec = 0
		c.segmentTween = nil
		if c.pathIndex >= len(c.Path) {
			c.Current = StatePlan
			return target, true
		}
		return target, false
	}

	return moved, false
}

func (c *Component) startSegment(from, target ecs.Vector2) {
	diff := target.Sub(from)
	dist := diff.Length()
	c.segmentFrom = from
	c.segmentDist = dist
	if dist > 0 {
		c.segmentDir = diff.Normalized()
		c.FacingDirection = c.segmentDir
	} else {
		c.segmentDir = ecs.Vector2{}
	}
	c.segmentTween = gween.New(0, float32(dist), float32(dist/c.MovementSpeed), ease.OutQuad)
}

// OnExitPointReached immediately finishes movement execution, matching
// CatMovement_v2_0EXECUTE::OnTriggerEnter's "entered exit point" handler.
func (c *Component) OnExitPointReached() {
	c.Current = StatePlan
	c.pathIndex = len(c.Path)
}

// BeginAttackExecute arms the attack windup timer and starts the
// directional telegraph's fade-in tween.
func (c *Component) BeginAttackExecute() {
	c.Current = StateAttackExecute
	c.attackElapsedSec = 0
	c.attackArmed = false
	c.damagedThisAttack = map[ecs.EntityID]bool{}
	c.TelegraphAlpha = 0
	c.telegraphTween = gween.New(0, 1, float32(c.AttackWindupSec), ease.Linear)
}

// TickAttackExecute advances the attack windup timer and the telegraph
// tween, arming the projectile/stomp trigger once AttackWindupSec elapses,
// matching GreyCatAttackStates_v2_0's frame-triggered projectile spawn.
// The two attack kinds read TelegraphAlpha differently: AttackProjectile
// treats it as a 0→1 aim-direction fade-in (GreyCatAttackStates_v2_0),
// AttackStomp as the AoE warning ring growing from nothing to StompRadius
// (OrangeCatAttackStates_v2_0's seismic-radius windup indicator).
func (c *Component) TickAttackExecute(dtSeconds float64) {
	if c.Current != StateAttackExecute {
		return
	}
	c.attackElapsedSec += dtSeconds
	if !c.attackArmed && c.attackElapsedSec >= c.AttackWindupSec {
		c.attackArmed = true
	}
	if c.telegraphTween == nil {
		return
	}
	alpha, _ := c.telegraphTween.Update(float32(dtSeconds))
	switch c.AttackKind {
	case AttackStomp:
		c.TelegraphAlpha = float64(alpha) * c.StompRadius
	default:
		c.TelegraphAlpha = float64(alpha)
	}
}

// AttackArmed reports whether the attack's damage trigger has fired.
func (c *Component) AttackArmed() bool { return c.attackArmed }

// FinishAttackExecute returns to StatePlan once the attack animation is
// done.
func (c *Component) FinishAttackExecute() {
	c.Current = StatePlan
	c.attackArmed = false
}

// TryDamage applies damage to a victim at most once per attack execution,
// and only against a target that is not itself a caged cat — matching
// GreyCatAttackStates_v2_0's "first non-trigger hit, never a caged cat"
// rule.
func (c *Component) TryDamage(victim ecs.EntityID, victimIsCagedCat bool) bool {
	if !c.attackArmed || victimIsCagedCat || c.damagedThisAttack[victim] {
		return false
	}
	c.damagedThisAttack[victim] = true
	return true
}

// FollowController drives a rescued caged cat's follower chain: trailing
// behind the main cat at Distance along the main cat's last motion
// vector, grounded on FollowScript_v2_0.
type FollowController struct {
	Distance float64
}

// NextFollowPosition computes the follower's target position one
// Distance behind leaderPosition along leaderMotion.
func (f FollowController) NextFollowPosition(leaderPosition, leaderMotion ecs.Vector2) ecs.Vector2 {
	if leaderMotion.LengthSq() == 0 {
		return leaderPosition
	}
	behind := leaderMotion.Normalized().Scale(-f.Distance)
	return leaderPosition.Add(behind)
}

// Projectile is the component a cat's AttackProjectile bolt entity
// carries: the damage it deals on contact, the cat that fired it (so a
// projectile never damages its own owner), and the lifetime remaining
// before it self-destructs unconsumed — matching
// GreyCatAttackVariables::bulletLifeTime.
type Projectile struct {
	Owner     ecs.EntityID
	Damage    int
	Remaining time.Duration
}

// Type implements ecs.Component.
func (Projectile) Type() ecs.ComponentType { return ecs.ComponentTypeProjectile }

// TickProjectiles decays every live projectile's remaining lifetime,
// destroying any that expire unconsumed this frame.
func TickProjectiles(store *ecs.Store, dt time.Duration) {
	var expired []ecs.EntityID
	ecs.Each[Projectile](store, func(id ecs.EntityID, p *Projectile) {
		p.Remaining -= dt
		if p.Remaining <= 0 {
			expired = append(expired, id)
		}
	})
	for _, id := range expired {
		store.Destroy(id)
	}
}
