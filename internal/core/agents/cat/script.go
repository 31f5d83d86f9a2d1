package cat

import (
	"time"

	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/eventbus"
	"muscle-dreamer/internal/core/fsm"
	"muscle-dreamer/internal/core/health"
	"muscle-dreamer/internal/core/physics"
)

// catColliderRadius/catMass size the body every cat entity gets so the
// shared physics.Detector can pair it against a rat's detection trigger;
// neither value is meant to look visually exact, only to give the
// narrowphase a DYNAMIC participant to test against.
const (
	catColliderRadius = 0.4
	catMass           = 1.0
	projectileRadius  = 0.2
)

// Key is the registration key this script type is attached under.
const Key = "cat"

// ScriptType drives every attached cat Component through Plan/
// MovementExecute/AttackExecute once per frame, and bridges the shared
// mouse dispatcher into path drawing and double-click attack arming for
// whichever cat is currently IsMainCat — matching CatController_v2_0's
// single m_mainCatID receiving all mouse input during PLAN.
type ScriptType struct {
	store *ecs.Store
	bus   *eventbus.Bus
	phase func() fsm.State
	log   zerolog.Logger

	entities map[ecs.EntityID]bool
	leftDown bool

	mouseMove     eventbus.HandleID
	mouseDown     eventbus.HandleID
	mouseUp       eventbus.HandleID
	projectileHit eventbus.HandleID
}

// NewScriptType builds a ScriptType bound to store for resolving the
// active main cat, bus for mouse input, and phase for reading the current
// game state. Its mouse handlers are subscribed immediately and stay
// registered for the ScriptType's whole lifetime, filtering by
// phase/IsMainCat internally rather than subscribing/unsubscribing per
// cat.
func NewScriptType(store *ecs.Store, bus *eventbus.Bus, phase func() fsm.State, log zerolog.Logger) *ScriptType {
	s := &ScriptType{store: store, bus: bus, phase: phase, log: log, entities: map[ecs.EntityID]bool{}}
	s.mouseMove = bus.Mouse.AddListener(eventbus.MouseMoved, s.onMouseMoved)
	s.mouseDown = bus.Mouse.AddListener(eventbus.MouseButtonPressed, s.onMousePressed)
	s.mouseUp = bus.Mouse.AddListener(eventbus.MouseButtonReleased, s.onMouseReleased)
	s.projectileHit = bus.Collision.AddListener(eventbus.TriggerEnter, s.onTriggerEnter)
	return s
}

// OnAttach tracks id as a live cat entity the mouse handlers may dispatch
// to, and gives it the collider/body the shared physics.Detector needs to
// ever report a rat's detection trigger overlapping it.
func (s *ScriptType) OnAttach(store *ecs.Store, id ecs.EntityID) error {
	s.entities[id] = true
	ecs.Assign(store, id, physics.NewRigidBody(catMass, physics.BodyDynamic))
	ecs.Assign(store, id, physics.NewCircleCollider(catColliderRadius))
	return nil
}

// OnDetach drops id from the tracked set.
func (s *ScriptType) OnDetach(_ *ecs.Store, id ecs.EntityID) error {
	delete(s.entities, id)
	return nil
}

// Init is a no-op; NewComponent already leaves a cat ready in StatePlan.
func (s *ScriptType) Init(_ *ecs.Store, _ ecs.EntityID) error { return nil }

// Destroy is a no-op; a cat carries no external resources to release.
func (s *ScriptType) Destroy(_ *ecs.Store, _ ecs.EntityID) error { return nil }

// Update advances id's cat Component through its execute-phase tick. Path
// drawing itself happens out-of-band, in the mouse handlers, since it is
// edge-triggered on cursor movement rather than a per-frame poll.
func (s *ScriptType) Update(store *ecs.Store, id ecs.EntityID, dt time.Duration) error {
	comp, err := ecs.Get[Component](store, id)
	if err != nil {
		return err
	}
	if s.phase() != fsm.StateExecute {
		return nil
	}

	if comp.Current == StatePlan {
		if comp.ConsumeAttackPlan() {
			comp.BeginAttackExecute()
		} else if len(comp.Path) > 0 {
			comp.BeginMovementExecute()
		}
	}

	transform, err := ecs.Get[ecs.Transform](store, id)
	if err != nil {
		return err
	}

	switch comp.Current {
	case StateMovementExecute:
		next, _ := comp.ExecuteMovementStep(transform.Position, dt.Seconds())
		transform.Position = next
	case StateAttackExecute:
		comp.TickAttackExecute(dt.Seconds())
		if comp.AttackArmed() {
			s.resolveAttack(store, id, comp, transform.Position)
			comp.FinishAttackExecute()
		}
	}
	return nil
}

// resolveAttack runs once, on the same frame AttackArmed flips true and
// FinishAttackExecute returns the cat to StatePlan: AttackProjectile
// spawns a bolt entity along the cat's FacingDirection, AttackStomp
// instead resolves its AoE immediately against every damageable entity
// within StompRadius.
func (s *ScriptType) resolveAttack(store *ecs.Store, id ecs.EntityID, comp *Component, position ecs.Vector2) {
	switch comp.AttackKind {
	case AttackProjectile:
		s.spawnProjectile(store, id, comp, position)
	case AttackStomp:
		s.applyStompDamage(store, id, comp, position)
	}
}

// spawnProjectile creates the bolt entity AttackProjectile fires:
// GreyCatAttackVariables's bulletForce/bulletLifeTime as a constant
// velocity along the cat's facing direction and a lifetime
// cat.TickProjectiles decays each execute-phase frame.
func (s *ScriptType) spawnProjectile(store *ecs.Store, owner ecs.EntityID, comp *Component, position ecs.Vector2) {
	dir := comp.FacingDirection
	if dir.LengthSq() == 0 {
		dir = ecs.Vector2{X: 1}
	} else {
		dir = dir.Normalized()
	}

	id := store.Create()
	ecs.Assign(store, id, ecs.Transform{Position: position})
	body := physics.NewRigidBody(0.1, physics.BodyDynamic)
	body.Velocity = dir.Scale(comp.ProjectileSpeed)
	ecs.Assign(store, id, body)
	collider := physics.NewCircleCollider(projectileRadius)
	collider.IsTrigger = true
	ecs.Assign(store, id, collider)
	ecs.Assign(store, id, Projectile{Owner: owner, Damage: comp.Damage, Remaining: comp.ProjectileLifetime})
}

// applyStompDamage resolves AttackStomp's AoE immediately against every
// Health-bearing entity within StompRadius of position, excluding the
// attacker itself and any caged cat — matching
// OrangeCatAttackStates_v2_0's seismic pulse.
func (s *ScriptType) applyStompDamage(store *ecs.Store, owner ecs.EntityID, comp *Component, position ecs.Vector2) {
	ecs.Each[health.Component](store, func(victim ecs.EntityID, hp *health.Component) {
		if victim == owner {
			return
		}
		if victimComp, err := ecs.Get[Component](store, victim); err == nil && victimComp.IsCaged {
			return
		}
		victimTransform, err := ecs.Get[ecs.Transform](store, victim)
		if err != nil || victimTransform.Position.DistanceTo(position) > comp.StompRadius {
			return
		}
		if !comp.TryDamage(victim, false) {
			return
		}
		if hp.TakeDamage(comp.Damage) <= 0 {
			store.Destroy(victim)
		}
	})
}

// onTriggerEnter resolves an in-flight projectile connecting with a
// victim: applies its damage once (caged cats take none) and destroys the
// bolt, whether or not the hit lands (a projectile is consumed by its first contact,
// matching a physical bullet rather than the windup-gated melee trigger).
func (s *ScriptType) onTriggerEnter(e *eventbus.CollisionEvent) {
	s.resolveProjectileContact(e.Entity1, e.Entity2)
	s.resolveProjectileContact(e.Entity2, e.Entity1)
}

func (s *ScriptType) resolveProjectileContact(projectileID, victim ecs.EntityID) {
	proj, err := ecs.Get[Projectile](s.store, projectileID)
	if err != nil || victim == proj.Owner {
		return
	}
	if desc, err := ecs.Get[ecs.EntityDescriptor](s.store, projectileID); err == nil && !desc.IsAlive {
		return
	}
	victimIsCaged := false
	if victimComp, err := ecs.Get[Component](s.store, victim); err == nil {
		victimIsCaged = victimComp.IsCaged
	}
	if !victimIsCaged {
		if hp, err := ecs.Get[health.Component](s.store, victim); err == nil {
			if hp.TakeDamage(proj.Damage) <= 0 {
				s.store.Destroy(victim)
			}
		}
	}
	s.store.Destroy(projectileID)
}

// mainCat resolves the single entity currently acting as the player's
// controlled cat, if any.
func (s *ScriptType) mainCat(store *ecs.Store) (ecs.EntityID, *Component, bool) {
	for id := range s.entities {
		comp, err := ecs.Get[Component](store, id)
		if err != nil || !comp.IsMainCat {
			continue
		}
		return id, comp, true
	}
	return ecs.InvalidEntityID, nil, false
}

func (s *ScriptType) onMousePressed(e *eventbus.MouseEvent) {
	if s.phase() != fsm.StatePlanning {
		return
	}
	switch e.Button {
	case eventbus.MouseButtonLeft:
		s.leftDown = true
		if _, comp, ok := s.mainCat(s.store); ok && comp.RegisterClick() {
			comp.ArmAttackPlan()
		}
	case eventbus.MouseButtonRight:
		if _, comp, ok := s.mainCat(s.store); ok {
			comp.UndoLastPlan()
		}
	}
}

func (s *ScriptType) onMouseReleased(e *eventbus.MouseEvent) {
	if e.Button != eventbus.MouseButtonLeft {
		return
	}
	s.leftDown = false
	if _, comp, ok := s.mainCat(s.store); ok {
		comp.EndPathDrawing()
	}
}

func (s *ScriptType) onMouseMoved(e *eventbus.MouseEvent) {
	if !s.leftDown || s.phase() != fsm.StatePlanning {
		return
	}
	_, comp, ok := s.mainCat(s.store)
	if !ok {
		return
	}
	// World/screen projection is out of scope: the event's coordinates are
	// consumed directly as the planning path's world-space cursor.
	comp.AttemptToDrawPath(ecs.Vector2{X: float64(e.X), Y: float64(e.Y)})
}

// ForEachMainCat dispatches fn against the single IsMainCat entity found
// in store. Returns false if no main cat is currently tracked.
func (s *ScriptType) ForEachMainCat(store *ecs.Store, fn func(id ecs.EntityID, comp *Component)) bool {
	id, comp, ok := s.mainCat(store)
	if !ok {
		return false
	}
	fn(id, comp)
	return true
}
