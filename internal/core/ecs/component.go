package ecs

import "muscle-dreamer/internal/core/ecs/storage"

// Component types known to the core. Components defined by other core
// packages (physics.RigidBody, physics.Collider, script.ScriptAttachment) declare
// their own ComponentType constants here so the whole engine shares one bit
// registry, matching the data model's "at least 32 component types" bound.
const (
	ComponentTypeDescriptor       ComponentType = "descriptor"
	ComponentTypeTransform        ComponentType = "transform"
	ComponentTypeRigidBody        ComponentType = "rigid_body"
	ComponentTypeCollider         ComponentType = "collider"
	ComponentTypeScriptAttachment ComponentType = "script_attachment"
	ComponentTypeHealth           ComponentType = "health"
	ComponentTypeSpriteRef        ComponentType = "sprite_ref"
	ComponentTypeAudioCue         ComponentType = "audio_cue"
	ComponentTypeCamera           ComponentType = "camera"
	ComponentTypeCatState         ComponentType = "cat_state"
	ComponentTypeRatState         ComponentType = "rat_state"
	ComponentTypeEnergy           ComponentType = "energy"
	ComponentTypeProjectile       ComponentType = "projectile"
)

// Component is implemented by every struct the Store can hold. Components
// are plain values (not pointers) so pools stay contiguous, matching the
// data-oriented "structure of arrays" intent of the data model.
type Component interface {
	Type() ComponentType
}

// pool is the type-erased half of a component pool: enough for Store to
// manage lifecycle (removal, iteration for destroy-flush) without knowing T.
type pool interface {
	has(EntityID) bool
	remove(EntityID) bool
	entities() []EntityID
}

type typedPool[T Component] struct {
	set *storage.SparseSet[T]
}

func newTypedPool[T Component]() *typedPool[T] {
	return &typedPool[T]{set: storage.NewSparseSet[T]()}
}

func (p *typedPool[T]) has(id EntityID) bool    { return p.set.Has(id) }
func (p *typedPool[T]) remove(id EntityID) bool { return p.set.Remove(id) }
func (p *typedPool[T]) entities() []EntityID    { return p.set.Entities() }

// registerComponent registers the pool for T under ct if it isn't already
// registered and assigns it the next free mask bit. It is not called
// directly: poolFor calls it on first use of T by Assign, Get, Has, Remove,
// Each or MaskOf, so a component type needs no separate registration step.
// Registering the same type twice is a no-op.
func registerComponent[T Component](s *Store, ct ComponentType) {
	if _, exists := s.pools[ct]; exists {
		return
	}
	if s.nextBit >= 64 {
		panic("ecs: component type registry exhausted (64 types max)")
	}
	s.pools[ct] = newTypedPool[T]()
	s.bitOf[ct] = ComponentMask(1) << s.nextBit
	s.nextBit++
}

func poolFor[T Component](s *Store, ct ComponentType) *typedPool[T] {
	p, ok := s.pools[ct]
	if !ok {
		registerComponent[T](s, ct)
		p = s.pools[ct]
	}
	return p.(*typedPool[T])
}

// Assign attaches component c to id, creating the pool for T on first use.
// Re-assigning to an id already present in the pool overwrites the value,
// matching the "Assign is idempotent" contract.
func Assign[T Component](s *Store, id EntityID, c T) {
	ct := c.Type()
	tp := poolFor[T](s, ct)
	tp.set.Add(id, c)
	s.masks[id] |= s.bitOf[ct]
}

// Get returns a mutable pointer to id's T component, InvalidEntity if id was
// never issued or has been purged, or MissingComponent if it has none.
func Get[T Component](s *Store, id EntityID) (*T, error) {
	var zero T
	ct := zero.Type()
	tp := poolFor[T](s, ct)
	v, ok := tp.set.Get(id)
	if !ok {
		if !s.IsValid(id) {
			return nil, newInvalidEntity(id)
		}
		return nil, newMissingComponent(id, ct)
	}
	return v, nil
}

// Has reports whether id has a T component.
func Has[T Component](s *Store, id EntityID) bool {
	var zero T
	ct := zero.Type()
	tp := poolFor[T](s, ct)
	return tp.set.Has(id)
}

// Remove detaches id's T component, if present.
func Remove[T Component](s *Store, id EntityID) {
	var zero T
	ct := zero.Type()
	tp := poolFor[T](s, ct)
	if tp.set.Remove(id) {
		s.masks[id] &^= s.bitOf[ct]
	}
}

// Each calls fn for every (id, *T) pair currently stored, in pool insertion
// order. fn must not Assign or Remove T components while iterating.
func Each[T Component](s *Store, fn func(EntityID, *T)) {
	var zero T
	ct := zero.Type()
	tp := poolFor[T](s, ct)
	tp.set.Each(fn)
}

// MaskOf returns the registry bit for ct, registering T's pool first if
// necessary. Used by callers (LayerIndex, queries) that build a
// ComponentMask from a list of types they don't otherwise touch.
func MaskOf[T Component](s *Store) ComponentMask {
	var zero T
	ct := zero.Type()
	poolFor[T](s, ct)
	return s.bitOf[ct]
}
