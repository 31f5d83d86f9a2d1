package physics

import (
	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/eventbus"
)

// pairKey identifies an unordered entity pair, always stored with the
// smaller id first so both orderings hash to the same key.
type pairKey struct {
	lo, hi ecs.EntityID
}

func makeKey(a, b ecs.EntityID) pairKey {
	if a <= b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

type overlapState struct {
	trigger bool
}

// Detector tracks which collider pairs overlap frame to frame so it can
// distinguish Enter/Stay/Exit, and emits the corresponding events on a bus.
// Grounded on the original engine's CollisionManager, which is the only
// system that owns this enter/stay/exit bookkeeping; the teacher repo has
// no analog, so the detection loop itself follows the original's broadphase-
// free pairwise scan over everything with a collider.
type Detector struct {
	store       *ecs.Store
	bus         *eventbus.Bus
	log         zerolog.Logger
	overlapping map[pairKey]overlapState
}

// NewDetector builds a Detector bound to store and bus.
func NewDetector(store *ecs.Store, bus *eventbus.Bus, log zerolog.Logger) *Detector {
	return &Detector{store: store, bus: bus, log: log, overlapping: make(map[pairKey]overlapState)}
}

func bodyKindOf(store *ecs.Store, id ecs.EntityID) BodyKind {
	body, err := ecs.Get[RigidBody](store, id)
	if err != nil {
		return BodyStatic
	}
	return body.Kind
}

// Step runs one full pairwise collision pass: narrowphase test every
// collider-bearing pair with at least one DYNAMIC participant, emit
// Enter/Stay events for overlaps found and trigger variants when either
// side is a trigger, resolve non-trigger overlaps positionally, then emit
// Exit events for pairs that stopped overlapping.
func (d *Detector) Step() {
	mask := ecs.MaskOf[Collider](d.store) | ecs.MaskOf[ecs.Transform](d.store)
	candidates := d.store.EntitiesInPool(mask)

	var active []ecs.EntityID
	for _, id := range candidates {
		desc, err := ecs.Get[ecs.EntityDescriptor](d.store, id)
		if err != nil || !desc.IsActive || !desc.IsAlive {
			continue
		}
		active = append(active, id)
	}

	seen := make(map[pairKey]bool, len(active))

	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if bodyKindOf(d.store, a) != BodyDynamic && bodyKindOf(d.store, b) != BodyDynamic {
				continue
			}

			colA, _ := ecs.Get[Collider](d.store, a)
			colB, _ := ecs.Get[Collider](d.store, b)
			if degenerate(*colA) || degenerate(*colB) {
				d.log.Warn().Uint64("entityA", uint64(a)).Uint64("entityB", uint64(b)).
					Msg("skipping collision test: degenerate collider")
				continue
			}

			overlap, mtv := narrowphase(d.store, a, *colA, b, *colB)
			if !overlap {
				continue
			}
			key := makeKey(a, b)
			seen[key] = true
			trigger := colA.IsTrigger || colB.IsTrigger

			if _, already := d.overlapping[key]; !already {
				d.overlapping[key] = overlapState{trigger: trigger}
				d.emit(a, b, trigger, eventbus.CollisionEnter, eventbus.TriggerEnter)
			} else {
				d.emit(a, b, trigger, eventbus.CollisionStay, eventbus.TriggerStay)
			}

			if !trigger {
				resolvePositional(d.store, a, b, mtv)
			}
		}
	}

	for key, state := range d.overlapping {
		if seen[key] {
			continue
		}
		delete(d.overlapping, key)
		d.emit(key.lo, key.hi, state.trigger, eventbus.CollisionExit, eventbus.TriggerExit)
	}
}

func (d *Detector) emit(a, b ecs.EntityID, trigger bool, normalKind, triggerKind eventbus.CollisionEventKind) {
	kind := normalKind
	if trigger {
		kind = triggerKind
	}
	d.bus.Collision.Send(&eventbus.CollisionEvent{Kind: kind, Entity1: a, Entity2: b})
}

// resolvePositional splits the minimum-translation-vector correction
// between a and b in proportion to inverse mass, so a STATIC body (zero
// inverse mass) never moves and two equal DYNAMIC bodies split evenly.
func resolvePositional(store *ecs.Store, a, b ecs.EntityID, mtv ecs.Vector2) {
	invA, invB := inverseMassOf(store, a), inverseMassOf(store, b)
	total := invA + invB
	if total == 0 {
		return
	}
	ta, errA := ecs.Get[ecs.Transform](store, a)
	tb, errB := ecs.Get[ecs.Transform](store, b)
	if errA != nil || errB != nil {
		return
	}
	ta.Position = ta.Position.Sub(mtv.Scale(invA / total))
	tb.Position = tb.Position.Add(mtv.Scale(invB / total))
}

func inverseMassOf(store *ecs.Store, id ecs.EntityID) float64 {
	body, err := ecs.Get[RigidBody](store, id)
	if err != nil {
		return 0
	}
	return body.InverseMass
}

// narrowphase dispatches to the shape-pair test for a and b and returns
// whether they overlap plus the minimum-translation-vector pointing from a
// toward b (i.e. the correction b should move along; a moves the opposite
// way).
func narrowphase(store *ecs.Store, a ecs.EntityID, colA Collider, b ecs.EntityID, colB Collider) (bool, ecs.Vector2) {
	ta, errA := ecs.Get[ecs.Transform](store, a)
	tb, errB := ecs.Get[ecs.Transform](store, b)
	if errA != nil || errB != nil {
		return false, ecs.Vector2{}
	}
	centerA, centerB := center(*ta, colA), center(*tb, colB)

	switch {
	case colA.Shape == ShapeAABB && colB.Shape == ShapeAABB:
		return aabbOverlap(centerA, colA.HalfExtents, centerB, colB.HalfExtents)
	case colA.Shape == ShapeCircle && colB.Shape == ShapeCircle:
		return circleOverlap(centerA, colA.Radius, centerB, colB.Radius)
	case colA.Shape == ShapeAABB && colB.Shape == ShapeCircle:
		return aabbCircleOverlap(centerA, colA.HalfExtents, centerB, colB.Radius)
	case colA.Shape == ShapeCircle && colB.Shape == ShapeAABB:
		overlap, mtv := aabbCircleOverlap(centerB, colB.HalfExtents, centerA, colA.Radius)
		return overlap, mtv.Scale(-1)
	case colA.Shape == ShapePoint && colB.Shape == ShapeAABB:
		overlap, mtv := aabbCircleOverlap(centerB, colB.HalfExtents, centerA, 0)
		return overlap, mtv.Scale(-1)
	case colA.Shape == ShapeAABB && colB.Shape == ShapePoint:
		return aabbCircleOverlap(centerA, colA.HalfExtents, centerB, 0)
	case colA.Shape == ShapePoint && colB.Shape == ShapeCircle:
		overlap, mtv := circleOverlap(centerB, colB.Radius, centerA, 0)
		return overlap, mtv.Scale(-1)
	case colA.Shape == ShapeCircle && colB.Shape == ShapePoint:
		return circleOverlap(centerA, colA.Radius, centerB, 0)
	default: // Point-Point: only "overlap" on exact coincidence, never resolved
		return centerA == centerB, ecs.Vector2{}
	}
}

func aabbOverlap(centerA, halfA, centerB, halfB ecs.Vector2) (bool, ecs.Vector2) {
	dx := centerB.X - centerA.X
	px := halfA.X + halfB.X - abs(dx)
	if px <= 0 {
		return false, ecs.Vector2{}
	}
	dy := centerB.Y - centerA.Y
	py := halfA.Y + halfB.Y - abs(dy)
	if py <= 0 {
		return false, ecs.Vector2{}
	}

	if px < py {
		sign := 1.0
		if dx < 0 {
			sign = -1
		}
		return true, ecs.Vector2{X: px * sign}
	}
	sign := 1.0
	if dy < 0 {
		sign = -1
	}
	return true, ecs.Vector2{Y: py * sign}
}

func circleOverlap(centerA ecs.Vector2, radiusA float64, centerB ecs.Vector2, radiusB float64) (bool, ecs.Vector2) {
	diff := centerB.Sub(centerA)
	dist := diff.Length()
	penetration := radiusA + radiusB - dist
	if penetration <= 0 {
		return false, ecs.Vector2{}
	}
	normal := diff.Normalized()
	if normal == (ecs.Vector2{}) {
		normal = ecs.Vector2{X: 1}
	}
	return true, normal.Scale(penetration)
}

// aabbCircleOverlap tests a box centered at boxCenter against a circle,
// returning an MTV pointing from the box toward the circle.
func aabbCircleOverlap(boxCenter, halfExtents, circleCenter ecs.Vector2, radius float64) (bool, ecs.Vector2) {
	closest := ecs.Vector2{
		X: clamp(circleCenter.X, boxCenter.X-halfExtents.X, boxCenter.X+halfExtents.X),
		Y: clamp(circleCenter.Y, boxCenter.Y-halfExtents.Y, boxCenter.Y+halfExtents.Y),
	}
	diff := circleCenter.Sub(closest)
	distSq := diff.LengthSq()
	if distSq > radius*radius {
		return false, ecs.Vector2{}
	}

	dist := diff.Length()
	if dist > 1e-9 {
		return true, diff.Scale((radius - dist) / dist)
	}

	// circle center lies inside the box: push out along the shallower axis
	penX := halfExtents.X - abs(circleCenter.X-boxCenter.X)
	penY := halfExtents.Y - abs(circleCenter.Y-boxCenter.Y)
	if penX < penY {
		sign := 1.0
		if circleCenter.X < boxCenter.X {
			sign = -1
		}
		return true, ecs.Vector2{X: (penX + radius) * sign}
	}
	sign := 1.0
	if circleCenter.Y < boxCenter.Y {
		sign = -1
	}
	return true, ecs.Vector2{Y: (penY + radius) * sign}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
