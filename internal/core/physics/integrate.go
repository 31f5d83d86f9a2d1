package physics

import (
	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
)

// velocityClampThreshold zeroes out velocity components below this
// magnitude, matching the teacher's ApplySpeedLimit-adjacent idiom of
// snapping near-rest bodies to exact rest instead of decaying forever.
const velocityClampThreshold = 2.0

// Integrate advances every active RigidBody-bearing entity by one fixed
// step: apply linear drag, accumulate force into velocity, clamp near-zero
// velocity to zero, move non-STATIC bodies, then reset per-frame
// accumulators. Order matches the original engine's PhysicsManager pass.
func Integrate(store *ecs.Store, dt float64, log zerolog.Logger) {
	mask := ecs.MaskOf[RigidBody](store) | ecs.MaskOf[ecs.Transform](store)
	ids := store.EntitiesInPool(mask)

	for _, id := range ids {
		desc, err := ecs.Get[ecs.EntityDescriptor](store, id)
		if err == nil && (!desc.IsActive || !desc.IsAlive) {
			continue
		}

		body, err := ecs.Get[RigidBody](store, id)
		if err != nil {
			continue
		}
		transform, err := ecs.Get[ecs.Transform](store, id)
		if err != nil {
			continue
		}

		if body.Kind == BodyDynamic {
			drag := body.Velocity.Scale(-body.Mass * body.LinearDrag)
			body.Force = body.Force.Add(drag)
		}

		body.Velocity = body.Velocity.Add(body.Force.Scale(body.InverseMass * dt))

		if abs(body.Velocity.X) < velocityClampThreshold {
			body.Velocity.X = 0
		}
		if abs(body.Velocity.Y) < velocityClampThreshold {
			body.Velocity.Y = 0
		}

		if body.Kind == BodyStatic {
			body.Velocity = ecs.Vector2{}
		} else {
			body.PrevPosition = transform.Position
			transform.Position = transform.Position.Add(body.Velocity.Scale(dt))
			transform.Orientation = ecs.WrapAngle(transform.Orientation + body.AngularVelocity*dt)
		}

		body.Force = ecs.Vector2{}
		body.AngularVelocity = 0
	}

	log.Trace().Int("bodyCount", len(ids)).Float64("dt", dt).Msg("physics integrate step")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
