// Package health implements the Health component shared by every damageable
// entity (the main cat, caged cats, rats), grounded on the teacher's
// HealthComponent (internal/core/ecs/components/health.go) but trimmed to a
// plain value struct matching this engine's Component convention (see
// physics.Collider, physics.RigidBody) rather than the teacher's
// pointer-receiver, Serialize/Clone-bearing component shape.
package health

import "muscle-dreamer/internal/core/ecs"

// Component tracks an entity's current and maximum hit points.
type Component struct {
	Current int
	Max     int
}

// Type implements ecs.Component.
func (Component) Type() ecs.ComponentType { return ecs.ComponentTypeHealth }

// New builds a Component at full health.
func New(max int) Component {
	return Component{Current: max, Max: max}
}

// TakeDamage subtracts amount (floored at zero) and reports the entity's
// remaining health.
func (c *Component) TakeDamage(amount int) int {
	if amount <= 0 {
		return c.Current
	}
	c.Current -= amount
	if c.Current < 0 {
		c.Current = 0
	}
	return c.Current
}

// IsDead reports whether current health has reached zero.
func (c *Component) IsDead() bool { return c.Current <= 0 }
