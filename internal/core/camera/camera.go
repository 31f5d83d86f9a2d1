// Package camera implements the CameraComponent that entity 0
// (ecs.CameraEntityID) carries, grounded on phanxgames-willow's
// Camera{Zoom, Viewport} (camera.go) but trimmed to the two fields
// SPEC_FULL.md's camera contract names, plain-value-struct to match this
// engine's Component convention rather than willow's pointer-receiver,
// matrix-caching Camera.
package camera

import "muscle-dreamer/internal/core/ecs"

// Rect is a screen-space rectangle, matching willow.Rect's shape.
type Rect struct {
	X, Y, Width, Height float64
}

// Component is the camera's zoom and viewport; position is read from the
// owning entity's ecs.Transform, so this holds only the state a transform
// doesn't already carry.
type Component struct {
	Zoom     float64
	Viewport Rect
}

// Type implements ecs.Component.
func (Component) Type() ecs.ComponentType { return ecs.ComponentTypeCamera }

// Default builds a Component at 1.0 zoom filling the given viewport.
func Default(viewportWidth, viewportHeight float64) Component {
	return Component{Zoom: 1, Viewport: Rect{Width: viewportWidth, Height: viewportHeight}}
}

// WorldToScreen projects a world-space point into this camera's viewport,
// centering worldPosition at the viewport's midpoint and scaling by Zoom —
// matching willow's view-matrix composition (translate by camera position,
// scale by Zoom) without willow's rotation support, which SPEC_FULL.md's
// camera contract does not call for.
func (c Component) WorldToScreen(cameraPosition, worldPosition ecs.Vector2) ecs.Vector2 {
	relative := worldPosition.Sub(cameraPosition).Scale(c.Zoom)
	return ecs.Vector2{
		X: relative.X + c.Viewport.X + c.Viewport.Width/2,
		Y: relative.Y + c.Viewport.Y + c.Viewport.Height/2,
	}
}
