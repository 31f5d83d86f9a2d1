package ecs

// EntityDescriptor is the bookkeeping component every live entity carries:
// hierarchy linkage, scene membership, draw ordering, and the active/alive
// flags scripts and systems check before acting on an entity.
type EntityDescriptor struct {
	Name string

	Parent   EntityID
	Children map[EntityID]struct{}

	SceneID int
	// LayerIndex selects which of LayerIndex's 11 draw layers (0..10) this
	// entity belongs to.
	LayerIndex int
	// RenderOrder is this entity's position within its layer's draw order,
	// assigned by Hierarchy's render-order subdivision.
	RenderOrder float64

	IsActive bool
	IsAlive  bool
	ToSave   bool
}

// Type implements Component.
func (EntityDescriptor) Type() ComponentType { return ComponentTypeDescriptor }

// Transform holds an entity's position and orientation in both world space
// and, for children, space relative to its parent. Hierarchy.Update keeps
// Position/Orientation in sync with Parent's transform plus
// RelPosition/RelOrientation once per frame.
type Transform struct {
	Position    Vector2
	Width       float64
	Height      float64
	Orientation float64

	RelPosition    Vector2
	RelOrientation float64
}

// Type implements Component.
func (Transform) Type() ComponentType { return ComponentTypeTransform }
