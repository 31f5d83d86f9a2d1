package hierarchy_test

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/hierarchy"
)

func newTestHierarchy() (*ecs.Store, *hierarchy.Hierarchy) {
	store := ecs.NewStore()
	h := hierarchy.New(store, nil, zerolog.Nop())
	return store, h
}

func Test_AttachChild_SetsParentAndRelativeTransform(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	parent := store.Create()
	child := store.Create()
	ecs.Assign(store, parent, ecs.Transform{Position: ecs.Vector2{X: 10, Y: 0}})
	ecs.Assign(store, child, ecs.Transform{Position: ecs.Vector2{X: 15, Y: 0}})

	// Act
	err := h.AttachChild(parent, child)

	// Assert
	assert.NoError(t, err)
	childDesc, _ := ecs.Get[ecs.EntityDescriptor](store, child)
	assert.Equal(t, parent, childDesc.Parent)
	parentDesc, _ := ecs.Get[ecs.EntityDescriptor](store, parent)
	_, isChild := parentDesc.Children[child]
	assert.True(t, isChild)

	childT, _ := ecs.Get[ecs.Transform](store, child)
	assert.InDelta(t, 5.0, childT.RelPosition.X, 1e-9)
}

func Test_AttachChild_RejectsCycle(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	grandparent := store.Create()
	parent := store.Create()
	ecs.Assign(store, grandparent, ecs.Transform{})
	ecs.Assign(store, parent, ecs.Transform{})
	_ = h.AttachChild(grandparent, parent)

	// Act: attaching grandparent under its own descendant must fail
	err := h.AttachChild(parent, grandparent)

	// Assert
	assert.Error(t, err)
	engineErr, ok := err.(*ecs.EngineError)
	assert.True(t, ok)
	assert.Equal(t, ecs.ErrInvalidHierarchy, engineErr.Code)
}

func Test_AttachChild_DisablesChildWhenParentDisabled(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	parent := store.Create()
	child := store.Create()
	parentDesc, _ := ecs.Get[ecs.EntityDescriptor](store, parent)
	parentDesc.IsActive = false
	ecs.Assign(store, parent, ecs.Transform{})
	ecs.Assign(store, child, ecs.Transform{})

	// Act
	_ = h.AttachChild(parent, child)

	// Assert
	childDesc, _ := ecs.Get[ecs.EntityDescriptor](store, child)
	assert.False(t, childDesc.IsActive)
}

func Test_DetachChild_ZeroesRelativeTransform(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	parent := store.Create()
	child := store.Create()
	ecs.Assign(store, parent, ecs.Transform{})
	ecs.Assign(store, child, ecs.Transform{})
	_ = h.AttachChild(parent, child)

	// Act
	h.DetachChild(child)

	// Assert
	childDesc, _ := ecs.Get[ecs.EntityDescriptor](store, child)
	assert.Equal(t, ecs.InvalidEntityID, childDesc.Parent)
	childT, _ := ecs.Get[ecs.Transform](store, child)
	assert.Equal(t, ecs.Vector2{}, childT.RelPosition)
	assert.Zero(t, childT.RelOrientation)
}

func Test_Update_PropagatesWorldTransformThroughChain(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	parent := store.Create()
	child := store.Create()
	ecs.Assign(store, parent, ecs.Transform{Position: ecs.Vector2{X: 100, Y: 0}})
	ecs.Assign(store, child, ecs.Transform{Position: ecs.Vector2{X: 100, Y: 0}, RelPosition: ecs.Vector2{X: 0, Y: 0}})
	_ = h.AttachChild(parent, child)

	// Act: move the parent, then run the propagation pass
	parentT, _ := ecs.Get[ecs.Transform](store, parent)
	parentT.Position = ecs.Vector2{X: 200, Y: 50}
	h.Update()

	// Assert: child tracks parent since relPosition was zero at attach time
	childT, _ := ecs.Get[ecs.Transform](store, child)
	assert.InDelta(t, 200.0, childT.Position.X, 1e-9)
	assert.InDelta(t, 50.0, childT.Position.Y, 1e-9)
}

func Test_Update_AssignsSiblingRenderOrderStrictlyMonotonic(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	parent := store.Create()
	ecs.Assign(store, parent, ecs.Transform{})
	parentDesc, _ := ecs.Get[ecs.EntityDescriptor](store, parent)

	var children []ecs.EntityID
	for i := 0; i < 3; i++ {
		c := store.Create()
		ecs.Assign(store, c, ecs.Transform{})
		cd, _ := ecs.Get[ecs.EntityDescriptor](store, c)
		cd.SceneID = i
		parentDesc.Children[c] = struct{}{}
		cd.Parent = parent
		children = append(children, c)
	}

	// Act
	h.Update()

	// Assert
	var prev float64 = math.Inf(-1)
	for _, c := range children {
		cd, _ := ecs.Get[ecs.EntityDescriptor](store, c)
		assert.Greater(t, cd.RenderOrder, prev)
		prev = cd.RenderOrder
	}
}

func Test_Update_SkipsDeadRoots(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	id := store.Create()
	ecs.Assign(store, id, ecs.Transform{})
	store.Destroy(id)

	// Act
	h.Update()

	// Assert
	assert.NotContains(t, h.ParentOrder(), id)
}

func Test_IsEffectivelyActive_FalseIfAncestorDisabled(t *testing.T) {
	// Arrange
	store, h := newTestHierarchy()
	parent := store.Create()
	child := store.Create()
	ecs.Assign(store, parent, ecs.Transform{})
	ecs.Assign(store, child, ecs.Transform{})
	_ = h.AttachChild(parent, child)
	parentDesc, _ := ecs.Get[ecs.EntityDescriptor](store, parent)
	parentDesc.IsActive = false

	// Act & Assert
	assert.False(t, h.IsEffectivelyActive(child))
}
