package scene_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/scene"
)

func Test_Instantiate_CreatesEntitiesAndWiresParentByIndex(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	desc := scene.Descriptor{
		Name:    "room-1",
		SceneID: 1,
		Entities: []scene.EntitySpawn{
			{Name: "root", ParentIndex: -1, Transform: scene.Transform{X: 1, Y: 2}},
			{Name: "child", ParentIndex: 0, Transform: scene.Transform{X: 3, Y: 4}, Scripts: []string{"cat"}},
		},
	}
	var attached []string

	// Act
	ids := scene.Instantiate(store, desc, func(_ ecs.EntityID, key string) { attached = append(attached, key) })

	// Assert
	assert.Len(t, ids, 2)
	child, err := ecs.Get[ecs.EntityDescriptor](store, ids[1])
	assert.NoError(t, err)
	assert.Equal(t, ids[0], child.Parent)
	assert.Equal(t, []string{"cat"}, attached)

	transform, err := ecs.Get[ecs.Transform](store, ids[1])
	assert.NoError(t, err)
	assert.Equal(t, ecs.Vector2{X: 3, Y: 4}, transform.Position)
}

func Test_Instantiate_LeavesParentlessEntityUnlinked(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	desc := scene.Descriptor{Entities: []scene.EntitySpawn{{Name: "lonely", ParentIndex: -1}}}

	// Act
	ids := scene.Instantiate(store, desc, func(ecs.EntityID, string) {})

	// Assert
	descriptor, err := ecs.Get[ecs.EntityDescriptor](store, ids[0])
	assert.NoError(t, err)
	assert.Equal(t, ecs.InvalidEntityID, descriptor.Parent)
}
