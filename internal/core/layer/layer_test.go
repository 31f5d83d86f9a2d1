package layer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/layer"
)

func Test_GetLayers_BucketsByLayerIndex(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	idx := layer.New(store)
	a := store.Create()
	b := store.Create()
	descA, _ := ecs.Get[ecs.EntityDescriptor](store, a)
	descA.LayerIndex = 3
	descB, _ := ecs.Get[ecs.EntityDescriptor](store, b)
	descB.LayerIndex = 7

	// Act
	layers := idx.GetLayers(0)

	// Assert
	assert.Contains(t, layers[3], a)
	assert.Contains(t, layers[7], b)
}

func Test_AddEntity_UpdatesCachedMasks(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	idx := layer.New(store)
	mask := ecs.MaskOf[ecs.Transform](store)
	idx.GetLayers(mask) // force cache creation before the entity exists

	id := store.Create()
	desc, _ := ecs.Get[ecs.EntityDescriptor](store, id)
	desc.LayerIndex = 2
	ecs.Assign(store, id, ecs.Transform{})

	// Act
	idx.AddEntity(id)

	// Assert
	layers := idx.GetLayers(mask)
	assert.Contains(t, layers[2], id)
}

func Test_RemoveEntity_ClearsFromAllCachedMasks(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	idx := layer.New(store)
	id := store.Create()
	idx.AddEntity(id)
	idx.GetLayers(0)

	// Act
	idx.RemoveEntity(id)

	// Assert
	layers := idx.GetLayers(0)
	desc, _ := ecs.Get[ecs.EntityDescriptor](store, id)
	assert.NotContains(t, layers[desc.LayerIndex], id)
}

func Test_LayerEnable_DefaultsAllEnabled(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	idx := layer.New(store)

	// Act & Assert
	for i := 0; i < layer.NumLayers; i++ {
		assert.True(t, idx.IsLayerEnabled(i))
	}
}

func Test_SetLayerEnabled_DisablesOneLayer(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	idx := layer.New(store)

	// Act
	idx.SetLayerEnabled(4, false)

	// Assert
	assert.False(t, idx.IsLayerEnabled(4))
	assert.True(t, idx.IsLayerEnabled(5))
}

func Test_ResetLayerCache_InvalidatesExistingCaches(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	idx := layer.New(store)
	id := store.Create()
	idx.AddEntity(id)
	idx.GetLayers(0)

	// Act
	idx.ResetLayerCache()
	newID := store.Create()
	layers := idx.GetLayers(0)

	// Assert: rebuilt cache reflects current store state, including newID
	assert.Contains(t, layers[0], newID)
}
