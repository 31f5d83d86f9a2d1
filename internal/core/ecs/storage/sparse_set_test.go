package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/ecs/storage"
)

func Test_SparseSet_AddGetHas(t *testing.T) {
	// Arrange
	s := storage.NewSparseSet[int]()

	// Act
	s.Add(ecs.EntityID(5), 42)

	// Assert
	assert.True(t, s.Has(ecs.EntityID(5)))
	v, ok := s.Get(ecs.EntityID(5))
	assert.True(t, ok)
	assert.Equal(t, 42, *v)
}

func Test_SparseSet_Add_OverwritesExisting(t *testing.T) {
	// Arrange
	s := storage.NewSparseSet[int]()
	s.Add(ecs.EntityID(1), 1)

	// Act
	s.Add(ecs.EntityID(1), 2)

	// Assert
	assert.Equal(t, 1, s.Len())
	v, _ := s.Get(ecs.EntityID(1))
	assert.Equal(t, 2, *v)
}

func Test_SparseSet_Remove_SwapsLastIntoSlot(t *testing.T) {
	// Arrange
	s := storage.NewSparseSet[string]()
	s.Add(ecs.EntityID(1), "a")
	s.Add(ecs.EntityID(2), "b")
	s.Add(ecs.EntityID(3), "c")

	// Act
	removed := s.Remove(ecs.EntityID(1))

	// Assert
	assert.True(t, removed)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Has(ecs.EntityID(1)))
	assert.True(t, s.Has(ecs.EntityID(2)))
	assert.True(t, s.Has(ecs.EntityID(3)))
}

func Test_SparseSet_Remove_LastElement(t *testing.T) {
	// Arrange
	s := storage.NewSparseSet[int]()
	s.Add(ecs.EntityID(1), 10)

	// Act
	removed := s.Remove(ecs.EntityID(1))

	// Assert
	assert.True(t, removed)
	assert.Equal(t, 0, s.Len())
}

func Test_SparseSet_Remove_Unknown_ReturnsFalse(t *testing.T) {
	// Arrange
	s := storage.NewSparseSet[int]()

	// Act
	removed := s.Remove(ecs.EntityID(99))

	// Assert
	assert.False(t, removed)
}

func Test_SparseSet_Each_VisitsAllInDenseOrder(t *testing.T) {
	// Arrange
	s := storage.NewSparseSet[int]()
	s.Add(ecs.EntityID(1), 10)
	s.Add(ecs.EntityID(2), 20)
	s.Add(ecs.EntityID(3), 30)

	// Act
	var seen []int
	s.Each(func(_ ecs.EntityID, v *int) { seen = append(seen, *v) })

	// Assert
	assert.Equal(t, []int{10, 20, 30}, seen)
}
