// Package layer implements LayerIndex: cached per-ComponentMask views of
// entities bucketed into 11 layers, plus the per-layer enable bitmask
// those views and Hierarchy respect. Grounded on LayerManager.h/.cpp from
// the original engine this core was distilled from — the teacher has no
// equivalent of this cache.
package layer

import "muscle-dreamer/internal/core/ecs"

// NumLayers is the fixed layer count (0..10) every LayerIndex supports.
const NumLayers = 11

// Index caches, for each ComponentMask a caller has ever queried, the set
// of entities holding all of that mask's components, bucketed by
// EntityDescriptor.LayerIndex. Caches are built lazily on first GetLayers
// and kept in sync incrementally via AddEntity/RemoveEntity/UpdateEntity.
type Index struct {
	store   *ecs.Store
	cache   map[ecs.ComponentMask][NumLayers][]ecs.EntityID
	enabled uint16 // bit i set => layer i enabled
}

// New creates a LayerIndex over store with every layer enabled.
func New(store *ecs.Store) *Index {
	return &Index{
		store:   store,
		cache:   make(map[ecs.ComponentMask][NumLayers][]ecs.EntityID),
		enabled: (1 << NumLayers) - 1,
	}
}

// IsLayerEnabled reports whether layer is enabled. Layer indices outside
// 0..10 are always reported disabled.
func (idx *Index) IsLayerEnabled(layer int) bool {
	if layer < 0 || layer >= NumLayers {
		return false
	}
	return idx.enabled&(1<<uint(layer)) != 0
}

// SetLayerEnabled enables or disables layer. Out-of-range indices are
// ignored.
func (idx *Index) SetLayerEnabled(layer int, enabled bool) {
	if layer < 0 || layer >= NumLayers {
		return
	}
	if enabled {
		idx.enabled |= 1 << uint(layer)
	} else {
		idx.enabled &^= 1 << uint(layer)
	}
}

// GetLayers returns the 11 per-layer entity lists for mask, building the
// cache entry on first use. Disabled layers are still populated in the
// cache; it is the caller's job (via IsLayerEnabled) to skip them, matching
// the "ignore" escape hatch the original view types offered.
func (idx *Index) GetLayers(mask ecs.ComponentMask) [NumLayers][]ecs.EntityID {
	if layers, ok := idx.cache[mask]; ok {
		return layers
	}
	layers := idx.buildLayers(mask)
	idx.cache[mask] = layers
	return layers
}

func (idx *Index) buildLayers(mask ecs.ComponentMask) [NumLayers][]ecs.EntityID {
	var layers [NumLayers][]ecs.EntityID
	descMask := ecs.MaskOf[ecs.EntityDescriptor](idx.store)
	for _, id := range idx.store.EntitiesInPool(mask | descMask) {
		desc, err := ecs.Get[ecs.EntityDescriptor](idx.store, id)
		if err != nil || desc.LayerIndex < 0 || desc.LayerIndex >= NumLayers {
			continue
		}
		layers[desc.LayerIndex] = append(layers[desc.LayerIndex], id)
	}
	return layers
}

// AddEntity inserts id into every cached mask whose components it holds.
func (idx *Index) AddEntity(id ecs.EntityID) {
	desc, err := ecs.Get[ecs.EntityDescriptor](idx.store, id)
	if err != nil || desc.LayerIndex < 0 || desc.LayerIndex >= NumLayers {
		return
	}
	entMask := idx.store.Mask(id)
	for mask, layers := range idx.cache {
		if entMask&mask != mask {
			continue
		}
		if containsID(layers[desc.LayerIndex], id) {
			continue
		}
		layers[desc.LayerIndex] = append(layers[desc.LayerIndex], id)
		idx.cache[mask] = layers
	}
}

// RemoveEntity deletes id from every cached mask's layer lists.
func (idx *Index) RemoveEntity(id ecs.EntityID) {
	for mask, layers := range idx.cache {
		changed := false
		for i, bucket := range layers {
			if j := indexOf(bucket, id); j >= 0 {
				layers[i] = append(bucket[:j], bucket[j+1:]...)
				changed = true
			}
		}
		if changed {
			idx.cache[mask] = layers
		}
	}
}

// UpdateEntity re-buckets id after its component mask or layer index has
// changed.
func (idx *Index) UpdateEntity(id ecs.EntityID) {
	idx.RemoveEntity(id)
	idx.AddEntity(id)
}

// ResetLayerCache invalidates every cached mask. The next GetLayers call
// for a given mask rebuilds it from scratch; used on scene load.
func (idx *Index) ResetLayerCache() {
	idx.cache = make(map[ecs.ComponentMask][NumLayers][]ecs.EntityID)
}

func containsID(ids []ecs.EntityID, id ecs.EntityID) bool {
	return indexOf(ids, id) >= 0
}

func indexOf(ids []ecs.EntityID, id ecs.EntityID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
