// Package scene declares the wire contracts a scene/prefab file would
// need to satisfy — plain serializable structs and a narrow loader
// interface — without implementing a file-format parser, meta-file GUID
// scanner, or asset importer. Those are explicit Non-goals; what remains
// in scope is the shape a real loader would produce, grounded on the
// teacher's component Serialize/Deserialize struct-tag idiom.
package scene

import "muscle-dreamer/internal/core/ecs"

// Transform is the serializable form of ecs.Transform's initial state.
type Transform struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Orientation float64 `json:"orientation"`
}

// EntitySpawn is one entity's declared shape within a Descriptor: its
// name, layer, parent reference (by index within Entities, -1 for none),
// initial transform, and the script keys to attach once created.
type EntitySpawn struct {
	Name        string    `json:"name"`
	LayerIndex  int       `json:"layerIndex"`
	ParentIndex int       `json:"parentIndex"`
	Transform   Transform `json:"transform"`
	Scripts     []string  `json:"scripts"`
}

// Descriptor is the serializable shape of a whole scene: its entities in
// creation order, and which scene slot (SceneID) they belong to.
type Descriptor struct {
	Name     string        `json:"name"`
	SceneID  int           `json:"sceneId"`
	Entities []EntitySpawn `json:"entities"`
}

// Loader is the contract a real asset-backed scene loader would
// implement; this module only declares the shape, per spec.md's
// file-format Non-goal.
type Loader interface {
	Load(path string) (Descriptor, error)
}

// Instantiate walks a Descriptor's entities in order, creating each via
// store.Create and wiring its EntityDescriptor/Transform from the spawn
// data. Script attachment is left to the caller (via attach), since
// resolving a script key to a registered script.ScriptType lives outside
// this package's scope.
func Instantiate(store *ecs.Store, desc Descriptor, attach func(id ecs.EntityID, scriptKey string)) []ecs.EntityID {
	ids := make([]ecs.EntityID, len(desc.Entities))
	for i, spawn := range desc.Entities {
		id := store.Create()
		ids[i] = id

		parent := ecs.InvalidEntityID
		if spawn.ParentIndex >= 0 && spawn.ParentIndex < len(ids) {
			parent = ids[spawn.ParentIndex]
		}

		ecs.Assign(store, id, ecs.EntityDescriptor{
			Name:       spawn.Name,
			Parent:     parent,
			Children:   map[ecs.EntityID]struct{}{},
			SceneID:    desc.SceneID,
			LayerIndex: spawn.LayerIndex,
			IsActive:   true,
			IsAlive:    true,
		})
		ecs.Assign(store, id, ecs.Transform{
			Position:    ecs.Vector2{X: spawn.Transform.X, Y: spawn.Transform.Y},
			Width:       spawn.Transform.Width,
			Height:      spawn.Transform.Height,
			Orientation: spawn.Transform.Orientation,
		})

		for _, key := range spawn.Scripts {
			attach(id, key)
		}
	}
	return ids
}
