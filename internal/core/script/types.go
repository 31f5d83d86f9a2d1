// Package script implements the per-entity script lifecycle runtime,
// grounded on the original engine's Script.h/LogicSystem.cpp
// Init-then-Update contract and the teacher's lua package for the VM
// wrapper shape reused by script/luahost.
package script

import (
	"time"

	"muscle-dreamer/internal/core/ecs"
)

// State is a single attached script's lifecycle state.
type State int

const (
	StateInit State = iota
	StateUpdate
	StateExit
	StateDead
)

// ScriptAttachment is the per-entity map of attached script keys to their
// lifecycle state. Each script type additionally keeps its own
// per-entity data map, keyed by entity id, owned by the ScriptType
// implementation itself.
type ScriptAttachment struct {
	Scripts map[string]State
}

// Type implements ecs.Component.
func (ScriptAttachment) Type() ecs.ComponentType { return ecs.ComponentTypeScriptAttachment }

// ScriptType is the capability set every registered script kind
// implements. Implementations keep their own per-entity data map rather
// than storing state on the ScriptType value itself, since one ScriptType
// instance is shared across every entity it is attached to.
type ScriptType interface {
	Init(store *ecs.Store, id ecs.EntityID) error
	Update(store *ecs.Store, id ecs.EntityID, dt time.Duration) error
	Destroy(store *ecs.Store, id ecs.EntityID) error
	OnAttach(store *ecs.Store, id ecs.EntityID) error
	OnDetach(store *ecs.Store, id ecs.EntityID) error
}

// Reflectable is an optional capability for script types whose per-entity
// data should be visible to serialization or editor binding. Gameplay
// paths never call this; it exists purely for tooling.
type Reflectable interface {
	ScriptData(id ecs.EntityID) any
}
