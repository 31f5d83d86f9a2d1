package script

import (
	"time"

	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
)

// Runtime is the registry of script types plus the per-entity per-script
// state machine driving them. Script types are registered once at engine
// initialization (static registration, matching the original's RTTR-driven
// script registry); entities attach scripts by key afterward.
type Runtime struct {
	store *ecs.Store
	log   zerolog.Logger

	types map[string]ScriptType

	queue        []pendingCreate
	nextQueueKey QueueKey
	created      map[QueueKey]ecs.EntityID
}

// NewRuntime creates an empty registry bound to store.
func NewRuntime(store *ecs.Store, log zerolog.Logger) *Runtime {
	return &Runtime{
		store:   store,
		log:     log,
		types:   make(map[string]ScriptType),
		created: make(map[QueueKey]ecs.EntityID),
	}
}

// Register adds a script type under key. Registering an already-known key
// replaces it, matching Assign's idempotent-overwrite idiom elsewhere in
// the engine.
func (r *Runtime) Register(key string, t ScriptType) {
	r.types[key] = t
}

// Attach adds key to id's ScriptAttachment in StateInit and calls the
// script type's OnAttach hook. Assigns a fresh ScriptAttachment if id has
// none yet. Returns an ErrScriptTypeUnknown EngineError if key is not
// registered.
func (r *Runtime) Attach(id ecs.EntityID, key string) error {
	t, ok := r.types[key]
	if !ok {
		return &ecs.EngineError{Code: ecs.ErrScriptTypeUnknown, Message: "unregistered script key: " + key, Entity: id}
	}

	attachment, err := ecs.Get[ScriptAttachment](r.store, id)
	if err != nil {
		ecs.Assign(r.store, id, ScriptAttachment{Scripts: map[string]State{}})
		attachment, _ = ecs.Get[ScriptAttachment](r.store, id)
	}
	attachment.Scripts[key] = StateInit

	return t.OnAttach(r.store, id)
}

// Detach transitions key's state to StateExit, calls OnDetach, then marks
// it StateDead. A no-op if id has no such attachment.
func (r *Runtime) Detach(id ecs.EntityID, key string) error {
	t, ok := r.types[key]
	if !ok {
		return nil
	}
	attachment, err := ecs.Get[ScriptAttachment](r.store, id)
	if err != nil {
		return nil
	}
	if _, attached := attachment.Scripts[key]; !attached {
		return nil
	}

	attachment.Scripts[key] = StateExit
	if err := t.OnDetach(r.store, id); err != nil {
		r.log.Warn().Err(err).Str("script", key).Uint64("entity", uint64(id)).Msg("OnDetach failed")
	}
	attachment.Scripts[key] = StateDead
	return nil
}

// Update runs Init-then-Update for every attached script on every active,
// alive entity. A script in StateInit runs Init and advances to
// StateUpdate in the same pass, matching "INIT -> UPDATE on first frame".
// Entities are visited in the order the caller passes them in ids; Update
// does no ordering of its own.
func (r *Runtime) Update(ids []ecs.EntityID, dt time.Duration) {
	for _, id := range ids {
		desc, err := ecs.Get[ecs.EntityDescriptor](r.store, id)
		if err != nil || !desc.IsActive || !desc.IsAlive {
			continue
		}
		attachment, err := ecs.Get[ScriptAttachment](r.store, id)
		if err != nil {
			continue
		}

		for key, state := range attachment.Scripts {
			t, ok := r.types[key]
			if !ok || state == StateExit || state == StateDead {
				continue
			}

			if state == StateInit {
				if err := t.Init(r.store, id); err != nil {
					r.log.Warn().Err(err).Str("script", key).Uint64("entity", uint64(id)).Msg("script Init failed")
				}
				attachment.Scripts[key] = StateUpdate
			}

			if err := t.Update(r.store, id, dt); err != nil {
				r.log.Warn().Err(err).Str("script", key).Uint64("entity", uint64(id)).Msg("script Update failed")
			}
		}
	}
}

// DestroyEntityScripts calls Destroy on every script still attached to id,
// in preparation for Store.FlushDestroyed. Intended as the onDetach
// callback passed to Store.FlushDestroyed.
func (r *Runtime) DestroyEntityScripts(id ecs.EntityID) {
	attachment, err := ecs.Get[ScriptAttachment](r.store, id)
	if err != nil {
		return
	}
	for key, state := range attachment.Scripts {
		if state == StateDead {
			continue
		}
		if t, ok := r.types[key]; ok {
			if err := t.Destroy(r.store, id); err != nil {
				r.log.Warn().Err(err).Str("script", key).Uint64("entity", uint64(id)).Msg("script Destroy failed")
			}
		}
		attachment.Scripts[key] = StateDead
	}
}
