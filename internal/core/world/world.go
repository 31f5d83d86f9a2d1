// Package world composes the engine's independent core systems —
// ecs.Store, hierarchy.Hierarchy, layer.Index, eventbus.Bus,
// physics.Detector/Integrate, clock.GameClock, fsm.FSM, script.Runtime,
// turn.Controller — into the single per-frame Step the platform adapter
// drives. It exists as its own package, above all of them, because each
// of those packages already depends on ecs; a literal ecs.World would
// create an import cycle the teacher's own package layering never has
// to face (its systems live directly in main rather than behind ecs).
package world

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"muscle-dreamer/internal/core/agents/cat"
	"muscle-dreamer/internal/core/agents/rat"
	"muscle-dreamer/internal/core/camera"
	"muscle-dreamer/internal/core/clock"
	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/eventbus"
	"muscle-dreamer/internal/core/fsm"
	"muscle-dreamer/internal/core/health"
	"muscle-dreamer/internal/core/hierarchy"
	"muscle-dreamer/internal/core/layer"
	"muscle-dreamer/internal/core/physics"
	"muscle-dreamer/internal/core/script"
	"muscle-dreamer/internal/core/turn"
)

// DefaultViewportWidth/Height size the camera entity's viewport. Nothing
// resizes it afterwards.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// World owns one scene's worth of engine state and drives it forward one
// frame at a time via Step.
type World struct {
	Store     *ecs.Store
	Bus       *eventbus.Bus
	Hierarchy *hierarchy.Hierarchy
	Layers    *layer.Index
	Detector  *physics.Detector
	Clock     *clock.GameClock
	FSM       *fsm.FSM
	Scripts   *script.Runtime
	Turns     *turn.Controller

	log zerolog.Logger
}

// New wires a fresh World's systems together, in the dependency order
// each constructor requires.
func New(log zerolog.Logger, finishedExecutionPoll func(ecs.EntityID) bool) *World {
	store := ecs.NewStore()
	bus := eventbus.NewBus()
	layers := layer.New(store)
	h := hierarchy.New(store, layers, log)
	detector := physics.NewDetector(store, bus, log)
	gameClock := clock.New(log)
	gfsm := fsm.New(log)
	scripts := script.NewRuntime(store, log)
	turns := turn.New(gfsm, finishedExecutionPoll, log)

	bus.Key.AddListener(eventbus.KeyPressed, func(*eventbus.KeyEvent) { gfsm.OnKeyEvent() })
	bus.Window.AddListener(eventbus.WindowLostFocus, func(*eventbus.WindowEvent) { gfsm.OnWindowLostFocus() })

	ecs.Assign(store, ecs.CameraEntityID, camera.Default(DefaultViewportWidth, DefaultViewportHeight))

	return &World{
		Store:     store,
		Bus:       bus,
		Hierarchy: h,
		Layers:    layers,
		Detector:  detector,
		Clock:     gameClock,
		FSM:       gfsm,
		Scripts:   scripts,
		Turns:     turns,
		log:       log,
	}
}

// Step advances the whole world by one frame: flushes queued entity
// creation, updates the hierarchy's transforms and render order, steps
// physics integration and collision detection, ticks the state machine,
// runs scripts in LayerIndex order, polls turn execution, flushes
// destroyed entities through the script runtime's detach hook, and
// latches the state machine's previous-state snapshot for next frame's
// edge-trigger checks.
func (w *World) Step(dt time.Duration) {
	w.Scripts.FlushQueue()

	w.Hierarchy.Update()

	if w.FSM.Current() == fsm.StateExecute {
		physics.Integrate(w.Store, dt.Seconds(), w.log)
		w.Detector.Step()
		cat.TickProjectiles(w.Store, dt)
	}

	w.FSM.Tick(dt)

	w.Scripts.Update(w.scriptVisitOrder(), dt)

	w.Turns.PollExecution()

	w.checkWinLose()

	w.Store.FlushDestroyed(w.destroyEntity)

	w.FSM.EndFrame()
}

// destroyEntity runs every per-system teardown a destroyed entity needs
// before Store.FlushDestroyed purges its components, matching the pattern
// Scripts.DestroyEntityScripts already established: Layers' incremental
// cache must drop the entity the same frame scripts do, or scriptVisitOrder
// would keep visiting a dead id until some other mask happens to rebuild
// the cache.
func (w *World) destroyEntity(id ecs.EntityID) {
	w.Scripts.DestroyEntityScripts(id)
	w.Layers.RemoveEntity(id)
}

// checkWinLose evaluates spec.md §4.7's WIN/LOSE conditions once gameplay
// is underway: every rat entity gone (WIN) or the main cat's Health
// depleted or the entity no longer alive (LOSE). Skipped during SPLASH
// (before the starting scene's rats exist) and once a terminal state has
// already been reached, so the check is idempotent against FSM.transition's
// own no-op-on-same-state guard.
func (w *World) checkWinLose() {
	switch w.FSM.Current() {
	case fsm.StateSplash, fsm.StateWin, fsm.StateLose:
		return
	}

	ratIDs := w.Store.EntitiesInPool(ecs.MaskOf[rat.Component](w.Store))
	if len(ratIDs) > 0 {
		anyAlive := false
		for _, id := range ratIDs {
			if desc, err := ecs.Get[ecs.EntityDescriptor](w.Store, id); err == nil && desc.IsAlive {
				anyAlive = true
				break
			}
		}
		if !anyAlive {
			w.FSM.SignalNoRatsRemain()
			return
		}
	}

	for _, id := range w.Store.EntitiesInPool(ecs.MaskOf[cat.Component](w.Store)) {
		comp, err := ecs.Get[cat.Component](w.Store, id)
		if err != nil || !comp.IsMainCat {
			continue
		}
		desc, err := ecs.Get[ecs.EntityDescriptor](w.Store, id)
		if err != nil || !desc.IsAlive {
			w.FSM.SignalMainCatDefeated()
			return
		}
		if hp, err := ecs.Get[health.Component](w.Store, id); err == nil && hp.IsDead() {
			w.FSM.SignalMainCatDefeated()
			return
		}
	}
}

// MemoryUsage reports the current process's resident set size in bytes,
// queried synchronously on demand — never polled from a background
// goroutine, matching spec.md §5's single-threaded cooperative model.
func (w *World) MemoryUsage() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// DebugTree renders the entity hierarchy as indented lines, one entity per
// line prefixed by its depth, for editor-style inspection — present in
// the original engine's debug overlay and carried here as a pure string
// builder rather than a rendered UI.
func (w *World) DebugTree() string {
	var sb []byte
	for _, id := range w.Hierarchy.HierarchyOrder() {
		depth := w.depthOf(id)
		for i := 0; i < depth; i++ {
			sb = append(sb, ' ', ' ')
		}
		sb = append(sb, []byte(fmt.Sprintf("entity %d", id))...)
		sb = append(sb, '\n')
	}
	return string(sb)
}

// scriptVisitOrder flattens the layer index's per-layer buckets, in
// ascending layer order, into the single visit order ScriptRuntime.Update
// requires — matching spec.md's "scripts run in LayerIndex order"
// ordering guarantee.
func (w *World) scriptVisitOrder() []ecs.EntityID {
	buckets := w.Layers.GetLayers(ecs.MaskOf[script.ScriptAttachment](w.Store))
	var ids []ecs.EntityID
	for _, bucket := range buckets {
		ids = append(ids, bucket...)
	}
	return ids
}

// CommitTurn marks requester's (the single player-controlled cat's) plan as
// ready, ending the planning phase once it is the only entity the ready
// gate tracks. Rats never call CommitTurn themselves — they act
// automatically once EXECUTE begins — so they can never join the ready
// gate's readyTracked set, but every live rat is still added to
// execTracked, so PollExecution keeps EXECUTE open until each of them
// reports finishedExecution too, not just requester.
func (w *World) CommitTurn(requester ecs.EntityID) {
	execTracked := []ecs.EntityID{requester}
	for _, id := range w.Store.EntitiesInPool(ecs.MaskOf[rat.Component](w.Store)) {
		if desc, err := ecs.Get[ecs.EntityDescriptor](w.Store, id); err == nil && desc.IsAlive {
			execTracked = append(execTracked, id)
		}
	}
	w.Turns.CommitPlan(requester, []ecs.EntityID{requester}, execTracked)
}

// AttachScript attaches key to id and keeps LayerIndex's cache in sync:
// Scripts.Attach is the only place an entity's ScriptAttachment mask bit
// changes after creation, so it is the one call site that can leave
// scriptVisitOrder's cached layer buckets stale (see layer.Index's own
// doc comment on incremental sync). Callers that attach scripts directly
// through w.Scripts bypass this and must not.
func (w *World) AttachScript(id ecs.EntityID, key string) error {
	if err := w.Scripts.Attach(id, key); err != nil {
		return err
	}
	w.Layers.UpdateEntity(id)
	return nil
}

func (w *World) depthOf(id ecs.EntityID) int {
	depth := 0
	for w.Hierarchy.HasParent(id) {
		desc, err := ecs.Get[ecs.EntityDescriptor](w.Store, id)
		if err != nil {
			break
		}
		id = desc.Parent
		depth++
	}
	return depth
}
