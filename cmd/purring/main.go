// Command purring is the game's entrypoint: it loads player settings,
// wires a world.World with the cat/rat script types registered, spawns a
// starting scene, and hands control to the ebiten-backed window loop.
// Grounded on the teacher's cmd/game/main.go (NewGame().Run() wrapped in
// log.Fatal), generalized into the full dependency-injection wiring
// SPEC_FULL.md's expanded scope requires.
package main

import (
	"os"

	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/agents/cat"
	"muscle-dreamer/internal/core/agents/rat"
	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/health"
	"muscle-dreamer/internal/core/metrics"
	"muscle-dreamer/internal/core/scene"
	"muscle-dreamer/internal/core/world"
	"muscle-dreamer/internal/platform"
	"muscle-dreamer/internal/platform/ebitenhost"
)

// mainCatHealth/ratHealth match OrangeCatAttackVariables/RatStates_v2_0's
// default hit-point budgets for the starting room.
const (
	mainCatHealth = 10
	ratHealth     = 3
)

const settingsPath = "settings.json"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	settings, err := platform.LoadSettingsFile(settingsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}
	if !settings.TargetFPS.Valid() {
		log.Warn().Msg("unsupported target FPS in settings, falling back to default")
	}

	// finishedExecutionPoll is handed to world.New before the World it
	// will query exists; it closes over the w variable rather than a
	// value, since the closure only ever runs after w is assigned below.
	var w *world.World
	finishedExecutionPoll := func(id ecs.EntityID) bool {
		if comp, err := ecs.Get[cat.Component](w.Store, id); err == nil {
			return comp.Current == cat.StatePlan
		}
		if comp, err := ecs.Get[rat.Component](w.Store, id); err == nil {
			return comp.FinishedExecution
		}
		return true
	}

	w = world.New(log, finishedExecutionPoll)

	catScripts := cat.NewScriptType(w.Store, w.Bus, w.FSM.Current, log)
	ratScripts := rat.NewScriptType(w.Bus, w.FSM.Current, mainCatLookup(w), log)

	w.Scripts.Register(cat.Key, catScripts)
	w.Scripts.Register(rat.Key, ratScripts)

	mainCatID := spawnStartingScene(w, log)

	// Exposed for embedding by a metrics scrape endpoint; this module's
	// scope stops at the Collector, short of standing up an HTTP server.
	_ = metrics.NewCollector(w.Clock, w)

	if err := w.Clock.SetTargetFPS(settings.TargetFPS); err != nil {
		log.Warn().Err(err).Msg("could not apply configured target FPS")
	}

	host := ebitenhost.New(w, mainCatID, 1280, 720)
	if err := host.Run("Purring Engine"); err != nil {
		log.Fatal().Err(err).Msg("game loop exited with error")
	}
}

// mainCatLookup builds a rat.TargetLookup that resolves the live main
// cat's position from the store, independent of any single cat entity
// id (rats never hold a cat reference directly; they query by role).
func mainCatLookup(w *world.World) rat.TargetLookup {
	return func() (ecs.Vector2, bool) {
		for _, id := range w.Store.EntitiesInPool(ecs.MaskOf[cat.Component](w.Store)) {
			comp, err := ecs.Get[cat.Component](w.Store, id)
			if err != nil || !comp.IsMainCat {
				continue
			}
			transform, err := ecs.Get[ecs.Transform](w.Store, id)
			if err != nil {
				return ecs.Vector2{}, false
			}
			return transform.Position, true
		}
		return ecs.Vector2{}, false
	}
}

// spawnStartingScene instantiates a minimal placeholder scene: one main
// cat and two rats, and returns the main cat's entity id. A production
// build would load this from a scene.Descriptor via scene.Loader instead
// of constructing it inline.
func spawnStartingScene(w *world.World, log zerolog.Logger) ecs.EntityID {
	desc := scene.Descriptor{
		Name:    "starting-room",
		SceneID: 0,
		Entities: []scene.EntitySpawn{
			{Name: "main-cat", ParentIndex: -1, Transform: scene.Transform{X: 0, Y: 0, Width: 1, Height: 1}, Scripts: []string{cat.Key}},
			{Name: "rat-1", ParentIndex: -1, Transform: scene.Transform{X: 5, Y: 0, Width: 1, Height: 1}, Scripts: []string{rat.Key}},
			{Name: "rat-2", ParentIndex: -1, Transform: scene.Transform{X: -5, Y: 3, Width: 1, Height: 1}, Scripts: []string{rat.Key}},
		},
	}

	// Scripts attach in a second pass, after every domain component below
	// is assigned: rat.ScriptType.OnAttach reads the rat's DetectionRadius
	// to size its collider, so the rat.Component it reads from must already
	// be on the entity by the time Attach runs.
	ids := scene.Instantiate(w.Store, desc, func(ecs.EntityID, string) {})

	mainCat := cat.NewComponent(cat.AttackProjectile)
	mainCat.IsMainCat = true
	mainCat.MovementSpeed = 4
	mainCat.EnergyBudget = 10
	mainCat.AttackWindupSec = 0.5
	ecs.Assign(w.Store, ids[0], mainCat)
	ecs.Assign(w.Store, ids[0], health.New(mainCatHealth))

	for _, id := range ids[1:] {
		transform, _ := ecs.Get[ecs.Transform](w.Store, id)
		r := rat.NewComponent(transform.Position)
		r.DetectionRadius = 3
		r.MovementSpeed = 2
		r.AttackDelay = 0
		r.AttackDuration = 0
		ecs.Assign(w.Store, id, r)
		ecs.Assign(w.Store, id, health.New(ratHealth))
	}

	for i, spawn := range desc.Entities {
		for _, key := range spawn.Scripts {
			if err := w.AttachScript(ids[i], key); err != nil {
				log.Warn().Err(err).Str("script", key).Msg("failed to attach script")
			}
		}
	}

	return ids[0]
}
