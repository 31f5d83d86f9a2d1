package script_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/script"
)

type recordingScript struct {
	initCalls    []ecs.EntityID
	updateCalls  []ecs.EntityID
	destroyCalls []ecs.EntityID
	attachCalls  []ecs.EntityID
	detachCalls  []ecs.EntityID
}

func (s *recordingScript) Init(store *ecs.Store, id ecs.EntityID) error {
	s.initCalls = append(s.initCalls, id)
	return nil
}
func (s *recordingScript) Update(store *ecs.Store, id ecs.EntityID, dt time.Duration) error {
	s.updateCalls = append(s.updateCalls, id)
	return nil
}
func (s *recordingScript) Destroy(store *ecs.Store, id ecs.EntityID) error {
	s.destroyCalls = append(s.destroyCalls, id)
	return nil
}
func (s *recordingScript) OnAttach(store *ecs.Store, id ecs.EntityID) error {
	s.attachCalls = append(s.attachCalls, id)
	return nil
}
func (s *recordingScript) OnDetach(store *ecs.Store, id ecs.EntityID) error {
	s.detachCalls = append(s.detachCalls, id)
	return nil
}

func Test_Attach_CallsOnAttachAndSetsInitState(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	rs := &recordingScript{}
	runtime.Register("test", rs)
	id := store.Create()

	// Act
	err := runtime.Attach(id, "test")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{id}, rs.attachCalls)
	attachment, _ := ecs.Get[script.ScriptAttachment](store, id)
	assert.Equal(t, script.StateInit, attachment.Scripts["test"])
}

func Test_Attach_UnregisteredKey_ReturnsScriptTypeUnknown(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	id := store.Create()

	// Act
	err := runtime.Attach(id, "missing")

	// Assert
	engineErr, ok := err.(*ecs.EngineError)
	assert.True(t, ok)
	assert.Equal(t, ecs.ErrScriptTypeUnknown, engineErr.Code)
}

func Test_Update_RunsInitThenUpdateOnFirstPass(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	rs := &recordingScript{}
	runtime.Register("test", rs)
	id := store.Create()
	_ = runtime.Attach(id, "test")

	// Act
	runtime.Update([]ecs.EntityID{id}, time.Millisecond)

	// Assert
	assert.Equal(t, []ecs.EntityID{id}, rs.initCalls)
	assert.Equal(t, []ecs.EntityID{id}, rs.updateCalls)
	attachment, _ := ecs.Get[script.ScriptAttachment](store, id)
	assert.Equal(t, script.StateUpdate, attachment.Scripts["test"])
}

func Test_Update_SkipsInactiveEntity(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	rs := &recordingScript{}
	runtime.Register("test", rs)
	id := store.Create()
	_ = runtime.Attach(id, "test")
	desc, _ := ecs.Get[ecs.EntityDescriptor](store, id)
	desc.IsActive = false

	// Act
	runtime.Update([]ecs.EntityID{id}, time.Millisecond)

	// Assert
	assert.Empty(t, rs.updateCalls)
}

func Test_Detach_RunsOnDetachAndMarksDead(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	rs := &recordingScript{}
	runtime.Register("test", rs)
	id := store.Create()
	_ = runtime.Attach(id, "test")

	// Act
	err := runtime.Detach(id, "test")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{id}, rs.detachCalls)
	attachment, _ := ecs.Get[script.ScriptAttachment](store, id)
	assert.Equal(t, script.StateDead, attachment.Scripts["test"])
}

func Test_DestroyEntityScripts_CallsDestroyOnEveryAttachedScript(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	rs := &recordingScript{}
	runtime.Register("test", rs)
	id := store.Create()
	_ = runtime.Attach(id, "test")

	// Act
	runtime.DestroyEntityScripts(id)

	// Assert
	assert.Equal(t, []ecs.EntityID{id}, rs.destroyCalls)
}

func Test_QueueEntity_FlushCreatesAndResolvesByKey(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	runtime := script.NewRuntime(store, zerolog.Nop())
	key := runtime.AddNewEntityToQueue(func(s *ecs.Store) ecs.EntityID { return s.Create() })

	// Act
	runtime.FlushQueue()

	// Assert
	id, ok := runtime.GetCreatedEntity(key)
	assert.True(t, ok)
	assert.True(t, store.IsValid(id))
}
