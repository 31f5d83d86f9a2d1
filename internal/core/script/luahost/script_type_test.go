package luahost_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/script/luahost"
)

func Test_OnAttach_LoadsChunkAndCallsOnAttach(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	id := store.Create()
	chunk := `
function on_attach(entity) error("on_attach ran") end
`
	st := luahost.New(chunk, nil, zerolog.Nop())

	// Act
	err := st.OnAttach(store, id)

	// Assert: the hook's own error proves it was called
	assert.ErrorContains(t, err, "on_attach ran")
}

func Test_Update_CallsUpdateGlobalWithDeltaSeconds(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	id := store.Create()
	chunk := `
function update(entity, dt) error("update dt=" .. dt) end
`
	st := luahost.New(chunk, nil, zerolog.Nop())
	_ = st.OnAttach(store, id)

	// Act
	err := st.Update(store, id, 16*time.Millisecond)

	// Assert: the hook reports the dt it received through its error
	assert.ErrorContains(t, err, "update dt=0.016")
}

func Test_Update_MissingHook_IsNoop(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	id := store.Create()
	chunk := `-- no hooks defined`
	st := luahost.New(chunk, nil, zerolog.Nop())
	_ = st.OnAttach(store, id)

	// Act & Assert
	assert.NotPanics(t, func() {
		err := st.Update(store, id, time.Millisecond)
		assert.NoError(t, err)
	})
}

func Test_Destroy_ReleasesVMForEntity(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	id := store.Create()
	chunk := `function destroy(entity) end`
	st := luahost.New(chunk, nil, zerolog.Nop())
	_ = st.OnAttach(store, id)

	// Act
	err := st.Destroy(store, id)

	// Assert
	assert.NoError(t, err)
	// Update after Destroy should be a no-op, not a panic, since the VM is gone
	assert.NotPanics(t, func() { _ = st.Update(store, id, time.Millisecond) })
}

func Test_OnAttach_SandboxDisablesOSLibrary(t *testing.T) {
	// Arrange
	store := ecs.NewStore()
	id := store.Create()
	chunk := `
function on_attach(entity) if os ~= nil then error("os library reachable") end end
`
	st := luahost.New(chunk, luahost.DefaultVMConfig(), zerolog.Nop())

	// Act & Assert: on_attach errors if the os global is still reachable,
	// so a nil error means the sandbox removed it.
	assert.NoError(t, st.OnAttach(store, id))
}
