package luahost

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"muscle-dreamer/internal/core/ecs"
)

// ScriptType loads source as a fresh sandboxed Lua chunk per attached
// entity and calls its init/update/destroy/on_attach/on_detach globals as
// the script.ScriptType lifecycle hooks. Any hook the chunk omits is
// silently skipped — a chunk only implementing update is a valid script.
type ScriptType struct {
	source string
	config *VMConfig
	log    zerolog.Logger

	vms map[ecs.EntityID]*VM
}

// New creates a ScriptType that will run source once per attached entity.
func New(source string, config *VMConfig, log zerolog.Logger) *ScriptType {
	if config == nil {
		config = DefaultVMConfig()
	}
	return &ScriptType{source: source, config: config, log: log, vms: make(map[ecs.EntityID]*VM)}
}

// OnAttach creates and loads id's VM, then invokes on_attach.
func (s *ScriptType) OnAttach(store *ecs.Store, id ecs.EntityID) error {
	vm, err := NewVM(s.config)
	if err != nil {
		return err
	}
	if err := vm.state.DoString(s.source); err != nil {
		vm.Close()
		return fmt.Errorf("luahost: loading chunk for entity %d: %w", id, err)
	}
	s.vms[id] = vm
	return s.callHook(id, "on_attach", nil)
}

// Init calls the chunk's init global.
func (s *ScriptType) Init(store *ecs.Store, id ecs.EntityID) error {
	return s.callHook(id, "init", nil)
}

// Update calls the chunk's update global with elapsed seconds as a second
// argument.
func (s *ScriptType) Update(store *ecs.Store, id ecs.EntityID, dt time.Duration) error {
	seconds := lua.LNumber(dt.Seconds())
	return s.callHook(id, "update", []lua.LValue{seconds})
}

// Destroy calls the chunk's destroy global then releases id's VM.
func (s *ScriptType) Destroy(store *ecs.Store, id ecs.EntityID) error {
	err := s.callHook(id, "destroy", nil)
	if vm, ok := s.vms[id]; ok {
		vm.Close()
		delete(s.vms, id)
	}
	return err
}

// OnDetach calls the chunk's on_detach global.
func (s *ScriptType) OnDetach(store *ecs.Store, id ecs.EntityID) error {
	return s.callHook(id, "on_detach", nil)
}

func (s *ScriptType) callHook(id ecs.EntityID, name string, extraArgs []lua.LValue) error {
	vm, ok := s.vms[id]
	if !ok {
		return nil
	}
	fn := vm.state.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}

	args := append([]lua.LValue{lua.LNumber(id)}, extraArgs...)
	if err := vm.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		s.log.Warn().Err(err).Str("hook", name).Uint64("entity", uint64(id)).Msg("luahost: hook call failed")
		return err
	}
	return nil
}
