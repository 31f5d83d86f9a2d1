// Package luahost is the gopher-lua-backed ScriptType: one sandboxed Lua
// state per attached entity, loading a shared chunk and calling its
// init/update/destroy/on_attach/on_detach globals as the script lifecycle
// hooks. Grounded on the teacher's internal/core/ecs/lua package for the
// VM/sandbox/resource-limit shape, reused here for this engine's single
// gameplay-scripting concern rather than the teacher's mod-security API
// surface (ModECSAPI/APIPermissions), which this engine has no use for.
package luahost

import (
	"errors"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// ResourceLimits records execution-time and memory limits for one Lua VM.
// NewVM stores them on the VM; nothing enforces them.
type ResourceLimits struct {
	MaxExecutionTime time.Duration
	MaxMemoryUsage   int64
}

// DefaultResourceLimits matches the teacher's lua package defaults.
func DefaultResourceLimits() *ResourceLimits {
	return &ResourceLimits{MaxExecutionTime: 100 * time.Millisecond, MaxMemoryUsage: 10 * 1024 * 1024}
}

// Sandbox records which stdlib surfaces are disabled on a VM.
type Sandbox struct {
	FileSystemRestricted bool
	OSCommandsBlocked    bool
}

// VMConfig configures a new VM.
type VMConfig struct {
	SandboxEnabled bool
	ResourceLimits *ResourceLimits
}

// DefaultVMConfig sandboxes the VM and applies DefaultResourceLimits.
func DefaultVMConfig() *VMConfig {
	return &VMConfig{SandboxEnabled: true, ResourceLimits: DefaultResourceLimits()}
}

// VM wraps a single gopher-lua state.
type VM struct {
	state     *lua.LState
	sandbox   *Sandbox
	resources *ResourceLimits
}

// NewVM creates a Lua state and, if config.SandboxEnabled, strips io/os/
// debug/package/require/dofile/loadfile from its globals before any script
// runs in it.
func NewVM(config *VMConfig) (*VM, error) {
	if config == nil {
		config = DefaultVMConfig()
	}

	state := lua.NewState()
	if state == nil {
		return nil, errors.New("luahost: failed to create Lua state")
	}

	var sandbox *Sandbox
	if config.SandboxEnabled {
		sandbox = &Sandbox{FileSystemRestricted: true, OSCommandsBlocked: true}
		applySandbox(state, sandbox)
	}

	return &VM{state: state, sandbox: sandbox, resources: config.ResourceLimits}, nil
}

// Close releases the underlying Lua state.
func (vm *VM) Close() {
	if vm == nil || vm.state == nil {
		return
	}
	vm.state.Close()
}

func applySandbox(state *lua.LState, sandbox *Sandbox) {
	if sandbox == nil {
		return
	}
	if sandbox.FileSystemRestricted {
		state.SetGlobal("io", lua.LNil)
		state.SetGlobal("dofile", lua.LNil)
		state.SetGlobal("loadfile", lua.LNil)
	}
	if sandbox.OSCommandsBlocked {
		state.SetGlobal("os", lua.LNil)
	}
	state.SetGlobal("debug", lua.LNil)
	state.SetGlobal("package", lua.LNil)
	state.SetGlobal("require", lua.LNil)
}
