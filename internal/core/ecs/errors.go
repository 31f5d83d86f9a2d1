package ecs

import "fmt"

// ErrorCode identifies one of the error kinds named by the engine's error
// handling policy.
type ErrorCode string

const (
	// ErrMissingComponent is raised by Get when the entity lacks the
	// requested component. Treated as a programmer error.
	ErrMissingComponent ErrorCode = "MISSING_COMPONENT"
	// ErrInvalidEntity is raised by Get on an id never issued or already
	// purged by FlushDestroyed; mutation-style calls (detach, toggle, destroy) no-op
	// instead of returning this.
	ErrInvalidEntity ErrorCode = "INVALID_ENTITY"
	// ErrInvalidHierarchy is raised when AttachChild would create a cycle.
	ErrInvalidHierarchy ErrorCode = "INVALID_HIERARCHY"
	// ErrAssetLoadFailure marks a missing texture/audio/font asset.
	ErrAssetLoadFailure ErrorCode = "ASSET_LOAD_FAILURE"
	// ErrScriptTypeUnknown marks a deserialized script key absent from the
	// script registry.
	ErrScriptTypeUnknown ErrorCode = "SCRIPT_TYPE_UNKNOWN"
	// ErrPhysicsDegenerate marks a zero-extent collider or NaN velocity.
	ErrPhysicsDegenerate ErrorCode = "PHYSICS_DEGENERATE"
)

// Severity classifies how an EngineError should be handled.
type Severity int

const (
	// SeverityRecoverable errors are logged and localized to the entity or
	// subsystem that raised them; the frame continues.
	SeverityRecoverable Severity = iota
	// SeverityStructural errors indicate a programmer error (missing
	// component, cyclic hierarchy); debug builds should assert, release
	// builds continue with undefined behavior by design.
	SeverityStructural
)

// EngineError is the error type returned by ecs, hierarchy, and script
// operations. It carries enough context (entity, component, code) to
// let a caller apply the right recovery policy without string matching.
type EngineError struct {
	Code      ErrorCode
	Message   string
	Entity    EntityID
	Component ComponentType
}

func (e *EngineError) Error() string {
	switch {
	case e.Entity != InvalidEntityID && e.Component != "":
		return fmt.Sprintf("[%s] %s (entity=%d component=%s)", e.Code, e.Message, e.Entity, e.Component)
	case e.Entity != InvalidEntityID:
		return fmt.Sprintf("[%s] %s (entity=%d)", e.Code, e.Message, e.Entity)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Severity reports how this error kind should be handled, per the error
// handling policy: recoverable errors are logged and localized; structural
// errors surface a debug assertion.
func (e *EngineError) Severity() Severity {
	switch e.Code {
	case ErrMissingComponent, ErrInvalidHierarchy:
		return SeverityStructural
	default:
		return SeverityRecoverable
	}
}

func newMissingComponent(id EntityID, ct ComponentType) *EngineError {
	return &EngineError{Code: ErrMissingComponent, Message: "entity does not have component", Entity: id, Component: ct}
}

func newInvalidEntity(id EntityID) *EngineError {
	return &EngineError{Code: ErrInvalidEntity, Message: "entity was never issued or has been destroyed", Entity: id}
}
