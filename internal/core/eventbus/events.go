package eventbus

import "muscle-dreamer/internal/core/ecs"

// base carries the handled flag shared by every event struct. Embedding it
// gives concrete events IsHandled/SetHandled for free.
type base struct {
	handled bool
}

func (b *base) IsHandled() bool   { return b.handled }
func (b *base) SetHandled(v bool) { b.handled = v }

// WindowEventKind enumerates WindowEvent's possible kinds.
type WindowEventKind int

const (
	WindowResize WindowEventKind = iota
	WindowClose
	WindowFocus
	WindowLostFocus
	WindowMoved
)

// WindowEvent carries every window event's fields behind one discriminated
// struct; unused fields for a given Kind are zero.
type WindowEvent struct {
	base
	Kind   WindowEventKind
	Width  int
	Height int
	X      int
	Y      int
}

func (e *WindowEvent) EventKind() WindowEventKind { return e.Kind }

// MouseEventKind enumerates MouseEvent's possible kinds.
type MouseEventKind int

const (
	MouseMoved MouseEventKind = iota
	MouseButtonPressed
	MouseButtonReleased
	MouseScrolled
	MouseButtonHold
)

// Mouse button identifiers carried in MouseEvent.Button, independent of
// any platform backend's own button numbering.
const (
	MouseButtonLeft = iota
	MouseButtonRight
	MouseButtonMiddle
)

// MouseEvent carries every mouse event's fields behind one discriminated
// struct.
type MouseEvent struct {
	base
	Kind    MouseEventKind
	X, Y    int
	Button  int
	ScrollX int
	ScrollY int
}

func (e *MouseEvent) EventKind() MouseEventKind { return e.Kind }

// KeyEventKind enumerates KeyEvent's possible kinds.
type KeyEventKind int

const (
	KeyPressed KeyEventKind = iota
	KeyTriggered
	KeyRelease
)

// KeyEvent carries every key event's fields behind one discriminated
// struct.
type KeyEvent struct {
	base
	Kind    KeyEventKind
	KeyCode int
	Repeat  bool
}

func (e *KeyEvent) EventKind() KeyEventKind { return e.Kind }

// CollisionEventKind enumerates CollisionEvent's possible kinds: the three
// physical-collision phases and their trigger-collider counterparts.
type CollisionEventKind int

const (
	CollisionEnter CollisionEventKind = iota
	CollisionStay
	CollisionExit
	TriggerEnter
	TriggerStay
	TriggerExit
)

// CollisionEvent reports an overlap between Entity1 and Entity2, as
// produced by Physics narrowphase detection.
type CollisionEvent struct {
	base
	Kind    CollisionEventKind
	Entity1 ecs.EntityID
	Entity2 ecs.EntityID
}

func (e *CollisionEvent) EventKind() CollisionEventKind { return e.Kind }
