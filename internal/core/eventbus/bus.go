package eventbus

// Bus bundles the engine's four event-family dispatchers, matching
// EventHandler's WindowEventDispatcher/MouseEventDispatcher/
// KeyEventDispatcher plus a CollisionEventDispatcher the original
// dispatched through a separate path.
type Bus struct {
	Window    *Dispatcher[WindowEventKind, *WindowEvent]
	Mouse     *Dispatcher[MouseEventKind, *MouseEvent]
	Key       *Dispatcher[KeyEventKind, *KeyEvent]
	Collision *Dispatcher[CollisionEventKind, *CollisionEvent]
}

// NewBus creates a Bus with all four dispatchers ready for use.
func NewBus() *Bus {
	return &Bus{
		Window:    NewDispatcher[WindowEventKind, *WindowEvent](),
		Mouse:     NewDispatcher[MouseEventKind, *MouseEvent](),
		Key:       NewDispatcher[KeyEventKind, *KeyEvent](),
		Collision: NewDispatcher[CollisionEventKind, *CollisionEvent](),
	}
}
