// Package ebitenhost is the concrete window/input/draw backend, standing
// in for spec.md §1's external OpenGL/GLFW renderer. Grounded on the
// teacher's internal/core/game.go Game/NewGame/Run shape, generalized
// from a static Update/Draw stub into an adapter that forwards ebiten's
// input callbacks into the shared eventbus.Bus and drives world.World.Step
// once per ebiten Update, exactly as SPEC_FULL.md §2 describes the outer
// loop.
package ebitenhost

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"muscle-dreamer/internal/core/ecs"
	"muscle-dreamer/internal/core/eventbus"
	"muscle-dreamer/internal/core/fsm"
	"muscle-dreamer/internal/core/world"
)

// Game adapts a world.World to the ebiten.Game interface.
type Game struct {
	world  *world.World
	player ecs.EntityID

	screenWidth  int
	screenHeight int

	prevMouseX, prevMouseY int
}

// New builds a Game driving w, rendered at the given window dimensions.
// player is the entity whose turn the commit key (Space) ends.
func New(w *world.World, player ecs.EntityID, screenWidth, screenHeight int) *Game {
	return &Game{world: w, player: player, screenWidth: screenWidth, screenHeight: screenHeight}
}

// Update forwards this tick's input into the event bus, then, when the
// clock's ShouldAdvance allows it, advances the world by the measured
// duration of the previous frame (Clock.LastFrameDuration).
func (g *Game) Update() error {
	g.world.Clock.BeginFrame()
	defer g.world.Clock.EndFrame()

	g.pollKeys()
	g.pollMouse()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.world.FSM.Current() == fsm.StatePlanning {
		g.world.CommitTurn(g.player)
	}

	if g.world.Clock.ShouldAdvance() {
		g.world.Step(g.world.Clock.LastFrameDuration())
	}
	return nil
}

// Draw fills the screen; the engine core has no renderer of its own
// (spec.md Non-goals exclude a render/asset pipeline) so this only proves
// the window loop is alive.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 20, G: 20, B: 30, A: 255})
	ebitenutil.DebugPrintAt(screen, g.world.FSM.Current().String(), 8, 8)
}

// Layout reports the fixed logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.screenWidth, g.screenHeight
}

// Run configures the window and hands control to ebiten's run loop.
func (g *Game) Run(title string) error {
	ebiten.SetWindowSize(g.screenWidth, g.screenHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

func (g *Game) pollKeys() {
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		g.world.Bus.Key.Send(&eventbus.KeyEvent{Kind: eventbus.KeyPressed, KeyCode: int(key)})
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		g.world.Bus.Key.Send(&eventbus.KeyEvent{Kind: eventbus.KeyRelease, KeyCode: int(key)})
	}
}

func (g *Game) pollMouse() {
	x, y := ebiten.CursorPosition()
	if x != g.prevMouseX || y != g.prevMouseY {
		g.world.Bus.Mouse.Send(&eventbus.MouseEvent{Kind: eventbus.MouseMoved, X: x, Y: y})
		g.prevMouseX, g.prevMouseY = x, y
	}

	buttons := map[ebiten.MouseButton]int{
		ebiten.MouseButtonLeft:  eventbus.MouseButtonLeft,
		ebiten.MouseButtonRight: eventbus.MouseButtonRight,
	}
	for ebitenButton, busButton := range buttons {
		if inpututil.IsMouseButtonJustPressed(ebitenButton) {
			g.world.Bus.Mouse.Send(&eventbus.MouseEvent{Kind: eventbus.MouseButtonPressed, X: x, Y: y, Button: busButton})
		}
		if inpututil.IsMouseButtonJustReleased(ebitenButton) {
			g.world.Bus.Mouse.Send(&eventbus.MouseEvent{Kind: eventbus.MouseButtonReleased, X: x, Y: y, Button: busButton})
		}
	}
}

// OnWindowLostFocus publishes WindowLostFocus on the bus. ebiten.Game has
// no focus callback of its own, and main does not call this method.
// World.New already subscribes the state machine's pause transition to
// this event, so this only needs to publish it.
func (g *Game) OnWindowLostFocus() {
	g.world.Bus.Window.Send(&eventbus.WindowEvent{Kind: eventbus.WindowLostFocus})
}
