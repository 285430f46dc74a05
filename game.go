package quadblur

import (
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Defaults applied by RunConfig when a field is left zero.
const (
	DefaultTitle        = "quadblur"
	DefaultWidth        = 1280
	DefaultHeight       = 720
	DefaultSeed         = 0x5eed
	DefaultMaxImageSide = 2048
	defaultCheckerSize  = 512
	defaultCheckerCell  = 32
)

// RunConfig configures Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Scene names the startup scene: round_quads, blurring or kawase.
	// Empty selects kawase.
	Scene string
	// Seed drives quad generation. Zero selects DefaultSeed.
	Seed uint64
	// QuadCount is the RoundQuads grid size. Zero selects DefaultQuadCount.
	QuadCount int
	// ImagePath is the image the blur scenes draw. Empty selects a
	// procedural checkerboard.
	ImagePath string
	// ScriptPath is an optional JSON input script.
	ScriptPath string
	// ExitAfterScript stops the game once the script has run and its
	// screenshots are written.
	ExitAfterScript bool
	ScreenshotDir   string
	// ScrollSpeed is the zoom exponent per wheel line. Zero selects
	// DefaultScrollSpeed.
	ScrollSpeed float32
	ShowHUD     bool
	// Debug enables debug groups and per-frame stats logging.
	Debug bool
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.QuadCount <= 0 {
		c.QuadCount = DefaultQuadCount
	}
	if c.ScrollSpeed == 0 {
		c.ScrollSpeed = DefaultScrollSpeed
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = DefaultScreenshotDir
	}
	if c.Scene == "" {
		c.Scene = SceneKawase.String()
	}
	return c
}

// loadSource returns the configured image, or a checkerboard when none is
// configured.
func (c RunConfig) loadSource() (*image.RGBA, error) {
	if c.ImagePath == "" {
		return CheckerImage(defaultCheckerSize, defaultCheckerSize, defaultCheckerCell), nil
	}
	img, err := LoadImage(c.ImagePath)
	if err != nil {
		return nil, err
	}
	return FitImage(img, DefaultMaxImageSide), nil
}

// screenDevice is a Device that draws ScreenTarget into an ebiten.Image.
type screenDevice interface {
	Device
	BeginFrame(screen *ebiten.Image)
	DrawCalls() int
}

// Game adapts the playground to ebiten.Game.
type Game struct {
	cfg    RunConfig
	dev    screenDevice
	input  *InputPoller
	ctrl   *SceneController
	scenes *Scenes
	hud    *HUD
	shots  *ScreenshotQueue
	runner *ScriptRunner

	width, height int
	stats         FrameStats
	quit          bool
	// pendingDT is the controller time accumulated by Update since the
	// last Draw. Draw consumes it, so each tick is applied exactly once
	// whatever the display rate.
	pendingDT float32
}

// NewGame builds the device, the controller and the initial scene.
func NewGame(cfg RunConfig) (*Game, error) {
	return newGame(cfg, NewEbitenDevice())
}

func newGame(cfg RunConfig, dev screenDevice) (*Game, error) {
	cfg = cfg.withDefaults()
	kind, err := ParseSceneKind(cfg.Scene)
	if err != nil {
		return nil, err
	}
	src, err := cfg.loadSource()
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:    cfg,
		dev:    dev,
		input:  NewInputPoller(),
		ctrl:   NewSceneController(NewCamera(1), nil),
		hud:    NewHUD(),
		shots:  NewScreenshotQueue(cfg.ScreenshotDir),
		width:  cfg.Width,
		height: cfg.Height,
	}
	g.ctrl.ScrollSpeed = cfg.ScrollSpeed
	g.hud.Visible = cfg.ShowHUD

	if cfg.ScriptPath != "" {
		if g.runner, err = LoadScriptFile(cfg.ScriptPath); err != nil {
			return nil, err
		}
	}

	assets := SceneAssets{Source: src, QuadCount: cfg.QuadCount, Seed: cfg.Seed}
	if g.scenes, err = NewScenes(dev, assets, kind, cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	return g, nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.runner != nil {
		g.runner.Step(g.input, g.shots)
	}
	return g.step(g.input.Poll(g.width, g.height))
}

// step applies one frame of events and advances the controller.
func (g *Game) step(events []InputEvent) error {
	for _, ev := range events {
		g.handle(ev)
	}
	if g.quit {
		return ebiten.Termination
	}
	g.ctrl.Update()
	g.pendingDT += g.ctrl.DT()
	cur := g.scenes.Current()
	g.hud.Update(g.ctrl.DT(), cur.Status(), g.stats)

	if g.cfg.ExitAfterScript && g.runner != nil && g.runner.Done() && g.shots.Len() == 0 {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) handle(ev InputEvent) {
	g.ctrl.HandleEvent(ev)
	switch ev.Kind {
	case EventResize:
		g.scenes.Resize(g.ctrl.Camera, ev.Width, ev.Height)
	case EventKeyPressed:
		switch ev.Key {
		case KeyEscape:
			g.quit = true
			return
		case "h":
			g.hud.Visible = !g.hud.Visible
			return
		}
		switched, err := g.scenes.SwitchScene(ev.Key)
		if err != nil {
			Logger().Error("scene switch failed", "err", err)
			return
		}
		if !switched {
			g.scenes.OnKey(ev.Key)
		}
	}
}

// Draw implements ebiten.Game. Screenshots are taken before the HUD is
// drawn.
func (g *Game) Draw(screen *ebiten.Image) {
	done := pushDebugGroup("frame")
	start := time.Now()

	dt := g.pendingDT
	g.pendingDT = 0

	g.dev.BeginFrame(screen)
	g.scenes.Draw(g.ctrl.Camera, g.ctrl.Pointer(), dt)
	g.shots.Flush(screen)

	g.stats = g.scenes.Current().Stats()
	g.stats.DrawCalls = g.dev.DrawCalls()
	g.stats.Frame = time.Since(start)
	debugLog(g.stats)

	g.hud.Draw(screen)
	done()
}

// Layout implements ebiten.Game. The viewport follows the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Scene returns the active scene.
func (g *Game) Scene() Scene { return g.scenes.Current() }

// Controller returns the camera controller.
func (g *Game) Controller() *SceneController { return g.ctrl }

// Close releases the active scene and, for an EbitenDevice, every image.
func (g *Game) Close() {
	g.scenes.Release()
	if d, ok := g.dev.(*EbitenDevice); ok {
		d.Close()
	}
}

// Run opens a window and runs the playground until it is closed or Escape
// is pressed.
func Run(cfg RunConfig) error {
	InitDebug(cfg.Debug)
	g, err := NewGame(cfg)
	if err != nil {
		return fmt.Errorf("quadblur: %w", err)
	}
	defer g.Close()

	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	Logger().Info("starting", "scene", g.cfg.Scene, "size", fmt.Sprintf("%dx%d", g.cfg.Width, g.cfg.Height))

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("quadblur: run: %w", err)
	}
	return nil
}
