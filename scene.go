package quadblur

import (
	"fmt"
	"image"
	"strings"
)

// Scene background colors.
var (
	RoundQuadsBackground = Color{R: 0, G: 0, B: 0, A: 0.5}
	BlurBackground       = Color{R: 0, G: 0.2, B: 0.15, A: 0.5}
)

// ContentResDivs are the Blurring scene's chain divisors. The chain is
// based on the source image, so level 0 keeps full resolution.
var ContentResDivs = []int{1, 2, 4, 8, 16, 32}

// SceneKind identifies a scene variant.
type SceneKind uint8

const (
	SceneRoundQuads SceneKind = iota
	SceneBlurring
	SceneKawase
)

var sceneNames = [...]string{
	SceneRoundQuads: "round_quads",
	SceneBlurring:   "blurring",
	SceneKawase:     "kawase",
}

// String returns the scene name.
func (k SceneKind) String() string {
	if int(k) < len(sceneNames) {
		return sceneNames[k]
	}
	return fmt.Sprintf("SceneKind(%d)", k)
}

// ParseSceneKind returns the kind whose name matches s, ignoring case.
func ParseSceneKind(s string) (SceneKind, error) {
	for k, name := range sceneNames {
		if strings.EqualFold(s, name) {
			return SceneKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown scene %q", s)
}

// SceneForKey maps F1, F2 and F3 to their scenes.
func SceneForKey(key Key) (SceneKind, bool) {
	switch key {
	case KeyF1:
		return SceneRoundQuads, true
	case KeyF2:
		return SceneBlurring, true
	case KeyF3:
		return SceneKawase, true
	}
	return 0, false
}

// Scene is one of the three renderers. The set is closed.
type Scene interface {
	Kind() SceneKind
	// Draw renders one frame. pointer is in viewport pixels and dt is the
	// frame delta in seconds.
	Draw(cam *Camera, pointer Vec2, dt float32)
	Resize(cam *Camera, width, height int)
	// OnKey reports whether the key changed the scene.
	OnKey(key Key) bool
	Status() string
	Stats() FrameStats
	// Release frees every device resource the scene owns.
	Release()

	isScene()
}

// SceneAssets are the inputs shared by every scene constructor.
type SceneAssets struct {
	// Source is the image the blur scenes draw.
	Source    *image.RGBA
	QuadCount int
	Seed      uint64
}

// NewScene builds a scene of the given kind for a width x height viewport.
func NewScene(kind SceneKind, dev Device, assets SceneAssets, width, height int) (Scene, error) {
	switch kind {
	case SceneRoundQuads:
		return NewRoundQuadsScene(dev, assets.QuadCount, assets.Seed, width, height)
	case SceneBlurring:
		return NewBlurringScene(dev, assets.Source, width, height)
	case SceneKawase:
		return NewKawaseScene(dev, assets.Source, width, height)
	}
	return nil, fmt.Errorf("unknown scene kind %d", kind)
}

// --- RoundQuadsScene ---

// RoundQuadsScene draws the quad grid and spins the quads near the pointer.
type RoundQuadsScene struct {
	dev      Device
	grid     *QuadGrid
	uploader *VertexUploader
	indices  BufferID
	program  ProgramID
	viewport Vec2
	stats    FrameStats
}

// NewRoundQuadsScene builds a grid of n quads and uploads it in full.
func NewRoundQuadsScene(dev Device, n int, seed uint64, width, height int) (*RoundQuadsScene, error) {
	prog, err := dev.LoadProgram(ProgramRoundRect)
	if err != nil {
		return nil, fmt.Errorf("round quads scene: %w", err)
	}
	grid := NewQuadGrid(n, seed)
	s := &RoundQuadsScene{
		dev:      dev,
		grid:     grid,
		uploader: NewVertexUploader(dev, grid),
		indices:  dev.NewBuffer(IndexBuffer, grid.IndexCount()*4, StaticDraw),
		program:  prog,
		viewport: Vec2{float32(width), float32(height)},
	}
	s.uploader.UploadAll()
	dev.UploadBuffer(s.indices, 0, grid.IndexBytes())
	return s, nil
}

func (*RoundQuadsScene) isScene() {}

// Kind implements Scene.
func (*RoundQuadsScene) Kind() SceneKind { return SceneRoundQuads }

// Grid returns the scene's quad grid.
func (s *RoundQuadsScene) Grid() *QuadGrid { return s.grid }

// Draw reacts the quads around the pointer, draws the grid, then restores
// the resting intensity of the touched range. Rotation is kept.
func (s *RoundQuadsScene) Draw(cam *Camera, pointer Vec2, dt float32) {
	world := cam.PointerToWorld(pointer, s.viewport)
	s.uploader.ResetStats()

	r := s.grid.React(world, SurroundRadius, dt)
	s.uploader.UploadRange(r)

	d := s.dev
	d.BindTarget(ScreenTarget)
	d.SetViewport(int(s.viewport.X), int(s.viewport.Y))
	d.Clear(RoundQuadsBackground)
	d.UseProgram(s.program)
	d.SetUniformMat4(UniformMVP, cam.Matrix(s.viewport))
	d.DrawIndexed(s.uploader.Buffer(), s.indices, s.grid.IndexCount())

	s.grid.Reset(r)
	s.uploader.UploadRange(r)

	uploads, bytes := s.uploader.Stats()
	s.stats = FrameStats{
		Scene:       SceneRoundQuads.String(),
		Passes:      1,
		DrawCalls:   1,
		Uploads:     uploads,
		UploadBytes: bytes,
	}
}

// Resize implements Scene.
func (s *RoundQuadsScene) Resize(_ *Camera, width, height int) {
	s.viewport = Vec2{float32(width), float32(height)}
}

// OnKey implements Scene. The grid has no key bindings.
func (s *RoundQuadsScene) OnKey(Key) bool { return false }

// Status implements Scene.
func (s *RoundQuadsScene) Status() string {
	return fmt.Sprintf("round quads: n=%d aw=%d", s.grid.Len(), s.grid.AreaWidth())
}

// Stats implements Scene.
func (s *RoundQuadsScene) Stats() FrameStats { return s.stats }

// Release implements Scene.
func (s *RoundQuadsScene) Release() {
	s.uploader.Release()
	if s.indices != 0 {
		s.dev.DeleteBuffer(s.indices)
		s.indices = 0
	}
}

// --- Blur scenes ---

// blurScene is the state shared by the two blur scenes.
type blurScene struct {
	kind     SceneKind
	dev      Device
	comp     *Compositor
	strategy BlurStrategy
	limits   BlurLimits
	params   BlurParameters

	texture  TextureID
	quad     ContentQuad
	viewport Vec2
	chains   []*TargetChain
	stats    FrameStats
}

func newBlurScene(kind SceneKind, dev Device, src *image.RGBA, width, height int) (*blurScene, error) {
	if src == nil {
		return nil, fmt.Errorf("%s scene: no source image", kind)
	}
	comp, err := NewCompositor(dev)
	if err != nil {
		return nil, fmt.Errorf("%s scene: %w", kind, err)
	}
	size := src.Bounds().Size()
	return &blurScene{
		kind:     kind,
		dev:      dev,
		comp:     comp,
		texture:  dev.NewTexture(src),
		quad:     NewContentQuad(dev, size.X, size.Y),
		viewport: Vec2{float32(width), float32(height)},
	}, nil
}

func (s *blurScene) isScene() {}

// Kind implements Scene.
func (s *blurScene) Kind() SceneKind { return s.kind }

// Parameters returns the current blur settings.
func (s *blurScene) Parameters() BlurParameters { return s.params }

// Limits returns the bounds key presses are clamped to.
func (s *blurScene) Limits() BlurLimits { return s.limits }

// Draw implements Scene.
func (s *blurScene) Draw(cam *Camera, _ Vec2, _ float32) {
	src := BlurSource{
		Texture:    s.texture,
		Quad:       s.quad,
		MVP:        cam.Matrix(s.viewport),
		Width:      int(s.viewport.X),
		Height:     int(s.viewport.Y),
		Background: BlurBackground,
	}
	s.comp.Render(s.strategy, s.params, src)
	passes, draws := s.comp.Stats()
	s.stats = FrameStats{Scene: s.kind.String(), Passes: passes, DrawCalls: draws}
}

// OnKey implements Scene. Changes are logged at info level.
func (s *blurScene) OnKey(key Key) bool {
	if !s.params.Apply(key, s.limits) {
		return false
	}
	Logger().Info(s.kind.String()+" config", "params", s.params.String())
	return true
}

// Status implements Scene.
func (s *blurScene) Status() string {
	return s.kind.String() + ": " + s.params.String()
}

// Stats implements Scene.
func (s *blurScene) Stats() FrameStats { return s.stats }

// Release implements Scene.
func (s *blurScene) Release() {
	for _, c := range s.chains {
		c.Release()
	}
	s.chains = nil
	s.quad.Release(s.dev)
	s.dev.DeleteTexture(s.texture)
}

// clampLayers lowers the layer limit to what the strategy's chain holds.
func (s *blurScene) clampLayers(base BlurLimits) {
	s.limits = base
	s.limits.MaxLayers = min(base.MaxLayers, s.strategy.MaxLayers())
	s.params.Clamp(s.limits)
}

// BlurringScene runs the separable Gaussian over the source image in
// content space.
type BlurringScene struct {
	*blurScene
}

// NewBlurringScene builds the chain and its scratch twin at the source
// image's size.
func NewBlurringScene(dev Device, src *image.RGBA, width, height int) (*BlurringScene, error) {
	b, err := newBlurScene(SceneBlurring, dev, src, width, height)
	if err != nil {
		return nil, err
	}
	size := src.Bounds().Size()
	chain := NewTargetChain(dev, size.X, size.Y, ContentResDivs)
	scratch := NewTargetChain(dev, size.X, size.Y, ContentResDivs)
	b.chains = []*TargetChain{chain, scratch}
	b.strategy = &SeparableStrategy{Chain: chain, Scratch: scratch, Space: ContentSpace}
	b.params = DefaultSeparableParameters()
	b.clampLayers(SeparableLimits)
	return &BlurringScene{b}, nil
}

// Resize implements Scene. The chain follows the image, so only the
// viewport changes.
func (s *BlurringScene) Resize(_ *Camera, width, height int) {
	s.viewport = Vec2{float32(width), float32(height)}
}

// KawaseScene runs the dual-filter blur over the screen image.
type KawaseScene struct {
	*blurScene
	chain *TargetChain
}

// NewKawaseScene builds a viewport-sized chain.
func NewKawaseScene(dev Device, src *image.RGBA, width, height int) (*KawaseScene, error) {
	b, err := newBlurScene(SceneKawase, dev, src, width, height)
	if err != nil {
		return nil, err
	}
	chain := NewTargetChain(dev, width, height, DefaultResDivs)
	b.chains = []*TargetChain{chain}
	b.strategy = &KawaseStrategy{Chain: chain, Space: ScreenSpace}
	b.params = DefaultKawaseParameters()
	b.clampLayers(KawaseLimits)
	return &KawaseScene{blurScene: b, chain: chain}, nil
}

// Resize implements Scene. The whole chain is rebuilt when the size
// changes.
func (s *KawaseScene) Resize(_ *Camera, width, height int) {
	s.viewport = Vec2{float32(width), float32(height)}
	if s.chain.Resize(width, height) {
		s.clampLayers(KawaseLimits)
	}
}

// --- Scenes ---

// Scenes holds the active scene and replaces it on F1, F2 and F3.
type Scenes struct {
	dev     Device
	assets  SceneAssets
	current Scene
	width   int
	height  int
}

// NewScenes builds the initial scene.
func NewScenes(dev Device, assets SceneAssets, kind SceneKind, width, height int) (*Scenes, error) {
	s, err := NewScene(kind, dev, assets, width, height)
	if err != nil {
		return nil, err
	}
	return &Scenes{dev: dev, assets: assets, current: s, width: width, height: height}, nil
}

// Current returns the active scene.
func (s *Scenes) Current() Scene { return s.current }

// SwitchScene replaces the active scene when key is F1, F2 or F3. The
// outgoing scene is released only after the new one was built, so a failed
// switch leaves the old scene running. It reports whether a switch
// happened.
func (s *Scenes) SwitchScene(key Key) (bool, error) {
	kind, ok := SceneForKey(key)
	if !ok {
		return false, nil
	}
	next, err := NewScene(kind, s.dev, s.assets, s.width, s.height)
	if err != nil {
		return false, fmt.Errorf("switch to %s: %w", kind, err)
	}
	s.current.Release()
	s.current = next
	Logger().Info("scene switched", "scene", kind.String())
	return true, nil
}

// OnKey forwards a key to the active scene.
func (s *Scenes) OnKey(key Key) bool { return s.current.OnKey(key) }

// Draw draws the active scene.
func (s *Scenes) Draw(cam *Camera, pointer Vec2, dt float32) {
	s.current.Draw(cam, pointer, dt)
}

// Resize records the viewport size and forwards it to the active scene.
func (s *Scenes) Resize(cam *Camera, width, height int) {
	s.width, s.height = width, height
	s.current.Resize(cam, width, height)
}

// Release releases the active scene.
func (s *Scenes) Release() { s.current.Release() }
