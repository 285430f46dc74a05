package quadblur

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	hudRefresh  = 0.5
	hudFontSize = 13
	hudPadding  = 6
)

var hudBackground = color.RGBA{0, 0, 0, 128}

// HUD draws FPS, the scene status and the last frame's stats in the top
// left corner. The text is rebuilt every half second.
type HUD struct {
	Visible bool

	face    *text.GoTextFace
	lh      float64
	img     *ebiten.Image
	content string
	elapsed float32
	dirty   bool
}

// NewHUD loads the HUD font. If the font cannot be parsed the HUD falls
// back to ebitenutil.DebugPrint.
func NewHUD() *HUD {
	h := &HUD{Visible: true, elapsed: hudRefresh}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		warnf("hud: parse font: %v", err)
		return h
	}
	h.face = &text.GoTextFace{Source: src, Size: hudFontSize}
	m := h.face.Metrics()
	h.lh = m.HAscent + m.HDescent + m.HLineGap
	return h
}

// Update advances the refresh timer and rebuilds the text when it fires.
func (h *HUD) Update(dt float32, status string, stats FrameStats) {
	h.elapsed += max(dt, 0)
	if h.elapsed < hudRefresh {
		return
	}
	h.elapsed = 0
	content := hudText(ebiten.ActualFPS(), ebiten.ActualTPS(), status, stats)
	if content != h.content {
		h.content = content
		h.dirty = true
	}
}

// hudText formats the overlay.
func hudText(fps, tps float64, status string, stats FrameStats) string {
	return fmt.Sprintf("FPS: %.1f  TPS: %.1f\n%s\n%s", fps, tps, status, stats)
}

// Draw renders the overlay onto screen.
func (h *HUD) Draw(screen *ebiten.Image) {
	if !h.Visible || h.content == "" {
		return
	}
	if h.face == nil {
		ebitenutil.DebugPrint(screen, h.content)
		return
	}
	if h.dirty {
		h.render()
	}
	screen.DrawImage(h.img, nil)
}

// render redraws the cached overlay image, reallocating it only when the
// text no longer fits.
func (h *HUD) render() {
	h.dirty = false
	tw, th := text.Measure(h.content, h.face, h.lh)
	w, ht := int(tw)+2*hudPadding, int(th)+2*hudPadding
	if h.img == nil || h.img.Bounds().Dx() < w || h.img.Bounds().Dy() != ht {
		if h.img != nil {
			h.img.Deallocate()
		}
		h.img = ebiten.NewImage(w, ht)
	} else {
		h.img.Clear()
	}
	h.img.Fill(hudBackground)

	op := &text.DrawOptions{}
	op.GeoM.Translate(hudPadding, hudPadding)
	op.LineSpacing = h.lh
	text.Draw(h.img, h.content, h.face, op)
}
