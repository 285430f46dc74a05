// Package quadblur is an interactive rendering playground for [Ebitengine]:
// a pannable, zoomable camera over a hundred thousand rounded quads that
// react to the pointer, and two multi-pass blur compositors.
//
// # Quick start
//
// [Run] opens a window and drives everything:
//
//	quadblur.Run(quadblur.RunConfig{
//		Title: "quadblur", Width: 1280, Height: 720, ShowHUD: true,
//	})
//
// F1, F2 and F3 switch between the three scenes. Drag with the left button
// to pan, use the wheel to zoom, and press Home to return to the origin.
//
// # Scenes
//
//   - RoundQuads (F1) draws the quad grid. Quads within [SurroundRadius] of
//     the pointer spin and brighten; only the rows around the pointer are
//     re-uploaded each frame.
//   - Blurring (F2) runs a separable Gaussian over the source image.
//     Left/Right change the radius, Up/Down the kernel size, l/L the
//     layers and k toggles the diagonal direction.
//   - Kawase (F3) runs the dual-filter blur over the screen. Left/Right
//     change the radius, l/L the layers and d toggles dithering.
//
// # Rendering
//
// Everything draws through the [Device] interface. [EbitenDevice] implements
// it with Kage shaders; tests use a recording fake. A [BlurStrategy] plans a
// frame as a list of [Pass] values over a [TargetChain], and the
// [Compositor] executes the list in order.
//
// # Logging
//
// The package logs through [log/slog] and is silent by default. Install a
// logger with [SetLogger]. Per-frame stats are logged at debug level when
// [InitDebug] was called with true.
//
// [Ebitengine]: https://ebitengine.org
package quadblur
