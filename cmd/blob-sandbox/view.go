package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/paintblob/blob"
	"github.com/lixenwraith/paintblob/vmath"
	"github.com/lixenwraith/paintblob/world"
)

const hudRows = 2

var (
	styleStatic   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCleanser = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleBeam     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePortalA  = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	stylePortalB  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleEmitter  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorSilver)

	powerColors = [...]tcell.Color{
		world.PowerBounce:  tcell.ColorDodgerBlue,
		world.PowerSpeed:   tcell.ColorOrangeRed,
		world.PowerPortal:  tcell.ColorWhite,
		world.PowerReflect: tcell.ColorMediumPurple,
		world.PowerNone:    tcell.ColorDimGray,
	}
	powerNames = [...]string{
		world.PowerBounce:  "bounce",
		world.PowerSpeed:   "speed",
		world.PowerPortal:  "portal",
		world.PowerReflect: "reflect",
		world.PowerNone:    "none",
	}
)

// view projects the arena's X-Z plane onto the terminal
type view struct {
	screen        tcell.Screen
	width, height int
}

func newView(screen tcell.Screen) *view {
	v := &view{screen: screen}
	v.resize()
	return v
}

func (v *view) resize() {
	v.width, v.height = v.screen.Size()
}

// cell maps a world point to a screen cell, ok is false outside the viewport
func (v *view) cell(p vmath.Vec3F) (x, y int, ok bool) {
	rows := v.height - hudRows
	if v.width <= 0 || rows <= 0 {
		return 0, 0, false
	}
	size := vmath.V3FSub(arena.Max, arena.Min)
	fx := (p.X - arena.Min.X) / size.X
	fz := (p.Z - arena.Min.Z) / size.Z
	x = int(fx * float64(v.width))
	y = hudRows + rows - 1 - int(fz*float64(rows))
	return x, y, x >= 0 && x < v.width && y >= hudRows && y < v.height
}

func (v *view) set(p vmath.Vec3F, r rune, style tcell.Style) {
	if x, y, ok := v.cell(p); ok {
		v.screen.SetContent(x, y, r, nil, style)
	}
}

// fillBox draws the X-Z footprint of b
func (v *view) fillBox(b vmath.Box, r rune, style tcell.Style) {
	x0, y0, _ := v.cell(vmath.V3F(b.Min.X, 0, b.Max.Z))
	x1, y1, _ := v.cell(vmath.V3F(b.Max.X, 0, b.Min.Z))
	for y := max(y0, hudRows); y <= min(y1, v.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, v.width-1); x++ {
			v.screen.SetContent(x, y, r, nil, style)
		}
	}
}

// line draws a straight segment by sampling once per cell
func (v *view) line(a, b vmath.Vec3F, r rune, style tcell.Style) {
	steps := max(v.width, v.height)
	for i := 0; i <= steps; i++ {
		v.set(vmath.V3FLerp(a, b, float64(i)/float64(steps)), r, style)
	}
}

func (v *view) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= v.width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (v *view) draw(sb *sandbox, paused bool, cuesPlayed, cuesThrottled int) {
	v.screen.Clear()

	for _, b := range sb.scene.Statics() {
		v.fillBox(b, '█', styleStatic)
	}
	if sb.cleanser.IsEnabled() {
		v.fillBox(sb.cleanser.Bounds(), '░', styleCleanser)
	}

	beamRune := '↑'
	if sb.beam.Reversed() {
		beamRune = '↓'
	}
	v.line(sb.beam.Start(), sb.beam.End(), beamRune, styleBeam)

	for i, p := range sb.portals {
		style := stylePortalA
		if i == 1 {
			style = stylePortalB
		}
		if !p.Active() {
			style = style.Dim(true)
		}
		c := p.Center()
		v.line(vmath.V3F(c.X, 0, c.Z-40), vmath.V3F(c.X, 0, c.Z+40), '┃', style)
	}

	for _, s := range sb.scene.Splats() {
		v.set(s.Point, '·', tcell.StyleDefault.Foreground(powerColors[s.Power]))
	}

	for _, b := range sb.blobs {
		v.set(b.Pos, blobRune(b), tcell.StyleDefault.Foreground(powerColors[b.Power]).Bold(b.Mode == blob.ModeTractorBeam))
	}
	v.set(sb.emitterPos, '◉', styleEmitter)

	v.hud(sb, paused, cuesPlayed, cuesThrottled)
	v.screen.Show()
}

func blobRune(b *blob.Blob) rune {
	switch b.Mode {
	case blob.ModeStreak:
		return '~'
	case blob.ModeTractorBeam:
		return '@'
	}
	return 'o'
}

func (v *view) hud(sb *sandbox, paused bool, cuesPlayed, cuesThrottled int) {
	st := sb.stats
	state := "running"
	if paused {
		state = "paused"
	}
	v.text(0, 0, fmt.Sprintf("%s  blobs %d  air %d  streak %d  beam %d  committed %d  routed %d  deleted %d  teleported %d  power %s  cues %d/%d",
		state, len(sb.blobs), st.Air, st.Streak, st.Beam, st.Committed, st.Routed, st.Deleted, st.Teleported,
		powerNames[sb.power], cuesPlayed, cuesThrottled), styleHUD)

	snap := sb.sim.Metrics().Snapshot()
	x := 0
	for _, k := range slices.Sorted(maps.Keys(snap)) {
		s := fmt.Sprintf("%s=%g  ", k, snap[k])
		v.text(x, 1, s, styleHUD.Dim(true))
		x += len(s)
	}
}
