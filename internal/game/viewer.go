package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

const (
	cellPx        = 20
	hudHeight     = 22
	framesPerTick = 3
	statusFrames  = 120
)

// Viewer is the ebiten front end: it plays matches back to back and shows
// the selected team's belief map and decision journal.
type Viewer struct {
	arena *Arena
	cfg   config.Tuning
	seed  uint64
	opts  []Option
	world *World

	paused bool
	frame  int
	team   grid.Team
	face   text.Face

	status      string
	statusTimer int
}

// NewViewer creates a viewer starting at seed.
func NewViewer(arena *Arena, cfg config.Tuning, seed uint64, opts ...Option) *Viewer {
	v := &Viewer{
		arena: arena,
		cfg:   cfg,
		seed:  seed,
		opts:  opts,
		face:  text.NewGoXFace(basicfont.Face7x13),
	}
	v.world = NewWorld(arena, cfg, seed, opts...)
	return v
}

// Size returns the window size in pixels.
func (v *Viewer) Size() (int, int) {
	rows, cols := v.arena.Size()
	return cols*cellPx + logPanelWidth, rows*cellPx + hudHeight
}

func (v *Viewer) Update() error {
	v.handleInput()
	if v.statusTimer > 0 {
		v.statusTimer--
	}
	if v.world.Done() {
		v.frame++
		if v.frame >= statusFrames {
			v.restart(v.seed + 1)
		}
		return nil
	}
	if v.paused {
		return nil
	}
	v.frame++
	if v.frame%framesPerTick == 0 {
		v.world.Step()
		if v.world.Done() {
			v.frame = 0
			v.flash(fmt.Sprintf("%s (%s)", v.world.Outcome().Result, v.world.Outcome().Reason))
		}
	}
	return nil
}

func (v *Viewer) restart(seed uint64) {
	v.seed = seed
	v.world = NewWorld(v.arena, v.cfg, seed, v.opts...)
	v.frame = 0
}

func (v *Viewer) flash(msg string) {
	v.status, v.statusTimer = msg, statusFrames
}

// handleInput processes edge-triggered key presses.
func (v *Viewer) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.paused = !v.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		v.team = v.team.Enemy()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		if v.paused {
			v.world.Step()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.restart(v.seed + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if err := setClipboardText(v.world.Team(v.team).Belief().Dump()); err != nil {
			v.flash("clipboard: " + err.Error())
		} else {
			v.flash(fmt.Sprintf("%s belief map copied", v.team))
		}
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	v.drawArena(screen)
	v.drawBelief(screen)
	v.drawFlags(screen)
	v.drawBullets(screen)
	v.drawAgents(screen)

	rows, cols := v.arena.Size()
	drawJournal(screen, v.face, v.team, v.world.Team(v.team).Journal(), cols*cellPx, rows*cellPx+hudHeight)
	v.drawHUD(screen, rows*cellPx)
}

func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.Size()
}

func cellRect(c grid.Cell) (float32, float32) {
	return float32(c.Col * cellPx), float32(c.Row * cellPx)
}

func (v *Viewer) drawArena(screen *ebiten.Image) {
	rows, cols := v.arena.Size()
	floor := color.RGBA{R: 42, G: 48, B: 40, A: 255}
	wall := color.RGBA{R: 95, G: 92, B: 84, A: 255}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := cellRect(grid.C(r, c))
			col := floor
			if v.arena.Wall(grid.C(r, c)) {
				col = wall
			}
			vector.FillRect(screen, x, y, cellPx, cellPx, col, false)
		}
	}
	lines := color.RGBA{R: 55, G: 62, B: 52, A: 255}
	for c := 0; c <= cols; c++ {
		vector.StrokeLine(screen, float32(c*cellPx), 0, float32(c*cellPx), float32(rows*cellPx), 1, lines, false)
	}
	for r := 0; r <= rows; r++ {
		vector.StrokeLine(screen, 0, float32(r*cellPx), float32(cols*cellPx), float32(r*cellPx), 1, lines, false)
	}
}

// drawBelief shades what the selected team does not know and where it
// expects fire.
func (v *Viewer) drawBelief(screen *ebiten.Image) {
	m := v.world.Team(v.team).Belief()
	rows, cols := m.Size()
	fog := color.RGBA{A: 150}
	threat := color.RGBA{R: 160, G: 30, B: 30, A: 90}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := grid.C(r, c)
			x, y := cellRect(cell)
			switch {
			case m.Tile(cell) == grid.Unknown:
				vector.FillRect(screen, x, y, cellPx, cellPx, fog, false)
			case m.Threatened(cell):
				vector.FillRect(screen, x, y, cellPx, cellPx, threat, false)
			}
		}
	}
	for _, e := range m.KnownEnemies() {
		x, y := cellRect(e)
		vector.StrokeRect(screen, x+1, y+1, cellPx-2, cellPx-2, 1.5, teamColor(v.team.Enemy()), false)
	}
	if st := m.Status(); st.HasRally {
		x, y := cellRect(st.Rally)
		vector.StrokeCircle(screen, x+cellPx/2, y+cellPx/2, cellPx/2-2, 1.5, color.RGBA{R: 230, G: 210, B: 90, A: 255}, false)
	}
}

func (v *Viewer) drawFlags(screen *ebiten.Image) {
	for _, team := range teams {
		home := v.arena.Home(team)
		x, y := cellRect(home)
		vector.StrokeRect(screen, x+2, y+2, cellPx-4, cellPx-4, 1, teamColor(team), false)
		pos, carried := v.world.Flag(team)
		if carried {
			continue
		}
		x, y = cellRect(pos)
		vector.FillRect(screen, x+6, y+3, 8, 6, teamColor(team), false)
		vector.StrokeLine(screen, x+6, y+3, x+6, y+cellPx-3, 1.5, color.White, false)
	}
}

func (v *Viewer) drawBullets(screen *ebiten.Image) {
	for _, b := range v.world.Bullets() {
		x, y := cellRect(b)
		vector.FillCircle(screen, x+cellPx/2, y+cellPx/2, 2.5, color.RGBA{R: 255, G: 230, B: 120, A: 255}, false)
	}
}

func (v *Viewer) drawAgents(screen *ebiten.Image) {
	for _, team := range teams {
		for _, a := range v.world.Agents(team) {
			if !a.Alive {
				continue
			}
			x, y := cellRect(a.Pos)
			vector.FillCircle(screen, x+cellPx/2, y+cellPx/2, cellPx/2-3, teamColor(team), false)
			if a.Holding {
				vector.StrokeCircle(screen, x+cellPx/2, y+cellPx/2, cellPx/2-1, 2, teamColor(team.Enemy()), false)
			}
			drawText(screen, v.face, fmt.Sprint(a.Slot), int(x)+7, int(y)+3, color.White)
		}
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image, top int) {
	w, _ := v.Size()
	vector.FillRect(screen, 0, float32(top), float32(w-logPanelWidth), hudHeight, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	line := fmt.Sprintf("T=%d seed=%d view=%s  [Space] pause [N] step [Tab] team [C] copy [R] next",
		v.world.Tick(), v.seed, v.team)
	if v.statusTimer > 0 {
		line = v.status
	}
	drawText(screen, v.face, line, 6, top+4, color.White)
}
