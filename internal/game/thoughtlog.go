package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Flag-Sense/internal/arbiter"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

const (
	logPanelWidth = 320
	logLineHeight = 14
	logTitleH     = 18
)

var (
	blueCol = color.RGBA{R: 70, G: 110, B: 210, A: 255}
	redCol  = color.RGBA{R: 210, G: 70, B: 70, A: 255}
)

func teamColor(team grid.Team) color.RGBA {
	if team == grid.TeamRed {
		return redCol
	}
	return blueCol
}

// drawJournal renders a team's behavior journal as a panel at panelX.
func drawJournal(screen *ebiten.Image, face text.Face, team grid.Team, j *arbiter.Journal, panelX, panelH int) {
	// Panel background.
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	// Title bar.
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), logTitleH, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawText(screen, face, fmt.Sprintf("JOURNAL  %s", team), panelX+8, 3, color.White)
	vector.StrokeLine(screen, float32(panelX), logTitleH, float32(panelX+logPanelWidth), logTitleH, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := j.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - logTitleH - 6) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	recent := 3

	y := logTitleH + 4
	dot := teamColor(team)
	for i, e := range entries {
		isRecent := i >= len(entries)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		textCol := color.RGBA{R: 150, G: 160, B: 150, A: 255}
		if isRecent {
			textCol = color.RGBA{R: 235, G: 240, B: 235, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, dot, false)
		line := fmt.Sprintf("%5d s%d %-8s %s", e.Update, e.Slot, e.Role, e.Behavior)
		drawText(screen, face, line, panelX+12, y, textCol)
		y += logLineHeight
	}
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}
