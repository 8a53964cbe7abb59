package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Flag-Sense/internal/arbiter"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Arena is a static capture-the-flag map: walls, one flag home per team and
// a spawn cell per team slot.
//
// Map glyphs: '#' wall, '.' floor, 'B'/'R' blue and red flag homes,
// 'b'/'r' blue and red spawns. Spawns are assigned to slots in row-major
// order, so the first spawn of a team is the defender's.
type Arena struct {
	Name   string
	walls  *grid.Layer[bool]
	homes  [2]grid.Cell
	spawns [2][arbiter.TeamSize]grid.Cell
}

// arenaFile is the on-disk YAML form.
type arenaFile struct {
	Name string   `yaml:"name"`
	Map  []string `yaml:"map"`
}

var defaultArenaRows = []string{
	"########################################",
	"#......................................#",
	"#......................................#",
	"#....##..........................###...#",
	"#..........##..........................#",
	"#..........##.................#........#",
	"#..........##.....#...........#........#",
	"#..........##.....#...........#........#",
	"#.............................#........#",
	"#...............###....................#",
	"#....b.................................#",
	"#..B..b...........................r....#",
	"#....b...........................r..R..#",
	"#.................................r....#",
	"#....................###...............#",
	"#........#.............................#",
	"#........#...........#.....##..........#",
	"#........#...........#.....##..........#",
	"#........#.................##..........#",
	"#..........................##..........#",
	"#...###..........................##....#",
	"#......................................#",
	"#......................................#",
	"########################################",
}

// DefaultArena returns the built-in 24x40 map.
func DefaultArena() *Arena {
	a, err := ParseArena("default", defaultArenaRows)
	if err != nil {
		panic(err)
	}
	return a
}

// LoadArena reads an arena from a YAML file with `name` and `map` keys.
func LoadArena(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading arena %s: %w", path, err)
	}
	var f arenaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing arena %s: %w", path, err)
	}
	a, err := ParseArena(f.Name, f.Map)
	if err != nil {
		return nil, fmt.Errorf("arena %s: %w", path, err)
	}
	return a, nil
}

// ParseArena decodes map glyph rows.
func ParseArena(name string, rows []string) (*Arena, error) {
	if len(rows) < 3 {
		return nil, fmt.Errorf("need at least 3 rows, got %d", len(rows))
	}
	cols := len([]rune(rows[0]))
	a := &Arena{Name: name, walls: grid.NewLayer[bool](len(rows), cols)}
	var homes [2]int
	var spawns [2]int
	for r, line := range rows {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, fmt.Errorf("row %d: width %d, want %d", r, len(runes), cols)
		}
		for c, g := range runes {
			cell := grid.C(r, c)
			switch g {
			case '#':
				a.walls.Set(cell, true)
			case '.':
			case 'B', 'R':
				team := teamOfGlyph(g)
				homes[team]++
				a.homes[team] = cell
			case 'b', 'r':
				team := teamOfGlyph(g)
				if spawns[team] < arbiter.TeamSize {
					a.spawns[team][spawns[team]] = cell
				}
				spawns[team]++
			default:
				return nil, fmt.Errorf("row %d col %d: unknown glyph %q", r, c, g)
			}
		}
	}
	for _, team := range []grid.Team{grid.TeamBlue, grid.TeamRed} {
		if homes[team] != 1 {
			return nil, fmt.Errorf("%s team has %d flag homes, want 1", team, homes[team])
		}
		if spawns[team] != arbiter.TeamSize {
			return nil, fmt.Errorf("%s team has %d spawns, want %d", team, spawns[team], arbiter.TeamSize)
		}
	}
	return a, nil
}

func teamOfGlyph(g rune) grid.Team {
	if g == 'R' || g == 'r' {
		return grid.TeamRed
	}
	return grid.TeamBlue
}

// Size returns the map dimensions.
func (a *Arena) Size() (rows, cols int) { return a.walls.Rows(), a.walls.Cols() }

// Wall reports whether c is a wall. Cells off the map count as walls.
func (a *Arena) Wall(c grid.Cell) bool { return !a.walls.In(c) || a.walls.At(c) }

// Home returns the flag home of team.
func (a *Arena) Home(team grid.Team) grid.Cell { return a.homes[team] }

// Spawn returns the spawn cell of a team slot.
func (a *Arena) Spawn(team grid.Team, slot int) grid.Cell { return a.spawns[team][slot] }
