package grid

import "fmt"

// Tile is what a team believes occupies a cell. The vocabulary is relative
// to the observing team: OwnFlag for one team is EnemyFlag for the other.
type Tile uint8

const (
	Unknown Tile = iota
	Empty
	Obstacle
	OwnAgent
	EnemyAgent
	OwnFlag
	EnemyFlag
	Projectile
)

// tileRunes is the ASCII codec used by map files, dumps and tests.
var tileRunes = [...]rune{
	Unknown:    '?',
	Empty:      '.',
	Obstacle:   '#',
	OwnAgent:   'A',
	EnemyAgent: 'E',
	OwnFlag:    'H',
	EnemyFlag:  'T',
	Projectile: '*',
}

// Rune returns the ASCII glyph for t.
func (t Tile) Rune() rune {
	if int(t) < len(tileRunes) {
		return tileRunes[t]
	}
	return '?'
}

func (t Tile) String() string {
	switch t {
	case Empty:
		return "empty"
	case Obstacle:
		return "obstacle"
	case OwnAgent:
		return "own_agent"
	case EnemyAgent:
		return "enemy_agent"
	case OwnFlag:
		return "own_flag"
	case EnemyFlag:
		return "enemy_flag"
	case Projectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// TileFromRune decodes one glyph of the ASCII codec.
func TileFromRune(r rune) (Tile, bool) {
	for t, g := range tileRunes {
		if g == r {
			return Tile(t), true
		}
	}
	return Unknown, false
}

// ParseTiles decodes rows of ASCII glyphs into a tile matrix. All rows must
// have the same width.
func ParseTiles(rows []string) ([][]Tile, error) {
	out := make([][]Tile, len(rows))
	width := -1
	for r, line := range rows {
		runes := []rune(line)
		if width >= 0 && len(runes) != width {
			return nil, fmt.Errorf("row %d: width %d, want %d", r, len(runes), width)
		}
		width = len(runes)
		out[r] = make([]Tile, width)
		for c, g := range runes {
			t, ok := TileFromRune(g)
			if !ok {
				return nil, fmt.Errorf("row %d col %d: unknown glyph %q", r, c, g)
			}
			out[r][c] = t
		}
	}
	return out, nil
}

// MustParseTiles is ParseTiles for literal maps, mostly in tests.
func MustParseTiles(rows ...string) [][]Tile {
	t, err := ParseTiles(rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Traversal is the routing view of a cell.
type Traversal uint8

const (
	TravUnknown Traversal = iota
	TravFree
	TravBlocked
	TravThreatened
)

func (t Traversal) String() string {
	switch t {
	case TravFree:
		return "free"
	case TravBlocked:
		return "blocked"
	case TravThreatened:
		return "threatened"
	default:
		return "unknown"
	}
}
