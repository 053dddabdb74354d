package diplomacy

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxYear bounds how far a game can run; reaching it without a solo win
// or negotiated draw ends the game (§4.5 boundary scenarios).
const MaxYear = 1935

// winningSCCount is the number of supply centers needed for a solo win on
// the standard 34-center map.
const winningSCCount = 18

// Phase identifies a single turn: a year, season and phase kind.
type Phase struct {
	Year   int
	Season Season
	Kind   PhaseKind
}

// Short renders a phase in its compact form, e.g. "S1901M", "F1901R",
// "W1901A".
func (p Phase) Short() string {
	season := "S"
	switch p.Season {
	case Fall:
		season = "F"
	case Winter:
		season = "W"
	}
	kind := "M"
	switch p.Kind {
	case RetreatPhase:
		kind = "R"
	case Adjustment:
		kind = "A"
	}
	return fmt.Sprintf("%s%d%s", season, p.Year, kind)
}

// Long renders a phase in its long form, e.g. "SPRING 1901 MOVEMENT",
// "WINTER 1901 ADJUSTMENT".
func (p Phase) Long() string {
	season := "SPRING"
	switch p.Season {
	case Fall:
		season = "FALL"
	case Winter:
		season = "WINTER"
	}
	kind := "MOVEMENT"
	switch p.Kind {
	case RetreatPhase:
		kind = "RETREAT"
	case Adjustment:
		kind = "ADJUSTMENT"
	}
	return fmt.Sprintf("%s %d %s", season, p.Year, kind)
}

func (p Phase) String() string { return p.Short() }

// ParsePhase parses either the short ("S1901M") or long
// ("SPRING 1901 MOVEMENT") phase form.
func ParsePhase(s string) (Phase, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, " ") {
		return parseLongPhase(s)
	}
	return parseShortPhase(s)
}

func parseShortPhase(s string) (Phase, error) {
	if len(s) < 6 {
		return Phase{}, fmt.Errorf("phase %q too short", s)
	}
	season, err := parseSeasonLetter(s[0])
	if err != nil {
		return Phase{}, err
	}
	kindLetter := s[len(s)-1]
	kind, err := parseKindLetter(kindLetter)
	if err != nil {
		return Phase{}, err
	}
	yearStr := s[1 : len(s)-1]
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Phase{}, fmt.Errorf("phase %q has bad year: %w", s, err)
	}
	return Phase{Year: year, Season: season, Kind: kind}, nil
}

func parseLongPhase(s string) (Phase, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Phase{}, fmt.Errorf("phase %q must have 3 words", s)
	}
	var season Season
	switch strings.ToUpper(fields[0]) {
	case "SPRING":
		season = Spring
	case "FALL":
		season = Fall
	case "WINTER":
		season = Winter
	default:
		return Phase{}, fmt.Errorf("phase %q has unknown season", s)
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return Phase{}, fmt.Errorf("phase %q has bad year: %w", s, err)
	}
	var kind PhaseKind
	switch strings.ToUpper(fields[2]) {
	case "MOVEMENT":
		kind = Movement
	case "RETREAT":
		kind = RetreatPhase
	case "ADJUSTMENT", "BUILD":
		kind = Adjustment
	default:
		return Phase{}, fmt.Errorf("phase %q has unknown kind", s)
	}
	return Phase{Year: year, Season: season, Kind: kind}, nil
}

func parseSeasonLetter(b byte) (Season, error) {
	switch b {
	case 'S', 's':
		return Spring, nil
	case 'F', 'f':
		return Fall, nil
	case 'W', 'w':
		return Winter, nil
	default:
		return Spring, fmt.Errorf("unknown season letter %q", string(b))
	}
}

func parseKindLetter(b byte) (PhaseKind, error) {
	switch b {
	case 'M', 'm':
		return Movement, nil
	case 'R', 'r':
		return RetreatPhase, nil
	case 'A', 'a':
		return Adjustment, nil
	default:
		return Movement, fmt.Errorf("unknown phase-kind letter %q", string(b))
	}
}

// NeedsRetreatPhase reports whether the retreat phase following a
// movement phase is necessary: it is elided entirely when nobody was
// dislodged.
func NeedsRetreatPhase(gs *GameState) bool {
	return len(gs.Dislodged) > 0
}

// NeedsAdjustmentPhase reports whether the winter adjustment phase is
// necessary: it is elided when every power's unit count already matches
// its supply center count, so nobody has a build or disband to make
// (§4.5 "empty winter elision").
func NeedsAdjustmentPhase(gs *GameState) bool {
	for _, power := range AllPowers() {
		if gs.UnitCount(power) != gs.SupplyCenterCount(power) {
			return true
		}
	}
	return false
}

// NextPhase computes the phase that follows cur, given the state that
// resulted from adjudicating cur. It elides the retreat phase when no
// unit was dislodged, and elides the winter adjustment phase when no
// power has a build/disband to make — both phases are otherwise
// mandatory steps of the sequence.
func NextPhase(cur Phase, gs *GameState) Phase {
	switch cur.Kind {
	case Movement:
		if NeedsRetreatPhase(gs) {
			return Phase{Year: cur.Year, Season: cur.Season, Kind: RetreatPhase}
		}
		return afterMovement(cur, gs)

	case RetreatPhase:
		return afterMovement(cur, gs)

	case Adjustment:
		return Phase{Year: cur.Year + 1, Season: Spring, Kind: Movement}

	default:
		return cur
	}
}

// afterMovement computes what follows a movement phase (directly, or via
// its retreat phase): Spring moves into Fall movement; Fall moves into
// winter adjustment (season Winter), unless adjustment is elided in which
// case play skips straight to the next year's Spring.
func afterMovement(cur Phase, gs *GameState) Phase {
	if cur.Season == Spring {
		return Phase{Year: cur.Year, Season: Fall, Kind: Movement}
	}
	if NeedsAdjustmentPhase(gs) {
		return Phase{Year: cur.Year, Season: Winter, Kind: Adjustment}
	}
	return Phase{Year: cur.Year + 1, Season: Spring, Kind: Movement}
}

// IsYearLimitReached reports whether year is at or past the game's year
// cap.
func IsYearLimitReached(year int) bool {
	return year >= MaxYear
}

// IsGameOver reports whether the game has ended: either a power holds a
// solo-winning number of supply centers, or the year limit has been
// reached.
func IsGameOver(gs *GameState) (over bool, winner Power) {
	for _, power := range AllPowers() {
		if gs.SupplyCenterCount(power) >= winningSCCount {
			return true, power
		}
	}
	if IsYearLimitReached(gs.Year) {
		return true, PowerNone
	}
	return false, PowerNone
}

// UpdateSupplyCenterOwnership re-assigns each supply center to whichever
// power occupies it at the end of a Fall movement phase (or its
// retreat phase); centers with no occupying unit keep their prior owner.
func UpdateSupplyCenterOwnership(gs *GameState) {
	for province := range gs.SupplyCenters {
		if u, ok := gs.UnitAt(province); ok {
			gs.SupplyCenters[province] = u.Power
		}
	}
}

var homeCentersCache = map[Power][]string{}

// HomeCenters returns the home supply centers of power on the standard
// map, computed once and cached.
func HomeCenters(power Power) []string {
	if cached, ok := homeCentersCache[power]; ok {
		return cached
	}
	m := StandardMap()
	var homes []string
	for id, p := range m.Provinces {
		if p.HomePower == power {
			homes = append(homes, id)
		}
	}
	homeCentersCache[power] = homes
	return homes
}
