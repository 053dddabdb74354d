package diplomacy

// Season is the portion of the year a phase falls in. WINTER only ever
// pairs with the ADJUSTMENT phase kind; SPRING and FALL only ever pair
// with MOVEMENT or RETREAT.
type Season int

const (
	Spring Season = iota
	Fall
	Winter
)

func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Fall:
		return "fall"
	case Winter:
		return "winter"
	default:
		return "unknown"
	}
}

// PhaseKind is the kind of adjudication a phase performs.
type PhaseKind int

const (
	Movement PhaseKind = iota
	RetreatPhase
	Adjustment
)

func (k PhaseKind) String() string {
	switch k {
	case Movement:
		return "movement"
	case RetreatPhase:
		return "retreat"
	case Adjustment:
		return "adjustment"
	default:
		return "unknown"
	}
}

// GameStatus is the lifecycle state of a Game.
type GameStatus int

const (
	StatusWaiting GameStatus = iota
	StatusActive
	StatusFinished
)

// DislodgedUnit records a unit dislodged during the movement phase just
// resolved, carried forward so the following retreat phase knows where it
// may not retreat to (the attacker's own origin).
type DislodgedUnit struct {
	Unit         Unit
	AttackerFrom string
}

// GameState is a single point-in-time snapshot of the board: unit
// positions, supply center ownership, and whatever dislodged units and
// contested locations the adjudicator just produced that the next phase
// needs to know about.
type GameState struct {
	Year   int
	Season Season
	Phase  PhaseKind

	Units         []Unit
	SupplyCenters map[string]Power
	Dislodged     []DislodgedUnit

	// Contested lists locations where a move bounced (no unit occupies
	// them as a result) during the movement phase just resolved. A
	// dislodged unit may not retreat into one of these (§4.3): it did
	// not just become vacant by a successful, unopposed move, and
	// retreating there would re-fight a battle that is already settled.
	Contested []string

	// StagedOrders holds orders submitted for the current phase but not
	// yet adjudicated, keyed by "power" for easy replace-on-resubmit.
	StagedOrders map[Power][]Order
}

// NewInitialState returns the standard Diplomacy starting position:
// Spring 1901 Movement, 22 units, 34 supply centers (12 of them neutral).
func NewInitialState() *GameState {
	gs := &GameState{
		Year:          1901,
		Season:        Spring,
		Phase:         Movement,
		Units:         initialUnits(),
		SupplyCenters: initialSupplyCenters(),
		StagedOrders:  make(map[Power][]Order),
	}
	return gs
}

func initialUnits() []Unit {
	return []Unit{
		{Army, Austria, "bud", NoCoast},
		{Army, Austria, "vie", NoCoast},
		{Fleet, Austria, "tri", NoCoast},

		{Fleet, England, "edi", NoCoast},
		{Fleet, England, "lon", NoCoast},
		{Army, England, "lvp", NoCoast},

		{Army, France, "par", NoCoast},
		{Army, France, "mar", NoCoast},
		{Fleet, France, "bre", NoCoast},

		{Army, Germany, "ber", NoCoast},
		{Army, Germany, "mun", NoCoast},
		{Fleet, Germany, "kie", NoCoast},

		{Army, Italy, "rom", NoCoast},
		{Army, Italy, "ven", NoCoast},
		{Fleet, Italy, "nap", NoCoast},

		{Army, Russia, "mos", NoCoast},
		{Army, Russia, "war", NoCoast},
		{Fleet, Russia, "sev", NoCoast},
		{Fleet, Russia, "stp", SouthCoast},

		{Army, Turkey, "con", NoCoast},
		{Army, Turkey, "smy", NoCoast},
		{Fleet, Turkey, "ank", NoCoast},
	}
}

func initialSupplyCenters() map[string]Power {
	return map[string]Power{
		"bud": Austria, "vie": Austria, "tri": Austria,
		"edi": England, "lon": England, "lvp": England,
		"par": France, "mar": France, "bre": France,
		"ber": Germany, "mun": Germany, "kie": Germany,
		"rom": Italy, "ven": Italy, "nap": Italy,
		"mos": Russia, "war": Russia, "sev": Russia, "stp": Russia,
		"con": Turkey, "smy": Turkey, "ank": Turkey,

		"nwy": Neutral, "swe": Neutral, "den": Neutral,
		"hol": Neutral, "bel": Neutral, "spa": Neutral,
		"por": Neutral, "tun": Neutral, "ser": Neutral,
		"rum": Neutral, "bul": Neutral, "gre": Neutral,
	}
}

// UnitAt returns the unit occupying province and whether one exists.
func (gs *GameState) UnitAt(province string) (Unit, bool) {
	for _, u := range gs.Units {
		if u.Province == province {
			return u, true
		}
	}
	return Unit{}, false
}

// SupplyCenterCount returns the number of supply centers currently owned
// by power.
func (gs *GameState) SupplyCenterCount(power Power) int {
	n := 0
	for _, owner := range gs.SupplyCenters {
		if owner == power {
			n++
		}
	}
	return n
}

// UnitCount returns the number of units power currently has on the board.
func (gs *GameState) UnitCount(power Power) int {
	n := 0
	for _, u := range gs.Units {
		if u.Power == power {
			n++
		}
	}
	return n
}

// UnitsOf returns every unit belonging to power.
func (gs *GameState) UnitsOf(power Power) []Unit {
	var out []Unit
	for _, u := range gs.Units {
		if u.Power == power {
			out = append(out, u)
		}
	}
	return out
}

// PowerIsAlive reports whether power still has at least one unit or
// supply center; a power with neither is eliminated.
func (gs *GameState) PowerIsAlive(power Power) bool {
	if gs.UnitCount(power) > 0 {
		return true
	}
	return gs.SupplyCenterCount(power) > 0
}

// Clone returns a deep copy of the state, safe to mutate independently of
// gs. Used whenever a state needs to be retained in history while the
// live state continues to be adjudicated forward.
func (gs *GameState) Clone() *GameState {
	dst := &GameState{}
	gs.CloneInto(dst)
	return dst
}

// CloneInto deep-copies gs into dst, reusing dst's backing slices/maps
// where capacity allows, to avoid an allocation per phase transition in
// a long-running game's history.
func (gs *GameState) CloneInto(dst *GameState) {
	dst.Year = gs.Year
	dst.Season = gs.Season
	dst.Phase = gs.Phase

	dst.Units = append(dst.Units[:0], gs.Units...)

	if dst.SupplyCenters == nil {
		dst.SupplyCenters = make(map[string]Power, len(gs.SupplyCenters))
	} else {
		for k := range dst.SupplyCenters {
			delete(dst.SupplyCenters, k)
		}
	}
	for k, v := range gs.SupplyCenters {
		dst.SupplyCenters[k] = v
	}

	dst.Dislodged = append(dst.Dislodged[:0], gs.Dislodged...)
	dst.Contested = append(dst.Contested[:0], gs.Contested...)

	if dst.StagedOrders == nil {
		dst.StagedOrders = make(map[Power][]Order, len(gs.StagedOrders))
	} else {
		for k := range dst.StagedOrders {
			delete(dst.StagedOrders, k)
		}
	}
	for p, orders := range gs.StagedOrders {
		dst.StagedOrders[p] = append([]Order(nil), orders...)
	}
}
