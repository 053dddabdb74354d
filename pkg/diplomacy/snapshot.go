package diplomacy

import (
	"encoding/json"
	"fmt"
	"sort"
)

// snapshot is the on-the-wire shape of a Game (§6): every map keyed by
// power is keyed by its lower-case name, and every map keyed by phase is
// keyed by Phase.Short(). Field names match the spec exactly so the JSON
// codec is a direct, boring marshal of the value types below.
type snapshot struct {
	ID           string                          `json:"id"`
	Map          string                          `json:"map"`
	Rules        []string                        `json:"rules"`
	Phase        string                          `json:"phase"`
	State        stateJSON                       `json:"state"`
	StateHistory map[string]stateJSON            `json:"state_history"`
	OrderHistory map[string]map[string][]string  `json:"order_history"`
	Messages     map[string]map[string]messageJS `json:"messages"`
	Logs         map[string][]string             `json:"logs"`
}

type messageJS struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

type buildsJSON struct {
	Count int      `json:"count"`
	Homes []string `json:"homes"`
}

// stateJSON is the per-phase board snapshot (§6): units/centers/homes and
// the derived per-power views (influence, civil_disorder, builds) that a
// client would otherwise have to recompute itself.
type stateJSON struct {
	Units         map[string][]string             `json:"units"`
	Retreats      map[string]map[string][]string  `json:"retreats"`
	Centers       map[string][]string             `json:"centers"`
	Homes         map[string][]string             `json:"homes"`
	Influence     map[string][]string             `json:"influence"`
	CivilDisorder map[string]int                  `json:"civil_disorder"`
	Builds        map[string]buildsJSON           `json:"builds"`
}

// standardRules mirrors the upstream engine's metadata-only rules list
// (§9 open question (a)): POWER_CHOICE is never consulted by the core.
var standardRules = []string{"NO_PRESS", "POWER_CHOICE"}

func encodeLoc(province string, coast Coast) string {
	return locString(province, coast)
}

func decodeLoc(s string) (string, Coast, bool) {
	return parseLoc(s)
}

func encodeUnit(u Unit) string {
	unitLetter := "A"
	if u.Type == Fleet {
		unitLetter = "F"
	}
	return fmt.Sprintf("%s %s", unitLetter, encodeLoc(u.Province, u.Coast))
}

func decodeUnit(power Power, s string) (Unit, error) {
	var fields [2]string
	n := 0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if n < 2 {
				fields[n] = s[start:i]
			}
			n++
			start = i + 1
		}
	}
	if n != 2 {
		return Unit{}, fmt.Errorf("malformed unit %q", s)
	}
	ut, ok := ParseUnitType(fields[0])
	if !ok {
		return Unit{}, fmt.Errorf("malformed unit type in %q", s)
	}
	province, coast, ok := decodeLoc(fields[1])
	if !ok {
		return Unit{}, fmt.Errorf("malformed loc in %q", s)
	}
	return Unit{Type: ut, Power: power, Province: province, Coast: coast}, nil
}

func buildStateJSON(gs *GameState, m *DiplomacyMap, civilDisorder map[Power]bool) stateJSON {
	sj := stateJSON{
		Units:         make(map[string][]string),
		Retreats:      make(map[string]map[string][]string),
		Centers:       make(map[string][]string),
		Homes:         make(map[string][]string),
		Influence:     make(map[string][]string),
		CivilDisorder: make(map[string]int),
		Builds:        make(map[string]buildsJSON),
	}

	for _, power := range AllPowers() {
		name := power.String()

		var units []string
		influence := make(map[string]bool)
		for _, u := range gs.UnitsOf(power) {
			units = append(units, encodeUnit(u))
			influence[u.Province] = true
		}
		sort.Strings(units)
		sj.Units[name] = units

		var centers []string
		for prov, owner := range gs.SupplyCenters {
			if owner == power {
				centers = append(centers, toUpper(prov))
				influence[prov] = true
			}
		}
		sort.Strings(centers)
		sj.Centers[name] = centers

		var homes []string
		for _, h := range HomeCenters(power) {
			homes = append(homes, toUpper(h))
		}
		sort.Strings(homes)
		sj.Homes[name] = homes

		var infl []string
		for prov := range influence {
			infl = append(infl, toUpper(prov))
		}
		sort.Strings(infl)
		sj.Influence[name] = infl

		if civilDisorder[power] {
			sj.CivilDisorder[name] = 1
		} else {
			sj.CivilDisorder[name] = 0
		}

		sj.Builds[name] = buildsJSON{
			Count: gs.SupplyCenterCount(power) - gs.UnitCount(power),
			Homes: availableHomeBuildSites(power, gs, m),
		}
	}

	for _, d := range gs.Dislodged {
		name := d.Unit.Power.String()
		if sj.Retreats[name] == nil {
			sj.Retreats[name] = make(map[string][]string)
		}
		loc := encodeLoc(d.Unit.Province, d.Unit.Coast)
		var dsts []string
		for _, dst := range m.ProvincesAdjacentTo(d.Unit.Province, d.Unit.Coast, d.Unit.Type == Fleet) {
			if dst == d.AttackerFrom {
				continue
			}
			contested := false
			for _, c := range gs.Contested {
				if c == dst {
					contested = true
					break
				}
			}
			if contested {
				continue
			}
			if _, occupied := gs.UnitAt(dst); occupied {
				continue
			}
			dsts = append(dsts, toUpper(dst))
		}
		sort.Strings(dsts)
		sj.Retreats[name][loc] = dsts
	}

	return sj
}

func availableHomeBuildSites(power Power, gs *GameState, m *DiplomacyMap) []string {
	var out []string
	for _, home := range HomeCenters(power) {
		if gs.SupplyCenters[home] != power {
			continue
		}
		if _, occupied := gs.UnitAt(home); occupied {
			continue
		}
		out = append(out, toUpper(home))
	}
	sort.Strings(out)
	return out
}

func encodeOrders(orders []Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		if !o.Valid && o.RawText != "" {
			out[i] = o.RawText
			continue
		}
		out[i] = o.Describe()
	}
	return out
}

// ToJSON serializes g into the stable snapshot shape described in §6.
func (g *Game) ToJSON() ([]byte, error) {
	snap := snapshot{
		ID:           g.GameID,
		Map:          "standard",
		Rules:        standardRules,
		Phase:        g.Phase.Short(),
		State:        buildStateJSON(g.current, g.Map, g.civilDisorderThisPhase()),
		StateHistory: make(map[string]stateJSON, len(g.StateHistory)),
		OrderHistory: make(map[string]map[string][]string, len(g.OrderHistory)),
		Messages:     make(map[string]map[string]messageJS, len(g.Messages)),
		Logs:         g.Logs,
	}

	for key, state := range g.StateHistory {
		snap.StateHistory[key] = buildStateJSON(state, g.Map, nil)
	}

	for key, byPower := range g.OrderHistory {
		powers := make(map[string][]string, len(byPower))
		for power, orders := range byPower {
			powers[power.String()] = encodeOrders(orders)
		}
		snap.OrderHistory[key] = powers
	}

	for key, bucket := range g.Messages {
		byTS := make(map[string]messageJS, len(bucket))
		for ts, msg := range bucket {
			byTS[fmt.Sprintf("%d", ts)] = messageJS{
				Sender:    msg.Sender.String(),
				Recipient: msg.Recipient.String(),
				Body:      msg.Body,
			}
		}
		snap.Messages[key] = byTS
	}

	return json.Marshal(snap)
}

// civilDisorderThisPhase reports, per power, whether the adjustment phase
// just resolved required civil-disorder selection. Only meaningful right
// after an Adjustment Process() call; nil otherwise.
func (g *Game) civilDisorderThisPhase() map[Power]bool {
	return g.lastCivilDisorder
}

// FromJSON reconstructs a Game from bytes produced by ToJSON. The result
// is independently processable: its current units and centers, state
// history, order history, messages and logs round-trip. Staged orders are
// not part of the snapshot and start empty, dislodged units and contested
// locations are not restored, the possible-orders cache is rebuilt, and
// cfg and clock come from the arguments (defaults when nil).
func FromJSON(data []byte, cfg *EngineConfig, clock Clock) (*Game, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &CorruptSnapshotError{Reason: err.Error()}
	}

	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	phase, err := ParsePhase(snap.Phase)
	if err != nil {
		return nil, &CorruptSnapshotError{Reason: "bad phase: " + err.Error()}
	}

	current, err := stateFromJSON(phase, snap.State)
	if err != nil {
		return nil, &CorruptSnapshotError{Reason: err.Error()}
	}

	g := &Game{
		GameID:          snap.ID,
		Map:             StandardMap(),
		Config:          cfg,
		Clock:           clock,
		Phase:           phase,
		current:         current,
		StateHistory:    make(map[string]*GameState, len(snap.StateHistory)),
		OrderHistory:    make(map[string]map[Power][]Order, len(snap.OrderHistory)),
		Messages:        make(map[string]map[int64]Message, len(snap.Messages)),
		Logs:            snap.Logs,
		Status:          StatusActive,
		lastCenterOwner: cloneOwnerMap(current.SupplyCenters),
	}
	if g.Logs == nil {
		g.Logs = make(map[string][]string)
	}

	for key, sj := range snap.StateHistory {
		hp, err := ParsePhase(key)
		if err != nil {
			return nil, &CorruptSnapshotError{Reason: "bad history phase " + key + ": " + err.Error()}
		}
		st, err := stateFromJSON(hp, sj)
		if err != nil {
			return nil, &CorruptSnapshotError{Reason: err.Error()}
		}
		g.StateHistory[key] = st
	}

	for key, byPower := range snap.OrderHistory {
		powers := make(map[Power][]Order, len(byPower))
		for powerName, raw := range byPower {
			power, ok := ParsePower(powerName)
			if !ok {
				return nil, &CorruptSnapshotError{Reason: "unknown power " + powerName}
			}
			orders := make([]Order, len(raw))
			for i, s := range raw {
				o, perr := ParseOrder(power, s)
				if perr != nil {
					o = invalidOrder(power, s, perr.Reason)
				}
				orders[i] = o
			}
			powers[power] = orders
		}
		g.OrderHistory[key] = powers
	}

	for key, byTS := range snap.Messages {
		bucket := make(map[int64]Message, len(byTS))
		for tsStr, mj := range byTS {
			var ts int64
			if _, err := fmt.Sscanf(tsStr, "%d", &ts); err != nil {
				return nil, &CorruptSnapshotError{Reason: "bad message timestamp " + tsStr}
			}
			sender, _ := ParsePower(mj.Sender)
			recipient, _ := ParsePower(mj.Recipient)
			bucket[ts] = Message{Sender: sender, Recipient: recipient, Body: mj.Body, TimeSent: ts}
		}
		g.Messages[key] = bucket
	}

	over, winner := IsGameOver(g.current)
	if over {
		g.Status = StatusFinished
		g.Winner = winner
	}

	g.GetAllPossibleOrders()
	return g, nil
}

func stateFromJSON(phase Phase, sj stateJSON) (*GameState, error) {
	gs := &GameState{
		Year:          phase.Year,
		Season:        phase.Season,
		Phase:         phase.Kind,
		SupplyCenters: make(map[string]Power),
		StagedOrders:  make(map[Power][]Order),
	}

	for powerName, units := range sj.Units {
		power, ok := ParsePower(powerName)
		if !ok {
			return nil, fmt.Errorf("unknown power %q in units", powerName)
		}
		for _, us := range units {
			u, err := decodeUnit(power, us)
			if err != nil {
				return nil, err
			}
			gs.Units = append(gs.Units, u)
		}
	}

	for powerName, centers := range sj.Centers {
		power, ok := ParsePower(powerName)
		if !ok {
			return nil, fmt.Errorf("unknown power %q in centers", powerName)
		}
		for _, c := range centers {
			province, _, ok := decodeLoc(c)
			if !ok {
				return nil, fmt.Errorf("bad center loc %q", c)
			}
			gs.SupplyCenters[province] = power
		}
	}

	for _, home := range allHomeCenterProvinces() {
		if _, ok := gs.SupplyCenters[home]; !ok {
			gs.SupplyCenters[home] = Neutral
		}
	}

	return gs, nil
}

func allHomeCenterProvinces() []string {
	var out []string
	for province := range initialSupplyCenters() {
		out = append(out, province)
	}
	return out
}
