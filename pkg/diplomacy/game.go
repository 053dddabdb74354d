package diplomacy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

// Message is a free-form note exchanged between two powers (or broadcast,
// when Recipient is PowerNone), timestamped in microseconds since the
// Unix epoch so messages within a phase sort and key uniquely.
type Message struct {
	Sender    Power
	Recipient Power
	Body      string
	TimeSent  int64
}

// Game is the top-level aggregate: the mutable current state, the full
// phase-keyed history of states/orders/messages/logs, staged orders
// awaiting the next process(), and configuration. It is not thread-safe;
// concurrent access to one Game requires external synchronization (§5).
type Game struct {
	GameID string
	Map    *DiplomacyMap
	Config *EngineConfig
	Clock  Clock

	Phase   Phase
	current *GameState

	StateHistory map[string]*GameState
	OrderHistory map[string]map[Power][]Order
	Messages     map[string]map[int64]Message
	Logs         map[string][]string

	Status GameStatus
	Winner Power
	Draw   bool

	possibleOrders map[Power]map[string][]Order

	stalemateYears    int
	lastCenterOwner   map[string]Power
	lastCivilDisorder map[Power]bool

	log zerolog.Logger
}

// NewGame creates a fresh game at the standard starting position. cfg and
// clock may be nil, in which case defaults are used (DefaultEngineConfig
// and SystemClock respectively).
func NewGame(gameID string, cfg *EngineConfig, clock Clock, logger zerolog.Logger) *Game {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	state := NewInitialState()
	phase := Phase{Year: state.Year, Season: state.Season, Kind: state.Phase}

	g := &Game{
		GameID:          gameID,
		Map:             StandardMap(),
		Config:          cfg,
		Clock:           clock,
		Phase:           phase,
		current:         state,
		StateHistory:    make(map[string]*GameState),
		OrderHistory:    make(map[string]map[Power][]Order),
		Messages:        make(map[string]map[int64]Message),
		Logs:            make(map[string][]string),
		Status:          StatusActive,
		lastCenterOwner: cloneOwnerMap(state.SupplyCenters),
		log:             logger,
	}
	return g
}

func cloneOwnerMap(src map[string]Power) map[string]Power {
	dst := make(map[string]Power, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// CurrentState returns the live, in-progress state. Callers must not
// mutate it directly; use SetOrders and Process.
func (g *Game) CurrentState() *GameState {
	return g.current
}

// SetOrders replaces the staged orders for power in the current phase.
// It may be called repeatedly before Process; the last call for a power
// wins. Order strings that fail to parse are retained as invalid orders
// (per §4.1/§7) rather than returned as a hard error; the returned slice
// of *ParseError reports which ones, in the same order as orderStrings.
func (g *Game) SetOrders(power Power, orderStrings []string) []*ParseError {
	orders := make([]Order, 0, len(orderStrings))
	var parseErrs []*ParseError

	for _, s := range orderStrings {
		if strings.EqualFold(strings.TrimSpace(s), "WAIVE") {
			orders = append(orders, ParseWaive(power))
			continue
		}
		o, perr := ParseOrder(power, s)
		if perr != nil {
			g.appendLog(fmt.Sprintf("parse error for %s: %s", power, perr.Error()))
			parseErrs = append(parseErrs, perr)
		}
		orders = append(orders, o)
	}

	g.current.StagedOrders[power] = orders
	return parseErrs
}

// AddMessage records a message in the current phase. When timeSent is 0
// the injected Clock supplies a microsecond timestamp; collisions within
// a phase are disambiguated by nudging forward one microsecond at a time
// so timestamps stay unique and ordering by append is preserved.
func (g *Game) AddMessage(sender, recipient Power, body string, timeSent int64) {
	if timeSent == 0 {
		timeSent = g.Clock.Now().UnixMicro()
	}

	phaseKey := g.Phase.Short()
	bucket, ok := g.Messages[phaseKey]
	if !ok {
		bucket = make(map[int64]Message)
		g.Messages[phaseKey] = bucket
	}
	for {
		if _, taken := bucket[timeSent]; !taken {
			break
		}
		timeSent++
	}
	bucket[timeSent] = Message{Sender: sender, Recipient: recipient, Body: body, TimeSent: timeSent}
}

// RollbackMessagesToTimestamp removes every message sent after t (in
// microseconds since epoch), across every phase in history.
func (g *Game) RollbackMessagesToTimestamp(t int64) {
	for _, bucket := range g.Messages {
		for ts := range bucket {
			if ts > t {
				delete(bucket, ts)
			}
		}
	}
}

func (g *Game) appendLog(msg string) {
	key := g.Phase.Short()
	g.Logs[key] = append(g.Logs[key], msg)
	g.log.Info().Str("phase", key).Str("gameId", g.GameID).Msg(msg)
}

// IsGameDone reports whether the game has ended. Process records the end
// (a solo win, a stalemate draw, elimination of all but one power with
// centers, or reaching MaxYear) in Status, Winner and Draw; this method
// reports only whether Status is StatusFinished.
func (g *Game) IsGameDone() bool {
	return g.Status == StatusFinished
}

// GetOrderableLocations returns, per power, the set of locations whose
// occupant (or, in ADJUSTMENT, whose potential build site) must submit
// an order this phase.
func (g *Game) GetOrderableLocations() map[Power][]string {
	out := make(map[Power][]string, len(AllPowers()))
	for _, power := range AllPowers() {
		for loc := range g.GetAllPossibleOrders()[power] {
			out[power] = append(out[power], loc)
		}
		sort.Strings(out[power])
	}
	return out
}

// GetAllPossibleOrders returns, per power and per orderable location, the
// full set of legal orders for the current phase. The result is memoized
// until the next Process call or ClearOldAllPossibleOrders.
func (g *Game) GetAllPossibleOrders() map[Power]map[string][]Order {
	if g.possibleOrders != nil {
		return g.possibleOrders
	}
	out := make(map[Power]map[string][]Order, len(AllPowers()))
	for _, power := range AllPowers() {
		out[power] = PossibleOrders(g.current, g.Map, power)
	}
	g.possibleOrders = out
	return out
}

// ClearOldAllPossibleOrders drops the memoized possible-orders table,
// forcing the next GetAllPossibleOrders call to recompute it.
func (g *Game) ClearOldAllPossibleOrders() {
	g.possibleOrders = nil
}

// Process adjudicates the current phase: it archives the current state
// and staged orders under the current phase key, runs the
// phase-appropriate solver, transitions to the next phase, and clears
// staged orders. It refuses to run on a finished game, and a convoy
// paradox (when configured to raise one) aborts the transition entirely,
// leaving the Game in its pre-transition state.
func (g *Game) Process() error {
	if g.IsGameDone() {
		return &IllegalStateError{Op: "process", Reason: "game is already finished"}
	}

	phaseKey := g.Phase.Short()
	g.StateHistory[phaseKey] = g.current.Clone()

	staged := make(map[Power][]Order, len(g.current.StagedOrders))
	for power, orders := range g.current.StagedOrders {
		staged[power] = append([]Order(nil), orders...)
	}
	g.OrderHistory[phaseKey] = staged

	var flat []Order
	for _, orders := range staged {
		flat = append(flat, orders...)
	}

	next := g.current.Clone()

	switch g.current.Phase {
	case Movement:
		complete := ValidateAndDefaultMovementOrders(flat, g.current, g.Map)
		results, dislodged, paradox := ResolveOrders(complete, g.current, g.Map, g.Config)
		if paradox != nil {
			delete(g.StateHistory, phaseKey)
			delete(g.OrderHistory, phaseKey)
			g.CrashDump(paradox)
			return paradox
		}
		ApplyResolution(next, g.Map, results, dislodged)
		if next.Season == Fall && len(next.Dislodged) == 0 {
			UpdateSupplyCenterOwnership(next)
		}

	case RetreatPhase:
		results := ResolveRetreats(flat, g.current, g.Map, g.current.Contested)
		ApplyRetreats(next, results, g.Map)
		if next.Season == Fall {
			UpdateSupplyCenterOwnership(next)
		}

	case Adjustment:
		g.lastCivilDisorder = DetectCivilDisorder(flat, g.current, g.Map)
		results := ResolveAdjustments(flat, g.current, g.Map)
		ApplyAdjustments(next, results)
		g.trackStalemate(next)

	default:
		return &IllegalStateError{Op: "process", Reason: "unknown phase kind"}
	}

	if g.current.Phase != Adjustment {
		g.lastCivilDisorder = nil
	}

	nextPhase := NextPhase(g.Phase, next)
	next.Year = nextPhase.Year
	next.Season = nextPhase.Season
	next.Phase = nextPhase.Kind
	next.StagedOrders = make(map[Power][]Order)

	g.current = next
	g.Phase = nextPhase
	g.ClearOldAllPossibleOrders()
	g.GetAllPossibleOrders()

	g.evaluateEndConditions()
	return nil
}

func (g *Game) trackStalemate(next *GameState) {
	changed := false
	for prov, owner := range next.SupplyCenters {
		if g.lastCenterOwner[prov] != owner {
			changed = true
			break
		}
	}
	if changed {
		g.stalemateYears = 0
	} else {
		g.stalemateYears++
	}
	g.lastCenterOwner = cloneOwnerMap(next.SupplyCenters)
}

func (g *Game) evaluateEndConditions() {
	over, winner := IsGameOver(g.current)
	if over {
		g.Status = StatusFinished
		g.Winner = winner
		return
	}

	if g.Config.DrawOnStalemateYears > 0 && g.stalemateYears >= g.Config.DrawOnStalemateYears {
		g.Status = StatusFinished
		g.Draw = true
		return
	}

	alive := 0
	for _, power := range AllPowers() {
		if g.current.SupplyCenterCount(power) > 0 {
			alive++
		}
	}
	if alive <= 1 {
		g.Status = StatusFinished
		for _, power := range AllPowers() {
			if g.current.SupplyCenterCount(power) > 0 {
				g.Winner = power
			}
		}
	}
}

// RolledBackToPhaseStart returns a copy of the game whose history is
// truncated so that phase p's staged orders are empty and its state is
// exactly as it was entered (the state recorded just before p's
// Process() ran). game_id is preserved.
func (g *Game) RolledBackToPhaseStart(p Phase) (*Game, error) {
	key := p.Short()
	state, ok := g.StateHistory[key]
	if !ok {
		return nil, &IllegalStateError{Op: "rollback", Reason: "phase " + key + " not in history"}
	}

	clone := g.shallowCloneForRollback()
	clone.current = state.Clone()
	clone.current.StagedOrders = make(map[Power][]Order)
	clone.Phase = p
	clone.Status = StatusActive
	clone.Winner = PowerNone
	clone.Draw = false
	clone.truncateHistoryAt(key)
	clone.ClearOldAllPossibleOrders()
	return clone, nil
}

// RolledBackToPhaseEnd returns a copy of the game truncated to just after
// phase p was resolved: p's archived state and orders are preserved, but
// any phase after it is dropped.
func (g *Game) RolledBackToPhaseEnd(p Phase) (*Game, error) {
	key := p.Short()
	if _, ok := g.StateHistory[key]; !ok {
		return nil, &IllegalStateError{Op: "rollback", Reason: "phase " + key + " not in history"}
	}

	clone := g.shallowCloneForRollback()
	next, nextState := g.Phase, g.current
	order := g.phaseOrder()
	for i, k := range order {
		if k == key && i+1 < len(order) {
			if ph, err := ParsePhase(order[i+1]); err == nil {
				next, nextState = ph, g.StateHistory[order[i+1]]
			}
		}
	}
	clone.current = nextState.Clone()
	clone.Phase = next
	clone.Status = StatusActive
	clone.Winner = PowerNone
	clone.Draw = false
	clone.truncateHistoryAfter(key)
	clone.ClearOldAllPossibleOrders()
	return clone, nil
}

func (g *Game) shallowCloneForRollback() *Game {
	clone := &Game{
		GameID:       g.GameID,
		Map:          g.Map,
		Config:       g.Config,
		Clock:        g.Clock,
		StateHistory: make(map[string]*GameState, len(g.StateHistory)),
		OrderHistory: make(map[string]map[Power][]Order, len(g.OrderHistory)),
		Messages:     make(map[string]map[int64]Message, len(g.Messages)),
		Logs:         make(map[string][]string, len(g.Logs)),
		log:          g.log,
	}
	for k, v := range g.StateHistory {
		clone.StateHistory[k] = v.Clone()
	}
	for k, powers := range g.OrderHistory {
		cp := make(map[Power][]Order, len(powers))
		for power, orders := range powers {
			cp[power] = append([]Order(nil), orders...)
		}
		clone.OrderHistory[k] = cp
	}
	for k, bucket := range g.Messages {
		cp := make(map[int64]Message, len(bucket))
		for ts, m := range bucket {
			cp[ts] = m
		}
		clone.Messages[k] = cp
	}
	for k, lines := range g.Logs {
		clone.Logs[k] = append([]string(nil), lines...)
	}
	return clone
}

// phaseOrder returns every phase key in state-history insertion order,
// i.e. chronological order, since state_history keys strictly increase
// in phase order (§3 invariant 4).
func (g *Game) phaseOrder() []string {
	type keyed struct {
		key string
		ph  Phase
	}
	var keys []keyed
	for k := range g.StateHistory {
		ph, err := ParsePhase(k)
		if err != nil {
			continue
		}
		keys = append(keys, keyed{k, ph})
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i].ph, keys[j].ph
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Kind < b.Kind
	})
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.key
	}
	return out
}

func (g *Game) truncateHistoryAt(key string) {
	g.truncateHistory(key, false)
}

func (g *Game) truncateHistoryAfter(key string) {
	g.truncateHistory(key, true)
}

func (g *Game) truncateHistory(key string, keepKey bool) {
	order := g.phaseOrder()
	idx := -1
	for i, k := range order {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	cut := idx
	if keepKey {
		cut = idx + 1
	}
	for _, k := range order[cut:] {
		delete(g.StateHistory, k)
		delete(g.OrderHistory, k)
		delete(g.Logs, k)
		delete(g.Messages, k)
	}
}

// ComputeBoardHash returns a stable 64-bit hash of the current state:
// phase, the sorted list of (loc, unit type, owner), and the sorted list
// of (supply center, owner). It is independent of unit insertion order.
func (g *Game) ComputeBoardHash() uint64 {
	return BoardHash(g.current, g.Map)
}

// BoardHash computes the permutation-invariant board hash for gs.
func BoardHash(gs *GameState, m *DiplomacyMap) uint64 {
	parts := make([]string, 0, len(gs.Units)+len(gs.SupplyCenters))
	for _, u := range gs.Units {
		locIdx := m.LocIndex(u.Province, u.Coast)
		parts = append(parts, fmt.Sprintf("U:%04d:%d:%d", locIdx, u.Type, u.Power))
	}
	for prov, owner := range gs.SupplyCenters {
		scIdx := m.ProvinceIndex(prov)
		parts = append(parts, fmt.Sprintf("S:%04d:%d", scIdx, owner))
	}
	sort.Strings(parts)

	header := fmt.Sprintf("P:%d:%d:%d|", gs.Year, gs.Season, gs.Phase)
	return xxhash.Sum64String(header + strings.Join(parts, "|"))
}

// GetSquareScores returns a length-7 vector, in Power-enum order
// (Austria..Turkey), of each power's share of a square-scoring formula:
// supply_centers^2 / sum(supply_centers^2) over surviving powers. It
// sums to 1.0 whenever the game is not done, and is the unit vector on
// the winner for a solo win.
func (g *Game) GetSquareScores() [7]float64 {
	var scores [7]float64

	if g.Status == StatusFinished && !g.Draw && g.Winner != PowerNone {
		scores[g.Winner-1] = 1.0
		return scores
	}

	powers := AllPowers()
	squares := make([]float64, len(powers))
	var total float64
	for i, power := range powers {
		sc := float64(g.current.SupplyCenterCount(power))
		squares[i] = sc * sc
		total += squares[i]
	}

	if total == 0 {
		alive := 0
		for _, power := range powers {
			if g.current.PowerIsAlive(power) {
				alive++
			}
		}
		if alive == 0 {
			return scores
		}
		for _, power := range powers {
			if g.current.PowerIsAlive(power) {
				scores[power-1] = 1.0 / float64(alive)
			}
		}
		return scores
	}

	for i, power := range powers {
		scores[power-1] = squares[i] / total
	}
	return scores
}

// CrashDump serializes the game to a structured log line before a fatal
// error is re-raised, so the last known-good state is recoverable from
// logs even though the process itself doesn't persist it.
func (g *Game) CrashDump(cause error) {
	ev := g.log.Error().
		Str("gameId", g.GameID).
		Str("phase", g.Phase.Short()).
		Uint64("boardHash", g.ComputeBoardHash()).
		Err(cause)
	if data, err := g.ToJSON(); err == nil {
		ev = ev.RawJSON("snapshot", data)
	}
	ev.Msg("crash dump")
}
