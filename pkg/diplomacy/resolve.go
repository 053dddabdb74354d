package diplomacy

// Resolution state constants for the Kruijswijk "guess and check"
// algorithm: every order is resolved by optimistically guessing it
// succeeds, resolving its dependents, and backing off to failure if that
// guess turns out inconsistent.
type resolutionState int

const (
	rsUnresolved resolutionState = iota
	rsGuessing
	rsResolved
)

// adjResult tracks the resolution of a single order in the dependency
// graph, indexed by province so dependents can be looked up in O(1).
type adjResult struct {
	order        Order
	state        resolutionState
	resolution   bool // true = succeeds, false = fails
	provIdx      int16
	targetIdx    int16
	auxLocIdx    int16
	auxTargetIdx int16
	flipped      bool // the guess had to be backed off once (cycle involved)
}

// ResolveOrders adjudicates a set of orders against gs for the movement
// phase. Orders with Valid=false are adjudicated as a Hold, per §4.1.
// When cfg requests it and the resolution required breaking a convoy
// paradox, a *ParadoxError is returned alongside the (still valid, per
// the Szykman rule) results.
func ResolveOrders(orders []Order, gs *GameState, m *DiplomacyMap, cfg *EngineConfig) ([]ResolvedOrder, []DislodgedUnit, *ParadoxError) {
	r := newResolver(orders, gs, m)
	results, dislodged := r.resolve()

	if cfg != nil && cfg.ExceptionOnConvoyParadox && len(r.paradoxLocs) > 0 {
		return results, dislodged, &ParadoxError{Locations: r.paradoxLocs}
	}
	return results, dislodged, nil
}

type resolver struct {
	lookup      [ProvinceCount]int16 // province index -> adjBuf offset (-1 = no order)
	adjBuf      []adjResult
	orderList   []Order
	gs          *GameState
	m           *DiplomacyMap
	paradoxLocs []string
}

func effectiveOrder(o Order) Order {
	if !o.Valid {
		o.Kind = Hold
	}
	return o
}

func (r *resolver) orderAt(provIdx int16) *adjResult {
	if provIdx < 0 {
		return nil
	}
	idx := r.lookup[provIdx]
	if idx < 0 {
		return nil
	}
	return &r.adjBuf[idx]
}

func (r *resolver) orderAtLoc(loc string) *adjResult {
	return r.orderAt(int16(r.m.ProvinceIndex(loc)))
}

func (r *resolver) initLookup() {
	for i := range r.lookup {
		r.lookup[i] = -1
	}
	for i, o := range r.orderList {
		eo := effectiveOrder(o)
		pIdx := int16(r.m.ProvinceIndex(eo.Location))
		tIdx := int16(-1)
		if eo.Target != "" {
			tIdx = int16(r.m.ProvinceIndex(eo.Target))
		}
		aLIdx := int16(-1)
		if eo.AuxLoc != "" {
			aLIdx = int16(r.m.ProvinceIndex(eo.AuxLoc))
		}
		aTIdx := int16(-1)
		if eo.AuxTarget != "" {
			aTIdx = int16(r.m.ProvinceIndex(eo.AuxTarget))
		}
		r.adjBuf[i] = adjResult{
			order:        eo,
			provIdx:      pIdx,
			targetIdx:    tIdx,
			auxLocIdx:    aLIdx,
			auxTargetIdx: aTIdx,
		}
		if pIdx >= 0 {
			r.lookup[pIdx] = int16(i)
		}
	}
}

func newResolver(orders []Order, gs *GameState, m *DiplomacyMap) *resolver {
	r := &resolver{
		adjBuf:    make([]adjResult, len(orders)),
		orderList: orders,
		gs:        gs,
		m:         m,
	}
	r.initLookup()
	return r
}

func (r *resolver) resolve() ([]ResolvedOrder, []DislodgedUnit) {
	for i := range r.adjBuf {
		r.adjudicate(r.adjBuf[i].provIdx)
	}
	return r.buildResults()
}

// adjudicate resolves the order at provIdx, guessing it succeeds, checking
// consistency, and backing off to the opposite guess exactly once if the
// first guess turns out inconsistent. This single backoff is what makes a
// convoy paradox resolve instead of infinite-loop (the Szykman rule falls
// out of it automatically: a paradoxical convoy ends up resolved to fail).
func (r *resolver) adjudicate(provIdx int16) bool {
	ar := r.orderAt(provIdx)
	if ar == nil {
		return false
	}

	switch ar.state {
	case rsResolved:
		return ar.resolution
	case rsGuessing:
		return ar.resolution
	}

	ar.state = rsGuessing
	ar.resolution = true

	result := r.resolveOrder(provIdx)

	if ar.state == rsGuessing && result != ar.resolution {
		ar.resolution = result
		ar.flipped = true
		if ar.order.Kind == Convoy {
			r.paradoxLocs = append(r.paradoxLocs, ar.order.Location)
		}
		result = r.resolveOrder(provIdx)
	}

	ar.state = rsResolved
	ar.resolution = result
	return result
}

func (r *resolver) resolveOrder(provIdx int16) bool {
	ar := r.orderAt(provIdx)
	switch ar.order.Kind {
	case Hold, Disband, Build, Waive, Retreat:
		return true
	case Move:
		return r.resolveMove(provIdx)
	case SupportHold, SupportMove:
		return r.resolveSupport(provIdx)
	case Convoy:
		return r.resolveConvoy(provIdx)
	default:
		return false
	}
}

// resolveMove determines if a move order succeeds.
func (r *resolver) resolveMove(provIdx int16) bool {
	ar := r.orderAt(provIdx)

	if r.needsConvoy(ar.order) && !r.hasConvoyPath(ar.order) {
		return false
	}

	attackStr := r.attackStrength(provIdx)
	holdStr := r.holdStrength(ar.targetIdx)

	if attackStr <= holdStr {
		return false
	}

	// Head-to-head battle: if the defender is also moving into our
	// province, our attack must also exceed its attack strength.
	defender := r.orderAt(ar.targetIdx)
	if defender != nil && defender.order.Kind == Move && defender.targetIdx == provIdx {
		defendAttack := r.attackStrength(ar.targetIdx)
		if attackStr <= defendAttack {
			return false
		}
	}

	// Attack must exceed every other mover's prevent strength at the
	// same target.
	for i := range r.adjBuf {
		other := &r.adjBuf[i]
		if other.provIdx == provIdx {
			continue
		}
		if other.order.Kind == Move && other.targetIdx == ar.targetIdx {
			preventStr := r.preventStrength(other.provIdx)
			if attackStr <= preventStr {
				return false
			}
		}
	}

	return true
}

// resolveSupport determines if support is successfully given (not cut).
func (r *resolver) resolveSupport(provIdx int16) bool {
	ar := r.orderAt(provIdx)

	for i := range r.adjBuf {
		other := &r.adjBuf[i]
		if other.order.Kind != Move {
			continue
		}
		if other.targetIdx != provIdx {
			continue
		}

		// Support cannot be cut by the very unit it supports an attack
		// against.
		if ar.order.Kind == SupportMove && ar.auxTargetIdx >= 0 && other.provIdx == ar.auxTargetIdx {
			continue
		}

		// Support cannot be cut by a unit of the same power.
		if other.order.Power == ar.order.Power {
			continue
		}

		// A convoyed attacker only cuts support if its convoy itself
		// succeeds.
		if r.needsConvoy(other.order) && !r.adjudicate(other.provIdx) {
			continue
		}

		return false
	}

	return true
}

// resolveConvoy determines if a convoy order succeeds: it fails if any
// successfully-resolved move attacks the convoying fleet's province.
func (r *resolver) resolveConvoy(provIdx int16) bool {
	for i := range r.adjBuf {
		other := &r.adjBuf[i]
		if other.order.Kind == Move && other.targetIdx == provIdx {
			if r.adjudicate(other.provIdx) {
				return false
			}
		}
	}
	return true
}

// attackStrength computes the attack strength of a move order: base 1,
// plus every uncut support targeting this exact move. It is zeroed when
// the target holds a same-power unit that has no move order, or whose
// move is into this mover's own province.
func (r *resolver) attackStrength(provIdx int16) int {
	ar := r.orderAt(provIdx)
	if ar.order.Kind != Move {
		return 0
	}

	strength := 1

	if occupier, ok := r.gs.UnitAt(ar.order.Target); ok && occupier.Power == ar.order.Power {
		occOrder := r.orderAt(ar.targetIdx)
		if occOrder == nil || occOrder.order.Kind != Move {
			return 0
		}
		if occOrder.targetIdx == provIdx {
			return 0
		}
	}

	for i := range r.adjBuf {
		other := &r.adjBuf[i]
		if other.order.Kind != SupportMove {
			continue
		}
		if other.auxLocIdx != provIdx || other.auxTargetIdx != ar.targetIdx {
			continue
		}
		if r.adjudicate(other.provIdx) {
			strength++
		}
	}

	return strength
}

// holdStrength computes the hold strength of a province: 0 if its unit
// successfully moves away, otherwise 1 plus every uncut support-hold
// order for it.
func (r *resolver) holdStrength(provIdx int16) int {
	ar := r.orderAt(provIdx)
	if ar == nil {
		return 0
	}

	if ar.order.Kind == Move {
		if r.adjudicate(provIdx) {
			return 0
		}
		return 1
	}

	strength := 1
	for i := range r.adjBuf {
		other := &r.adjBuf[i]
		if other.order.Kind != SupportHold {
			continue
		}
		if other.auxLocIdx != provIdx {
			continue
		}
		if r.adjudicate(other.provIdx) {
			strength++
		}
	}
	return strength
}

// preventStrength computes the prevent strength of a move order trying to
// enter a province another unit also attacks.
func (r *resolver) preventStrength(provIdx int16) int {
	ar := r.orderAt(provIdx)
	if ar.order.Kind != Move {
		return 0
	}

	defender := r.orderAt(ar.targetIdx)
	if defender != nil && defender.order.Kind == Move && defender.targetIdx == provIdx {
		if !r.adjudicate(provIdx) {
			return 0
		}
	}

	strength := 1
	for i := range r.adjBuf {
		other := &r.adjBuf[i]
		if other.order.Kind != SupportMove {
			continue
		}
		if other.auxLocIdx != provIdx || other.auxTargetIdx != ar.targetIdx {
			continue
		}
		if r.adjudicate(other.provIdx) {
			strength++
		}
	}
	return strength
}

func (r *resolver) needsConvoy(order Order) bool {
	if order.Kind != Move || order.UnitType != Army {
		return false
	}
	return !r.m.Adjacent(order.Location, order.Coast, order.Target, NoCoast, false)
}

// hasConvoyPath checks for a successful convoy chain between order's
// origin and target, breadth-first through CONVOY orders whose fleets sit
// in sea provinces and are chained by adjacency.
func (r *resolver) hasConvoyPath(order Order) bool {
	srcIdx := int16(r.m.ProvinceIndex(order.Location))
	tgtIdx := int16(r.m.ProvinceIndex(order.Target))

	visited := make(map[int16]bool)
	var queue []int16

	for i := range r.adjBuf {
		ar := &r.adjBuf[i]
		if ar.order.Kind != Convoy {
			continue
		}
		if ar.auxLocIdx != srcIdx || ar.auxTargetIdx != tgtIdx {
			continue
		}
		prov := r.m.Provinces[ar.order.Location]
		if prov == nil || prov.Type != Sea {
			continue
		}
		if r.m.Adjacent(order.Location, NoCoast, ar.order.Location, NoCoast, true) {
			if r.adjudicate(ar.provIdx) {
				visited[ar.provIdx] = true
				queue = append(queue, ar.provIdx)
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		currentAr := r.orderAt(current)
		if r.m.Adjacent(currentAr.order.Location, NoCoast, order.Target, NoCoast, true) {
			return true
		}

		for i := range r.adjBuf {
			ar := &r.adjBuf[i]
			if visited[ar.provIdx] {
				continue
			}
			if ar.order.Kind != Convoy {
				continue
			}
			if ar.auxLocIdx != srcIdx || ar.auxTargetIdx != tgtIdx {
				continue
			}
			prov := r.m.Provinces[ar.order.Location]
			if prov == nil || prov.Type != Sea {
				continue
			}
			if r.m.Adjacent(currentAr.order.Location, NoCoast, ar.order.Location, NoCoast, true) {
				if r.adjudicate(ar.provIdx) {
					visited[ar.provIdx] = true
					queue = append(queue, ar.provIdx)
				}
			}
		}
	}

	return false
}

// buildResults converts internal adjudication state to the external
// result format, deriving dislodgement from which provinces received a
// successful incoming move.
func (r *resolver) buildResults() ([]ResolvedOrder, []DislodgedUnit) {
	var results []ResolvedOrder
	var dislodged []DislodgedUnit

	successfulMoves := make(map[string]string)
	for i := range r.adjBuf {
		ar := &r.adjBuf[i]
		if ar.order.Kind == Move && ar.resolution {
			successfulMoves[ar.order.Target] = ar.order.Location
		}
	}

	for _, original := range r.orderList {
		o := effectiveOrder(original)
		ar := r.orderAtLoc(o.Location)
		if ar == nil {
			continue
		}

		result := ResultSucceeded
		if !original.Valid {
			result = ResultVoid
		}

		switch o.Kind {
		case Move:
			if !ar.resolution {
				result = ResultBounced
			}
		case SupportHold, SupportMove:
			if !ar.resolution {
				result = ResultCut
			}
		case Convoy:
			if !ar.resolution {
				result = ResultFailed
			}
		}

		if attacker, ok := successfulMoves[o.Location]; ok {
			if o.Kind != Move || !ar.resolution {
				result = ResultDislodged
				dislodged = append(dislodged, DislodgedUnit{
					Unit: Unit{
						Type:     o.UnitType,
						Power:    o.Power,
						Province: o.Location,
						Coast:    o.Coast,
					},
					AttackerFrom: attacker,
				})
			}
		}

		results = append(results, ResolvedOrder{Order: original, Result: result})
	}

	return results, dislodged
}

// applyUnitKey identifies a unit by power and province for resolution
// application.
type applyUnitKey struct {
	power    Power
	province string
}

type applyMoveEntry struct {
	target      string
	targetCoast Coast
	clearCoast  bool
}

// ApplyResolution updates gs in place from the results of ResolveOrders:
// units that moved successfully relocate (and pick up the coast they
// arrived at, or clear their coast if the destination has none), and
// dislodged units are removed from the board.
func ApplyResolution(gs *GameState, m *DiplomacyMap, results []ResolvedOrder, dislodged []DislodgedUnit) {
	dislodgedSet := make(map[applyUnitKey]bool, len(dislodged))
	for _, d := range dislodged {
		dislodgedSet[applyUnitKey{d.Unit.Power, d.Unit.Province}] = true
	}

	moves := make(map[applyUnitKey]applyMoveEntry)
	for _, ro := range results {
		if ro.Order.Kind == Move && ro.Result == ResultSucceeded {
			clearCoast := ro.Order.TargetCoast == NoCoast && !m.HasCoasts(ro.Order.Target)
			moves[applyUnitKey{ro.Order.Power, ro.Order.Location}] = applyMoveEntry{
				target:      ro.Order.Target,
				targetCoast: ro.Order.TargetCoast,
				clearCoast:  clearCoast,
			}
		}
	}

	for i := range gs.Units {
		key := applyUnitKey{gs.Units[i].Power, gs.Units[i].Province}
		if mu, ok := moves[key]; ok {
			gs.Units[i].Province = mu.target
			if mu.targetCoast != NoCoast {
				gs.Units[i].Coast = mu.targetCoast
			} else if mu.clearCoast {
				gs.Units[i].Coast = NoCoast
			}
		}
	}

	remaining := gs.Units[:0]
	for _, u := range gs.Units {
		if !dislodgedSet[applyUnitKey{u.Power, u.Province}] {
			remaining = append(remaining, u)
		}
	}
	gs.Units = remaining
	gs.Dislodged = dislodged

	var contested []string
	for target, ro := range resultsByTarget(results) {
		if ro == ResultBounced {
			contested = append(contested, target)
		}
	}
	gs.Contested = contested
}

func resultsByTarget(results []ResolvedOrder) map[string]OrderResult {
	out := make(map[string]OrderResult)
	for _, ro := range results {
		if ro.Order.Kind == Move {
			out[ro.Order.Target] = ro.Result
		}
	}
	return out
}
