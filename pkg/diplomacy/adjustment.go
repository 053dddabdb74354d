package diplomacy

import "sort"

// ValidateAdjustmentOrder checks whether a build/disband/waive order is
// legal against gs.
func ValidateAdjustmentOrder(order Order, gs *GameState, m *DiplomacyMap) error {
	switch order.Kind {
	case Build:
		return validateBuild(order, gs, m)
	case Disband:
		return validateAdjustmentDisband(order, gs)
	case Waive:
		return nil
	default:
		return &LookupError{Kind: "adjustment order kind", Key: order.Kind.String()}
	}
}

func validateBuild(order Order, gs *GameState, m *DiplomacyMap) error {
	if gs.SupplyCenterCount(order.Power) <= gs.UnitCount(order.Power) {
		return &IllegalStateError{Op: "build", Reason: "no builds available"}
	}

	prov := m.Provinces[order.Location]
	if prov == nil {
		return &LookupError{Kind: "province", Key: order.Location}
	}
	if !prov.IsSupplyCenter {
		return &IllegalStateError{Op: "build", Reason: "not a supply center"}
	}
	if prov.HomePower != order.Power {
		return &IllegalStateError{Op: "build", Reason: "not a home supply center"}
	}
	if gs.SupplyCenters[order.Location] != order.Power {
		return &IllegalStateError{Op: "build", Reason: "supply center not currently owned"}
	}
	if _, occupied := gs.UnitAt(order.Location); occupied {
		return &IllegalStateError{Op: "build", Reason: "province is occupied"}
	}
	if order.UnitType == Fleet && prov.Type == Land {
		return &IllegalStateError{Op: "build", Reason: "cannot build fleet in inland province"}
	}
	if order.UnitType == Fleet && len(prov.Coasts) > 0 && order.Coast == NoCoast {
		return &IllegalStateError{Op: "build", Reason: "must specify coast for fleet build"}
	}

	return nil
}

func validateAdjustmentDisband(order Order, gs *GameState) error {
	if gs.UnitCount(order.Power) <= gs.SupplyCenterCount(order.Power) {
		return &IllegalStateError{Op: "disband", Reason: "no disbands required"}
	}
	unit, ok := gs.UnitAt(order.Location)
	if !ok {
		return &LookupError{Kind: "unit", Key: order.Location}
	}
	if unit.Power != order.Power {
		return &IllegalStateError{Op: "disband", Reason: "unit belongs to another power"}
	}
	return nil
}

// ResolveAdjustments adjudicates the winter adjustment phase for every
// power: builds and waives up to each power's positive unit/SC delta,
// disbands up to a negative delta, and falls back to civil disorder
// (auto-disband by precomputed distance from home) for any shortfall a
// power didn't order disbands for.
func ResolveAdjustments(orders []Order, gs *GameState, m *DiplomacyMap) []ResolvedOrder {
	var results []ResolvedOrder

	byPower := make(map[Power][]Order, len(AllPowers()))
	for _, o := range orders {
		byPower[o.Power] = append(byPower[o.Power], o)
	}

	for _, power := range AllPowers() {
		diff := gs.SupplyCenterCount(power) - gs.UnitCount(power)
		submitted := byPower[power]

		switch {
		case diff > 0:
			results = append(results, resolveBuilds(power, diff, submitted, gs, m)...)
		case diff < 0:
			results = append(results, resolveDisbands(power, -diff, submitted, gs, m)...)
		}
	}

	return results
}

func resolveBuilds(power Power, allowed int, submitted []Order, gs *GameState, m *DiplomacyMap) []ResolvedOrder {
	var results []ResolvedOrder
	built := 0
	builtAt := make(map[string]bool, allowed)
	for _, o := range submitted {
		if o.Kind != Build && o.Kind != Waive {
			continue
		}
		if built >= allowed {
			results = append(results, ResolvedOrder{Order: o, Result: ResultFailed})
			continue
		}
		if o.Kind == Waive {
			results = append(results, ResolvedOrder{Order: o, Result: ResultSucceeded})
			built++
			continue
		}
		if builtAt[o.Location] {
			results = append(results, ResolvedOrder{Order: o, Result: ResultVoid})
			continue
		}
		if err := ValidateAdjustmentOrder(o, gs, m); err != nil {
			results = append(results, ResolvedOrder{Order: o, Result: ResultVoid})
			continue
		}
		results = append(results, ResolvedOrder{Order: o, Result: ResultSucceeded})
		builtAt[o.Location] = true
		built++
	}
	return results
}

func resolveDisbands(power Power, needed int, submitted []Order, gs *GameState, m *DiplomacyMap) []ResolvedOrder {
	var results []ResolvedOrder
	disbanded := 0
	disbandedAt := make(map[string]bool, needed)

	for _, o := range submitted {
		if o.Kind != Disband {
			continue
		}
		if err := ValidateAdjustmentOrder(o, gs, m); err != nil {
			results = append(results, ResolvedOrder{Order: o, Result: ResultVoid})
			continue
		}
		if disbanded >= needed {
			results = append(results, ResolvedOrder{Order: o, Result: ResultFailed})
			continue
		}
		results = append(results, ResolvedOrder{Order: o, Result: ResultSucceeded})
		disbandedAt[o.Location] = true
		disbanded++
	}

	if disbanded < needed {
		results = append(results, civilDisorder(power, needed-disbanded, disbandedAt, gs, m)...)
	}

	return results
}

// DetectCivilDisorder reports, per power, whether resolving orders against
// gs would require civil-disorder auto-disbanding: the power has a
// negative unit/SC delta and submitted fewer valid DISBAND orders than
// that deficit.
func DetectCivilDisorder(orders []Order, gs *GameState, m *DiplomacyMap) map[Power]bool {
	byPower := make(map[Power][]Order, len(AllPowers()))
	for _, o := range orders {
		byPower[o.Power] = append(byPower[o.Power], o)
	}

	out := make(map[Power]bool, len(AllPowers()))
	for _, power := range AllPowers() {
		diff := gs.SupplyCenterCount(power) - gs.UnitCount(power)
		if diff >= 0 {
			continue
		}
		needed := -diff
		valid := 0
		for _, o := range byPower[power] {
			if o.Kind == Disband && ValidateAdjustmentOrder(o, gs, m) == nil {
				valid++
			}
		}
		out[power] = valid < needed
	}
	return out
}

// civilDisorder auto-disbands units a power failed to order disbands for,
// breaking ties per the fixed order: farthest from home first, fleets
// before armies at equal distance, and the alphabetically-greatest
// location last among any remaining tie. A unit whose table distance is
// -1 is never selected.
func civilDisorder(power Power, count int, alreadyDisbanded map[string]bool, gs *GameState, m *DiplomacyMap) []ResolvedOrder {
	var candidates []Unit
	for _, u := range gs.UnitsOf(power) {
		if !alreadyDisbanded[u.Province] && civilDisorderDistance(power, u.Type, u.Province) >= 0 {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		da := civilDisorderDistance(power, a.Type, a.Province)
		db := civilDisorderDistance(power, b.Type, b.Province)
		if da != db {
			return da > db
		}
		if a.Type != b.Type {
			return a.Type == Fleet
		}
		ia := m.LocIndex(a.Province, a.Coast)
		ib := m.LocIndex(b.Province, b.Coast)
		return ia > ib
	})

	if count > len(candidates) {
		count = len(candidates)
	}

	results := make([]ResolvedOrder, 0, count)
	for _, u := range candidates[:count] {
		results = append(results, ResolvedOrder{
			Order: Order{
				Kind:     Disband,
				Power:    power,
				UnitType: u.Type,
				Location: u.Province,
				Coast:    u.Coast,
			},
			Result: ResultSucceeded,
		})
	}
	return results
}

// ApplyAdjustments updates gs from the results of ResolveAdjustments.
func ApplyAdjustments(gs *GameState, results []ResolvedOrder) {
	for _, r := range results {
		if r.Result != ResultSucceeded {
			continue
		}
		switch r.Order.Kind {
		case Build:
			gs.Units = append(gs.Units, Unit{
				Type:     r.Order.UnitType,
				Power:    r.Order.Power,
				Province: r.Order.Location,
				Coast:    r.Order.Coast,
			})
		case Disband:
			for i := range gs.Units {
				if gs.Units[i].Province == r.Order.Location && gs.Units[i].Power == r.Order.Power {
					gs.Units = append(gs.Units[:i], gs.Units[i+1:]...)
					break
				}
			}
		}
	}
}
