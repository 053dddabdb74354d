package diplomacy

// ValidateRetreatOrder checks whether a retreat-phase order is legal
// against gs. contested lists provinces that were fought to a standoff in
// the movement phase just resolved: a dislodged unit may not retreat into
// one of them, any more than it may retreat to the attacker's own origin.
func ValidateRetreatOrder(order Order, gs *GameState, m *DiplomacyMap, contested []string) error {
	if order.Kind == Disband {
		return nil
	}
	if order.Kind != Retreat {
		return &LookupError{Kind: "retreat order kind", Key: order.Kind.String()}
	}

	var dislodged *DislodgedUnit
	for i := range gs.Dislodged {
		if gs.Dislodged[i].Unit.Province == order.Location && gs.Dislodged[i].Unit.Power == order.Power {
			dislodged = &gs.Dislodged[i]
			break
		}
	}
	if dislodged == nil {
		return &LookupError{Kind: "dislodged unit", Key: order.Location}
	}

	if order.Target == dislodged.AttackerFrom {
		return &IllegalStateError{Op: "retreat", Reason: "cannot retreat to the attacker's own origin"}
	}

	for _, c := range contested {
		if c == order.Target {
			return &IllegalStateError{Op: "retreat", Reason: "cannot retreat into a province contested during movement"}
		}
	}

	isFleet := order.UnitType == Fleet
	if !m.Adjacent(order.Location, order.Coast, order.Target, order.TargetCoast, isFleet) {
		return &IllegalStateError{Op: "retreat", Reason: "target not adjacent"}
	}

	if _, occupied := gs.UnitAt(order.Target); occupied {
		return &IllegalStateError{Op: "retreat", Reason: "target is occupied"}
	}

	return nil
}

// ResolveRetreats adjudicates the retreat phase: unordered dislodged
// units are disbanded, invalid retreat orders are disbanded, and two or
// more units retreating to the same province all bounce (disband)
// instead of either one succeeding.
func ResolveRetreats(orders []Order, gs *GameState, m *DiplomacyMap, contested []string) []ResolvedOrder {
	var results []ResolvedOrder

	ordered := make(map[string]bool, len(orders))
	for _, o := range orders {
		ordered[o.Location] = true
	}

	for _, d := range gs.Dislodged {
		if !ordered[d.Unit.Province] {
			results = append(results, ResolvedOrder{
				Order: Order{
					Kind:     Disband,
					UnitType: d.Unit.Type,
					Power:    d.Unit.Power,
					Location: d.Unit.Province,
					Coast:    d.Unit.Coast,
				},
				Result: ResultSucceeded,
			})
		}
	}

	targetCounts := make(map[string]int, len(orders))
	for _, o := range orders {
		if o.Kind == Retreat {
			targetCounts[o.Target]++
		}
	}

	for _, o := range orders {
		if o.Kind == Disband {
			results = append(results, ResolvedOrder{Order: o, Result: ResultSucceeded})
			continue
		}

		if err := ValidateRetreatOrder(o, gs, m, contested); err != nil {
			results = append(results, ResolvedOrder{Order: o, Result: ResultVoid})
			continue
		}

		if targetCounts[o.Target] > 1 {
			results = append(results, ResolvedOrder{Order: o, Result: ResultBounced})
		} else {
			results = append(results, ResolvedOrder{Order: o, Result: ResultSucceeded})
		}
	}

	return results
}

// ApplyRetreats updates gs from the results of ResolveRetreats: units
// that retreated successfully are placed at their destination, and the
// dislodged list is cleared since every dislodged unit has now either
// retreated or disbanded.
func ApplyRetreats(gs *GameState, results []ResolvedOrder, m *DiplomacyMap) {
	for _, r := range results {
		if r.Order.Kind == Retreat && r.Result == ResultSucceeded {
			coast := r.Order.TargetCoast
			if coast == NoCoast && m.HasCoasts(r.Order.Target) {
				if coasts := m.FleetCoastsTo(r.Order.Location, r.Order.Coast, r.Order.Target); len(coasts) == 1 {
					coast = coasts[0]
				}
			}
			gs.Units = append(gs.Units, Unit{
				Type:     r.Order.UnitType,
				Power:    r.Order.Power,
				Province: r.Order.Target,
				Coast:    coast,
			})
		}
	}

	gs.Dislodged = nil
	gs.Contested = nil
}
