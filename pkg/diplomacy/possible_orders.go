package diplomacy

// PossibleOrders enumerates every legal order for power's units in gs's
// current phase, keyed by the ordering unit's province. It is the
// reverse of validate.go's adjacency predicates: instead of checking one
// proposed order, it walks the map looking for everything that would
// pass validation.
func PossibleOrders(gs *GameState, m *DiplomacyMap, power Power) map[string][]Order {
	switch gs.Phase {
	case Movement:
		return possibleMovementOrders(gs, m, power)
	case RetreatPhase:
		return possibleRetreatOrders(gs, m, power)
	case Adjustment:
		return possibleAdjustmentOrders(gs, m, power)
	default:
		return nil
	}
}

func possibleMovementOrders(gs *GameState, m *DiplomacyMap, power Power) map[string][]Order {
	out := make(map[string][]Order)
	for _, u := range gs.UnitsOf(power) {
		var orders []Order
		orders = append(orders, Order{Kind: Hold, UnitType: u.Type, Power: power, Location: u.Province, Coast: u.Coast, Valid: true})
		orders = append(orders, possibleMoves(u, gs, m)...)
		orders = append(orders, possibleSupports(u, gs, m)...)
		if u.Type == Fleet {
			orders = append(orders, possibleConvoys(u, gs, m)...)
		}
		out[u.Province] = orders
	}
	return out
}

func possibleMoves(u Unit, gs *GameState, m *DiplomacyMap) []Order {
	isFleet := u.Type == Fleet
	var orders []Order

	for _, dst := range m.ProvincesAdjacentTo(u.Province, u.Coast, isFleet) {
		if isFleet && m.HasCoasts(dst) {
			for _, c := range m.FleetCoastsTo(u.Province, u.Coast, dst) {
				orders = append(orders, Order{Kind: Move, UnitType: u.Type, Power: u.Power, Location: u.Province, Coast: u.Coast, Target: dst, TargetCoast: c, Valid: true})
			}
			continue
		}
		orders = append(orders, Order{Kind: Move, UnitType: u.Type, Power: u.Power, Location: u.Province, Coast: u.Coast, Target: dst, Valid: true})
	}

	if !isFleet {
		for _, p := range m.Provinces {
			if p.Type == Sea || p.ID == u.Province {
				continue
			}
			if m.Adjacent(u.Province, u.Coast, p.ID, NoCoast, false) {
				continue // already covered by the direct-adjacency loop above
			}
			if canBeConvoyed(u.Province, p.ID, gs, m) {
				orders = append(orders, Order{Kind: Move, UnitType: u.Type, Power: u.Power, Location: u.Province, Coast: u.Coast, Target: p.ID, ViaConvoy: true, Valid: true})
			}
		}
	}

	return orders
}

func possibleSupports(u Unit, gs *GameState, m *DiplomacyMap) []Order {
	isFleet := u.Type == Fleet
	var orders []Order

	for _, other := range gs.Units {
		if other.Province == u.Province {
			continue
		}
		if !m.Adjacent(u.Province, u.Coast, other.Province, NoCoast, isFleet) {
			continue
		}
		orders = append(orders, Order{
			Kind: SupportHold, UnitType: u.Type, Power: u.Power, Location: u.Province, Coast: u.Coast,
			AuxUnitType: other.Type, AuxLoc: other.Province, Valid: true,
		})

		for _, dst := range m.ProvincesAdjacentTo(other.Province, other.Coast, other.Type == Fleet) {
			if !m.Adjacent(u.Province, u.Coast, dst, NoCoast, isFleet) {
				continue
			}
			orders = append(orders, Order{
				Kind: SupportMove, UnitType: u.Type, Power: u.Power, Location: u.Province, Coast: u.Coast,
				AuxUnitType: other.Type, AuxLoc: other.Province, AuxTarget: dst, Valid: true,
			})
		}
	}

	return orders
}

func possibleConvoys(u Unit, gs *GameState, m *DiplomacyMap) []Order {
	prov := m.Provinces[u.Province]
	if prov == nil || prov.Type != Sea {
		return nil
	}

	var orders []Order
	for _, army := range gs.Units {
		if army.Type != Army {
			continue
		}
		component := convoySeaComponent(army.Province, gs, m)
		if !component[u.Province] {
			continue
		}
		for _, p := range m.Provinces {
			if p.Type == Sea || p.ID == army.Province {
				continue
			}
			if !convoyComponentReaches(component, p.ID, m) {
				continue
			}
			orders = append(orders, Order{
				Kind: Convoy, UnitType: Fleet, Power: u.Power, Location: u.Province, Coast: u.Coast,
				AuxUnitType: Army, AuxLoc: army.Province, AuxTarget: p.ID, Valid: true,
			})
		}
	}
	return orders
}

// convoySeaComponent returns every sea province holding a fleet that is
// fleet-adjacency-connected to a sea province adjacent to src, i.e. every
// sea province that could take part in convoying an army out of src.
func convoySeaComponent(src string, gs *GameState, m *DiplomacyMap) map[string]bool {
	visited := make(map[string]bool)
	var queue []string

	fleetAt := func(province string) bool {
		u, ok := gs.UnitAt(province)
		return ok && u.Type == Fleet
	}

	for _, adj := range m.Adjacencies[src] {
		if !adj.FleetOK {
			continue
		}
		sp := m.Provinces[adj.To]
		if sp != nil && sp.Type == Sea && fleetAt(adj.To) && !visited[adj.To] {
			visited[adj.To] = true
			queue = append(queue, adj.To)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, adj := range m.Adjacencies[cur] {
			if !adj.FleetOK {
				continue
			}
			sp := m.Provinces[adj.To]
			if sp != nil && sp.Type == Sea && !visited[adj.To] && fleetAt(adj.To) {
				visited[adj.To] = true
				queue = append(queue, adj.To)
			}
		}
	}

	return visited
}

func convoyComponentReaches(component map[string]bool, dst string, m *DiplomacyMap) bool {
	for sea := range component {
		for _, adj := range m.Adjacencies[sea] {
			if adj.To == dst && adj.FleetOK {
				return true
			}
		}
	}
	return false
}

func possibleRetreatOrders(gs *GameState, m *DiplomacyMap, power Power) map[string][]Order {
	out := make(map[string][]Order)
	for _, d := range gs.Dislodged {
		if d.Unit.Power != power {
			continue
		}
		u := d.Unit
		orders := []Order{{Kind: Disband, UnitType: u.Type, Power: power, Location: u.Province, Coast: u.Coast, Valid: true}}

		isFleet := u.Type == Fleet
		for _, dst := range m.ProvincesAdjacentTo(u.Province, u.Coast, isFleet) {
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
			if isFleet && m.HasCoasts(dst) {
				for _, c := range m.FleetCoastsTo(u.Province, u.Coast, dst) {
					orders = append(orders, Order{Kind: Retreat, UnitType: u.Type, Power: power, Location: u.Province, Coast: u.Coast, Target: dst, TargetCoast: c, Valid: true})
				}
				continue
			}
			orders = append(orders, Order{Kind: Retreat, UnitType: u.Type, Power: power, Location: u.Province, Coast: u.Coast, Target: dst, Valid: true})
		}

		out[u.Province] = orders
	}
	return out
}

func possibleAdjustmentOrders(gs *GameState, m *DiplomacyMap, power Power) map[string][]Order {
	out := make(map[string][]Order)
	diff := gs.SupplyCenterCount(power) - gs.UnitCount(power)

	if diff > 0 {
		for _, home := range HomeCenters(power) {
			prov := m.Provinces[home]
			if prov == nil || gs.SupplyCenters[home] != power {
				continue
			}
			if _, occupied := gs.UnitAt(home); occupied {
				continue
			}
			var orders []Order
			if prov.Type != Land {
				if len(prov.Coasts) > 0 {
					for _, c := range prov.Coasts {
						orders = append(orders, Order{Kind: Build, UnitType: Fleet, Power: power, Location: home, Coast: c, Valid: true})
					}
				} else {
					orders = append(orders, Order{Kind: Build, UnitType: Fleet, Power: power, Location: home, Valid: true})
				}
			}
			if prov.Type != Sea {
				orders = append(orders, Order{Kind: Build, UnitType: Army, Power: power, Location: home, Valid: true})
			}
			orders = append(orders, Order{Kind: Waive, Power: power, Valid: true})
			out[home] = orders
		}
	} else if diff < 0 {
		for _, u := range gs.UnitsOf(power) {
			out[u.Province] = []Order{{Kind: Disband, UnitType: u.Type, Power: power, Location: u.Province, Coast: u.Coast, Valid: true}}
		}
	}

	return out
}
