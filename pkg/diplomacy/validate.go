package diplomacy

import "fmt"

// ValidateMovementOrder checks whether a movement-phase order is legal
// given gs and m. Returns nil if legal, else an error describing why.
func ValidateMovementOrder(order Order, gs *GameState, m *DiplomacyMap) error {
	unit, ok := gs.UnitAt(order.Location)
	if !ok {
		return &LookupError{Kind: "unit", Key: order.Location}
	}
	if unit.Power != order.Power {
		return fmt.Errorf("unit at %s belongs to %s, not %s", order.Location, unit.Power, order.Power)
	}
	if unit.Type != order.UnitType {
		return fmt.Errorf("unit at %s is %s, not %s", order.Location, unit.Type, order.UnitType)
	}

	switch order.Kind {
	case Hold:
		return nil
	case Move:
		return validateMove(order, gs, m)
	case SupportHold, SupportMove:
		return validateSupport(order, gs, m)
	case Convoy:
		return validateConvoy(order, gs, m)
	default:
		return fmt.Errorf("%s is not a movement-phase order kind", order.Kind)
	}
}

func validateMove(order Order, gs *GameState, m *DiplomacyMap) error {
	isFleet := order.UnitType == Fleet
	target := m.Provinces[order.Target]
	if target == nil {
		return &LookupError{Kind: "province", Key: order.Target}
	}

	if isFleet && target.Type == Land {
		return fmt.Errorf("fleet cannot move to inland province %s", order.Target)
	}
	if !isFleet && target.Type == Sea {
		return fmt.Errorf("army cannot move to sea province %s", order.Target)
	}

	if m.Adjacent(order.Location, order.Coast, order.Target, order.TargetCoast, isFleet) {
		if isFleet && m.HasCoasts(order.Target) {
			return validateFleetCoast(order, m)
		}
		return nil
	}

	if !isFleet && canBeConvoyed(order.Location, order.Target, gs, m) {
		return nil
	}

	return fmt.Errorf("cannot move from %s to %s", order.Location, order.Target)
}

func validateFleetCoast(order Order, m *DiplomacyMap) error {
	if order.TargetCoast == NoCoast {
		coasts := m.FleetCoastsTo(order.Location, order.Coast, order.Target)
		if len(coasts) == 0 {
			return fmt.Errorf("fleet cannot reach any coast of %s", order.Target)
		}
		if len(coasts) > 1 {
			return fmt.Errorf("must specify coast for %s", order.Target)
		}
		return nil
	}
	for _, c := range m.FleetCoastsTo(order.Location, order.Coast, order.Target) {
		if c == order.TargetCoast {
			return nil
		}
	}
	return fmt.Errorf("fleet cannot reach %s/%s from %s", order.Target, order.TargetCoast, order.Location)
}

func validateSupport(order Order, gs *GameState, m *DiplomacyMap) error {
	supported, ok := gs.UnitAt(order.AuxLoc)
	if !ok {
		return fmt.Errorf("no unit at %s to support", order.AuxLoc)
	}

	isFleet := order.UnitType == Fleet

	if order.Kind == SupportHold {
		if !m.Adjacent(order.Location, order.Coast, order.AuxLoc, NoCoast, isFleet) {
			return fmt.Errorf("cannot support hold at %s from %s", order.AuxLoc, order.Location)
		}
		return nil
	}

	if !m.Adjacent(order.Location, order.Coast, order.AuxTarget, NoCoast, isFleet) {
		return fmt.Errorf("cannot support move to %s from %s", order.AuxTarget, order.Location)
	}

	supportedIsFleet := supported.Type == Fleet
	if !m.Adjacent(order.AuxLoc, supported.Coast, order.AuxTarget, NoCoast, supportedIsFleet) {
		if supported.Type == Army && canBeConvoyed(order.AuxLoc, order.AuxTarget, gs, m) {
			return nil
		}
		return fmt.Errorf("supported unit at %s cannot reach %s", order.AuxLoc, order.AuxTarget)
	}

	return nil
}

func validateConvoy(order Order, gs *GameState, m *DiplomacyMap) error {
	if order.UnitType != Fleet {
		return fmt.Errorf("only fleets can convoy")
	}

	prov := m.Provinces[order.Location]
	if prov == nil || prov.Type != Sea {
		return fmt.Errorf("fleet must be in a sea province to convoy")
	}

	convoyed, ok := gs.UnitAt(order.AuxLoc)
	if !ok {
		return fmt.Errorf("no unit at %s to convoy", order.AuxLoc)
	}
	if convoyed.Type != Army {
		return fmt.Errorf("only armies can be convoyed")
	}

	return nil
}

// canBeConvoyed checks whether a convoy chain from src to dst exists
// using the fleets currently on the board.
func canBeConvoyed(src, dst string, gs *GameState, m *DiplomacyMap) bool {
	srcProv := m.Provinces[src]
	dstProv := m.Provinces[dst]
	if srcProv == nil || dstProv == nil {
		return false
	}
	if srcProv.Type == Sea || dstProv.Type == Sea {
		return false
	}

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
		seaProv := m.Provinces[adj.To]
		if seaProv != nil && seaProv.Type == Sea && fleetAt(adj.To) && !visited[adj.To] {
			visited[adj.To] = true
			queue = append(queue, adj.To)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, adj := range m.Adjacencies[current] {
			if adj.To == dst && adj.FleetOK {
				return true
			}
		}

		for _, adj := range m.Adjacencies[current] {
			if !adj.FleetOK {
				continue
			}
			seaProv := m.Provinces[adj.To]
			if seaProv != nil && seaProv.Type == Sea && !visited[adj.To] && fleetAt(adj.To) {
				visited[adj.To] = true
				queue = append(queue, adj.To)
			}
		}
	}

	return false
}

// ValidateAndDefaultMovementOrders takes the orders staged for a
// movement phase and returns a complete set covering every unit on the
// board. An order that fails semantic validation is not dropped: it is
// marked Valid=false (which the resolver then adjudicates as a Hold),
// preserving the original submission for history and replay per §4.1.
// Units with no staged order at all default to a fresh, valid Hold.
func ValidateAndDefaultMovementOrders(orders []Order, gs *GameState, m *DiplomacyMap) []Order {
	ordered := make(map[string]bool, len(orders))
	out := make([]Order, 0, len(gs.Units))

	for _, o := range orders {
		if !o.Valid {
			out = append(out, o)
			ordered[o.Location] = true
			continue
		}
		if err := ValidateMovementOrder(o, gs, m); err != nil {
			o.Valid = false
			o.InvalidMsg = err.Error()
		}
		out = append(out, o)
		ordered[o.Location] = true
	}

	for _, unit := range gs.Units {
		if ordered[unit.Province] {
			continue
		}
		out = append(out, Order{
			Kind:     Hold,
			UnitType: unit.Type,
			Power:    unit.Power,
			Location: unit.Province,
			Coast:    unit.Coast,
			Valid:    true,
			RawText:  unit.Type.String() + " " + unit.Province + " H",
		})
	}

	return out
}
