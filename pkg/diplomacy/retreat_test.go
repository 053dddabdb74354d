package diplomacy

import "testing"

func TestRetreat_CannotRetreatToAttackerOrigin(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Year: 1901, Season: Spring, Phase: RetreatPhase,
		Units:         []Unit{{Army, Austria, "tri", NoCoast}},
		SupplyCenters: map[string]Power{},
		Dislodged:     []DislodgedUnit{{Unit: Unit{Army, Italy, "ven", NoCoast}, AttackerFrom: "tri"}},
	}
	order := Order{Kind: Retreat, UnitType: Army, Power: Italy, Location: "ven", Target: "tri", Valid: true}
	if err := ValidateRetreatOrder(order, gs, m, nil); err == nil {
		t.Error("expected error retreating into attacker's own origin")
	}
}

func TestRetreat_CannotRetreatIntoContestedProvince(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Year: 1901, Season: Spring, Phase: RetreatPhase,
		Units:         []Unit{},
		SupplyCenters: map[string]Power{},
		Dislodged:     []DislodgedUnit{{Unit: Unit{Army, Italy, "ven", NoCoast}, AttackerFrom: "tri"}},
	}
	order := Order{Kind: Retreat, UnitType: Army, Power: Italy, Location: "ven", Target: "tyr", Valid: true}
	if err := ValidateRetreatOrder(order, gs, m, []string{"tyr"}); err == nil {
		t.Error("expected error retreating into a contested province")
	}
}

func TestResolveRetreats_CollisionDisbandsBoth(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Year: 1901, Season: Spring, Phase: RetreatPhase,
		Units:         []Unit{},
		SupplyCenters: map[string]Power{},
		Dislodged: []DislodgedUnit{
			{Unit: Unit{Army, Italy, "ven", NoCoast}, AttackerFrom: "tri"},
			{Unit: Unit{Army, Austria, "tyr", NoCoast}, AttackerFrom: "mun"},
		},
	}
	orders := []Order{
		{Kind: Retreat, UnitType: Army, Power: Italy, Location: "ven", Target: "pie", Valid: true},
		{Kind: Retreat, UnitType: Army, Power: Austria, Location: "tyr", Target: "pie", Valid: true},
	}
	results := ResolveRetreats(orders, gs, m, nil)
	for _, r := range results {
		if r.Result != ResultBounced {
			t.Errorf("expected both retreats to bounce, got %v for %s", r.Result, r.Order.Location)
		}
	}
}

func TestResolveRetreats_UnorderedDislodgedUnitDisbands(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Year: 1901, Season: Spring, Phase: RetreatPhase,
		Units:         []Unit{},
		SupplyCenters: map[string]Power{},
		Dislodged:     []DislodgedUnit{{Unit: Unit{Army, Italy, "ven", NoCoast}, AttackerFrom: "tri"}},
	}
	results := ResolveRetreats(nil, gs, m, nil)
	if len(results) != 1 || results[0].Result != ResultSucceeded || results[0].Order.Kind != Disband {
		t.Errorf("expected an implicit disband for the unordered unit, got %+v", results)
	}
}
