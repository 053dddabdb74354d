package diplomacy

import "testing"

func TestValidateBuild_RejectsOccupiedHomeCenter(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Units:         []Unit{{Army, France, "par", NoCoast}},
		SupplyCenters: map[string]Power{"par": France, "mar": France},
	}
	order := Order{Kind: Build, UnitType: Army, Power: France, Location: "par", Valid: true}
	if err := ValidateAdjustmentOrder(order, gs, m); err == nil {
		t.Error("expected error building at an occupied home center")
	}
}

func TestValidateBuild_RejectsFleetInInlandProvince(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Units:         []Unit{},
		SupplyCenters: map[string]Power{"par": France, "mar": France, "bre": France},
	}
	order := Order{Kind: Build, UnitType: Fleet, Power: France, Location: "par", Valid: true}
	if err := ValidateAdjustmentOrder(order, gs, m); err == nil {
		t.Error("expected error building a fleet at an inland province")
	}
}

func TestResolveAdjustments_BuildsUpToDelta(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Units:         []Unit{{Army, France, "mar", NoCoast}},
		SupplyCenters: map[string]Power{"par": France, "mar": France, "bre": France},
	}
	orders := []Order{
		{Kind: Build, UnitType: Army, Power: France, Location: "par", Valid: true},
		{Kind: Build, UnitType: Fleet, Power: France, Location: "bre", Valid: true},
	}
	results := ResolveAdjustments(orders, gs, m)
	ApplyAdjustments(gs, results)

	if gs.UnitCount(France) != 3 {
		t.Fatalf("expected 3 units after two builds, got %d", gs.UnitCount(France))
	}
}

func TestResolveAdjustments_ExtraBuildBeyondDeltaFails(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Units:         []Unit{},
		SupplyCenters: map[string]Power{"par": France},
	}
	orders := []Order{
		{Kind: Build, UnitType: Army, Power: France, Location: "par", Valid: true},
		{Kind: Build, UnitType: Army, Power: France, Location: "mar", Valid: true}, // no delta left
	}
	results := ResolveAdjustments(orders, gs, m)
	succeeded := 0
	for _, r := range results {
		if r.Result == ResultSucceeded {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 build to succeed, got %d", succeeded)
	}
}

func TestResolveAdjustments_SecondBuildAtSameProvinceIsVoid(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Units:         []Unit{},
		SupplyCenters: map[string]Power{"par": France, "mar": France, "bre": France},
	}
	orders := []Order{
		{Kind: Build, UnitType: Army, Power: France, Location: "par", Valid: true},
		{Kind: Build, UnitType: Army, Power: France, Location: "par", Valid: true},
	}
	results := ResolveAdjustments(orders, gs, m)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Result != ResultSucceeded {
		t.Errorf("expected first build at par to succeed, got %v", results[0].Result)
	}
	if results[1].Result != ResultVoid {
		t.Errorf("expected second build at par to be void, got %v", results[1].Result)
	}

	ApplyAdjustments(gs, results)
	count := 0
	for _, u := range gs.Units {
		if u.Province == "par" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 unit at par after applying, got %d", count)
	}
}

func TestResolveAdjustments_WaiveSkipsABuild(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Units:         []Unit{},
		SupplyCenters: map[string]Power{"par": France},
	}
	orders := []Order{{Kind: Waive, Power: France, Valid: true}}
	results := ResolveAdjustments(orders, gs, m)
	if len(results) != 1 || results[0].Result != ResultSucceeded {
		t.Fatalf("expected waive to succeed, got %+v", results)
	}
	ApplyAdjustments(gs, results)
	if gs.UnitCount(France) != 0 {
		t.Error("a waive should not add a unit")
	}
}
