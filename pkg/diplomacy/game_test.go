package diplomacy

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	clock := FixedClock{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewGame("test-game", nil, clock, zerolog.Nop())
}

func TestNewGame_StartsAtSpring1901Movement(t *testing.T) {
	g := newTestGame(t)
	if g.Phase.Short() != "S1901M" {
		t.Fatalf("expected S1901M, got %s", g.Phase.Short())
	}
	if g.Status != StatusActive {
		t.Fatalf("expected active status, got %v", g.Status)
	}
}

// All holds in spring: no dislodgements, no retreat phase, straight to
// fall movement.
func TestProcess_AllHoldsAdvancesToFallMovement(t *testing.T) {
	g := newTestGame(t)
	if err := g.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if g.Phase.Short() != "F1901M" {
		t.Fatalf("expected F1901M, got %s", g.Phase.Short())
	}
	if len(g.StateHistory) != 1 {
		t.Fatalf("expected 1 archived state, got %d", len(g.StateHistory))
	}
	if _, ok := g.StateHistory["S1901M"]; !ok {
		t.Fatal("expected S1901M archived in state history")
	}
}

// Classic support-cut (spec §8 scenario 2): a supported attack bounces off
// a hold that has one support of its own (2 vs 2); once the holder's
// support is cut, the same attack dislodges it (2 vs 1).
func TestResolve_ClassicSupportCut(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Fleet, England, "nth", NoCoast},
		Unit{Army, England, "bel", NoCoast},
		Unit{Army, Germany, "hol", NoCoast},
		Unit{Fleet, Germany, "kie", NoCoast},
	)
	orders := []Order{
		{Kind: Move, UnitType: Fleet, Power: England, Location: "nth", Target: "hol", Valid: true},
		{Kind: SupportMove, UnitType: Army, Power: England, Location: "bel", AuxUnitType: Fleet, AuxLoc: "nth", AuxTarget: "hol", Valid: true},
		{Kind: Hold, UnitType: Army, Power: Germany, Location: "hol", Valid: true},
		{Kind: SupportHold, UnitType: Fleet, Power: Germany, Location: "kie", AuxUnitType: Army, AuxLoc: "hol", Valid: true},
	}
	complete := ValidateAndDefaultMovementOrders(orders, gs, m)
	results, _, _ := ResolveOrders(complete, gs, m, nil)
	if resultFor(results, "nth") != ResultBounced {
		t.Error("NTH -> HOL should bounce against a supported hold (2 vs 2)")
	}
	if resultFor(results, "hol") != ResultSucceeded {
		t.Error("HOL hold should succeed with KIE's support")
	}

	// Now cut KIE's support by attacking it.
	gs2 := stateWith(
		Unit{Fleet, England, "nth", NoCoast},
		Unit{Army, England, "bel", NoCoast},
		Unit{Army, Germany, "hol", NoCoast},
		Unit{Fleet, Germany, "kie", NoCoast},
		Unit{Fleet, Russia, "bal", NoCoast},
	)
	orders2 := []Order{
		{Kind: Move, UnitType: Fleet, Power: England, Location: "nth", Target: "hol", Valid: true},
		{Kind: SupportMove, UnitType: Army, Power: England, Location: "bel", AuxUnitType: Fleet, AuxLoc: "nth", AuxTarget: "hol", Valid: true},
		{Kind: Hold, UnitType: Army, Power: Germany, Location: "hol", Valid: true},
		{Kind: SupportHold, UnitType: Fleet, Power: Germany, Location: "kie", AuxUnitType: Army, AuxLoc: "hol", Valid: true},
		{Kind: Move, UnitType: Fleet, Power: Russia, Location: "bal", Target: "kie", Valid: true},
	}
	complete2 := ValidateAndDefaultMovementOrders(orders2, gs2, m)
	results2, dislodged2, _ := ResolveOrders(complete2, gs2, m, nil)
	if resultFor(results2, "kie") != ResultCut {
		t.Error("KIE's support should be cut by the Russian attack")
	}
	if resultFor(results2, "nth") != ResultSucceeded {
		t.Error("NTH -> HOL should now succeed (2 vs 1 once KIE's support is cut)")
	}
	if len(dislodged2) != 1 || dislodged2[0].Unit.Province != "hol" {
		t.Error("HOL should be dislodged")
	}
}

// Head-to-head bounce (spec §8 scenario 3): two units move into the same
// province with no support; both fail, destination bounces for retreat purposes.
func TestResolve_HeadToHeadBounce(t *testing.T) {
	m := StandardMap()
	gs := stateWith(
		Unit{Army, France, "par", NoCoast},
		Unit{Army, Germany, "mun", NoCoast},
	)
	orders := []Order{
		{Kind: Move, UnitType: Army, Power: France, Location: "par", Target: "bur", Valid: true},
		{Kind: Move, UnitType: Army, Power: Germany, Location: "mun", Target: "bur", Valid: true},
	}
	complete := ValidateAndDefaultMovementOrders(orders, gs, m)
	results, dislodged, _ := ResolveOrders(complete, gs, m, nil)
	if resultFor(results, "par") != ResultBounced {
		t.Error("PAR -> BUR should bounce")
	}
	if resultFor(results, "mun") != ResultBounced {
		t.Error("MUN -> BUR should bounce")
	}
	if len(dislodged) != 0 {
		t.Error("no dislodgements expected in a pure bounce")
	}

	ApplyResolution(gs, m, results, dislodged)
	if len(gs.Contested) != 1 || gs.Contested[0] != "bur" {
		t.Errorf("expected bur contested, got %v", gs.Contested)
	}
}

// Civil disorder (spec §8 scenario 5): a power under-submitting disbands
// loses units chosen by the precomputed distance table, fleets before
// armies at equal distance.
func TestCivilDisorder_AutoDisbandsByDistanceThenFleetFirst(t *testing.T) {
	m := StandardMap()
	gs := &GameState{
		Year:   1901,
		Season: Winter,
		Phase:  Adjustment,
		Units: []Unit{
			{Army, Austria, "bud", NoCoast},
			{Army, Austria, "vie", NoCoast},
			{Army, Austria, "tri", NoCoast},
			{Fleet, Austria, "alb", NoCoast},
			{Army, Austria, "ser", NoCoast},
		},
		SupplyCenters: map[string]Power{
			"bud": Austria, "vie": Austria, "tri": Austria,
		},
	}
	// 3 centers, 5 units -> deficit 2; submit only one disband.
	orders := []Order{
		{Kind: Disband, UnitType: Army, Power: Austria, Location: "bud", Valid: true},
	}
	disorder := DetectCivilDisorder(orders, gs, m)
	if !disorder[Austria] {
		t.Fatal("expected Austria to be in civil disorder")
	}

	results := ResolveAdjustments(orders, gs, m)
	ApplyAdjustments(gs, results)

	if gs.UnitCount(Austria) != 3 {
		t.Fatalf("expected 3 units remaining, got %d", gs.UnitCount(Austria))
	}
	if _, ok := gs.UnitAt("bud"); ok {
		t.Error("bud should have disbanded as ordered")
	}
	if _, ok := gs.UnitAt("alb"); ok {
		t.Error("F alb should be auto-disbanded ahead of A ser (both at distance 1, fleet first)")
	}
	if _, ok := gs.UnitAt("ser"); !ok {
		t.Error("A ser should remain")
	}
}

func TestBoardHash_PermutationInvariant(t *testing.T) {
	m := StandardMap()
	gs1 := NewInitialState()
	gs2 := NewInitialState()

	// Reverse unit order; hash must not change.
	for i, j := 0, len(gs2.Units)-1; i < j; i, j = i+1, j-1 {
		gs2.Units[i], gs2.Units[j] = gs2.Units[j], gs2.Units[i]
	}

	if BoardHash(gs1, m) != BoardHash(gs2, m) {
		t.Error("board hash should be invariant to unit insertion order")
	}
}

func TestSquareScores_SumToOne(t *testing.T) {
	g := newTestGame(t)
	scores := g.GetSquareScores()
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected scores to sum to 1.0, got %v", sum)
	}
}

func TestSquareScores_SoloWinIsUnitVector(t *testing.T) {
	g := newTestGame(t)
	g.Status = StatusFinished
	g.Winner = France
	scores := g.GetSquareScores()
	for i, power := range AllPowers() {
		want := 0.0
		if power == France {
			want = 1.0
		}
		if scores[i] != want {
			t.Errorf("power %s: want %v, got %v", power, want, scores[i])
		}
	}
}

func TestRollback_PreservesGameID(t *testing.T) {
	g := newTestGame(t)
	if err := g.Process(); err != nil {
		t.Fatalf("Process: %v", err)
	}
	rolled, err := g.RolledBackToPhaseStart(Phase{1901, Spring, Movement})
	if err != nil {
		t.Fatalf("RolledBackToPhaseStart: %v", err)
	}
	if rolled.GameID != g.GameID {
		t.Errorf("game_id changed on rollback: %s vs %s", rolled.GameID, g.GameID)
	}
	if rolled.Phase.Short() != "S1901M" {
		t.Errorf("expected rollback to S1901M, got %s", rolled.Phase.Short())
	}
}

func TestAddMessage_DeduplicatesTimestamps(t *testing.T) {
	g := newTestGame(t)
	fixed := int64(1000)
	g.AddMessage(France, England, "hello", fixed)
	g.AddMessage(France, England, "again", fixed)

	bucket := g.Messages[g.Phase.Short()]
	if len(bucket) != 2 {
		t.Fatalf("expected 2 distinct messages, got %d", len(bucket))
	}
}

func TestGetAllPossibleOrders_IncludesHoldForEveryUnit(t *testing.T) {
	g := newTestGame(t)
	all := g.GetAllPossibleOrders()
	for _, u := range g.current.Units {
		orders, ok := all[u.Power][u.Province]
		if !ok {
			t.Fatalf("no possible orders for unit at %s", u.Province)
		}
		foundHold := false
		for _, o := range orders {
			if o.Kind == Hold {
				foundHold = true
			}
		}
		if !foundHold {
			t.Errorf("expected a Hold order among possibilities for %s", u.Province)
		}
	}
}
