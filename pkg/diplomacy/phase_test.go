package diplomacy

import "testing"

func TestPhaseShortAndLongForms(t *testing.T) {
	cases := []struct {
		p     Phase
		short string
		long  string
	}{
		{Phase{1901, Spring, Movement}, "S1901M", "SPRING 1901 MOVEMENT"},
		{Phase{1901, Fall, RetreatPhase}, "F1901R", "FALL 1901 RETREAT"},
		{Phase{1902, Winter, Adjustment}, "W1902A", "WINTER 1902 ADJUSTMENT"},
	}
	for _, tc := range cases {
		if got := tc.p.Short(); got != tc.short {
			t.Errorf("Short() = %q, want %q", got, tc.short)
		}
		if got := tc.p.Long(); got != tc.long {
			t.Errorf("Long() = %q, want %q", got, tc.long)
		}
		parsed, err := ParsePhase(tc.short)
		if err != nil {
			t.Fatalf("ParsePhase(%q): %v", tc.short, err)
		}
		if parsed != tc.p {
			t.Errorf("ParsePhase(%q) = %+v, want %+v", tc.short, parsed, tc.p)
		}
		parsedLong, err := ParsePhase(tc.long)
		if err != nil {
			t.Fatalf("ParsePhase(%q): %v", tc.long, err)
		}
		if parsedLong != tc.p {
			t.Errorf("ParsePhase(%q) = %+v, want %+v", tc.long, parsedLong, tc.p)
		}
	}
}

// Winter only ever pairs with Adjustment; spring/fall only with
// movement/retreat.
func TestNextPhase_WinterOnlyPairsWithAdjustment(t *testing.T) {
	gs := NewInitialState()
	gs.Year = 1901
	gs.Season = Fall
	gs.Phase = Movement
	// Give Austria a spare supply center so a build is required -> adjustment not elided.
	gs.SupplyCenters["ser"] = Austria

	next := NextPhase(Phase{1901, Fall, Movement}, gs)
	if next.Season != Winter || next.Kind != Adjustment {
		t.Fatalf("expected Winter Adjustment, got %+v", next)
	}
}

// Boundary scenario 1 (spec §8): if nobody has a build/disband delta,
// WINTER is skipped entirely and play proceeds straight to next spring.
func TestNextPhase_EmptyWinterElision(t *testing.T) {
	gs := NewInitialState() // units == centers for every power
	next := NextPhase(Phase{1901, Fall, Movement}, gs)
	if next.Season != Spring || next.Year != 1902 || next.Kind != Movement {
		t.Fatalf("expected S1902M, got %+v", next)
	}
}

func TestNextPhase_RetreatElidedWhenNoDislodgements(t *testing.T) {
	gs := NewInitialState()
	next := NextPhase(Phase{1901, Spring, Movement}, gs)
	if next.Season != Fall || next.Kind != Movement {
		t.Fatalf("expected F1901M, got %+v", next)
	}
}

func TestNextPhase_RetreatInsertedWhenDislodged(t *testing.T) {
	gs := NewInitialState()
	gs.Dislodged = []DislodgedUnit{{Unit: Unit{Army, Italy, "ven", NoCoast}, AttackerFrom: "tri"}}
	next := NextPhase(Phase{1901, Spring, Movement}, gs)
	if next.Kind != RetreatPhase || next.Season != Spring {
		t.Fatalf("expected S1901R, got %+v", next)
	}
}

func TestNextPhase_AdjustmentAlwaysGoesToNextSpring(t *testing.T) {
	gs := NewInitialState()
	next := NextPhase(Phase{1901, Winter, Adjustment}, gs)
	if next.Season != Spring || next.Year != 1902 || next.Kind != Movement {
		t.Fatalf("expected S1902M, got %+v", next)
	}
}
