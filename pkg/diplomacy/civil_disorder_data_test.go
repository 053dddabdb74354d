package diplomacy

import "testing"

// nao (North Atlantic Ocean) is a pure-sea province with no army
// adjacencies at all, so it is unreachable by army but reachable by fleet
// from England's home centers. Army and fleet distances must therefore
// differ (§4.4: armies and fleets see different adjacency graphs).
func TestCivilDisorderDistance_ArmyAndFleetDiffer(t *testing.T) {
	armyDist := civilDisorderDistance(England, Army, "nao")
	fleetDist := civilDisorderDistance(England, Fleet, "nao")

	if armyDist != -1 {
		t.Errorf("expected nao unreachable by army (-1), got %d", armyDist)
	}
	if fleetDist < 0 {
		t.Errorf("expected nao reachable by fleet from an English home center, got %d", fleetDist)
	}
}
