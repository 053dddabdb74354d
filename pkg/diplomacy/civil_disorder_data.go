package diplomacy

import "sync"

// civilDisorderTable gives, for a power, a unit type, and a province, the
// minimum number of adjacency hops to one of that power's home supply
// centers, using only adjacencies that unit type may traverse (§4.4: "one
// vector of length 81 for armies, one for fleets" — armies and fleets see
// different graphs, so a fleet's land-cutting distance is not the same as
// an army's). It is precomputed once at startup by BFS over the standard
// map's adjacency graph rather than recomputed on every adjustment phase,
// since the graph never changes.
//
// A sentinel of -1 marks a province from which no home center is
// reachable at all by that unit type (or a power with no home centers,
// e.g. PowerNone): civil disorder never selects such a unit to disband.
var (
	civilDisorderOnce  sync.Once
	civilDisorderTable map[Power]map[UnitType]map[string]int
)

func civilDisorderDistance(power Power, unitType UnitType, province string) int {
	civilDisorderOnce.Do(buildCivilDisorderTable)
	byType, ok := civilDisorderTable[power]
	if !ok {
		return -1
	}
	byProv, ok := byType[unitType]
	if !ok {
		return -1
	}
	if d, ok := byProv[province]; ok {
		return d
	}
	return -1
}

func buildCivilDisorderTable() {
	m := StandardMap()
	civilDisorderTable = make(map[Power]map[UnitType]map[string]int, len(AllPowers()))
	for _, power := range AllPowers() {
		homes := HomeCenters(power)
		civilDisorderTable[power] = map[UnitType]map[string]int{
			Army:  bfsDistancesToHomes(homes, m, Army),
			Fleet: bfsDistancesToHomes(homes, m, Fleet),
		}
	}
}

// bfsDistancesToHomes computes, for every province reachable by unitType,
// the minimum hop distance to any province in homes, traversing only
// adjacencies that unitType may use.
func bfsDistancesToHomes(homes []string, m *DiplomacyMap, unitType UnitType) map[string]int {
	dist := make(map[string]int, ProvinceCount)
	if len(homes) == 0 {
		return dist
	}

	for _, h := range homes {
		dist[h] = 0
	}

	queue := append([]string(nil), homes...)
	for len(queue) > 0 {
		var next []string
		for _, prov := range queue {
			d := dist[prov]
			for _, adj := range m.Adjacencies[prov] {
				if unitType == Fleet && !adj.FleetOK {
					continue
				}
				if unitType == Army && !adj.ArmyOK {
					continue
				}
				if _, seen := dist[adj.To]; seen {
					continue
				}
				dist[adj.To] = d + 1
				next = append(next, adj.To)
			}
		}
		queue = next
	}
	return dist
}
