package diplomacy

import "fmt"

// OrderKind is the tagged-union discriminant for Order, covering every
// order admissible in any phase kind (§3). Which fields are meaningful for
// a given OrderKind is documented next to each field below.
type OrderKind int

const (
	Hold        OrderKind = iota // HOLD(unit)
	Move                         // MOVE(unit, dst, viaConvoy?)
	SupportHold                  // SUPPORT_HOLD(unit, target_unit)
	SupportMove                  // SUPPORT_MOVE(unit, target_unit, dst)
	Convoy                       // CONVOY(fleet, army, dst)
	Retreat                      // RETREAT(unit, dst)
	Disband                      // DISBAND(unit)
	Build                        // BUILD(type, loc)
	Waive                        // WAIVE(power)
)

func (k OrderKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Move:
		return "move"
	case SupportHold:
		return "support-hold"
	case SupportMove:
		return "support-move"
	case Convoy:
		return "convoy"
	case Retreat:
		return "retreat"
	case Disband:
		return "disband"
	case Build:
		return "build"
	case Waive:
		return "waive"
	default:
		return "unknown"
	}
}

// Order is the single tagged-sum representation for every order kind in
// every phase, per the design note that "variant hierarchy is a tagged
// sum, not inheritance": movement, retreat and build orders here differ
// only in OrderKind and which of the remaining fields are populated,
// rather than being three unrelated Go types the way the teacher's
// Order/RetreatOrder/BuildOrder were.
type Order struct {
	Kind OrderKind

	// The unit being ordered. For Build, UnitType/Location/Coast describe
	// the unit to be built rather than an existing unit. For Waive, all
	// unit fields are zero and only Power is meaningful.
	UnitType UnitType
	Power    Power
	Location string
	Coast    Coast

	// Target province, for Move and Retreat. SupportMove and Convoy name
	// their destination in AuxTarget instead.
	Target      string
	TargetCoast Coast

	// ViaConvoy marks a Move as explicitly routed by convoy (grammar's
	// optional "VIA" suffix). When false the resolver still attempts a
	// convoy path if the move isn't directly adjacent, per §4.2.
	ViaConvoy bool

	// Aux fields, used by SupportHold, SupportMove and Convoy to name the
	// unit being supported or convoyed and (for SupportMove/Convoy) its
	// destination.
	AuxUnitType UnitType
	AuxLoc      string
	AuxTarget   string

	// Valid is set at parse time (§4.1): an order that fails validation is
	// retained, flagged invalid, and adjudicated as a Hold rather than
	// rejected outright, so historical replay reproduces illegal
	// submissions faithfully.
	Valid      bool
	InvalidMsg string

	// RawText preserves the original submitted order string for order
	// history fidelity even when Valid is false.
	RawText string
}

// OrderResult describes the outcome of adjudicating an order.
type OrderResult int

const (
	ResultSucceeded OrderResult = iota // Order carried out
	ResultFailed                       // Convoy failed, or adjustment order past the allowed count
	ResultDislodged                    // Unit was dislodged
	ResultBounced                      // Move bounced
	ResultCut                          // Support was cut
	ResultVoid                         // Order was invalid, treated as hold
)

func (r OrderResult) String() string {
	switch r {
	case ResultSucceeded:
		return "succeeded"
	case ResultFailed:
		return "failed"
	case ResultDislodged:
		return "dislodged"
	case ResultBounced:
		return "bounced"
	case ResultCut:
		return "cut"
	case ResultVoid:
		return "void"
	default:
		return "unknown"
	}
}

// ResolvedOrder pairs an order with its adjudication result.
type ResolvedOrder struct {
	Order  Order
	Result OrderResult
}

// Describe renders an order back into the canonical grammar of §6. It is
// the inverse of ParseOrder for any Valid order and is also used to render
// invalid orders for logs/history.
func (o *Order) Describe() string {
	if o.Kind == Waive {
		return "WAIVE"
	}

	unitStr := "A"
	if o.UnitType == Fleet {
		unitStr = "F"
	}
	loc := locString(o.Location, o.Coast)

	switch o.Kind {
	case Hold:
		return fmt.Sprintf("%s %s H", unitStr, loc)
	case Move:
		via := ""
		if o.ViaConvoy {
			via = " VIA"
		}
		return fmt.Sprintf("%s %s - %s%s", unitStr, loc, locString(o.Target, o.TargetCoast), via)
	case SupportHold:
		auxUnit := "A"
		if o.AuxUnitType == Fleet {
			auxUnit = "F"
		}
		return fmt.Sprintf("%s %s S %s %s", unitStr, loc, auxUnit, o.AuxLoc)
	case SupportMove:
		auxUnit := "A"
		if o.AuxUnitType == Fleet {
			auxUnit = "F"
		}
		return fmt.Sprintf("%s %s S %s %s - %s", unitStr, loc, auxUnit, o.AuxLoc, o.AuxTarget)
	case Convoy:
		return fmt.Sprintf("%s %s C A %s - %s", unitStr, loc, o.AuxLoc, o.AuxTarget)
	case Retreat:
		return fmt.Sprintf("%s %s R %s", unitStr, loc, locString(o.Target, o.TargetCoast))
	case Disband:
		return fmt.Sprintf("%s %s D", unitStr, loc)
	case Build:
		return fmt.Sprintf("%s %s B", unitStr, loc)
	default:
		return fmt.Sprintf("%s %s ???", unitStr, loc)
	}
}

func locString(province string, coast Coast) string {
	s := toUpper(province)
	if coast != NoCoast {
		s += "/" + toUpper(string(coast))
	}
	return s
}
