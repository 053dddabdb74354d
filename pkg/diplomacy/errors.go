package diplomacy

import "fmt"

// ParseError reports a malformed order string (§7). It is informational:
// per §4.1, encountering one does not abort order submission, it just
// means the order in question is retained with Valid=false.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %q: %s", e.Text, e.Reason)
}

// LookupError reports a reference to something that doesn't exist: an
// unknown province, no unit (or no dislodged unit) at the ordered
// location, or an order kind the current phase does not accept.
type LookupError struct {
	Kind string // "province", "unit", "dislodged unit", "retreat order kind", ...
	Key  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Key)
}

// IllegalStateError reports an operation requested against a game in a
// state that does not permit it: processing a finished game, rolling back
// to a phase not in history, or a build, disband or retreat order the
// board does not allow.
type IllegalStateError struct {
	Op     string
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("illegal state for %s: %s", e.Op, e.Reason)
}

// ParadoxError reports an unresolvable convoy paradox detected by the
// adjudicator. It is only ever returned when the engine is configured
// with ExceptionOnConvoyParadox; by default the adjudicator instead
// applies the Szykman rule and resolves silently.
type ParadoxError struct {
	Locations []string
}

func (e *ParadoxError) Error() string {
	return fmt.Sprintf("convoy paradox among %v", e.Locations)
}

// CorruptSnapshotError reports that a persisted snapshot failed to decode:
// malformed JSON, an unparseable phase key, an unknown power name, a
// malformed unit or location string, or a bad message timestamp. The
// decoded history is not checked for gaps.
type CorruptSnapshotError struct {
	Reason string
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("corrupt snapshot: %s", e.Reason)
}
