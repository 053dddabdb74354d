package diplomacy

import "strings"

// ParseOrder parses a canonical order string (§6 grammar) for the given
// power. Parsing is tolerant of surrounding whitespace and of case.
//
// A malformed string does not panic or require the caller to abort: it
// returns a zero-value order with Valid=false, RawText set to the
// original input, and a non-nil *ParseError describing the problem. Per
// §4.1/§7 the caller is expected to retain that order (it will be
// adjudicated as a Hold) rather than reject the submission.
func ParseOrder(power Power, s string) (Order, *ParseError) {
	raw := s
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return invalidOrder(power, raw, "order too short"), &ParseError{Text: raw, Reason: "order too short"}
	}

	ut, ok := ParseUnitType(fields[0])
	if !ok {
		return invalidOrder(power, raw, "unknown unit type "+fields[0]), &ParseError{Text: raw, Reason: "unknown unit type " + fields[0]}
	}

	prov, coast, ok := parseLoc(fields[1])
	if !ok {
		return invalidOrder(power, raw, "bad location "+fields[1]), &ParseError{Text: raw, Reason: "bad location " + fields[1]}
	}

	o := Order{
		UnitType: ut,
		Power:    power,
		Location: prov,
		Coast:    coast,
		RawText:  raw,
	}

	if len(fields) == 2 {
		return invalidOrder(power, raw, "missing action"), &ParseError{Text: raw, Reason: "missing action"}
	}

	action := strings.ToUpper(fields[2])
	rest := fields[3:]

	switch action {
	case "H", "HOLD":
		o.Kind = Hold
		o.Valid = true
		return o, nil

	case "D":
		o.Kind = Disband
		o.Valid = true
		return o, nil

	case "B":
		o.Kind = Build
		o.Valid = true
		return o, nil

	case "-":
		if len(rest) == 0 {
			return invalidOrder(power, raw, "move missing destination"), &ParseError{Text: raw, Reason: "move missing destination"}
		}
		dst, dstCoast, ok := parseLoc(rest[0])
		if !ok {
			return invalidOrder(power, raw, "bad destination "+rest[0]), &ParseError{Text: raw, Reason: "bad destination " + rest[0]}
		}
		o.Kind = Move
		o.Target = dst
		o.TargetCoast = dstCoast
		if len(rest) > 1 && strings.EqualFold(rest[1], "VIA") {
			o.ViaConvoy = true
		}
		o.Valid = true
		return o, nil

	case "R":
		if len(rest) == 0 {
			return invalidOrder(power, raw, "retreat missing destination"), &ParseError{Text: raw, Reason: "retreat missing destination"}
		}
		dst, dstCoast, ok := parseLoc(rest[0])
		if !ok {
			return invalidOrder(power, raw, "bad destination "+rest[0]), &ParseError{Text: raw, Reason: "bad destination " + rest[0]}
		}
		o.Kind = Retreat
		o.Target = dst
		o.TargetCoast = dstCoast
		o.Valid = true
		return o, nil

	case "S":
		return parseSupport(o, raw, rest)

	case "C":
		return parseConvoy(o, raw, rest)

	default:
		return invalidOrder(power, raw, "unknown action "+action), &ParseError{Text: raw, Reason: "unknown action " + action}
	}
}

// ParseWaive parses the WAIVE(power) order, the only order kind with no
// unit component.
func ParseWaive(power Power) Order {
	return Order{Kind: Waive, Power: power, Valid: true, RawText: "WAIVE"}
}

func parseSupport(o Order, raw string, rest []string) (Order, *ParseError) {
	if len(rest) < 2 {
		return invalidOrder(o.Power, raw, "support missing unit"), &ParseError{Text: raw, Reason: "support missing unit"}
	}
	aut, ok := ParseUnitType(rest[0])
	if !ok {
		return invalidOrder(o.Power, raw, "unknown supported unit type "+rest[0]), &ParseError{Text: raw, Reason: "unknown supported unit type " + rest[0]}
	}
	auxProv, _, ok := parseLoc(rest[1])
	if !ok {
		return invalidOrder(o.Power, raw, "bad supported location "+rest[1]), &ParseError{Text: raw, Reason: "bad supported location " + rest[1]}
	}
	o.Kind = SupportHold
	o.AuxUnitType = aut
	o.AuxLoc = auxProv

	if len(rest) >= 4 && rest[2] == "-" {
		dst, _, ok := parseLoc(rest[3])
		if !ok {
			return invalidOrder(o.Power, raw, "bad support target "+rest[3]), &ParseError{Text: raw, Reason: "bad support target " + rest[3]}
		}
		o.Kind = SupportMove
		o.AuxTarget = dst
	} else if len(rest) >= 3 && strings.EqualFold(rest[2], "H") {
		// explicit "S A PAR H" form
	} else if len(rest) > 2 {
		return invalidOrder(o.Power, raw, "malformed support action"), &ParseError{Text: raw, Reason: "malformed support action"}
	}

	o.Valid = true
	return o, nil
}

func parseConvoy(o Order, raw string, rest []string) (Order, *ParseError) {
	if len(rest) < 4 {
		return invalidOrder(o.Power, raw, "convoy missing army or destination"), &ParseError{Text: raw, Reason: "convoy missing army or destination"}
	}
	aut, ok := ParseUnitType(rest[0])
	if !ok || aut != Army {
		return invalidOrder(o.Power, raw, "convoyed unit must be army"), &ParseError{Text: raw, Reason: "convoyed unit must be army"}
	}
	auxProv, _, ok := parseLoc(rest[1])
	if !ok {
		return invalidOrder(o.Power, raw, "bad convoyed location "+rest[1]), &ParseError{Text: raw, Reason: "bad convoyed location " + rest[1]}
	}
	if rest[2] != "-" {
		return invalidOrder(o.Power, raw, "malformed convoy action"), &ParseError{Text: raw, Reason: "malformed convoy action"}
	}
	dst, _, ok := parseLoc(rest[3])
	if !ok {
		return invalidOrder(o.Power, raw, "bad convoy destination "+rest[3]), &ParseError{Text: raw, Reason: "bad convoy destination " + rest[3]}
	}
	o.Kind = Convoy
	o.AuxUnitType = Army
	o.AuxLoc = auxProv
	o.AuxTarget = dst
	o.Valid = true
	return o, nil
}

// parseLoc parses "par", "stp/nc", "STP/NC" etc into a lower-case province
// id and Coast.
func parseLoc(s string) (province string, coast Coast, ok bool) {
	s = strings.TrimSpace(s)
	prov, c, hasCoast := strings.Cut(s, "/")
	if len(prov) != 3 {
		return "", NoCoast, false
	}
	prov = strings.ToLower(prov)
	if !hasCoast {
		return prov, NoCoast, true
	}
	switch strings.ToLower(c) {
	case "nc":
		return prov, NorthCoast, true
	case "sc":
		return prov, SouthCoast, true
	case "ec":
		return prov, EastCoast, true
	default:
		return "", NoCoast, false
	}
}

func invalidOrder(power Power, raw, reason string) Order {
	return Order{Power: power, RawText: raw, Valid: false, InvalidMsg: reason}
}
