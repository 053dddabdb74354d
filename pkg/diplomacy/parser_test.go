package diplomacy

import "testing"

func TestParseOrder_Grammar(t *testing.T) {
	cases := []struct {
		raw  string
		kind OrderKind
	}{
		{"A PAR H", Hold},
		{"A PAR - BUR", Move},
		{"F MAO C A BRE - LON", Convoy},
		{"A MUN S F KIE - BER", SupportMove},
		{"A MUN S A BER", SupportHold},
		{"F STP/SC - BOT", Move},
		{"A VEN R TRI", Retreat},
		{"A PAR D", Disband},
		{"F BRE B", Build},
	}
	for _, tc := range cases {
		o, err := ParseOrder(France, tc.raw)
		if err != nil {
			t.Fatalf("ParseOrder(%q): %v", tc.raw, err)
		}
		if !o.Valid {
			t.Fatalf("ParseOrder(%q) should be valid, got invalid: %s", tc.raw, o.InvalidMsg)
		}
		if o.Kind != tc.kind {
			t.Errorf("ParseOrder(%q).Kind = %v, want %v", tc.raw, o.Kind, tc.kind)
		}
	}
}

func TestParseOrder_InvalidRetainsRawTextAndReason(t *testing.T) {
	o, err := ParseOrder(France, "A XYZ Q")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if o.Valid {
		t.Error("order should be marked invalid")
	}
	if o.RawText != "A XYZ Q" {
		t.Errorf("RawText = %q, want original input preserved", o.RawText)
	}
}

func TestParseOrder_CaseAndWhitespaceTolerant(t *testing.T) {
	o, err := ParseOrder(France, "  a par - bur  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Valid || o.Kind != Move || o.Target != "bur" {
		t.Errorf("expected valid move to bur, got %+v", o)
	}
}

func TestParseOrder_MoveViaConvoy(t *testing.T) {
	o, err := ParseOrder(England, "A LON - BRE VIA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.ViaConvoy {
		t.Error("expected ViaConvoy to be set")
	}
}

func TestDescribe_RoundTripsCanonicalForm(t *testing.T) {
	cases := []string{
		"A PAR H",
		"A PAR - BUR",
		"A MUN S A BER",
		"A MUN S F KIE - BER",
		"F MAO C A BRE - LON",
		"A VEN R TRI",
		"A PAR D",
		"F BRE B",
	}
	for _, raw := range cases {
		o, err := ParseOrder(France, raw)
		if err != nil {
			t.Fatalf("ParseOrder(%q): %v", raw, err)
		}
		if got := o.Describe(); got != raw {
			t.Errorf("Describe() round trip: got %q, want %q", got, raw)
		}
	}
}
