package identity

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  McMaster-Carr  ", "mcmaster-carr"},
		{"9657K103\t ", "9657k103"},
		{"Multiple   internal\twhitespace", "multiple internal whitespace"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOrderUIDDeterministic(t *testing.T) {
	a := OrderUID("McMaster", "INV-100", "abc123")
	b := OrderUID("  mcmaster ", "inv-100", "ABC123")
	if a != b {
		t.Fatalf("expected cosmetic variants to derive the same UID, got %s and %s", a, b)
	}

	c := OrderUID("McMaster", "INV-101", "abc123")
	if a == c {
		t.Fatalf("different order refs must not collide")
	}
}

func TestLineItemUIDDistinguishesLineIndex(t *testing.T) {
	base := LineItemKey{
		Vendor:    "digikey",
		OrderRef:  "INV-200",
		FileHash:  "deadbeef",
		LineIndex: 1,
		SKU:       "296-1234-ND",
		Desc:      "IC OPAMP GP 1 CIRCUIT",
		UnitPrice: "0.48",
		Ordered:   "10",
	}
	other := base
	other.LineIndex = 2

	if LineItemUID(base) == LineItemUID(other) {
		t.Fatalf("identical lines at different indexes must get distinct UIDs")
	}
	if LineItemUID(base) != LineItemUID(base) {
		t.Fatalf("same key must always derive the same UID")
	}
}

func TestPartKeyFallbackChain(t *testing.T) {
	if got := PartKey("McMaster", "9657K103", "MFG-1", "spring"); got != "mcmaster:9657K103" {
		t.Fatalf("sku should win: got %q", got)
	}
	if got := PartKey("McMaster", "", "MFG-1", "spring"); got != "mcmaster:MFG-1" {
		t.Fatalf("mfg part should be second: got %q", got)
	}

	hashed := PartKey("McMaster", "", "", "Compression Spring, 1 inch")
	if !strings.HasPrefix(hashed, "mcmaster:") || hashed == "mcmaster:" {
		t.Fatalf("description fallback should hash into the key: got %q", hashed)
	}
	again := PartKey("mcmaster", "", "", "  compression  spring, 1 inch ")
	if hashed != again {
		t.Fatalf("description hash must be stable under normalization: %q vs %q", hashed, again)
	}
}
