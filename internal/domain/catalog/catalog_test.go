package catalog

import "testing"

func TestLimitsFor(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		medicine string
		want     []int
	}{
		{"embedded strength", "Paracetamol 500mg", []int{4000}},
		{"case insensitive", "PARACETAMOL 650MG", []int{4000}},
		{"unknown drug", "Vitamin C 100mg", nil},
		{"bare name", "Cetirizine", []int{10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.LimitsFor(tc.medicine)
			if len(got) != len(tc.want) {
				t.Fatalf("LimitsFor(%q) = %+v, want %d limits", tc.medicine, got, len(tc.want))
			}
			for i, l := range got {
				if l.MaxMg != tc.want[i] {
					t.Errorf("limit[%d].MaxMg = %d, want %d", i, l.MaxMg, tc.want[i])
				}
			}
		})
	}
}

func TestPairWarningsSymmetric(t *testing.T) {
	c := Default()

	ab := c.PairWarnings("Aspirin 75mg", "Ibuprofen 400mg")
	ba := c.PairWarnings("Ibuprofen 400mg", "Aspirin 75mg")
	if len(ab) != 1 || len(ba) != 1 {
		t.Fatalf("warnings = %+v / %+v, want exactly one each way", ab, ba)
	}
	if ab[0].Warning != "Increased risk of bleeding" {
		t.Errorf("warning = %q", ab[0].Warning)
	}
	if ab[0].Warning != ba[0].Warning {
		t.Errorf("asymmetric warnings: %q vs %q", ab[0].Warning, ba[0].Warning)
	}
}

func TestPairWarningsNone(t *testing.T) {
	c := Default()
	if got := c.PairWarnings("Paracetamol 500mg", "Cetirizine 10mg"); len(got) != 0 {
		t.Errorf("PairWarnings = %+v, want none", got)
	}
	// Same drug twice is not an interaction entry.
	if got := c.PairWarnings("Aspirin 75mg", "Aspirin 150mg"); len(got) != 0 {
		t.Errorf("self pair = %+v, want none", got)
	}
}
