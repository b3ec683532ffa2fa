package safety

import (
	"strings"
	"testing"

	"github.com/medihub/pharmacy/internal/domain/catalog"
	"github.com/medihub/pharmacy/internal/records"
)

func TestDailyTotal(t *testing.T) {
	tests := []struct {
		dosage string
		want   int
	}{
		{"1-0-1", 2},
		{"2-2-2", 6},
		{"1-1", 2},
		{"3", 3},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"1-x-1", 2},
		{" 1 - 0 - 1 ", 2},
		{"-1", 1},
		{"10-5", 15},
	}
	for _, tc := range tests {
		if got := DailyTotal(tc.dosage); got != tc.want {
			t.Errorf("DailyTotal(%q) = %d, want %d", tc.dosage, got, tc.want)
		}
	}
}

func ctxWith(allergies string, lines ...records.ContextLine) *records.PrescriptionContext {
	return &records.PrescriptionContext{Allergies: allergies, Lines: lines}
}

func TestEvaluateClean(t *testing.T) {
	v := New(catalog.Default())
	got := v.Evaluate(ctxWith("",
		records.ContextLine{MedicineName: "Paracetamol 500mg", Dosage: "1-0-1", Days: 5},
		records.ContextLine{MedicineName: "Cetirizine 10mg", Dosage: "1", Days: 5},
	))
	if len(got) != 0 {
		t.Errorf("Evaluate = %v, want no violations", got)
	}
}

func TestEvaluateAllergy(t *testing.T) {
	v := New(catalog.Default())
	got := v.Evaluate(ctxWith("Penicillin, Ibuprofen",
		records.ContextLine{MedicineName: "Ibuprofen 400mg", Dosage: "1", Days: 3},
	))
	if len(got) != 1 {
		t.Fatalf("Evaluate = %v, want one violation", got)
	}
	if got[0] != "ALLERGY ALERT: Patient is allergic to ibuprofen (Found in Ibuprofen 400mg)" {
		t.Errorf("violation = %q", got[0])
	}
}

func TestEvaluateDosage(t *testing.T) {
	v := New(catalog.Default())

	// 5+5+5 = 15 exceeds Cetirizine's limit of 10.
	got := v.Evaluate(ctxWith("",
		records.ContextLine{MedicineName: "Cetirizine 10mg", Dosage: "5-5-5", Days: 2},
	))
	if len(got) != 1 || !strings.Contains(got[0], "DOSAGE ALERT") {
		t.Fatalf("Evaluate = %v, want one dosage alert", got)
	}
	if got[0] != "DOSAGE ALERT: Cetirizine 10mg dosage (15/day) exceeds safety limit of 10." {
		t.Errorf("violation = %q", got[0])
	}

	// Exactly at the limit passes.
	got = v.Evaluate(ctxWith("",
		records.ContextLine{MedicineName: "Cetirizine 10mg", Dosage: "5-0-5", Days: 2},
	))
	if len(got) != 0 {
		t.Errorf("at-limit Evaluate = %v, want none", got)
	}
}

func TestEvaluateInteraction(t *testing.T) {
	v := New(catalog.Default())
	lines := []records.ContextLine{
		{MedicineName: "Aspirin 75mg", Dosage: "1", Days: 2},
		{MedicineName: "Ibuprofen 400mg", Dosage: "1", Days: 2},
	}
	got := v.Evaluate(ctxWith("", lines...))
	if len(got) != 1 {
		t.Fatalf("Evaluate = %v, want one interaction alert", got)
	}
	if got[0] != "INTERACTION ALERT: Aspirin 75mg + Ibuprofen 400mg -> Increased risk of bleeding" {
		t.Errorf("violation = %q", got[0])
	}

	// Reversing line order still reports exactly once.
	rev := v.Evaluate(ctxWith("", lines[1], lines[0]))
	if len(rev) != 1 {
		t.Errorf("reversed Evaluate = %v, want one alert", rev)
	}
}

func TestEvaluateOrderAndAggregation(t *testing.T) {
	v := New(catalog.Default())
	got := v.Evaluate(ctxWith("aspirin",
		records.ContextLine{MedicineName: "Aspirin 75mg", Dosage: "500", Days: 2},
		records.ContextLine{MedicineName: "Ibuprofen 400mg", Dosage: "1", Days: 2},
	))
	if len(got) != 3 {
		t.Fatalf("Evaluate = %v, want 3 violations", got)
	}
	if !strings.HasPrefix(got[0], "ALLERGY ALERT") ||
		!strings.HasPrefix(got[1], "DOSAGE ALERT") ||
		!strings.HasPrefix(got[2], "INTERACTION ALERT") {
		t.Errorf("violation order = %v", got)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	v := New(catalog.Default())
	pctx := ctxWith("aspirin",
		records.ContextLine{MedicineName: "Aspirin 75mg", Dosage: "500", Days: 2},
	)
	first := v.Evaluate(pctx)
	second := v.Evaluate(pctx)
	if len(first) != len(second) {
		t.Fatalf("repeat runs differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("violation[%d] differs: %q vs %q", i, first[i], second[i])
		}
	}
}
