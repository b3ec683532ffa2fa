// Package catalog holds the static drug safety reference data: per-drug
// maximum daily doses in milligrams and known pairwise interaction warnings.
// Keys are bare drug names; stored medicine names embed strength and form
// ("Paracetamol 500mg"), so all lookups match by case-insensitive substring.
package catalog

import "strings"

// DoseLimit caps one drug's total daily intake in mg.
type DoseLimit struct {
	Drug  string
	MaxMg int
}

// Interaction is an unordered drug pair with its warning text.
type Interaction struct {
	DrugA   string
	DrugB   string
	Warning string
}

// Catalog is the safety reference consulted during validation. Entries keep
// their declared order so violation reports are deterministic.
type Catalog struct {
	limits       []DoseLimit
	interactions []Interaction
}

// Default returns the built-in reference catalog.
func Default() *Catalog {
	return &Catalog{
		limits: []DoseLimit{
			{"Paracetamol", 4000},
			{"Ibuprofen", 1200},
			{"Amoxicillin", 1500},
			{"Cetirizine", 10},
			{"Aspirin", 300},
			{"Metformin", 2000},
			{"Atorvastatin", 80},
			{"Omeprazole", 40},
			{"Azithromycin", 500},
			{"Pantoprazole", 40},
			{"Diclofenac", 150},
		},
		interactions: []Interaction{
			{"Aspirin", "Ibuprofen", "Increased risk of bleeding"},
			{"Paracetamol", "Warfarin", "Increased risk of bleeding"},
			{"Amoxicillin", "Methotrexate", "Increased toxicity"},
			{"Metformin", "Contrast Dye", "Risk of lactic acidosis"},
			{"Simvastatin", "Amlodipine", "Increased risk of myopathy"},
		},
	}
}

func contains(name, drug string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(drug))
}

// LimitsFor returns every dose limit whose drug name appears in the given
// medicine name. A display name can match more than one entry; the validator
// checks all of them.
func (c *Catalog) LimitsFor(medicineName string) []DoseLimit {
	var out []DoseLimit
	for _, l := range c.limits {
		if contains(medicineName, l.Drug) {
			out = append(out, l)
		}
	}
	return out
}

// PairWarnings returns the warnings for every known interaction between the
// two medicine names. Pairs are unordered: each catalog entry is tested
// against both assignments of the names but reported at most once.
func (c *Catalog) PairWarnings(nameA, nameB string) []Interaction {
	var out []Interaction
	for _, in := range c.interactions {
		if (contains(nameA, in.DrugA) && contains(nameB, in.DrugB)) ||
			(contains(nameA, in.DrugB) && contains(nameB, in.DrugA)) {
			out = append(out, in)
		}
	}
	return out
}
