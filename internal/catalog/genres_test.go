// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package catalog

import "testing"

func TestDefaultGenreTaxonomy(t *testing.T) {
	t.Parallel()

	tax := DefaultGenreTaxonomy()
	if tax.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", tax.Len())
	}

	tests := []struct {
		id       int
		name     string
		slot     int
		selected bool
	}{
		{id: 28, name: "Action", slot: 0, selected: true},
		{id: 878, name: "Science Fiction", slot: 9, selected: true},
		{id: 53, name: "Thriller", slot: 10, selected: true},
		{id: 99, name: "Documentary", selected: false},
		{id: 10770, name: "TV Movie", selected: false},
	}
	for _, tt := range tests {
		name, ok := tax.Name(tt.id)
		if !ok || name != tt.name {
			t.Errorf("Name(%d) = %q, %v; want %q", tt.id, name, ok, tt.name)
		}
		slot, ok := tax.Slot(tt.id)
		if ok != tt.selected {
			t.Errorf("Slot(%d) selected = %v, want %v", tt.id, ok, tt.selected)
		}
		if ok && slot != tt.slot {
			t.Errorf("Slot(%d) = %d, want %d", tt.id, slot, tt.slot)
		}
	}

	if _, ok := tax.Slot(999999); ok {
		t.Error("unknown genre id should have no slot")
	}
}

func TestNewGenreTaxonomyErrors(t *testing.T) {
	t.Parallel()

	names := map[int]string{1: "A", 2: "B"}
	if _, err := NewGenreTaxonomy(names, []string{"A", "C"}); err == nil {
		t.Error("expected error for unknown selected genre")
	}
	if _, err := NewGenreTaxonomy(names, []string{"A", "A"}); err == nil {
		t.Error("expected error for duplicate selected genre")
	}
	if _, err := NewGenreTaxonomy(map[int]string{1: "A", 2: "A"}, []string{"A"}); err == nil {
		t.Error("expected error for duplicate genre name")
	}
}

func TestSelectedReturnsCopy(t *testing.T) {
	t.Parallel()

	tax := DefaultGenreTaxonomy()
	sel := tax.Selected()
	sel[0] = "Mutated"
	if tax.Selected()[0] != "Action" {
		t.Error("Selected() must not expose internal slice")
	}
}
