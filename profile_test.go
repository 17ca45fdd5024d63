package warera

import "testing"

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile("66f1a2b3c4d5e6f7a8b9c0d1")
	if p.Name != "66f1a2b3..." {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Production != DefaultProduction {
		t.Errorf("Production = %v, want %v", p.Production, DefaultProduction)
	}

	// Short ids are kept whole.
	if p := DefaultProfile("abc"); p.Name != "abc" {
		t.Errorf("Name = %q, want abc", p.Name)
	}
}
