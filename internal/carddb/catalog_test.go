package carddb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.json")); err == nil {
			t.Fatal("expected error for missing catalog")
		}
	})

	t.Run("empty catalog rejected", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected error for empty catalog")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		catalog := Catalog{
			"101": {Name: "Grizzly Bears", Expansion: "LEA", CollectorNumber: "200", Types: []string{"Creature"}},
		}
		path := filepath.Join(dir, "cards.json")
		if err := catalog.Save(path); err != nil {
			t.Fatal(err)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}

		card, ok := loaded.Lookup(101)
		if !ok {
			t.Fatal("card 101 missing after round trip")
		}
		if card.Name != "Grizzly Bears" {
			t.Errorf("name = %q, want Grizzly Bears", card.Name)
		}
		if !loaded.Has(101) || loaded.Has(999) {
			t.Error("Has gave wrong membership")
		}
		if got := loaded.PrimaryType(101); got != "Creature" {
			t.Errorf("PrimaryType = %q, want Creature", got)
		}
		if got := loaded.PrimaryType(999); got != "Other" {
			t.Errorf("PrimaryType for unknown = %q, want Other", got)
		}
	})
}

func TestDecodeTypes(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"2", []string{"Creature"}},
		{"1,2", []string{"Artifact", "Creature"}},
		{"99", nil},
		{"2, 5", []string{"Creature", "Land"}},
		{"bogus,4", []string{"Instant"}},
	}

	for _, tt := range tests {
		got := decodeTypes(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("decodeTypes(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("decodeTypes(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
			}
		}
	}
}
