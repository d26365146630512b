package alphabet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDropsBlanksCommentsAndDuplicates(t *testing.T) {
	got := Normalize([]string{" a", "", "# comment", "b", "a", "c "})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d symbols, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestResolveBuiltinAndFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greek.txt"), []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatalf("write set: %v", err)
	}
	sets, err := Resolve([]string{"Letters", "greek"}, dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	if sets[0].Name != "letters" || len(sets[0].Symbols) != 8 {
		t.Fatalf("unexpected builtin set: %+v", sets[0])
	}
	if sets[1].Name != "greek" || len(sets[1].Symbols) != 3 {
		t.Fatalf("unexpected file set: %+v", sets[1])
	}
}

func TestResolveUnknownSet(t *testing.T) {
	if _, err := Resolve([]string{"klingon"}, t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown set")
	}
}

func TestLoadSetRejectsSingleSymbol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.txt")
	if err := os.WriteFile(path, []byte("x\nx\n"), 0o644); err != nil {
		t.Fatalf("write set: %v", err)
	}
	if _, err := LoadSet(path); err == nil {
		t.Fatalf("expected error for degenerate set")
	}
}
