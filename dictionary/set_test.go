package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "FIX44.xml")

	if err := os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("write skip file: %v", err)
	}

	set := NewSet()
	if err := set.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if d := set.FindByBeginString("FIX.4.4"); d == nil {
		t.Fatalf("expected FIX.4.4 dictionary to be loaded")
	}

	if got := set.BeginStrings(); len(got) != 1 {
		t.Fatalf("BeginStrings = %v, want 1 entry", got)
	}
}

func TestSetLoadDirectoryMixedFailures(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "good.xml")

	if err := os.WriteFile(filepath.Join(dir, "bad.xml"), []byte("<notfix/>"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	set := NewSet()
	if err := set.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory should succeed with one good file: %v", err)
	}
}

func TestSetLoadDirectoryAllFail(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "bad.xml"), []byte("<notfix/>"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	set := NewSet()
	if err := set.LoadDirectory(dir); err == nil {
		t.Fatalf("expected error when no dictionaries load")
	}
}

func TestSetAddOverwritesOnCollision(t *testing.T) {
	set := NewSet()

	d1 := &Dictionary{beginString: "FIX.4.4", fieldsByNumber: map[uint32]FieldDef{}, fieldsByName: map[string]FieldDef{}, messages: map[string]MessageDef{}, components: map[string][]Member{}}
	d2 := &Dictionary{beginString: "FIX.4.4", fieldsByNumber: map[uint32]FieldDef{}, fieldsByName: map[string]FieldDef{}, messages: map[string]MessageDef{}, components: map[string][]Member{}}

	set.Add(d1)
	set.Add(d2)

	if got := set.FindByBeginString("FIX.4.4"); got != d2 {
		t.Fatalf("expected last-loaded dictionary to win")
	}
}
