package catalog

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.json")
	if err := WriteFile(path, DemoItems()); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := len(c.Items()), len(DemoItems()); got != want {
		t.Fatalf("items: got %d, want %d", got, want)
	}
	pizza, ok := c.FindItem("margherita-pizza")
	if !ok {
		t.Fatal("pizza missing after reload")
	}
	if !pizza.Variants[2].Price.Equal(price("17.99")) {
		t.Errorf("large price: got %s", pizza.Variants[2].Price)
	}
	if len(pizza.ModifierGroups) != 2 || !pizza.ModifierGroups[0].Required {
		t.Errorf("modifier groups lost: %+v", pizza.ModifierGroups)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"duplicate ids", `[{"id":"a","name":"A","price":"1"},{"id":"a","name":"B","price":"2"}]`, ErrDuplicateItem},
		{"missing id", `[{"name":"A","price":"1"}]`, ErrEmptyItemID},
		{"unknown candidate", `[{"id":"combo","name":"C","price":"5","is_combo":true,"combo_slots":[{"category_name":"Side","select_count":1,"candidates":["ghost"]}]}]`, ErrUnknownCandidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := Load(strings.NewReader(`{"not": "a list"}`)); err == nil {
		t.Error("expected decode error for non-array input")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWrite_Indented(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, DemoItems()[:1]); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Errorf("expected indented output, got %q", buf.String())
	}
}
