package state

import "testing"

func TestInventoryAdd(t *testing.T) {
	inv := Inventory{}

	inv = inv.Add(Item{Name: "Torch", Count: 1})
	inv = inv.Add(Item{Name: "Torch", Count: 2})
	inv = inv.Add(Item{Name: "Rope"}) // zero count defaults to 1
	inv = inv.Add(Item{Name: ""})     // nameless is dropped

	if len(inv) != 2 {
		t.Fatalf("len = %d, want 2", len(inv))
	}
	if inv[0].Name != "Torch" || inv[0].Count != 3 {
		t.Errorf("Torch = %+v, want count 3", inv[0])
	}
	if inv[1].Name != "Rope" || inv[1].Count != 1 {
		t.Errorf("Rope = %+v, want count 1", inv[1])
	}
}

func TestInventoryRemove(t *testing.T) {
	inv := Inventory{
		{Name: "Oatcake", Count: 2},
		{Name: "Key", Count: 1},
	}

	inv = inv.Remove("Oatcake")
	if i := inv.Find("Oatcake"); i < 0 || inv[i].Count != 1 {
		t.Errorf("Oatcake should decrement to 1, got %v", inv)
	}

	inv = inv.Remove("Key")
	if inv.Find("Key") >= 0 {
		t.Error("Key should be deleted at count zero")
	}

	// Absent name is a no-op.
	before := len(inv)
	inv = inv.Remove("Ghost")
	if len(inv) != before {
		t.Error("removing an absent item changed the inventory")
	}
}

func TestInventoryNormalize(t *testing.T) {
	inv := Inventory{
		{Name: "Torch", Count: 1},
		{Name: "", Count: 5},
		{Name: "Torch", Count: 2},
		{Name: "Rope", Count: 0},
		{Name: "Flint", Count: 1},
	}

	out := inv.Normalize()
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(out), out)
	}
	if out[0].Name != "Torch" || out[0].Count != 3 {
		t.Errorf("merged Torch = %+v, want count 3", out[0])
	}
	if out[1].Name != "Flint" {
		t.Errorf("order not preserved: %v", out)
	}
}

func TestInventoryFindMatching(t *testing.T) {
	inv := Inventory{
		{Name: "Engineering Access Key", Count: 1},
		{Name: "Ration Bar", Count: 2},
	}

	tests := []struct {
		fragment string
		want     int
	}{
		{"access key", 0},
		{"ACCESS", 0},
		{"ration", 1},
		{"crowbar", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := inv.FindMatching(tt.fragment); got != tt.want {
			t.Errorf("FindMatching(%q) = %d, want %d", tt.fragment, got, tt.want)
		}
	}
}

func TestItemTagsAndType(t *testing.T) {
	it := Item{Name: "Trauma Kit", Type: "Consumable", Tags: []string{"Medical"}}

	if !it.HasTag("medical") {
		t.Error("HasTag should be case-insensitive")
	}
	if it.HasTag("weapon") {
		t.Error("HasTag matched an absent tag")
	}
	if !it.Consumable() {
		t.Error("type Consumable should mark the item consumable")
	}

	tagged := Item{Name: "Stimpack", Tags: []string{"consumable"}}
	if !tagged.Consumable() {
		t.Error("consumable tag should mark the item consumable")
	}
}

func TestInventoryClone(t *testing.T) {
	v := 40.0
	inv := Inventory{{Name: "Torch", Count: 1, Tags: []string{"light"}, Value: &v}}

	c := inv.Clone()
	c[0].Count = 9
	c[0].Tags[0] = "dark"
	*c[0].Value = 0

	if inv[0].Count != 1 || inv[0].Tags[0] != "light" || *inv[0].Value != 40.0 {
		t.Errorf("Clone() shares storage: %+v", inv[0])
	}
}
