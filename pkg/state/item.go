package state

import "strings"

// Item is one inventory record. Name is the unique key; Count is the
// stacking quantity and is always >= 1 for a present record. Value and
// MaxValue model a depletable charge (e.g. a battery) independent of
// stacking.
type Item struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Tags     []string `json:"tags,omitempty"`
	Type     string   `json:"type,omitempty"`
	Icon     string   `json:"icon,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
}

// HasTag reports whether the item carries the given tag (case-insensitive).
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Consumable items are removed one unit at a time when used.
func (it Item) Consumable() bool {
	return strings.EqualFold(it.Type, "consumable") || it.HasTag("consumable")
}

// Inventory is an ordered sequence of items with at most one record per
// name.
type Inventory []Item

// Find returns the index of the item with the given name, or -1.
func (inv Inventory) Find(name string) int {
	for i := range inv {
		if inv[i].Name == name {
			return i
		}
	}
	return -1
}

// FindMatching returns the index of the first item whose name contains
// the given fragment, case-insensitive. Locked exits and gated
// interactables match items this way.
func (inv Inventory) FindMatching(fragment string) int {
	if fragment == "" {
		return -1
	}
	needle := strings.ToLower(fragment)
	for i := range inv {
		if strings.Contains(strings.ToLower(inv[i].Name), needle) {
			return i
		}
	}
	return -1
}

// Add merges an item by name: an existing record gains the new count,
// otherwise the item is appended. A non-positive count defaults to 1.
func (inv Inventory) Add(item Item) Inventory {
	if item.Name == "" {
		return inv
	}
	if item.Count < 1 {
		item.Count = 1
	}
	if i := inv.Find(item.Name); i >= 0 {
		inv[i].Count += item.Count
		return inv
	}
	return append(inv, item)
}

// Remove decrements the named item's count by one, deleting the record
// when it reaches zero. Removing an absent name is a no-op.
func (inv Inventory) Remove(name string) Inventory {
	i := inv.Find(name)
	if i < 0 {
		return inv
	}
	inv[i].Count--
	if inv[i].Count <= 0 {
		return append(inv[:i], inv[i+1:]...)
	}
	return inv
}

// Normalize merges duplicate names, keeping first-seen order, and drops
// records with a non-positive count.
func (inv Inventory) Normalize() Inventory {
	out := make(Inventory, 0, len(inv))
	for _, it := range inv {
		if it.Name == "" || it.Count < 1 {
			continue
		}
		if i := out.Find(it.Name); i >= 0 {
			out[i].Count += it.Count
			continue
		}
		out = append(out, it)
	}
	return out
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	copy(out, inv)
	for i := range out {
		if len(inv[i].Tags) > 0 {
			out[i].Tags = append([]string(nil), inv[i].Tags...)
		}
		if inv[i].Value != nil {
			v := *inv[i].Value
			out[i].Value = &v
		}
		if inv[i].MaxValue != nil {
			v := *inv[i].MaxValue
			out[i].MaxValue = &v
		}
	}
	return out
}
