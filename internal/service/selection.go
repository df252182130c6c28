package service

import (
	"fmt"
	"slices"

	"github.com/kiwari-pos/tableside/internal/catalog"
)

// Selection is the in-progress configuration of one menu item. It is created
// when a server opens an item and thrown away once the line is committed or
// the dialog is closed.
type Selection struct {
	item     catalog.MenuItem
	variant  string
	options  map[string][]string
	combo    map[int][]string
	quantity int
	notes    string
}

// Choices is the wire form of a selection.
type Choices struct {
	VariantID string              `json:"variant_id,omitempty"`
	Modifiers map[string][]string `json:"modifiers,omitempty"`
	Combo     map[int][]string    `json:"combo,omitempty"`
	Quantity  int                 `json:"quantity"`
	Notes     string              `json:"notes,omitempty"`
}

// NewSelection starts a selection with the defaults a server sees when the
// item opens: the first variant, the first option of each required group and
// the first candidate of each combo slot.
func NewSelection(item catalog.MenuItem) *Selection {
	s := &Selection{
		item:     item,
		options:  make(map[string][]string, len(item.ModifierGroups)),
		combo:    make(map[int][]string, len(item.ComboSlots)),
		quantity: 1,
	}
	if item.HasVariants() {
		s.variant = item.Variants[0].ID
	}
	for _, g := range item.ModifierGroups {
		if g.Required && len(g.Options) > 0 {
			s.options[g.ID] = []string{g.Options[0].ID}
		}
	}
	for i, slot := range item.ComboSlots {
		if len(slot.Candidates) > 0 {
			s.combo[i] = []string{slot.Candidates[0]}
		}
	}
	return s
}

// SelectionFromChoices rebuilds a selection from a request. Anything the
// request leaves out keeps its default; every id it names is checked against
// the item.
func SelectionFromChoices(item catalog.MenuItem, c Choices) (*Selection, error) {
	s := NewSelection(item)

	if c.VariantID != "" {
		if err := s.SelectVariant(c.VariantID); err != nil {
			return nil, err
		}
	}

	for groupID, optionIDs := range c.Modifiers {
		g, ok := item.FindGroup(groupID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownModifierGroup, groupID)
		}
		picked := dedupe(optionIDs)
		if !g.MultiSelect && len(picked) > 1 {
			return nil, fmt.Errorf("%w: group %q allows one option", ErrTooManyOptions, groupID)
		}
		for _, id := range picked {
			if _, ok := g.FindOption(id); !ok {
				return nil, fmt.Errorf("%w: %q not in group %q", ErrOptionMismatch, id, groupID)
			}
		}
		s.options[groupID] = picked
	}

	for idx, ids := range c.Combo {
		if idx < 0 || idx >= len(item.ComboSlots) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownComboSlot, idx)
		}
		slot := item.ComboSlots[idx]
		picked := dedupe(ids)
		if len(picked) > slot.SelectCount {
			return nil, fmt.Errorf("%w: %s takes %d", ErrTooManyOptions, slot.CategoryName, slot.SelectCount)
		}
		for _, id := range picked {
			if !item.FindComboCandidate(idx, id) {
				return nil, fmt.Errorf("%w: %q not in %s", ErrComboMismatch, id, slot.CategoryName)
			}
		}
		s.combo[idx] = picked
	}

	s.SetQuantity(c.Quantity)
	s.SetNotes(c.Notes)
	return s, nil
}

// Item returns the menu item being configured.
func (s *Selection) Item() catalog.MenuItem { return s.item }

// Variant returns the chosen variant id, empty for items without variants.
func (s *Selection) Variant() string { return s.variant }

// Options returns the chosen option ids of a group in selection order.
func (s *Selection) Options(groupID string) []string {
	return slices.Clone(s.options[groupID])
}

// ComboPicks returns the chosen candidate ids of a combo slot.
func (s *Selection) ComboPicks(slot int) []string {
	return slices.Clone(s.combo[slot])
}

// Quantity is always at least 1.
func (s *Selection) Quantity() int { return s.quantity }

// Notes returns the free-text kitchen note.
func (s *Selection) Notes() string { return s.notes }

// SelectVariant switches the priced base.
func (s *Selection) SelectVariant(id string) error {
	if _, ok := s.item.FindVariant(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, id)
	}
	s.variant = id
	return nil
}

// ToggleOption replaces the choice of a single-select group and toggles the
// option in a multi-select group.
func (s *Selection) ToggleOption(groupID, optionID string) error {
	g, ok := s.item.FindGroup(groupID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModifierGroup, groupID)
	}
	if _, ok := g.FindOption(optionID); !ok {
		return fmt.Errorf("%w: %q not in group %q", ErrOptionMismatch, optionID, groupID)
	}

	if !g.MultiSelect {
		s.options[groupID] = []string{optionID}
		return nil
	}
	current := s.options[groupID]
	if i := slices.Index(current, optionID); i >= 0 {
		s.options[groupID] = slices.Delete(slices.Clone(current), i, i+1)
		return nil
	}
	s.options[groupID] = append(slices.Clone(current), optionID)
	return nil
}

// ToggleComboItem replaces the pick of a one-item slot. For larger slots it
// toggles the candidate; picks beyond the slot's count are ignored.
func (s *Selection) ToggleComboItem(slot int, id string) error {
	if slot < 0 || slot >= len(s.item.ComboSlots) {
		return fmt.Errorf("%w: %d", ErrUnknownComboSlot, slot)
	}
	if !s.item.FindComboCandidate(slot, id) {
		return fmt.Errorf("%w: %q", ErrComboMismatch, id)
	}

	count := s.item.ComboSlots[slot].SelectCount
	if count == 1 {
		s.combo[slot] = []string{id}
		return nil
	}
	current := s.combo[slot]
	if i := slices.Index(current, id); i >= 0 {
		s.combo[slot] = slices.Delete(slices.Clone(current), i, i+1)
		return nil
	}
	if len(current) < count {
		s.combo[slot] = append(slices.Clone(current), id)
	}
	return nil
}

// SetQuantity sets the quantity, clamped to 1.
func (s *Selection) SetQuantity(n int) {
	s.quantity = max(n, 1)
}

// Increment adds one to the quantity.
func (s *Selection) Increment() { s.quantity++ }

// Decrement removes one from the quantity, never going below 1.
func (s *Selection) Decrement() { s.SetQuantity(s.quantity - 1) }

// SetNotes sets the kitchen note.
func (s *Selection) SetNotes(notes string) { s.notes = notes }

// Complete checks what must hold before a line is committed: every required
// group has a choice and every combo slot holds exactly its count.
func (s *Selection) Complete() error {
	if err := s.checkRequired(); err != nil {
		return err
	}
	for i, slot := range s.item.ComboSlots {
		if n := len(s.combo[i]); n != slot.SelectCount {
			return fmt.Errorf("%w: %s has %d of %d", ErrIncompleteCombo, slot.CategoryName, n, slot.SelectCount)
		}
	}
	return nil
}

func (s *Selection) checkRequired() error {
	for _, g := range s.item.ModifierGroups {
		if g.Required && len(s.options[g.ID]) == 0 {
			return fmt.Errorf("%w: %s", ErrRequiredModifier, g.Name)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
