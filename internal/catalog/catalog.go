package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kiwari-pos/tableside/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned when building a catalog.
var (
	ErrDuplicateItem      = errors.New("duplicate menu item id")
	ErrEmptyItemID        = errors.New("menu item id is required")
	ErrNegativePrice      = errors.New("price must be >= 0")
	ErrDuplicateVariant   = errors.New("duplicate variant id")
	ErrDuplicateGroup     = errors.New("duplicate modifier group id")
	ErrDuplicateOption    = errors.New("duplicate option id")
	ErrEmptyRequiredGroup = errors.New("required modifier group has no options")
	ErrInvalidSelectCount = errors.New("combo slot select_count must be >= 1")
	ErrUnknownCandidate   = errors.New("combo candidate not in catalog")
	ErrInvalidOffer       = errors.New("invalid special offer")
)

// MenuItem is one sellable entry of the menu.
type MenuItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category"`
	Available      bool            `json:"available"`
	Variants       []Variant       `json:"variants,omitempty"`
	ModifierGroups []ModifierGroup `json:"modifier_groups,omitempty"`
	IsCombo        bool            `json:"is_combo,omitempty"`
	ComboSlots     []ComboSlot     `json:"combo_slots,omitempty"`
	SpecialOffer   *SpecialOffer   `json:"special_offer,omitempty"`
}

// Variant is a mutually exclusive size/style choice that overrides the
// item's base price.
type Variant struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ModifierGroup is a named set of add-ons on a menu item.
type ModifierGroup struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Required    bool     `json:"required"`
	MultiSelect bool     `json:"multi_select"`
	Options     []Option `json:"options"`
}

// Option is a single choice inside a modifier group.
type Option struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ComboSlot is a category within a combo item. A committed combo line holds
// exactly SelectCount picks from Candidates.
type ComboSlot struct {
	CategoryName string   `json:"category_name"`
	SelectCount  int      `json:"select_count"`
	Candidates   []string `json:"candidates"`
}

// SpecialOffer is a promotional annotation. Only discount offers change the
// price; Value is a percentage for them.
type SpecialOffer struct {
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description,omitempty"`
}

// IsDiscount reports whether the offer reduces the unit price.
func (o *SpecialOffer) IsDiscount() bool {
	return o != nil && o.Type == enum.OfferTypeDiscount
}

// HasVariants reports whether the item is priced by variant.
func (m MenuItem) HasVariants() bool {
	return len(m.Variants) > 0
}

// FindVariant looks up a variant by id.
func (m MenuItem) FindVariant(id string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// FindGroup looks up a modifier group by id.
func (m MenuItem) FindGroup(id string) (ModifierGroup, bool) {
	for _, g := range m.ModifierGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ModifierGroup{}, false
}

// FindOption looks up an option by group and option id.
func (m MenuItem) FindOption(groupID, optionID string) (Option, bool) {
	g, ok := m.FindGroup(groupID)
	if !ok {
		return Option{}, false
	}
	return g.FindOption(optionID)
}

// FindComboCandidate reports whether id is a candidate of the given slot.
func (m MenuItem) FindComboCandidate(slot int, id string) bool {
	if slot < 0 || slot >= len(m.ComboSlots) {
		return false
	}
	for _, c := range m.ComboSlots[slot].Candidates {
		if c == id {
			return true
		}
	}
	return false
}

// FindOption looks up an option of the group by id.
func (g ModifierGroup) FindOption(id string) (Option, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Clone returns a copy of m that shares no slices or pointers with it.
func (m MenuItem) Clone() MenuItem {
	m.Variants = slices.Clone(m.Variants)
	if m.ModifierGroups != nil {
		groups := make([]ModifierGroup, len(m.ModifierGroups))
		for i, g := range m.ModifierGroups {
			g.Options = slices.Clone(g.Options)
			groups[i] = g
		}
		m.ModifierGroups = groups
	}
	if m.ComboSlots != nil {
		slots := make([]ComboSlot, len(m.ComboSlots))
		for i, slot := range m.ComboSlots {
			slot.Candidates = slices.Clone(slot.Candidates)
			slots[i] = slot
		}
		m.ComboSlots = slots
	}
	if m.SpecialOffer != nil {
		offer := *m.SpecialOffer
		m.SpecialOffer = &offer
	}
	return m
}

// Catalog is an immutable, ordered set of menu items. Items go in and come
// out as deep copies.
type Catalog struct {
	items []MenuItem
	byID  map[string]int
}

// New validates items and builds a Catalog. Items are deep-copied; later
// changes by the caller do not affect the catalog.
func New(items []MenuItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]MenuItem, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, item := range items {
		c.items[i] = item.Clone()
	}

	for i, item := range c.items {
		if item.ID == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrEmptyItemID)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("item %q: %w", item.ID, ErrDuplicateItem)
		}
		if err := validateItem(item); err != nil {
			return nil, fmt.Errorf("item %q: %w", item.ID, err)
		}
		c.byID[item.ID] = i
	}

	// Combo candidates may reference items declared later in the list.
	for _, item := range c.items {
		for j, slot := range item.ComboSlots {
			for _, cand := range slot.Candidates {
				if _, ok := c.byID[cand]; !ok {
					return nil, fmt.Errorf("item %q: combo_slots[%d]: %q: %w", item.ID, j, cand, ErrUnknownCandidate)
				}
			}
		}
	}
	return c, nil
}

func validateItem(item MenuItem) error {
	if item.Price.IsNegative() {
		return ErrNegativePrice
	}

	seen := map[string]bool{}
	for _, v := range item.Variants {
		if seen[v.ID] {
			return fmt.Errorf("variant %q: %w", v.ID, ErrDuplicateVariant)
		}
		if v.Price.IsNegative() {
			return fmt.Errorf("variant %q: %w", v.ID, ErrNegativePrice)
		}
		seen[v.ID] = true
	}

	groups := map[string]bool{}
	for _, g := range item.ModifierGroups {
		if groups[g.ID] {
			return fmt.Errorf("modifier group %q: %w", g.ID, ErrDuplicateGroup)
		}
		groups[g.ID] = true
		if g.Required && len(g.Options) == 0 {
			return fmt.Errorf("modifier group %q: %w", g.ID, ErrEmptyRequiredGroup)
		}
		opts := map[string]bool{}
		for _, o := range g.Options {
			if opts[o.ID] {
				return fmt.Errorf("modifier group %q: option %q: %w", g.ID, o.ID, ErrDuplicateOption)
			}
			if o.Price.IsNegative() {
				return fmt.Errorf("modifier group %q: option %q: %w", g.ID, o.ID, ErrNegativePrice)
			}
			opts[o.ID] = true
		}
	}

	for j, slot := range item.ComboSlots {
		if slot.SelectCount < 1 {
			return fmt.Errorf("combo_slots[%d]: %w", j, ErrInvalidSelectCount)
		}
	}

	if o := item.SpecialOffer; o != nil {
		switch o.Type {
		case enum.OfferTypeDiscount:
			if o.Value.IsNegative() || o.Value.GreaterThan(decimal.NewFromInt(100)) {
				return fmt.Errorf("%w: discount must be within 0-100", ErrInvalidOffer)
			}
		case enum.OfferTypeBOGO, enum.OfferTypeBundle:
		default:
			return fmt.Errorf("%w: unknown type %q", ErrInvalidOffer, o.Type)
		}
	}
	return nil
}

// FindItem looks up a menu item by id.
func (c *Catalog) FindItem(id string) (MenuItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return MenuItem{}, false
	}
	return c.items[i].Clone(), true
}

// Items returns every item in catalog order.
func (c *Catalog) Items() []MenuItem {
	out := make([]MenuItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range c.items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

// ByCategory returns the items of one category in catalog order.
func (c *Catalog) ByCategory(category string) []MenuItem {
	var out []MenuItem
	for _, item := range c.items {
		if item.Category == category {
			out = append(out, item.Clone())
		}
	}
	return out
}

// suggestions maps a category to the categories offered alongside it.
var suggestions = map[string][]string{
	"main":       {"sides", "drinks"},
	"appetizers": {"main"},
}

// Suggestions returns available items from the categories usually ordered
// with item, for upselling while the item is being configured.
func (c *Catalog) Suggestions(item MenuItem) []MenuItem {
	out := []MenuItem{}
	for _, cat := range suggestions[item.Category] {
		for _, m := range c.ByCategory(cat) {
			if m.Available && m.ID != item.ID {
				out = append(out, m)
			}
		}
	}
	return out
}
