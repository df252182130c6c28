package service

import (
	"errors"
	"fmt"

	"github.com/kiwari-pos/tableside/internal/catalog"
	"github.com/shopspring/decimal"
)

// ErrInvalidSelection is wrapped by every error that rejects a selection.
var ErrInvalidSelection = errors.New("invalid selection")

// Selection errors.
var (
	ErrUnknownVariant       = fmt.Errorf("%w: unknown variant", ErrInvalidSelection)
	ErrUnknownModifierGroup = fmt.Errorf("%w: unknown modifier group", ErrInvalidSelection)
	ErrOptionMismatch       = fmt.Errorf("%w: option does not belong to group", ErrInvalidSelection)
	ErrRequiredModifier     = fmt.Errorf("%w: required modifier not selected", ErrInvalidSelection)
	ErrTooManyOptions       = fmt.Errorf("%w: too many options selected", ErrInvalidSelection)
	ErrUnknownComboSlot     = fmt.Errorf("%w: unknown combo slot", ErrInvalidSelection)
	ErrComboMismatch        = fmt.Errorf("%w: item is not a candidate of the combo slot", ErrInvalidSelection)
	ErrIncompleteCombo      = fmt.Errorf("%w: combo slot incomplete", ErrInvalidSelection)
)

var hundred = decimal.NewFromInt(100)

// Quote is the live price of a selection. ComboItems holds candidate item
// ids in slot order.
type Quote struct {
	ItemID     string                `json:"item_id"`
	Variant    string                `json:"variant,omitempty"`
	UnitPrice  decimal.Decimal       `json:"unit_price"`
	Quantity   int                   `json:"quantity"`
	LineTotal  decimal.Decimal       `json:"line_total"`
	Labels     []string              `json:"labels"`
	ComboItems []string              `json:"combo_items,omitempty"`
	Offer      *catalog.SpecialOffer `json:"offer,omitempty"`
}

// PriceSelection prices sel against item:
//
//	base  = chosen variant price, else the item price
//	unit  = (base + sum of selected option prices) * (1 - discount/100)
//	total = unit * quantity
//
// Only discount offers change the price. Other offers are returned on the
// quote for display.
func PriceSelection(item catalog.MenuItem, sel *Selection) (Quote, error) {
	if err := sel.checkRequired(); err != nil {
		return Quote{}, err
	}

	base := item.Price
	if sel.variant != "" {
		v, ok := item.FindVariant(sel.variant)
		if !ok {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownVariant, sel.variant)
		}
		base = v.Price
	}

	modifiers := decimal.Zero
	labels := []string{}
	for _, g := range item.ModifierGroups {
		for _, id := range sel.options[g.ID] {
			opt, ok := g.FindOption(id)
			if !ok {
				return Quote{}, fmt.Errorf("%w: %q not in group %q", ErrOptionMismatch, id, g.ID)
			}
			modifiers = modifiers.Add(opt.Price)
			labels = append(labels, optionLabel(opt))
		}
	}
	for groupID := range sel.options {
		if _, ok := item.FindGroup(groupID); !ok {
			return Quote{}, fmt.Errorf("%w: %q", ErrUnknownModifierGroup, groupID)
		}
	}

	var combo []string
	for i := range item.ComboSlots {
		combo = append(combo, sel.combo[i]...)
	}

	unit := base.Add(modifiers)
	if item.SpecialOffer.IsDiscount() {
		unit = unit.Mul(decimal.NewFromInt(1).Sub(item.SpecialOffer.Value.Div(hundred)))
	}

	return Quote{
		ItemID:     item.ID,
		Variant:    sel.variant,
		UnitPrice:  unit,
		Quantity:   sel.quantity,
		LineTotal:  unit.Mul(decimal.NewFromInt(int64(sel.quantity))),
		Labels:     labels,
		ComboItems: combo,
		Offer:      item.SpecialOffer,
	}, nil
}

// Price prices the selection against its own item.
func (s *Selection) Price() (Quote, error) {
	return PriceSelection(s.item, s)
}

func optionLabel(opt catalog.Option) string {
	if opt.Price.IsPositive() {
		return fmt.Sprintf("%s (+$%s)", opt.Name, opt.Price.StringFixed(2))
	}
	return opt.Name
}

// FormatMoney renders an amount the way a check shows it, e.g. "$17.09".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
