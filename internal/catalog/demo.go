package catalog

import (
	"github.com/kiwari-pos/tableside/internal/enum"
	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DemoItems returns the house menu the server boots with when no other
// catalog is supplied.
func DemoItems() []MenuItem {
	return []MenuItem{
		{
			ID:          "caesar-salad",
			Name:        "Caesar Salad",
			Description: "Romaine, Caesar dressing, croutons and parmesan",
			Price:       price("8.99"),
			Category:    "appetizers",
			Available:   true,
			ModifierGroups: []ModifierGroup{
				{
					ID:          "salad-protein",
					Name:        "Add Protein",
					MultiSelect: false,
					Options: []Option{
						{ID: "chicken", Name: "Grilled Chicken", Price: price("3.50")},
						{ID: "shrimp", Name: "Shrimp", Price: price("4.50")},
					},
				},
			},
		},
		{
			ID:           "grilled-salmon",
			Name:         "Grilled Salmon",
			Description:  "Atlantic salmon with seasonal vegetables",
			Price:        price("18.99"),
			Category:     "main",
			Available:    true,
			SpecialOffer: &SpecialOffer{Type: enum.OfferTypeDiscount, Value: decimal.NewFromInt(10), Description: "10% off this week"},
		},
		{
			ID:          "margherita-pizza",
			Name:        "Margherita Pizza",
			Description: "Tomato, mozzarella and basil",
			Price:       price("14.99"),
			Category:    "main",
			Available:   true,
			Variants: []Variant{
				{ID: "small", Name: "Small (10\")", Price: price("12.99")},
				{ID: "medium", Name: "Medium (12\")", Price: price("14.99")},
				{ID: "large", Name: "Large (14\")", Price: price("17.99")},
			},
			ModifierGroups: []ModifierGroup{
				{
					ID:       "crust",
					Name:     "Crust",
					Required: true,
					Options: []Option{
						{ID: "classic", Name: "Classic", Price: decimal.Zero},
						{ID: "thin", Name: "Thin", Price: decimal.Zero},
						{ID: "gluten-free", Name: "Gluten Free", Price: price("2.00")},
					},
				},
				{
					ID:          "toppings",
					Name:        "Extra Toppings",
					MultiSelect: true,
					Options: []Option{
						{ID: "mushroom", Name: "Mushrooms", Price: price("1.50")},
						{ID: "olive", Name: "Olives", Price: price("1.00")},
						{ID: "basil", Name: "Fresh Basil", Price: decimal.Zero},
					},
				},
			},
		},
		{
			ID:          "chocolate-cake",
			Name:        "Chocolate Cake",
			Description: "Rich layered chocolate cake",
			Price:       price("6.99"),
			Category:    "desserts",
			Available:   true,
			SpecialOffer: &SpecialOffer{
				Type:        enum.OfferTypeBOGO,
				Value:       decimal.NewFromInt(1),
				Description: "Buy one, get one free on Tuesdays",
			},
		},
		{
			ID:          "french-fries",
			Name:        "French Fries",
			Description: "Crispy fries with sea salt",
			Price:       price("4.99"),
			Category:    "sides",
			Available:   true,
		},
		{
			ID:          "onion-rings",
			Name:        "Onion Rings",
			Description: "Beer-battered onion rings",
			Price:       price("5.49"),
			Category:    "sides",
			Available:   true,
		},
		{
			ID:          "iced-tea",
			Name:        "Iced Tea",
			Description: "House-brewed iced tea with lemon",
			Price:       price("2.99"),
			Category:    "drinks",
			Available:   true,
		},
		{
			ID:          "lemonade",
			Name:        "Lemonade",
			Description: "Fresh squeezed",
			Price:       price("3.49"),
			Category:    "drinks",
			Available:   true,
		},
		{
			ID:          "burger-combo",
			Name:        "Burger Combo",
			Description: "Classic burger with a side and a drink",
			Price:       price("15.99"),
			Category:    "combos",
			Available:   true,
			IsCombo:     true,
			ComboSlots: []ComboSlot{
				{CategoryName: "Side", SelectCount: 1, Candidates: []string{"french-fries", "onion-rings"}},
				{CategoryName: "Drink", SelectCount: 1, Candidates: []string{"iced-tea", "lemonade"}},
			},
			ModifierGroups: []ModifierGroup{
				{
					ID:       "doneness",
					Name:     "Doneness",
					Required: true,
					Options: []Option{
						{ID: "medium-rare", Name: "Medium Rare", Price: decimal.Zero},
						{ID: "medium", Name: "Medium", Price: decimal.Zero},
						{ID: "well-done", Name: "Well Done", Price: decimal.Zero},
					},
				},
			},
		},
		{
			ID:          "sampler-platter",
			Name:        "Sampler Platter",
			Description: "Pick two sides to share",
			Price:       price("9.99"),
			Category:    "combos",
			Available:   true,
			IsCombo:     true,
			ComboSlots: []ComboSlot{
				{CategoryName: "Sides", SelectCount: 2, Candidates: []string{"french-fries", "onion-rings", "caesar-salad"}},
			},
			SpecialOffer: &SpecialOffer{Type: enum.OfferTypeBundle, Value: decimal.NewFromInt(2), Description: "Two platters for the table"},
		},
		{
			ID:          "lobster-bisque",
			Name:        "Lobster Bisque",
			Description: "Seasonal",
			Price:       price("11.50"),
			Category:    "appetizers",
			Available:   false,
		},
	}
}

// Demo returns the demo menu as a Catalog.
func Demo() *Catalog {
	c, err := New(DemoItems())
	if err != nil {
		panic("catalog: invalid demo menu: " + err.Error())
	}
	return c
}
