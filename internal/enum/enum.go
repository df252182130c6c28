package enum

// ── Group A: State machines ──

const (
	ItemStatusPending   = "pending"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusDelivered = "delivered"
	ItemStatusCancelled = "cancelled"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusOrdering  = "ordering"
	TableStatusServed    = "served"
	TableStatusPaying    = "paying"
)

const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusSeated    = "seated"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusNoShow    = "no-show"
)

// ── Group B: Annotations (no lifecycle) ──

const (
	PriorityNone = ""
	PriorityFire = "fire"
	PriorityHold = "hold"
)

const (
	OfferTypeDiscount = "discount"
	OfferTypeBOGO     = "bogo"
	OfferTypeBundle   = "bundle"
)

const (
	PaymentMethodCash  = "cash"
	PaymentMethodCard  = "card"
	PaymentMethodSplit = "split"
)

const (
	CardTypeVisa       = "Visa"
	CardTypeMastercard = "Mastercard"
	CardTypeAmex       = "Amex"
	CardTypeDiscover   = "Discover"
)

// ── Group C: Roster ──

const (
	StaffRoleAdmin   = "admin"
	StaffRoleManager = "manager"
	StaffRoleWaiter  = "waiter"
	StaffRoleKitchen = "kitchen"
	StaffRoleCashier = "cashier"
)
