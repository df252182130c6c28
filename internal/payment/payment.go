package payment

import (
	"github.com/kiwari-pos/tableside/internal/enum"
	"github.com/shopspring/decimal"
)

// Method is how a check is settled.
type Method string

const (
	MethodCash  Method = enum.PaymentMethodCash
	MethodCard  Method = enum.PaymentMethodCard
	MethodSplit Method = enum.PaymentMethodSplit
)

// Valid reports whether m is a known settlement method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodSplit:
		return true
	}
	return false
}

// Rejection reasons reported in Result.Reason.
const (
	ReasonUnknownMethod     = "unknown payment method"
	ReasonNegativeTip       = "tip must be >= 0"
	ReasonInsufficientCash  = "amount tendered is less than the amount due"
	ReasonInvalidCardDigits = "card last 4 must be exactly 4 digits"
	ReasonInsufficientSplit = "cash plus card is less than the amount due"
	ReasonNegativeAmount    = "amounts must be >= 0"
)

// Attempt is one settlement try. Only the fields of the chosen method are
// consulted.
type Attempt struct {
	Method         Method
	Tip            decimal.Decimal
	AmountTendered decimal.Decimal
	CardLast4      string
	CardType       string
	SplitCash      decimal.Decimal
	SplitCard      decimal.Decimal
	Notes          string
}

// Result is the outcome of validating an attempt. Amounts are checked
// against TotalWithTip; AmountDue is that figure rounded up to cents for
// display. ChangeDue is only meaningful for valid cash payments.
type Result struct {
	Valid        bool            `json:"valid"`
	TotalWithTip decimal.Decimal `json:"total_with_tip"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	ChangeDue    decimal.Decimal `json:"change_due"`
	Reason       string          `json:"reason,omitempty"`
}

// CardDetails is the stubbed card record kept on a receipt.
type CardDetails struct {
	Last4    string `json:"last4"`
	CardType string `json:"card_type"`
}

// SplitDetails records how a split payment was divided.
type SplitDetails struct {
	Cash decimal.Decimal `json:"cash"`
	Card decimal.Decimal `json:"card"`
}

// Details is emitted for an accepted payment.
type Details struct {
	Method    Method           `json:"method"`
	Total     decimal.Decimal  `json:"total"`
	Tip       decimal.Decimal  `json:"tip"`
	Tendered  *decimal.Decimal `json:"amount_tendered,omitempty"`
	ChangeDue *decimal.Decimal `json:"change_due,omitempty"`
	Card      *CardDetails     `json:"card_details,omitempty"`
	Split     *SplitDetails    `json:"split_details,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// TotalWithTip is the ledger total plus the tip.
func TotalWithTip(total, tip decimal.Decimal) decimal.Decimal {
	return total.Add(tip)
}

// AmountDue is the total with tip rounded up to cents. Tendering it always
// passes validation.
func AmountDue(total, tip decimal.Decimal) decimal.Decimal {
	return TotalWithTip(total, tip).RoundCeil(2)
}

// ChangeDue is max(0, tendered - total with tip).
func ChangeDue(total, tip, tendered decimal.Decimal) decimal.Decimal {
	change := tendered.Sub(TotalWithTip(total, tip))
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// Validate checks the attempt against a ledger total. It never fails with an
// error: an insufficient or malformed attempt is reported as Valid == false
// so a caller can keep its confirm action disabled.
func (a Attempt) Validate(total decimal.Decimal) Result {
	res := Result{
		TotalWithTip: TotalWithTip(total, a.Tip),
		AmountDue:    AmountDue(total, a.Tip),
		ChangeDue:    decimal.Zero,
	}

	if a.Tip.IsNegative() {
		res.Reason = ReasonNegativeTip
		return res
	}

	switch a.Method {
	case MethodCash:
		if a.AmountTendered.IsNegative() {
			res.Reason = ReasonNegativeAmount
			return res
		}
		if a.AmountTendered.LessThan(res.TotalWithTip) {
			res.Reason = ReasonInsufficientCash
			return res
		}
		res.ChangeDue = ChangeDue(total, a.Tip, a.AmountTendered)
	case MethodCard:
		if !validLast4(a.CardLast4) {
			res.Reason = ReasonInvalidCardDigits
			return res
		}
	case MethodSplit:
		if a.SplitCash.IsNegative() || a.SplitCard.IsNegative() {
			res.Reason = ReasonNegativeAmount
			return res
		}
		if a.SplitCash.Add(a.SplitCard).LessThan(res.TotalWithTip) {
			res.Reason = ReasonInsufficientSplit
			return res
		}
	default:
		res.Reason = ReasonUnknownMethod
		return res
	}

	res.Valid = true
	return res
}

// Accept validates the attempt and, when it passes, builds the payment
// record. details is nil when the attempt is rejected.
func Accept(total decimal.Decimal, a Attempt) (*Details, Result) {
	res := a.Validate(total)
	if !res.Valid {
		return nil, res
	}

	d := &Details{
		Method: a.Method,
		Total:  res.AmountDue,
		Tip:    a.Tip,
		Notes:  a.Notes,
	}
	switch a.Method {
	case MethodCash:
		tendered := a.AmountTendered
		change := res.ChangeDue
		d.Tendered = &tendered
		d.ChangeDue = &change
	case MethodCard:
		cardType := a.CardType
		if cardType == "" {
			cardType = enum.CardTypeVisa
		}
		d.Card = &CardDetails{Last4: a.CardLast4, CardType: cardType}
	case MethodSplit:
		d.Split = &SplitDetails{Cash: a.SplitCash, Card: a.SplitCard}
	}
	return d, res
}

func validLast4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
