package report

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/tableside/internal/ledger"
	"github.com/kiwari-pos/tableside/internal/payment"
	"github.com/shopspring/decimal"
)

// Receipt is the archived form of a paid check.
type Receipt struct {
	ID          uuid.UUID          `json:"id"`
	TableID     uuid.UUID          `json:"table_id"`
	TableNumber int                `json:"table_number"`
	Lines       []ledger.OrderLine `json:"lines"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	Tax         decimal.Decimal    `json:"tax"`
	Tip         decimal.Decimal    `json:"tip"`
	Total       decimal.Decimal    `json:"total"`
	Payment     payment.Details    `json:"payment"`
	PaidAt      time.Time          `json:"paid_at"`
}

// ItemSales aggregates one menu item.
type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// CategorySales aggregates one menu category.
type CategorySales struct {
	Category string          `json:"category"`
	Sales    decimal.Decimal `json:"sales"`
}

// MethodTotal aggregates one payment method.
type MethodTotal struct {
	Method payment.Method  `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// HourSales aggregates the checks paid within one hour of the day, across
// every day in the range.
type HourSales struct {
	Hour   int             `json:"hour"`
	Orders int             `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

// DaySales aggregates one calendar day.
type DaySales struct {
	Date   time.Time       `json:"date"`
	Orders int             `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

// TopItemsLimit caps Summary.TopItems.
const TopItemsLimit = 5

// Summary is the sales report for a date range. TopItems holds the best
// sellers by revenue. ByHour and ByDay only list hours and days with sales.
type Summary struct {
	From              *time.Time      `json:"from,omitempty"`
	To                *time.Time      `json:"to,omitempty"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	NetSales          decimal.Decimal `json:"net_sales"`
	Tax               decimal.Decimal `json:"tax"`
	Tips              decimal.Decimal `json:"tips"`
	OrderCount        int             `json:"order_count"`
	ItemsSold         int             `json:"items_sold"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopItems          []ItemSales     `json:"top_items"`
	ByCategory        []CategorySales `json:"by_category"`
	PaymentMethods    []MethodTotal   `json:"payment_methods"`
	ByHour            []HourSales     `json:"by_hour"`
	ByDay             []DaySales      `json:"by_day"`
}

// Recorder keeps the receipts of the running instance.
type Recorder struct {
	mu       sync.Mutex
	receipts []Receipt
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record archives a receipt.
func (r *Recorder) Record(rc Receipt) Receipt {
	if rc.ID == uuid.Nil {
		rc.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Receipt, len(r.receipts), len(r.receipts)+1)
	copy(next, r.receipts)
	r.receipts = append(next, rc)
	return rc
}

// Receipts returns every receipt in payment order.
func (r *Recorder) Receipts() []Receipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Receipt, len(r.receipts))
	copy(out, r.receipts)
	return out
}

// Summary aggregates receipts paid between the calendar days of from and to,
// both inclusive. A nil bound is open.
func (r *Recorder) Summary(from, to *time.Time) Summary {
	s := Summary{
		From:           from,
		To:             to,
		TotalSales:     decimal.Zero,
		NetSales:       decimal.Zero,
		Tax:            decimal.Zero,
		Tips:           decimal.Zero,
		TopItems:       []ItemSales{},
		ByCategory:     []CategorySales{},
		PaymentMethods: []MethodTotal{},
		ByHour:         []HourSales{},
		ByDay:          []DaySales{},
	}

	items := map[string]*ItemSales{}
	categories := map[string]decimal.Decimal{}
	methods := map[payment.Method]*MethodTotal{}
	hours := map[int]*HourSales{}
	days := map[time.Time]*DaySales{}

	addMethod := func(m payment.Method, amount decimal.Decimal) {
		mt, ok := methods[m]
		if !ok {
			mt = &MethodTotal{Method: m, Total: decimal.Zero}
			methods[m] = mt
		}
		mt.Count++
		mt.Total = mt.Total.Add(amount)
	}

	for _, rc := range r.Receipts() {
		if !inRange(rc.PaidAt, from, to) {
			continue
		}
		s.OrderCount++
		s.TotalSales = s.TotalSales.Add(rc.Total)
		s.NetSales = s.NetSales.Add(rc.Subtotal)
		s.Tax = s.Tax.Add(rc.Tax)
		s.Tips = s.Tips.Add(rc.Tip)

		h, ok := hours[rc.PaidAt.Hour()]
		if !ok {
			h = &HourSales{Hour: rc.PaidAt.Hour(), Sales: decimal.Zero}
			hours[h.Hour] = h
		}
		h.Orders++
		h.Sales = h.Sales.Add(rc.Total)

		dd, ok := days[dayOf(rc.PaidAt)]
		if !ok {
			dd = &DaySales{Date: dayOf(rc.PaidAt), Sales: decimal.Zero}
			days[dd.Date] = dd
		}
		dd.Orders++
		dd.Sales = dd.Sales.Add(rc.Total)

		for _, line := range rc.Lines {
			if line.Status == ledger.StatusCancelled {
				continue
			}
			s.ItemsSold += line.Quantity
			it, ok := items[line.Name]
			if !ok {
				it = &ItemSales{Name: line.Name, Revenue: decimal.Zero}
				items[line.Name] = it
			}
			it.Quantity += line.Quantity
			it.Revenue = it.Revenue.Add(line.LineTotal())
			categories[line.Category] = categories[line.Category].Add(line.LineTotal())
		}

		if rc.Payment.Method == payment.MethodSplit && rc.Payment.Split != nil {
			card := decimal.Min(rc.Payment.Split.Card, rc.Total)
			addMethod(payment.MethodCard, card)
			addMethod(payment.MethodCash, rc.Total.Sub(card))
		} else {
			addMethod(rc.Payment.Method, rc.Total)
		}
	}

	if s.OrderCount > 0 {
		s.AverageOrderValue = s.TotalSales.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
	} else {
		s.AverageOrderValue = decimal.Zero
	}

	for _, it := range items {
		s.TopItems = append(s.TopItems, *it)
	}
	sort.Slice(s.TopItems, func(i, j int) bool {
		a, b := s.TopItems[i], s.TopItems[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(s.TopItems) > TopItemsLimit {
		s.TopItems = s.TopItems[:TopItemsLimit]
	}

	for c, sales := range categories {
		s.ByCategory = append(s.ByCategory, CategorySales{Category: c, Sales: sales})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if !a.Sales.Equal(b.Sales) {
			return a.Sales.GreaterThan(b.Sales)
		}
		return a.Category < b.Category
	})

	for _, mt := range methods {
		s.PaymentMethods = append(s.PaymentMethods, *mt)
	}
	sort.Slice(s.PaymentMethods, func(i, j int) bool {
		a, b := s.PaymentMethods[i], s.PaymentMethods[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Method < b.Method
	})

	for _, h := range hours {
		s.ByHour = append(s.ByHour, *h)
	}
	sort.Slice(s.ByHour, func(i, j int) bool { return s.ByHour[i].Hour < s.ByHour[j].Hour })

	for _, dd := range days {
		s.ByDay = append(s.ByDay, *dd)
	}
	sort.Slice(s.ByDay, func(i, j int) bool { return s.ByDay[i].Date.Before(s.ByDay[j].Date) })
	return s
}

func inRange(t time.Time, from, to *time.Time) bool {
	day := dayOf(t)
	if from != nil && day.Before(dayOf(*from)) {
		return false
	}
	if to != nil && day.After(dayOf(*to)) {
		return false
	}
	return true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
