package report

import (
	"testing"
	"time"

	"github.com/kiwari-pos/tableside/internal/ledger"
	"github.com/kiwari-pos/tableside/internal/payment"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(name, category, price string, qty int) ledger.OrderLine {
	return ledger.OrderLine{
		Name:      name,
		Category:  category,
		UnitPrice: d(price),
		Quantity:  qty,
		Status:    ledger.StatusDelivered,
	}
}

func day(y int, m time.Month, dd, h int) time.Time {
	return time.Date(y, m, dd, h, 0, 0, 0, time.UTC)
}

func seed() *Recorder {
	r := NewRecorder()
	r.Record(Receipt{
		Lines: []ledger.OrderLine{
			line("Burger Combo", "combos", "15.99", 2),
			line("Iced Tea", "drinks", "2.99", 1),
		},
		Subtotal: d("34.97"),
		Tax:      d("2.80"),
		Tip:      d("5.00"),
		Total:    d("42.77"),
		Payment:  payment.Details{Method: payment.MethodCash},
		PaidAt:   day(2026, 3, 1, 19),
	})
	cancelled := line("Lemonade", "drinks", "3.49", 4)
	cancelled.Status = ledger.StatusCancelled
	r.Record(Receipt{
		Lines: []ledger.OrderLine{
			line("Iced Tea", "drinks", "2.99", 3),
			cancelled,
		},
		Subtotal: d("8.97"),
		Tax:      d("0.72"),
		Tip:      d("0"),
		Total:    d("9.69"),
		Payment: payment.Details{
			Method: payment.MethodSplit,
			Split:  &payment.SplitDetails{Cash: d("5.00"), Card: d("4.69")},
		},
		PaidAt: day(2026, 3, 2, 12),
	})
	r.Record(Receipt{
		Lines:    []ledger.OrderLine{line("Grilled Salmon", "main", "17.09", 1)},
		Subtotal: d("17.09"),
		Tax:      d("1.37"),
		Tip:      d("3.00"),
		Total:    d("21.46"),
		Payment:  payment.Details{Method: payment.MethodCard},
		PaidAt:   day(2026, 3, 5, 20),
	})
	return r
}

func TestRecord_AssignsID(t *testing.T) {
	r := NewRecorder()
	rc := r.Record(Receipt{})
	if rc.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected generated receipt id")
	}
	if len(r.Receipts()) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(r.Receipts()))
	}
}

func TestSummary_AllTime(t *testing.T) {
	s := seed().Summary(nil, nil)

	if s.OrderCount != 3 {
		t.Errorf("order count: got %d", s.OrderCount)
	}
	if !s.TotalSales.Equal(d("73.92")) {
		t.Errorf("total sales: got %s", s.TotalSales)
	}
	if !s.Tips.Equal(d("8.00")) {
		t.Errorf("tips: got %s", s.Tips)
	}
	// Cancelled lines are not sold.
	if s.ItemsSold != 7 {
		t.Errorf("items sold: got %d", s.ItemsSold)
	}
	if !s.AverageOrderValue.Equal(d("24.64")) {
		t.Errorf("average order value: got %s", s.AverageOrderValue)
	}

	if len(s.TopItems) != 3 {
		t.Fatalf("top items: %+v", s.TopItems)
	}
	// Ranked by revenue: 31.98, 17.09, then 11.96 despite the most units.
	want := []string{"Burger Combo", "Grilled Salmon", "Iced Tea"}
	for i, name := range want {
		if s.TopItems[i].Name != name {
			t.Errorf("top items[%d]: got %s, want %s", i, s.TopItems[i].Name, name)
		}
	}
	if s.TopItems[2].Quantity != 4 {
		t.Errorf("iced tea quantity: got %d", s.TopItems[2].Quantity)
	}

	if s.ByCategory[0].Category != "combos" || !s.ByCategory[0].Sales.Equal(d("31.98")) {
		t.Errorf("top category: %+v", s.ByCategory[0])
	}
	for _, c := range s.ByCategory {
		if c.Category == "drinks" && !c.Sales.Equal(d("11.96")) {
			t.Errorf("drinks sales: got %s", c.Sales)
		}
	}
}

func TestSummary_SplitCountsBothMethods(t *testing.T) {
	s := seed().Summary(nil, nil)

	got := map[payment.Method]MethodTotal{}
	for _, m := range s.PaymentMethods {
		got[m.Method] = m
	}
	if _, ok := got[payment.MethodSplit]; ok {
		t.Error("split should be reported as its cash and card parts")
	}

	tests := []struct {
		method payment.Method
		count  int
		total  string
	}{
		{payment.MethodCash, 2, "47.77"},
		{payment.MethodCard, 2, "26.15"},
	}
	for _, tt := range tests {
		m := got[tt.method]
		if m.Count != tt.count || !m.Total.Equal(d(tt.total)) {
			t.Errorf("%s: got count=%d total=%s, want %d %s", tt.method, m.Count, m.Total, tt.count, tt.total)
		}
	}
}

func TestSummary_DateRange(t *testing.T) {
	r := seed()

	from := day(2026, 3, 2, 0)
	to := day(2026, 3, 2, 0)
	s := r.Summary(&from, &to)
	if s.OrderCount != 1 || !s.TotalSales.Equal(d("9.69")) {
		t.Errorf("single day: got %d orders, %s", s.OrderCount, s.TotalSales)
	}

	s = r.Summary(&from, nil)
	if s.OrderCount != 2 {
		t.Errorf("open end: got %d orders", s.OrderCount)
	}

	early := day(2025, 1, 1, 0)
	s = r.Summary(nil, &early)
	if s.OrderCount != 0 || !s.AverageOrderValue.IsZero() {
		t.Errorf("empty range: %+v", s)
	}
	if s.TopItems == nil || s.PaymentMethods == nil {
		t.Error("empty slices should be non-nil for JSON")
	}
}

func TestSummary_TopItemsCapped(t *testing.T) {
	r := NewRecorder()
	var lines []ledger.OrderLine
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		lines = append(lines, line(name, "main", "1.00", i+1))
	}
	r.Record(Receipt{Lines: lines, Total: d("28"), Payment: payment.Details{Method: payment.MethodCash}, PaidAt: day(2026, 3, 1, 12)})

	s := r.Summary(nil, nil)
	if len(s.TopItems) != TopItemsLimit {
		t.Fatalf("top items: got %d, want %d", len(s.TopItems), TopItemsLimit)
	}
	if s.TopItems[0].Name != "G" || s.TopItems[4].Name != "C" {
		t.Errorf("ranking: first %s, last %s", s.TopItems[0].Name, s.TopItems[4].Name)
	}
	if s.ItemsSold != 28 {
		t.Errorf("items sold counts every item: got %d", s.ItemsSold)
	}
}

func TestSummary_ByHourAndDay(t *testing.T) {
	r := seed()
	r.Record(Receipt{
		Lines:   []ledger.OrderLine{line("Iced Tea", "drinks", "2.99", 1)},
		Total:   d("3.23"),
		Payment: payment.Details{Method: payment.MethodCash},
		PaidAt:  time.Date(2026, 3, 5, 19, 45, 0, 0, time.UTC),
	})

	s := r.Summary(nil, nil)

	hours := []struct {
		hour   int
		orders int
		sales  string
	}{
		{12, 1, "9.69"},
		{19, 2, "46.00"},
		{20, 1, "21.46"},
	}
	if len(s.ByHour) != len(hours) {
		t.Fatalf("by hour: %+v", s.ByHour)
	}
	for i, tt := range hours {
		h := s.ByHour[i]
		if h.Hour != tt.hour || h.Orders != tt.orders || !h.Sales.Equal(d(tt.sales)) {
			t.Errorf("hour %d: got %+v", tt.hour, h)
		}
	}

	days := []struct {
		date   time.Time
		orders int
		sales  string
	}{
		{day(2026, 3, 1, 0), 1, "42.77"},
		{day(2026, 3, 2, 0), 1, "9.69"},
		{day(2026, 3, 5, 0), 2, "24.69"},
	}
	if len(s.ByDay) != len(days) {
		t.Fatalf("by day: %+v", s.ByDay)
	}
	for i, tt := range days {
		dd := s.ByDay[i]
		if !dd.Date.Equal(tt.date) || dd.Orders != tt.orders || !dd.Sales.Equal(d(tt.sales)) {
			t.Errorf("day %s: got %+v", tt.date.Format("2006-01-02"), dd)
		}
	}

	early := day(2025, 1, 1, 0)
	empty := r.Summary(nil, &early)
	if empty.ByHour == nil || empty.ByDay == nil {
		t.Error("empty breakdowns should be non-nil for JSON")
	}
}
