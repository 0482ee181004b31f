package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/enum"
)

const (
	popularItemsLimit = 5
	salesTrendDays    = 7
)

var ErrInvalidDate = errors.New("invalid date")

// ItemSales aggregates one menu item across orders, keyed by item name.
type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DateRevenue struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Revenue decimal.Decimal `json:"revenue"`
}

type DayRevenue struct {
	Day     int             `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesStats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	OrderCount   int             `json:"order_count"`
	PopularItems []ItemSales     `json:"popular_items"`
	SalesTrend   []DateRevenue   `json:"sales_trend"`
}

type DailySales struct {
	Date          string          `json:"date"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	OrderCount    int             `json:"order_count"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	Breakdown     []ItemSales     `json:"breakdown"`
}

type MonthlySales struct {
	Month        string          `json:"month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	DailyTrend   []DayRevenue    `json:"daily_trend"`
}

// DashboardSummary is the admin landing view. TodayOrders counts every order
// placed today; TodayRevenue leaves out ERROR orders.
type DashboardSummary struct {
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	TodayOrders  int             `json:"today_orders"`
	PendingCount int             `json:"pending_count"`
}

// countable drops orders marked ERROR, which never count as sales.
func countable(orders []Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != enum.OrderStatusError {
			out = append(out, o)
		}
	}
	return out
}

func revenue(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalPrice)
	}
	return total
}

// itemSales totals line quantities and prices per item name, in order of
// first appearance.
func itemSales(orders []Order) []ItemSales {
	var out []ItemSales
	index := map[string]int{}
	for _, o := range orders {
		for _, l := range o.Items {
			i, ok := index[l.Item.Name]
			if !ok {
				i = len(out)
				index[l.Item.Name] = i
				out = append(out, ItemSales{Name: l.Item.Name, Revenue: decimal.Zero})
			}
			out[i].Quantity += l.Quantity
			out[i].Revenue = out[i].Revenue.Add(l.TotalPrice)
		}
	}
	return out
}

// SalesStatistics summarizes every order except ERROR ones: total revenue,
// the five best sellers by quantity and revenue for the last seven dates
// that had sales.
func (s *OrderService) SalesStatistics(ctx context.Context) (*SalesStats, error) {
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}
	orders = countable(orders)

	popular := itemSales(orders)
	slices.SortStableFunc(popular, func(a, b ItemSales) int { return b.Quantity - a.Quantity })
	if len(popular) > popularItemsLimit {
		popular = popular[:popularItemsLimit]
	}

	byDate := map[string]decimal.Decimal{}
	for _, o := range orders {
		d := o.CreatedAt.In(s.loc).Format(time.DateOnly)
		byDate[d] = byDate[d].Add(o.TotalPrice)
	}
	trend := make([]DateRevenue, 0, len(byDate))
	for d, r := range byDate {
		trend = append(trend, DateRevenue{Date: d, Revenue: r})
	}
	slices.SortFunc(trend, func(a, b DateRevenue) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	if len(trend) > salesTrendDays {
		trend = trend[len(trend)-salesTrendDays:]
	}

	if popular == nil {
		popular = []ItemSales{}
	}
	return &SalesStats{
		TotalRevenue: revenue(orders),
		OrderCount:   len(orders),
		PopularItems: popular,
		SalesTrend:   trend,
	}, nil
}

// DailySales reports one calendar day (YYYY-MM-DD in the service location).
// The average order value is rounded to a whole amount.
func (s *OrderService) DailySales(ctx context.Context, date string) (*DailySales, error) {
	day, err := time.ParseInLocation(time.DateOnly, date, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	next := day.AddDate(0, 0, 1)
	var daily []Order
	for _, o := range countable(orders) {
		if !o.CreatedAt.Before(day) && o.CreatedAt.Before(next) {
			daily = append(daily, o)
		}
	}

	total := revenue(daily)
	avg := decimal.Zero
	if len(daily) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(daily)))).Round(0)
	}
	breakdown := itemSales(daily)
	slices.SortStableFunc(breakdown, func(a, b ItemSales) int { return b.Revenue.Cmp(a.Revenue) })
	if breakdown == nil {
		breakdown = []ItemSales{}
	}

	return &DailySales{
		Date:          date,
		TotalRevenue:  total,
		OrderCount:    len(daily),
		AvgOrderValue: avg,
		Breakdown:     breakdown,
	}, nil
}

// MonthlySales reports a calendar month (YYYY-MM). DailyTrend has one entry
// for every day of the month, zero on days without sales.
func (s *OrderService) MonthlySales(ctx context.Context, month string) (*MonthlySales, error) {
	start, err := time.ParseInLocation("2006-01", month, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	end := start.AddDate(0, 1, 0)
	days := end.AddDate(0, 0, -1).Day()
	trend := make([]DayRevenue, days)
	for i := range trend {
		trend[i] = DayRevenue{Day: i + 1, Revenue: decimal.Zero}
	}

	total := decimal.Zero
	for _, o := range countable(orders) {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		d := o.CreatedAt.In(s.loc).Day()
		trend[d-1].Revenue = trend[d-1].Revenue.Add(o.TotalPrice)
		total = total.Add(o.TotalPrice)
	}

	return &MonthlySales{Month: month, TotalRevenue: total, DailyTrend: trend}, nil
}

// Dashboard reports today's figures and how many orders still wait for the
// kitchen to pick them up.
func (s *OrderService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	orders, err := s.loadOrders(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.loc).Format(time.DateOnly)
	sum := DashboardSummary{TodayRevenue: decimal.Zero}
	for _, o := range orders {
		if o.CreatedAt.In(s.loc).Format(time.DateOnly) == today {
			sum.TodayOrders++
			if o.Status != enum.OrderStatusError {
				sum.TodayRevenue = sum.TodayRevenue.Add(o.TotalPrice)
			}
		}
		if slices.Contains(filterStatuses[enum.OrderFilterPending], o.Status) {
			sum.PendingCount++
		}
	}
	return &sum, nil
}
