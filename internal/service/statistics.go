package service

import (
	"math"
	"sort"
	"time"

	"go-inventory-api/internal/model"
)

const (
	LowStockThreshold = 10
	RecentLimit       = 100
	TopN              = 10
	ActivityWindow    = 7 * 24 * time.Hour

	UncategorizedLabel = "Uncategorized"
)

type Statistics struct {
	Overview        Overview        `json:"overview"`
	StockByCategory []CategoryStock `json:"stockByCategory"`
	RecentActivity  RecentActivity  `json:"recentActivity"`
	TopProducts     TopProducts     `json:"topProducts"`
	Alerts          Alerts          `json:"alerts"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

type Overview struct {
	TotalProducts   int `json:"totalProducts"`
	TotalStock      int `json:"totalStock"`
	LowStockCount   int `json:"lowStockCount"`
	OutOfStockCount int `json:"outOfStockCount"`
}

type CategoryStock struct {
	Category     string  `json:"category"`
	Stock        int     `json:"stock"`
	ProductCount int     `json:"productCount"`
	Percentage   float64 `json:"percentage"`
}

type RecentActivity struct {
	UpdatesLast7Days int `json:"updatesLast7Days"`
	StockIncrease    int `json:"stockIncrease"`
	StockDecrease    int `json:"stockDecrease"`
}

type ProductSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	Category string `json:"category"`
}

type ActiveProduct struct {
	ProductSummary
	UpdateCount int `json:"updateCount"`
}

type TopProducts struct {
	ByStock    []ProductSummary `json:"byStock"`
	MostActive []ActiveProduct  `json:"mostActive"`
}

type Alerts struct {
	LowStock   []ProductSummary `json:"lowStock"`
	OutOfStock []ProductSummary `json:"outOfStock"`
}

// ComputeStatistics derives the dashboard figures from the full product list
// and the newest audit entries. recent is expected to be capped at
// RecentLimit; anything older is simply not seen.
func ComputeStatistics(products []model.Product, recent []model.AuditEntry, now time.Time) *Statistics {
	stats := &Statistics{
		StockByCategory: []CategoryStock{},
		TopProducts: TopProducts{
			ByStock:    []ProductSummary{},
			MostActive: []ActiveProduct{},
		},
		Alerts: Alerts{
			LowStock:   []ProductSummary{},
			OutOfStock: []ProductSummary{},
		},
		GeneratedAt: now,
	}

	byCategory := map[string]*CategoryStock{}
	byID := make(map[uint]model.Product, len(products))

	for _, p := range products {
		byID[p.ID] = p
		stats.Overview.TotalProducts++
		stats.Overview.TotalStock += p.Stock

		if p.Stock <= LowStockThreshold {
			stats.Overview.LowStockCount++
			stats.Alerts.LowStock = append(stats.Alerts.LowStock, summarize(p))
		}
		if p.Stock == 0 {
			stats.Overview.OutOfStockCount++
			stats.Alerts.OutOfStock = append(stats.Alerts.OutOfStock, summarize(p))
		}

		name := p.Category
		if name == "" {
			name = UncategorizedLabel
		}
		cs, ok := byCategory[name]
		if !ok {
			cs = &CategoryStock{Category: name}
			byCategory[name] = cs
		}
		cs.Stock += p.Stock
		cs.ProductCount++
	}

	for _, cs := range byCategory {
		cs.Percentage = percentage(cs.Stock, stats.Overview.TotalStock)
		stats.StockByCategory = append(stats.StockByCategory, *cs)
	}
	sort.Slice(stats.StockByCategory, func(i, j int) bool {
		a, b := stats.StockByCategory[i], stats.StockByCategory[j]
		if a.Stock != b.Stock {
			return a.Stock > b.Stock
		}
		return a.Category < b.Category
	})

	sorted := make([]model.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Stock != sorted[j].Stock {
			return sorted[i].Stock > sorted[j].Stock
		}
		return sorted[i].ID < sorted[j].ID
	})
	for i := 0; i < len(sorted) && i < TopN; i++ {
		stats.TopProducts.ByStock = append(stats.TopProducts.ByStock, summarize(sorted[i]))
	}

	since := now.Add(-ActivityWindow)
	counts := map[uint]int{}
	for _, e := range recent {
		counts[e.ProductID]++

		if e.ChangeDate.Before(since) {
			continue
		}
		stats.RecentActivity.UpdatesLast7Days++
		if d := e.Delta(); d > 0 {
			stats.RecentActivity.StockIncrease += d
		} else {
			stats.RecentActivity.StockDecrease -= d
		}
	}

	ids := make([]uint, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > TopN {
		ids = ids[:TopN]
	}
	// Ranked first, resolved second: a deleted product still takes its slot.
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		stats.TopProducts.MostActive = append(stats.TopProducts.MostActive, ActiveProduct{
			ProductSummary: summarize(p),
			UpdateCount:    counts[id],
		})
	}

	return stats
}

func summarize(p model.Product) ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Stock: p.Stock, Category: p.Category}
}

// percentage returns part/total as a percentage rounded to one decimal, or 0
// when total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}
