package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/catalog"
)

const (
	topItemsLimit    = 10
	topSpendersLimit = 10
	dailySalesLimit  = 30
)

// Records is the filtered purchase feed a report is computed over.
type Records interface {
	Fetch(ctx context.Context, f Filters) ([]Record, error)
}

// Service computes analytics reports. Reads never touch balances or orders;
// a report is a pure function of the purchase records it is computed over.
type Service struct {
	records Records
	cache   *redis.Client // nil disables caching
	ttl     time.Duration
}

// NewService creates analytics service
func NewService(records Records, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{records: records, cache: cache, ttl: ttl}
}

// Report computes the full report for the given filters. Cached reports are
// returned as stored, generated_at included, so repeated reads over unchanged
// data are identical.
func (s *Service) Report(ctx context.Context, f Filters) (*Report, error) {
	key := cacheKey(f)
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var cached Report
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("analytics cache read failed")
		}
	}

	records, err := s.records.Fetch(ctx, f)
	if err != nil {
		return nil, err
	}
	report := aggregate(records, f, time.Now().UTC())

	if s.cache != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("analytics cache write failed")
			}
		}
	}
	return report, nil
}

func cacheKey(f Filters) string {
	minPrice, maxPrice := "", ""
	if f.MinPrice != nil {
		minPrice = fmt.Sprintf("%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%d", *f.MaxPrice)
	}
	return fmt.Sprintf("analytics:report:%s:%s:%s:%s:%s:%s",
		f.TimeRange, f.Currency, f.Category, f.ContentType, minPrice, maxPrice)
}

// aggregate rolls the records up into a report. Rankings break ties by first
// appearance in the feed, which is newest-purchase-first.
func aggregate(records []Record, f Filters, now time.Time) *Report {
	report := &Report{
		TopItems:          []ItemStat{},
		TopSpenders:       []SpenderStat{},
		CurrencyBreakdown: map[string]Bucket{},
		DailySales:        []DailySales{},
		ContentTypeStats:  map[string]Bucket{},
		UserPurchases:     []UserDetail{},
		Filters:           f,
		GeneratedAt:       now,
	}

	// Both currencies and every content type always appear, zeroed when
	// nothing matched.
	for _, c := range balance.Currencies() {
		report.CurrencyBreakdown[string(c)] = Bucket{}
	}
	for _, ct := range catalog.ContentTypes() {
		report.ContentTypeStats[string(ct)] = Bucket{}
	}

	buyers := map[string]bool{}
	itemIDs := map[string]bool{}
	itemStats := map[string]*ItemStat{}
	itemBuyers := map[string]map[string]bool{}
	itemOrder := []string{}
	spenders := map[string]*SpenderStat{}
	spenderItems := map[string]map[string]bool{}
	spenderOrder := []string{}
	daily := map[string]*DailySales{}
	users := map[string]*UserDetail{}
	userOrder := []string{}

	for _, rec := range records {
		report.Overview.TotalRevenue += rec.Price
		report.Overview.TotalPurchases++
		buyers[rec.UserID] = true
		itemIDs[rec.ItemID.String()] = true

		itemKey := rec.ItemID.String()
		stat, ok := itemStats[itemKey]
		if !ok {
			stat = &ItemStat{ItemID: rec.ItemID, ItemName: rec.ItemName}
			itemStats[itemKey] = stat
			itemBuyers[itemKey] = map[string]bool{}
			itemOrder = append(itemOrder, itemKey)
		}
		stat.Sales++
		stat.Revenue += rec.Price
		if !itemBuyers[itemKey][rec.UserID] {
			itemBuyers[itemKey][rec.UserID] = true
			stat.UniqueBuyers++
		}

		sp, ok := spenders[rec.UserID]
		if !ok {
			sp = &SpenderStat{UserID: rec.UserID, Username: rec.Username, Items: []string{}}
			spenders[rec.UserID] = sp
			spenderItems[rec.UserID] = map[string]bool{}
			spenderOrder = append(spenderOrder, rec.UserID)
		}
		sp.Spending += rec.Price
		sp.Purchases++
		if !spenderItems[rec.UserID][rec.ItemName] {
			spenderItems[rec.UserID][rec.ItemName] = true
			sp.Items = append(sp.Items, rec.ItemName)
		}

		bucket := report.CurrencyBreakdown[rec.Currency]
		bucket.Count++
		bucket.Revenue += rec.Price
		report.CurrencyBreakdown[rec.Currency] = bucket

		ctBucket := report.ContentTypeStats[rec.ContentType]
		ctBucket.Count++
		ctBucket.Revenue += rec.Price
		report.ContentTypeStats[rec.ContentType] = ctBucket

		day := rec.PurchaseDate.UTC().Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &DailySales{Date: day}
			daily[day] = d
		}
		d.Count++
		d.Revenue += rec.Price

		detail, ok := users[rec.UserID]
		if !ok {
			detail = &UserDetail{UserID: rec.UserID, Username: rec.Username, Purchases: []UserPurchase{}}
			users[rec.UserID] = detail
			userOrder = append(userOrder, rec.UserID)
		}
		detail.TotalPurchases++
		detail.TotalSpent += rec.Price
		detail.Purchases = append(detail.Purchases, UserPurchase{
			ItemID:       rec.ItemID,
			ItemName:     rec.ItemName,
			Price:        rec.Price,
			PurchaseDate: rec.PurchaseDate,
			Currency:     rec.Currency,
		})
	}

	report.Overview.UniqueBuyers = len(buyers)
	report.Overview.UniqueItems = len(itemIDs)
	if report.Overview.TotalPurchases > 0 {
		report.Overview.AverageOrderValue = float64(report.Overview.TotalRevenue) / float64(report.Overview.TotalPurchases)
	}

	for _, key := range itemOrder {
		report.TopItems = append(report.TopItems, *itemStats[key])
	}
	sort.SliceStable(report.TopItems, func(i, j int) bool {
		return report.TopItems[i].Revenue > report.TopItems[j].Revenue
	})
	if len(report.TopItems) > topItemsLimit {
		report.TopItems = report.TopItems[:topItemsLimit]
	}

	for _, key := range spenderOrder {
		report.TopSpenders = append(report.TopSpenders, *spenders[key])
	}
	sort.SliceStable(report.TopSpenders, func(i, j int) bool {
		return report.TopSpenders[i].Spending > report.TopSpenders[j].Spending
	})
	if len(report.TopSpenders) > topSpendersLimit {
		report.TopSpenders = report.TopSpenders[:topSpendersLimit]
	}

	for _, d := range daily {
		report.DailySales = append(report.DailySales, *d)
	}
	sort.Slice(report.DailySales, func(i, j int) bool {
		return report.DailySales[i].Date > report.DailySales[j].Date
	})
	if len(report.DailySales) > dailySalesLimit {
		report.DailySales = report.DailySales[:dailySalesLimit]
	}

	for _, key := range userOrder {
		report.UserPurchases = append(report.UserPurchases, *users[key])
	}
	sort.SliceStable(report.UserPurchases, func(i, j int) bool {
		return report.UserPurchases[i].TotalSpent > report.UserPurchases[j].TotalSpent
	})

	return report
}
