package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hamsterhub/hamsterhub-api/internal/middleware"
)

func day(offset int) time.Time {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func sampleRecords() []Record {
	sword := uuid.New()
	shield := uuid.New()
	return []Record{
		{UserID: "u1", Username: "alice", ItemID: sword, ItemName: "Sword", Price: 100, Currency: "primary", PurchaseDate: day(0), Category: "weapons", ContentType: "none"},
		{UserID: "u2", Username: "bob", ItemID: sword, ItemName: "Sword", Price: 100, Currency: "primary", PurchaseDate: day(0), Category: "weapons", ContentType: "none"},
		{UserID: "u1", Username: "alice", ItemID: shield, ItemName: "Shield", Price: 40, Currency: "secondary", PurchaseDate: day(-1), Category: "armor", ContentType: "file"},
	}
}

func TestAggregateOverview(t *testing.T) {
	report := aggregate(sampleRecords(), Filters{}, time.Now())

	if report.Overview.TotalRevenue != 240 {
		t.Errorf("total revenue = %d, want 240", report.Overview.TotalRevenue)
	}
	if report.Overview.TotalPurchases != 3 {
		t.Errorf("total purchases = %d, want 3", report.Overview.TotalPurchases)
	}
	if report.Overview.UniqueBuyers != 2 {
		t.Errorf("unique buyers = %d, want 2", report.Overview.UniqueBuyers)
	}
	if report.Overview.UniqueItems != 2 {
		t.Errorf("unique items = %d, want 2", report.Overview.UniqueItems)
	}
	if report.Overview.AverageOrderValue != 80 {
		t.Errorf("average order value = %v, want 80", report.Overview.AverageOrderValue)
	}
}

func TestAggregateEmptyFeed(t *testing.T) {
	report := aggregate(nil, Filters{}, time.Now())

	if report.Overview.AverageOrderValue != 0 {
		t.Errorf("average order value = %v, want 0 for empty feed", report.Overview.AverageOrderValue)
	}
	if report.Overview.TotalRevenue != 0 || report.Overview.TotalPurchases != 0 {
		t.Errorf("overview not zeroed: %+v", report.Overview)
	}
	if len(report.TopItems) != 0 || len(report.TopSpenders) != 0 {
		t.Error("rankings should be empty")
	}
	// Every currency and content type bucket is still present.
	for _, c := range []string{"primary", "secondary"} {
		if _, ok := report.CurrencyBreakdown[c]; !ok {
			t.Errorf("missing currency bucket %q", c)
		}
	}
	for _, ct := range []string{"none", "text", "link", "file", "youtube"} {
		if _, ok := report.ContentTypeStats[ct]; !ok {
			t.Errorf("missing content type bucket %q", ct)
		}
	}
}

func TestAggregateRankings(t *testing.T) {
	report := aggregate(sampleRecords(), Filters{}, time.Now())

	if len(report.TopItems) != 2 {
		t.Fatalf("top items = %d, want 2", len(report.TopItems))
	}
	if report.TopItems[0].ItemName != "Sword" || report.TopItems[0].Revenue != 200 {
		t.Errorf("top item = %+v, want Sword with revenue 200", report.TopItems[0])
	}
	if report.TopItems[0].Sales != 2 || report.TopItems[0].UniqueBuyers != 2 {
		t.Errorf("sword stats = %+v, want 2 sales, 2 unique buyers", report.TopItems[0])
	}

	if len(report.TopSpenders) != 2 {
		t.Fatalf("top spenders = %d, want 2", len(report.TopSpenders))
	}
	if report.TopSpenders[0].UserID != "u1" || report.TopSpenders[0].Spending != 140 {
		t.Errorf("top spender = %+v, want u1 spending 140", report.TopSpenders[0])
	}
	if len(report.TopSpenders[0].Items) != 2 {
		t.Errorf("u1 distinct items = %d, want 2", len(report.TopSpenders[0].Items))
	}
}

func TestAggregateBreakdowns(t *testing.T) {
	report := aggregate(sampleRecords(), Filters{}, time.Now())

	if b := report.CurrencyBreakdown["primary"]; b.Count != 2 || b.Revenue != 200 {
		t.Errorf("primary bucket = %+v, want count 2 revenue 200", b)
	}
	if b := report.CurrencyBreakdown["secondary"]; b.Count != 1 || b.Revenue != 40 {
		t.Errorf("secondary bucket = %+v, want count 1 revenue 40", b)
	}
	if b := report.ContentTypeStats["file"]; b.Count != 1 || b.Revenue != 40 {
		t.Errorf("file bucket = %+v, want count 1 revenue 40", b)
	}
	if b := report.ContentTypeStats["youtube"]; b.Count != 0 || b.Revenue != 0 {
		t.Errorf("youtube bucket = %+v, want zeroed", b)
	}

	if len(report.DailySales) != 2 {
		t.Fatalf("daily sales = %d days, want 2", len(report.DailySales))
	}
	if report.DailySales[0].Date != "2026-08-20" || report.DailySales[0].Count != 2 {
		t.Errorf("newest day = %+v, want 2026-08-20 with 2 sales", report.DailySales[0])
	}
	if report.DailySales[1].Date != "2026-08-19" {
		t.Errorf("second day = %s, want 2026-08-19", report.DailySales[1].Date)
	}
}

func TestAggregateUserDetail(t *testing.T) {
	report := aggregate(sampleRecords(), Filters{}, time.Now())

	if len(report.UserPurchases) != 2 {
		t.Fatalf("user details = %d, want 2", len(report.UserPurchases))
	}
	first := report.UserPurchases[0]
	if first.UserID != "u1" || first.TotalSpent != 140 || first.TotalPurchases != 2 {
		t.Errorf("first user detail = %+v, want u1 with 2 purchases totalling 140", first)
	}
	if len(first.Purchases) != 2 {
		t.Errorf("u1 purchase lines = %d, want 2", len(first.Purchases))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	now := time.Now().UTC()
	records := sampleRecords()
	a := aggregate(records, Filters{Currency: "primary"}, now)
	b := aggregate(records, Filters{Currency: "primary"}, now)

	rawA, _ := json.Marshal(a)
	rawB, _ := json.Marshal(b)
	if string(rawA) != string(rawB) {
		t.Error("same feed and filters produced different reports")
	}
}

type staticRecords struct {
	records []Record
	filters Filters
}

func (s *staticRecords) Fetch(_ context.Context, f Filters) ([]Record, error) {
	s.filters = f
	return s.records, nil
}

type staticAdmin struct{ admin bool }

func (s staticAdmin) IsAdmin(context.Context, string) (bool, error) { return s.admin, nil }

func authed(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

func TestReportHandlerRequiresAuth(t *testing.T) {
	h := NewHandler(NewService(&staticRecords{}, nil, 0), staticAdmin{admin: true})

	rec := httptest.NewRecorder()
	h.Report(rec, httptest.NewRequest(http.MethodGet, "/shop/analytics", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestReportHandlerRequiresAdmin(t *testing.T) {
	h := NewHandler(NewService(&staticRecords{}, nil, 0), staticAdmin{admin: false})

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodGet, "/shop/analytics", nil), "u1")
	h.Report(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestReportHandlerParsesFilters(t *testing.T) {
	records := &staticRecords{records: sampleRecords()}
	h := NewHandler(NewService(records, nil, 0), staticAdmin{admin: true})

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodGet,
		"/shop/analytics?time_range=7&currency=primary&category=weapons&content_type=none&min_price=10&max_price=500", nil), "admin")
	h.Report(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	f := records.filters
	if f.TimeRange != "7" || f.Currency != "primary" || f.Category != "weapons" || f.ContentType != "none" {
		t.Errorf("filters = %+v", f)
	}
	if f.MinPrice == nil || *f.MinPrice != 10 {
		t.Errorf("min price = %v, want 10", f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 500 {
		t.Errorf("max price = %v, want 500", f.MaxPrice)
	}

	var envelope struct {
		Success bool   `json:"success"`
		Data    Report `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Error("success = false, want true")
	}
	if envelope.Data.Overview.TotalPurchases != 3 {
		t.Errorf("total purchases = %d, want 3", envelope.Data.Overview.TotalPurchases)
	}
}

func TestParseTimeRange(t *testing.T) {
	cases := []struct {
		in     string
		days   int
		wantOK bool
	}{
		{"", 0, false},
		{"all", 0, false},
		{"7", 7, true},
		{"30", 30, true},
		{"-1", 0, false},
		{"junk", 0, false},
	}
	for _, tc := range cases {
		days, ok := parseTimeRange(tc.in)
		if ok != tc.wantOK || days != tc.days {
			t.Errorf("parseTimeRange(%q) = (%d, %v), want (%d, %v)", tc.in, days, ok, tc.days, tc.wantOK)
		}
	}
}
