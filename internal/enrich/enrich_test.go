package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hoanghai1803/casescout/internal/models"
)

// fakePublished serves fixed publication times by URL and counts calls.
type fakePublished struct {
	mu    sync.Mutex
	times map[string]time.Time
	errs  map[string]error
	calls []string
}

func (f *fakePublished) lookup(_ context.Context, pageURL string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageURL)
	if err, ok := f.errs[pageURL]; ok {
		return nil, err
	}
	if t, ok := f.times[pageURL]; ok {
		return &t, nil
	}
	return nil, nil
}

func TestFillMissingDates(t *testing.T) {
	fake := &fakePublished{
		times: map[string]time.Time{
			"https://a.example/cases/1": time.Date(2024, time.May, 6, 10, 0, 0, 0, time.UTC),
			"https://b.example/cases/2": time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		errs: map[string]error{
			"https://c.example/cases/3": errors.New("boom"),
		},
	}
	e := newEnricher(fake.lookup, Options{MaxConcurrent: 2, RateLimit: -1})

	cases := []models.Case{
		{Title: "One", URL: "https://a.example/cases/1"},
		{Title: "Dated", URL: "https://a.example/cases/dated", PublishedAt: models.DatePtr("2020-01-01")},
		{Title: "Two", URL: "https://b.example/cases/2"},
		{Title: "Three", URL: "https://c.example/cases/3"},
		{Title: "Four", URL: "https://d.example/cases/4"},
	}

	filled, err := e.FillMissingDates(context.Background(), cases)
	if err != nil {
		t.Fatalf("FillMissingDates() error: %v", err)
	}
	if filled != 2 {
		t.Errorf("filled = %d, want 2", filled)
	}

	want := []string{"2024-05-06", "2020-01-01", "2023-01-02", "", ""}
	for i, w := range want {
		got := ""
		if cases[i].PublishedAt != nil {
			got = *cases[i].PublishedAt
		}
		if got != w {
			t.Errorf("cases[%d].PublishedAt = %q, want %q", i, got, w)
		}
	}

	for _, u := range fake.calls {
		if u == "https://a.example/cases/dated" {
			t.Error("case with a date should not be fetched")
		}
	}
	if len(fake.calls) != 4 {
		t.Errorf("got %d lookups, want 4", len(fake.calls))
	}
}

func TestFillMissingDates_CanceledContext(t *testing.T) {
	fake := &fakePublished{}
	e := newEnricher(fake.lookup, Options{RateLimit: -1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []models.Case{{Title: "One", URL: "https://a.example/cases/1"}}
	if _, err := e.FillMissingDates(ctx, cases); !errors.Is(err, context.Canceled) {
		t.Fatalf("FillMissingDates() error = %v, want context.Canceled", err)
	}
	if cases[0].PublishedAt != nil {
		t.Error("PublishedAt should stay nil")
	}
}

func TestWaitForRateLimit_SpacesSameHost(t *testing.T) {
	e := newEnricher(nil, Options{RateLimit: 40 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := e.waitForRateLimit(ctx, "a.example"); err != nil {
			t.Fatalf("waitForRateLimit() error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("three requests took %v, want at least 80ms", elapsed)
	}

	other := time.Now()
	if err := e.waitForRateLimit(ctx, "b.example"); err != nil {
		t.Fatalf("waitForRateLimit() error: %v", err)
	}
	if elapsed := time.Since(other); elapsed > 30*time.Millisecond {
		t.Errorf("first request to another host waited %v", elapsed)
	}
}

func TestHostOf(t *testing.T) {
	if got := hostOf("https://ads.vk.com:443/cases/x"); got != "ads.vk.com" {
		t.Errorf("hostOf() = %q, want %q", got, "ads.vk.com")
	}
}
