package lookup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nblkmal/nutrition-hub/pkg/ninjas"
	"github.com/nblkmal/nutrition-hub/pkg/storage"
)

type fakeStore struct {
	mu    sync.Mutex
	foods map[string]*storage.Food

	getCalls    int
	insertCalls int
	getErr      error
	insertErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{foods: make(map[string]*storage.Food)}
}

func (f *fakeStore) FoodBySlug(_ context.Context, foodSlug string) (*storage.Food, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if food, ok := f.foods[foodSlug]; ok {
		copied := *food
		return &copied, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) InsertFoodIfAbsent(_ context.Context, food *storage.Food) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.foods[food.Slug]; !ok {
		copied := *food
		copied.ID = uint(len(f.foods) + 1)
		f.foods[food.Slug] = &copied
	}
	return nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	items []ninjas.Item
	err   error
	calls int
}

func (f *fakeFetcher) FetchWithRetry(_ context.Context, _ string) ([]ninjas.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeGate struct {
	mu       sync.Mutex
	allowed  bool
	allowErr error
	recorded []string
}

func (f *fakeGate) AllowCall(_ context.Context) (bool, error) {
	return f.allowed, f.allowErr
}

func (f *fakeGate) RecordCall(_ context.Context, endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, endpoint)
}

func (f *fakeGate) recordedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recorded)
}

type recordedMetric struct {
	query string
	slug  string
	hit   bool
}

type fakeMetrics struct {
	mu      sync.Mutex
	records []recordedMetric
}

func (f *fakeMetrics) Record(_ context.Context, query, foodSlug string, cacheHit bool, _ int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedMetric{query: query, slug: foodSlug, hit: cacheHit})
}

type fixture struct {
	store   *fakeStore
	fetcher *fakeFetcher
	gate    *fakeGate
	metrics *fakeMetrics
	svc     *Service
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		store:   newFakeStore(),
		fetcher: &fakeFetcher{},
		gate:    &fakeGate{allowed: true},
		metrics: &fakeMetrics{},
	}
	f.svc = NewService(f.store, f.fetcher, f.gate, f.metrics, cfg)
	return f
}

var chickenItem = ninjas.Item{
	Name:         "chicken breast",
	Calories:     165,
	ServingSizeG: 100,
	ProteinG:     31,
	FatTotalG:    3.6,
}

func TestLookup_ValidationFailureTouchesNothing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty query", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "too short", raw: "a"},
		{name: "201 characters too long", raw: strings.Repeat("a", 201)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Config{})

			_, err := f.svc.Lookup(context.Background(), tt.raw)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Lookup() error = %v, want *ValidationError", err)
			}
			if len(vErr.Reasons) == 0 {
				t.Error("validation error should carry reasons")
			}
			if f.store.getCalls != 0 || f.store.insertCalls != 0 {
				t.Error("validation failure must not touch the store")
			}
			if f.fetcher.calls != 0 {
				t.Error("validation failure must not reach the provider")
			}
			if f.gate.recordedCalls() != 0 {
				t.Error("validation failure must not record quota")
			}
			if len(f.metrics.records) != 0 {
				t.Error("validation failure must not count as a cache miss")
			}
		})
	}
}

func TestLookup_CacheHit(t *testing.T) {
	f := newFixture(Config{})
	f.store.foods["chicken-breast"] = &storage.Food{
		ID: 1, Name: "Chicken Breast", Slug: "chicken-breast",
		Calories: 165, ProteinG: 31, DataSource: storage.SourceSeed,
	}

	result, err := f.svc.Lookup(context.Background(), "Chicken Breast")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if result.Outcome != OutcomeFound {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeFound)
	}
	if result.Food == nil || result.Food.Calories != 165 {
		t.Errorf("unexpected food: %+v", result.Food)
	}
	if f.fetcher.calls != 0 {
		t.Error("cache hit must never reach the provider")
	}
	if f.gate.recordedCalls() != 0 {
		t.Error("cache hit must never record quota")
	}
	if len(f.metrics.records) != 1 || !f.metrics.records[0].hit {
		t.Errorf("expected one hit metric, got %+v", f.metrics.records)
	}
}

func TestLookup_CaseVariantsShareTheCacheEntry(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.items = []ninjas.Item{chickenItem}

	// First lookup misses and fetches from the provider.
	first, err := f.svc.Lookup(context.Background(), "chicken breast")
	if err != nil {
		t.Fatalf("first Lookup() error = %v", err)
	}
	if first.Outcome != OutcomeFound {
		t.Fatalf("first Outcome = %q, want found", first.Outcome)
	}
	if first.Food.DataSource != storage.SourceExternalAPI {
		t.Errorf("DataSource = %q, want %q", first.Food.DataSource, storage.SourceExternalAPI)
	}

	// Second lookup with different case hits the same slug.
	second, err := f.svc.Lookup(context.Background(), "Chicken Breast")
	if err != nil {
		t.Fatalf("second Lookup() error = %v", err)
	}
	if second.Outcome != OutcomeFound {
		t.Fatalf("second Outcome = %q, want found", second.Outcome)
	}
	if f.fetcher.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second lookup must hit cache)", f.fetcher.calls)
	}
	if second.Food.Calories != 165 || second.Food.ProteinG != 31 {
		t.Errorf("cache hit returned different data: %+v", second.Food)
	}
	if !f.metrics.records[1].hit {
		t.Error("second lookup should record a hit metric")
	}
}

func TestLookup_QuotaBlockedDegrades(t *testing.T) {
	f := newFixture(Config{})
	f.gate.allowed = false

	result, err := f.svc.Lookup(context.Background(), "new query")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if result.Outcome != OutcomeUnavailable {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeUnavailable)
	}
	if f.fetcher.calls != 0 {
		t.Error("blocked lookup must perform zero outbound calls")
	}
	if len(f.metrics.records) != 1 || f.metrics.records[0].hit {
		t.Errorf("expected exactly one miss metric, got %+v", f.metrics.records)
	}
	if f.gate.recordedCalls() != 0 {
		t.Error("blocked lookup must not record a quota call")
	}
}

func TestLookup_ProviderRateLimitedDegrades(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.err = &ninjas.APIError{StatusCode: 429, Class: ninjas.ErrorClassQuota, Message: "api quota exceeded"}

	result, err := f.svc.Lookup(context.Background(), "chicken breast")
	if err != nil {
		t.Fatalf("Lookup() error = %v, want graceful degradation", err)
	}

	if result.Outcome != OutcomeUnavailable {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeUnavailable)
	}
	if f.gate.recordedCalls() != 0 {
		t.Error("429 must never be recorded as a quota call")
	}
	if f.store.insertCalls != 0 {
		t.Error("no cache entry may be written on failure")
	}
	if len(f.metrics.records) != 1 || f.metrics.records[0].hit {
		t.Errorf("expected one miss metric, got %+v", f.metrics.records)
	}
}

func TestLookup_ZeroItemsIsNotFound(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.items = nil

	result, err := f.svc.Lookup(context.Background(), "xyzzy food")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if result.Outcome != OutcomeNotFound {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeNotFound)
	}
	if result.Food != nil {
		t.Error("NotFound result must carry no food")
	}
	if f.gate.recordedCalls() != 1 {
		t.Errorf("quota calls = %d, want 1 (the 2xx reached the provider)", f.gate.recordedCalls())
	}
	if f.store.insertCalls != 0 {
		t.Error("no cache entry may be written for a zero-item response")
	}
}

func TestLookup_SuccessPersistsAndRecords(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.items = []ninjas.Item{chickenItem}

	result, err := f.svc.Lookup(context.Background(), "chicken breast")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if result.Outcome != OutcomeFound {
		t.Fatalf("Outcome = %q, want found", result.Outcome)
	}
	if result.Food.ID == 0 {
		t.Error("result must be the re-read persisted row, not the local payload")
	}
	stored := f.store.foods["chicken-breast"]
	if stored == nil {
		t.Fatal("food was not persisted under the normalized slug")
	}
	if stored.DataSource != storage.SourceExternalAPI {
		t.Errorf("DataSource = %q, want %q", stored.DataSource, storage.SourceExternalAPI)
	}
	if f.gate.recordedCalls() != 1 {
		t.Errorf("quota calls = %d, want 1", f.gate.recordedCalls())
	}
	if len(f.metrics.records) != 1 || f.metrics.records[0].hit {
		t.Errorf("expected one miss metric, got %+v", f.metrics.records)
	}
	if f.metrics.records[0].slug != "chicken-breast" {
		t.Errorf("metric slug = %q, want chicken-breast", f.metrics.records[0].slug)
	}
}

func TestLookup_ServerErrorPropagatesTyped(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.err = &ninjas.APIError{StatusCode: 502, Class: ninjas.ErrorClassServer, Message: "provider server error"}

	_, err := f.svc.Lookup(context.Background(), "chicken breast")
	if ninjas.Classify(err) != ninjas.ErrorClassServer {
		t.Fatalf("Lookup() error = %v, want server-class APIError", err)
	}
	if f.store.insertCalls != 0 {
		t.Error("no cache entry may be written on failure")
	}
	if f.gate.recordedCalls() != 0 {
		t.Error("failed call must not be recorded against quota by default")
	}
}

func TestLookup_BillableFailureKnob(t *testing.T) {
	clientErr := &ninjas.APIError{StatusCode: 400, Class: ninjas.ErrorClassClient, Message: "request failed"}

	t.Run("disabled records nothing", func(t *testing.T) {
		f := newFixture(Config{RecordBillableFailures: false})
		f.fetcher.err = clientErr

		_, err := f.svc.Lookup(context.Background(), "chicken breast")
		if err == nil {
			t.Fatal("expected error")
		}
		if f.gate.recordedCalls() != 0 {
			t.Errorf("quota calls = %d, want 0", f.gate.recordedCalls())
		}
	})

	t.Run("enabled records the billable failure", func(t *testing.T) {
		f := newFixture(Config{RecordBillableFailures: true})
		f.fetcher.err = clientErr

		_, err := f.svc.Lookup(context.Background(), "chicken breast")
		if err == nil {
			t.Fatal("expected error")
		}
		if f.gate.recordedCalls() != 1 {
			t.Errorf("quota calls = %d, want 1", f.gate.recordedCalls())
		}
	})

	t.Run("enabled still never records a 429", func(t *testing.T) {
		f := newFixture(Config{RecordBillableFailures: true})
		f.fetcher.err = &ninjas.APIError{StatusCode: 429, Class: ninjas.ErrorClassQuota}

		result, err := f.svc.Lookup(context.Background(), "chicken breast")
		if err != nil || result.Outcome != OutcomeUnavailable {
			t.Fatalf("result = %+v, err = %v; want unavailable", result, err)
		}
		if f.gate.recordedCalls() != 0 {
			t.Errorf("quota calls = %d, want 0", f.gate.recordedCalls())
		}
	})
}

func TestLookup_StoreErrorPropagates(t *testing.T) {
	f := newFixture(Config{})
	f.store.getErr = errors.New("db locked")

	if _, err := f.svc.Lookup(context.Background(), "chicken breast"); err == nil {
		t.Error("store failure must propagate")
	}
}

func TestLookup_QuotaCheckErrorPropagates(t *testing.T) {
	f := newFixture(Config{})
	f.gate.allowErr = errors.New("db locked")

	if _, err := f.svc.Lookup(context.Background(), "chicken breast"); err == nil {
		t.Error("quota check failure must propagate")
	}
}

func TestLookup_ConcurrentDuplicatesConverge(t *testing.T) {
	f := newFixture(Config{})
	f.fetcher.items = []ninjas.Item{chickenItem}

	const n = 8
	var wg sync.WaitGroup
	results := make([]Result, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Lookup(context.Background(), "chicken breast")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("lookup %d error = %v", i, errs[i])
		}
		if results[i].Outcome != OutcomeFound {
			t.Fatalf("lookup %d outcome = %q, want found", i, results[i].Outcome)
		}
		if results[i].Food.Calories != 165 {
			t.Errorf("lookup %d returned different data: %+v", i, results[i].Food)
		}
	}

	if len(f.store.foods) != 1 {
		t.Errorf("stored entries = %d, want exactly 1", len(f.store.foods))
	}
}

func TestFoodFromItem(t *testing.T) {
	t.Run("negative quantities are clamped", func(t *testing.T) {
		food := foodFromItem(ninjas.Item{Name: "weird", Calories: -5, ProteinG: 2}, "weird")
		if food.Calories != 0 {
			t.Errorf("Calories = %v, want 0", food.Calories)
		}
		if food.ProteinG != 2 {
			t.Errorf("ProteinG = %v, want 2", food.ProteinG)
		}
	})

	t.Run("zero serving size defaults to 100g", func(t *testing.T) {
		food := foodFromItem(ninjas.Item{Name: "rice"}, "rice")
		if food.ServingSizeG != storage.DefaultServingSizeG {
			t.Errorf("ServingSizeG = %v, want %v", food.ServingSizeG, storage.DefaultServingSizeG)
		}
	})
}
