package api

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/menulens/menulens/internal/analytics"
	"github.com/menulens/menulens/internal/export"
	"github.com/menulens/menulens/internal/query"
	"github.com/menulens/menulens/internal/seed"
	"github.com/menulens/menulens/internal/storage"
	"github.com/menulens/menulens/internal/store"
)

type fakeAnalyst struct {
	answer         analytics.Answer
	err            error
	related        analytics.RelatedQuestions
	questions      []string
	relatedResults []query.Result
	checkedSQL     []string
}

func (f *fakeAnalyst) Answer(_ context.Context, question string) (analytics.Answer, error) {
	f.questions = append(f.questions, question)
	if f.err != nil {
		return analytics.Answer{}, f.err
	}
	answer := f.answer
	answer.Question = question
	return answer, nil
}

func (f *fakeAnalyst) Related(_ context.Context, _ string, result query.Result) analytics.RelatedQuestions {
	f.relatedResults = append(f.relatedResults, result)
	if f.related.Questions == nil {
		return analytics.FallbackQuestions()
	}
	return f.related
}

func (f *fakeAnalyst) IsSafe(statement string) bool {
	f.checkedSQL = append(f.checkedSQL, statement)
	return analytics.IsSafe(statement)
}

func (f *fakeAnalyst) Dialect() string {
	return "SQLite"
}

type fakeDashboard struct {
	metrics     store.Metrics
	trend       []store.RevenuePoint
	cuisines    []store.CuisinePerformance
	restaurants []store.Restaurant
	menu        map[int64][]store.MenuItem
	err         error
	countTables []string
}

func (f *fakeDashboard) Metrics(context.Context) (store.Metrics, error) {
	return f.metrics, f.err
}

func (f *fakeDashboard) RevenueTrend(context.Context) ([]store.RevenuePoint, error) {
	return f.trend, f.err
}

func (f *fakeDashboard) CuisinePerformance(context.Context) ([]store.CuisinePerformance, error) {
	return f.cuisines, f.err
}

func (f *fakeDashboard) ListRestaurants(context.Context) ([]store.Restaurant, error) {
	if f.restaurants == nil {
		return []store.Restaurant{}, f.err
	}
	return f.restaurants, f.err
}

func (f *fakeDashboard) ListMenuItems(_ context.Context, restaurantID int64) ([]store.MenuItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	items, ok := f.menu[restaurantID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return items, nil
}

func (f *fakeDashboard) TableCounts(_ context.Context, tables []string) ([]store.TableCount, error) {
	f.countTables = tables
	out := make([]store.TableCount, 0, len(tables))
	for i, table := range tables {
		out = append(out, store.TableCount{Table: table, Rows: int64(i * 10)})
	}
	return out, f.err
}

type fakeExporter struct {
	receipt  export.Receipt
	err      error
	exported []query.Result
	objects  map[string][]byte
}

func (f *fakeExporter) Export(_ context.Context, _, _ string, result query.Result) (export.Receipt, error) {
	f.exported = append(f.exported, result)
	if f.err != nil {
		return export.Receipt{}, f.err
	}
	return f.receipt, nil
}

func (f *fakeExporter) Open(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, export.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: time.Now()}, nil
}

type seedCall struct {
	randomSeed int64
	opts       seed.Options
	reset      bool
}

type fakeSeeder struct {
	calls []seedCall
	err   error
}

func (f *fakeSeeder) seed(_ context.Context, randomSeed int64, opts seed.Options, reset bool) (seed.Counts, error) {
	f.calls = append(f.calls, seedCall{randomSeed: randomSeed, opts: opts, reset: reset})
	if f.err != nil {
		return seed.Counts{}, f.err
	}
	return seed.Counts{Restaurants: opts.Restaurants, Customers: opts.Customers, Orders: opts.Orders, Reviews: opts.Reviews}, nil
}
