package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrNotFound = errors.New("not found")

type Metrics struct {
	Restaurants     int64   `json:"total_restaurants"`
	Orders          int64   `json:"total_orders"`
	Revenue         float64 `json:"total_revenue"`
	AverageRating   float64 `json:"avg_rating"`
	Customers       int64   `json:"total_customers"`
	ActiveCustomers int64   `json:"active_customers"`
}

type RevenuePoint struct {
	Day     string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type CuisinePerformance struct {
	CuisineType string  `json:"cuisine_type"`
	OrderCount  int64   `json:"order_count"`
	Revenue     float64 `json:"revenue"`
}

type Restaurant struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	CuisineType string `json:"cuisine_type"`
	Capacity    int64  `json:"capacity"`
}

type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description *string `json:"description,omitempty"`
	Calories    *int64  `json:"calories,omitempty"`
	IsAvailable bool    `json:"is_available"`
}

type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

const revenueTrendDays = 30

// Repository serves the fixed dashboard reads. Statements use $n
// placeholders, which all supported drivers accept.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (r *Repository) Metrics(ctx context.Context) (Metrics, error) {
	var metrics Metrics
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&metrics.Restaurants); err != nil {
		return Metrics{}, fmt.Errorf("count restaurants: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COUNT(DISTINCT customer_id)
FROM orders`).Scan(&metrics.Orders, &metrics.Revenue, &metrics.ActiveCustomers); err != nil {
		return Metrics{}, fmt.Errorf("aggregate orders: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(AVG(rating), 0) FROM reviews`).Scan(&metrics.AverageRating); err != nil {
		return Metrics{}, fmt.Errorf("average rating: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&metrics.Customers); err != nil {
		return Metrics{}, fmt.Errorf("count customers: %w", err)
	}
	return metrics, nil
}

// RevenueTrend returns daily revenue for the most recent days with orders,
// oldest first.
func (r *Repository) RevenueTrend(ctx context.Context) ([]RevenuePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT SUBSTR(CAST(order_date AS TEXT), 1, 10) AS day, SUM(total_amount) AS revenue
FROM orders
GROUP BY SUBSTR(CAST(order_date AS TEXT), 1, 10)
ORDER BY day DESC
LIMIT $1`, revenueTrendDays)
	if err != nil {
		return nil, fmt.Errorf("query revenue trend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	points := make([]RevenuePoint, 0, revenueTrendDays)
	for rows.Next() {
		var point RevenuePoint
		if err := rows.Scan(&point.Day, &point.Revenue); err != nil {
			return nil, fmt.Errorf("scan revenue point: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revenue trend: %w", err)
	}
	slices.Reverse(points)
	return points, nil
}

func (r *Repository) CuisinePerformance(ctx context.Context) ([]CuisinePerformance, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT r.cuisine_type, COUNT(o.id) AS order_count, SUM(o.total_amount) AS revenue
FROM restaurants r
JOIN orders o ON r.id = o.restaurant_id
GROUP BY r.cuisine_type
ORDER BY revenue DESC`)
	if err != nil {
		return nil, fmt.Errorf("query cuisine performance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]CuisinePerformance, 0)
	for rows.Next() {
		var item CuisinePerformance
		if err := rows.Scan(&item.CuisineType, &item.OrderCount, &item.Revenue); err != nil {
			return nil, fmt.Errorf("scan cuisine performance: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cuisine performance: %w", err)
	}
	return out, nil
}

func (r *Repository) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, location, cuisine_type, capacity
FROM restaurants
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]Restaurant, 0)
	for rows.Next() {
		var item Restaurant
		if err := rows.Scan(&item.ID, &item.Name, &item.Location, &item.CuisineType, &item.Capacity); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}
	return out, nil
}

// ListMenuItems returns ErrNotFound when the restaurant has no menu items.
func (r *Repository) ListMenuItems(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, category, price, description, calories, is_available
FROM menu_items
WHERE restaurant_id = $1
ORDER BY category, name`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]MenuItem, 0)
	for rows.Next() {
		var (
			item        MenuItem
			description sql.NullString
			calories    sql.NullInt64
			available   int64
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &description, &calories, &available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		if description.Valid {
			item.Description = &description.String
		}
		if calories.Valid {
			item.Calories = &calories.Int64
		}
		item.IsAvailable = available != 0
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// TableCounts reports the row count of each named table. Names must come
// from the schema descriptor, never from request input.
func (r *Repository) TableCounts(ctx context.Context, tables []string) ([]TableCount, error) {
	out := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		var count int64
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(table)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out = append(out, TableCount{Table: table, Rows: count})
	}
	return out, nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
