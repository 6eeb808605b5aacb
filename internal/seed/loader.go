package seed

import (
	"context"
	"database/sql"
	"fmt"
)

// resetOrder lists tables children first so foreign keys hold while deleting.
var resetOrder = []string{"order_items", "reviews", "orders", "menu_items", "customers", "restaurants"}

const (
	insertRestaurant = `INSERT INTO restaurants (id, name, location, cuisine_type, capacity) VALUES ($1, $2, $3, $4, $5)`
	insertMenuItem   = `INSERT INTO menu_items (id, restaurant_id, name, category, price, description, calories, is_available) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertCustomer   = `INSERT INTO customers (id, name, email, age_group, preferred_cuisine, loyalty_points, registration_date) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertOrder      = `INSERT INTO orders (id, restaurant_id, customer_id, order_date, total_amount, order_type, status, payment_method, table_number) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	insertOrderItem  = `INSERT INTO order_items (id, order_id, menu_item_id, quantity, unit_price, total_price) VALUES ($1, $2, $3, $4, $5, $6)`
	insertReview     = `INSERT INTO reviews (id, restaurant_id, customer_id, rating, review_text, review_date, food_rating, service_rating, ambiance_rating) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

// Load writes the dataset in a single transaction. With reset, existing rows
// in the six restaurant tables are removed first.
func Load(ctx context.Context, db *sql.DB, data Dataset, reset bool) (Counts, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if reset {
		for _, table := range resetOrder {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return Counts{}, fmt.Errorf("reset %s: %w", table, err)
			}
		}
	}

	for _, item := range data.Restaurants {
		if _, err := tx.ExecContext(ctx, insertRestaurant, item.ID, item.Name, item.Location, item.CuisineType, item.Capacity); err != nil {
			return Counts{}, fmt.Errorf("insert restaurant %d: %w", item.ID, err)
		}
	}
	for _, item := range data.MenuItems {
		if _, err := tx.ExecContext(ctx, insertMenuItem, item.ID, item.RestaurantID, item.Name, item.Category, item.Price, item.Description, item.Calories, item.IsAvailable); err != nil {
			return Counts{}, fmt.Errorf("insert menu item %d: %w", item.ID, err)
		}
	}
	for _, item := range data.Customers {
		if _, err := tx.ExecContext(ctx, insertCustomer, item.ID, item.Name, item.Email, item.AgeGroup, item.PreferredCuisine, item.LoyaltyPoints, item.RegistrationDate); err != nil {
			return Counts{}, fmt.Errorf("insert customer %d: %w", item.ID, err)
		}
	}
	for _, item := range data.Orders {
		var table sql.NullInt64
		if item.TableNumber != nil {
			table = sql.NullInt64{Int64: int64(*item.TableNumber), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertOrder, item.ID, item.RestaurantID, item.CustomerID, item.OrderDate, item.TotalAmount, item.OrderType, item.Status, item.PaymentMethod, table); err != nil {
			return Counts{}, fmt.Errorf("insert order %d: %w", item.ID, err)
		}
	}
	for _, item := range data.OrderItems {
		if _, err := tx.ExecContext(ctx, insertOrderItem, item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.UnitPrice, item.TotalPrice); err != nil {
			return Counts{}, fmt.Errorf("insert order item %d: %w", item.ID, err)
		}
	}
	for _, item := range data.Reviews {
		if _, err := tx.ExecContext(ctx, insertReview, item.ID, item.RestaurantID, item.CustomerID, item.Rating, item.ReviewText, item.ReviewDate, item.FoodRating, item.ServiceRating, item.AmbianceRating); err != nil {
			return Counts{}, fmt.Errorf("insert review %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("commit seed tx: %w", err)
	}
	return data.Counts(), nil
}

// Run generates a dataset from seed and loads it.
func Run(ctx context.Context, db *sql.DB, seed int64, opts Options, reset bool) (Counts, error) {
	data, err := NewGenerator(seed).Generate(opts)
	if err != nil {
		return Counts{}, err
	}
	return Load(ctx, db, data, reset)
}
