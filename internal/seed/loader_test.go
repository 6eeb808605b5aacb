package seed

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func smallDataset() Dataset {
	at := time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)
	table := 4
	return Dataset{
		Restaurants: []Restaurant{{ID: 1, Name: "Bella Vista", Location: "Westside", CuisineType: "Italian", Capacity: 80}},
		MenuItems:   []MenuItem{{ID: 1, RestaurantID: 1, Name: "Tiramisu", Category: "Desserts", Price: 8.99, Description: "Classic Italian dessert", Calories: 420, IsAvailable: 1}},
		Customers:   []Customer{{ID: 1, Name: "Mary Chen", Email: "mary.chen.1@example.com", AgeGroup: "26-35", PreferredCuisine: "Italian", LoyaltyPoints: 120, RegistrationDate: at}},
		Orders: []Order{
			{ID: 1, RestaurantID: 1, CustomerID: 1, OrderDate: at, TotalAmount: 17.98, OrderType: "dine-in", Status: "completed", PaymentMethod: "card", TableNumber: &table},
			{ID: 2, RestaurantID: 1, CustomerID: 1, OrderDate: at, TotalAmount: 8.99, OrderType: "takeout", Status: "completed", PaymentMethod: "cash"},
		},
		OrderItems: []OrderItem{{ID: 1, OrderID: 1, MenuItemID: 1, Quantity: 2, UnitPrice: 8.99, TotalPrice: 17.98}},
		Reviews:    []Review{{ID: 1, RestaurantID: 1, CustomerID: 1, Rating: 5, ReviewText: "Absolutely amazing!", ReviewDate: at, FoodRating: 5, ServiceRating: 4, AmbianceRating: 5}},
	}
}

func TestLoadInsertsDatasetInOneTransaction(t *testing.T) {
	db, mock := newSQLMock(t)
	data := smallDataset()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertRestaurant)).
		WithArgs(int64(1), "Bella Vista", "Westside", "Italian", 80).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertMenuItem)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertCustomer)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WithArgs(int64(1), int64(1), int64(1), sqlmock.AnyArg(), 17.98, "dine-in", "completed", "card", int64(4)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WithArgs(int64(2), int64(1), int64(1), sqlmock.AnyArg(), 8.99, "takeout", "completed", "cash", nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderItem)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertReview)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	counts, err := Load(context.Background(), db, data, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Counts{Restaurants: 1, MenuItems: 1, Customers: 1, Orders: 2, OrderItems: 1, Reviews: 1}
	if counts != want {
		t.Fatalf("Load() = %+v, want %+v", counts, want)
	}
	assertSQLMock(t, mock)
}

func TestLoadResetDeletesChildrenFirst(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectBegin()
	for _, table := range []string{"order_items", "reviews", "orders", "menu_items", "customers", "restaurants"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table)).WillReturnResult(sqlmock.NewResult(0, 3))
	}
	mock.ExpectCommit()

	if _, err := Load(context.Background(), db, Dataset{}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSQLMock(t, mock)
}

func TestLoadRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newSQLMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertRestaurant)).WillReturnError(errors.New("UNIQUE constraint failed: restaurants.id"))
	mock.ExpectRollback()

	_, err := Load(context.Background(), db, smallDataset(), false)
	if err == nil || err.Error() != "insert restaurant 1: UNIQUE constraint failed: restaurants.id" {
		t.Fatalf("Load() error = %v", err)
	}
	assertSQLMock(t, mock)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	db, mock := newSQLMock(t)
	if _, err := Run(context.Background(), db, 1, Options{}, false); err == nil {
		t.Fatal("Run() expected validation error")
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
