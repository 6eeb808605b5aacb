// Package seed generates and loads the deterministic sample restaurant
// dataset used by the dashboard and for trying questions locally.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

var (
	restaurantNames = []string{
		"The Golden Spoon", "Bella Vista", "Dragon Palace", "Mama's Kitchen",
		"Ocean Breeze", "The Rustic Table", "Spice Garden", "Urban Bistro",
		"Sunset Grill", "The Cozy Corner",
	}
	locations = []string{
		"Downtown", "Westside", "Eastside", "Northside", "Southside",
		"City Center", "Riverside", "Hillside", "Beachfront", "Suburban Plaza",
	}
	cuisineTypes = []string{
		"Italian", "Chinese", "Mexican", "American", "Indian",
		"Japanese", "Mediterranean", "Thai", "French", "Korean",
	}
	ageGroups      = []string{"18-25", "26-35", "36-45", "46-55", "55+"}
	orderTypes     = []string{"dine-in", "takeout", "delivery"}
	paymentMethods = []string{"cash", "card", "digital"}
	firstNames     = []string{
		"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
		"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
		"Thomas", "Sarah", "Carlos", "Aiko", "Priya", "Wei", "Fatima", "Lukas",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Taylor",
		"Thomas", "Moore", "Nguyen", "Kim", "Patel", "Chen", "Schmidt",
	}
)

type menuTemplate struct {
	category    string
	name        string
	description string
	basePrice   float64
}

var menuTemplates = []menuTemplate{
	{"Appetizers", "Caesar Salad", "Fresh romaine lettuce with parmesan", 12.99},
	{"Appetizers", "Chicken Wings", "Spicy buffalo wings with ranch", 14.99},
	{"Appetizers", "Mozzarella Sticks", "Crispy fried mozzarella", 9.99},
	{"Appetizers", "Bruschetta", "Toasted bread with tomato and basil", 8.99},
	{"Main Course", "Grilled Salmon", "Atlantic salmon with herbs", 24.99},
	{"Main Course", "Beef Steak", "Prime ribeye steak", 32.99},
	{"Main Course", "Chicken Parmesan", "Breaded chicken with marinara", 19.99},
	{"Main Course", "Vegetable Pasta", "Fresh pasta with seasonal vegetables", 16.99},
	{"Main Course", "Fish Tacos", "Grilled fish with avocado", 15.99},
	{"Desserts", "Chocolate Cake", "Rich chocolate layer cake", 7.99},
	{"Desserts", "Tiramisu", "Classic Italian dessert", 8.99},
	{"Desserts", "Ice Cream", "Vanilla, chocolate, or strawberry", 5.99},
	{"Beverages", "Coffee", "Freshly brewed coffee", 3.99},
	{"Beverages", "Soft Drink", "Coca-Cola, Pepsi, Sprite", 2.99},
	{"Beverages", "Fresh Juice", "Orange, apple, or cranberry", 4.99},
}

// reviewTemplates is indexed by rating - 1.
var reviewTemplates = [5][3]string{
	{
		"Terrible experience. Poor food quality and bad service.",
		"Would not recommend. Multiple problems with our visit.",
		"Very disappointing. Food was cold and service was awful.",
	},
	{
		"Disappointing experience. Food was below expectations.",
		"Service was slow and food was mediocre. Expected better.",
		"Not impressed. Several issues with our order.",
	},
	{
		"Average experience. Food was okay but nothing special.",
		"Decent restaurant. Some dishes were better than others.",
		"It was fine. Not bad but not exceptional either.",
	},
	{
		"Great food and good service. Really enjoyed our meal here.",
		"Very good restaurant with tasty dishes. Minor wait time but worth it.",
		"Solid choice for dining. Good quality food and friendly staff.",
	},
	{
		"Absolutely amazing! The food was incredible and service was perfect.",
		"Best restaurant experience I've had in years. Highly recommended!",
		"Outstanding food quality and excellent atmosphere. Will definitely return.",
	},
}

var ratingWeights = [5]int{5, 10, 20, 35, 30}

const (
	MaxRestaurants       = 10
	registrationLookback = 2 * 365 * 24 * time.Hour
	maxReviewDelayDays   = 7
)

type Options struct {
	Restaurants   int
	Customers     int
	Orders        int
	Reviews       int
	DateRangeDays int
}

func (o Options) Validate() error {
	if o.Restaurants < 1 || o.Restaurants > MaxRestaurants {
		return fmt.Errorf("restaurants must be between 1 and %d", MaxRestaurants)
	}
	if o.Customers < 1 {
		return fmt.Errorf("customers must be >= 1")
	}
	if o.Orders < 0 || o.Reviews < 0 {
		return fmt.Errorf("orders and reviews must be >= 0")
	}
	if o.Reviews > 0 && o.Orders == 0 {
		return fmt.Errorf("reviews require at least one order")
	}
	if o.DateRangeDays < 1 {
		return fmt.Errorf("date range days must be >= 1")
	}
	return nil
}

type Restaurant struct {
	ID          int64
	Name        string
	Location    string
	CuisineType string
	Capacity    int
}

type MenuItem struct {
	ID           int64
	RestaurantID int64
	Name         string
	Category     string
	Price        float64
	Description  string
	Calories     int
	IsAvailable  int
}

type Customer struct {
	ID               int64
	Name             string
	Email            string
	AgeGroup         string
	PreferredCuisine string
	LoyaltyPoints    int
	RegistrationDate time.Time
}

type Order struct {
	ID            int64
	RestaurantID  int64
	CustomerID    int64
	OrderDate     time.Time
	TotalAmount   float64
	OrderType     string
	Status        string
	PaymentMethod string
	TableNumber   *int
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

type Review struct {
	ID             int64
	RestaurantID   int64
	CustomerID     int64
	Rating         int
	ReviewText     string
	ReviewDate     time.Time
	FoodRating     int
	ServiceRating  int
	AmbianceRating int
}

type Dataset struct {
	Restaurants []Restaurant
	MenuItems   []MenuItem
	Customers   []Customer
	Orders      []Order
	OrderItems  []OrderItem
	Reviews     []Review
}

type Counts struct {
	Restaurants int `json:"restaurants"`
	MenuItems   int `json:"menu_items"`
	Customers   int `json:"customers"`
	Orders      int `json:"orders"`
	OrderItems  int `json:"order_items"`
	Reviews     int `json:"reviews"`
}

func (d Dataset) Counts() Counts {
	return Counts{
		Restaurants: len(d.Restaurants),
		MenuItems:   len(d.MenuItems),
		Customers:   len(d.Customers),
		Orders:      len(d.Orders),
		OrderItems:  len(d.OrderItems),
		Reviews:     len(d.Reviews),
	}
}

// Generator produces the same dataset for the same seed and clock.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (g *Generator) Generate(opts Options) (Dataset, error) {
	if err := opts.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("validate seed options: %w", err)
	}
	now := g.now()

	var data Dataset
	data.Restaurants = g.restaurants(opts.Restaurants)
	data.MenuItems = g.menuItems(data.Restaurants)
	data.Customers = g.customers(opts.Customers, now)
	data.Orders, data.OrderItems = g.orders(opts.Orders, opts.DateRangeDays, now, data.Restaurants, data.Customers, data.MenuItems)
	data.Reviews = g.reviews(opts.Reviews, data.Orders)
	return data, nil
}

func (g *Generator) restaurants(count int) []Restaurant {
	out := make([]Restaurant, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Restaurant{
			ID:          int64(i + 1),
			Name:        restaurantNames[i],
			Location:    locations[i],
			CuisineType: cuisineTypes[i],
			Capacity:    g.between(50, 200),
		})
	}
	return out
}

func (g *Generator) menuItems(restaurants []Restaurant) []MenuItem {
	out := make([]MenuItem, 0, len(restaurants)*len(menuTemplates))
	for _, restaurant := range restaurants {
		for _, tmpl := range menuTemplates {
			multiplier := 0.8 + g.rnd.Float64()*0.5
			available := 1
			if g.rnd.Intn(4) == 0 {
				available = 0
			}
			out = append(out, MenuItem{
				ID:           int64(len(out) + 1),
				RestaurantID: restaurant.ID,
				Name:         tmpl.name,
				Category:     tmpl.category,
				Price:        round2(tmpl.basePrice * multiplier),
				Description:  tmpl.description,
				Calories:     g.between(200, 800),
				IsAvailable:  available,
			})
		}
	}
	return out
}

func (g *Generator) customers(count int, now time.Time) []Customer {
	out := make([]Customer, 0, count)
	for i := 0; i < count; i++ {
		id := int64(i + 1)
		first := pickOne(g.rnd, firstNames)
		last := pickOne(g.rnd, lastNames)
		registered := now.Add(-time.Duration(g.rnd.Int63n(int64(registrationLookback))))
		out = append(out, Customer{
			ID:               id,
			Name:             first + " " + last,
			Email:            fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), id),
			AgeGroup:         pickOne(g.rnd, ageGroups),
			PreferredCuisine: pickOne(g.rnd, cuisineTypes),
			LoyaltyPoints:    g.between(0, 1000),
			RegistrationDate: registered.Truncate(24 * time.Hour),
		})
	}
	return out
}

func (g *Generator) orders(count, days int, now time.Time, restaurants []Restaurant, customers []Customer, menu []MenuItem) ([]Order, []OrderItem) {
	menuByRestaurant := make(map[int64][]MenuItem, len(restaurants))
	for _, item := range menu {
		menuByRestaurant[item.RestaurantID] = append(menuByRestaurant[item.RestaurantID], item)
	}

	orders := make([]Order, 0, count)
	items := make([]OrderItem, 0, count*3)
	for i := 0; i < count; i++ {
		restaurant := restaurants[g.rnd.Intn(len(restaurants))]
		customer := customers[g.rnd.Intn(len(customers))]
		order := Order{
			ID:            int64(i + 1),
			RestaurantID:  restaurant.ID,
			CustomerID:    customer.ID,
			OrderDate:     now.AddDate(0, 0, -g.between(0, days)),
			OrderType:     pickOne(g.rnd, orderTypes),
			Status:        "completed",
			PaymentMethod: pickOne(g.rnd, paymentMethods),
		}
		if g.rnd.Intn(2) == 0 {
			table := g.between(1, 20)
			order.TableNumber = &table
		}

		restaurantMenu := menuByRestaurant[restaurant.ID]
		total := 0.0
		for n := g.between(1, 5); n > 0; n-- {
			item := restaurantMenu[g.rnd.Intn(len(restaurantMenu))]
			quantity := g.between(1, 3)
			line := item.Price * float64(quantity)
			items = append(items, OrderItem{
				ID:         int64(len(items) + 1),
				OrderID:    order.ID,
				MenuItemID: item.ID,
				Quantity:   quantity,
				UnitPrice:  item.Price,
				TotalPrice: line,
			})
			total += line
		}
		order.TotalAmount = round2(total)
		orders = append(orders, order)
	}
	return orders, items
}

func (g *Generator) reviews(count int, orders []Order) []Review {
	if len(orders) == 0 {
		return nil
	}
	out := make([]Review, 0, count)
	for i := 0; i < count; i++ {
		order := orders[g.rnd.Intn(len(orders))]
		rating := g.rating()
		out = append(out, Review{
			ID:             int64(i + 1),
			RestaurantID:   order.RestaurantID,
			CustomerID:     order.CustomerID,
			Rating:         rating,
			ReviewText:     reviewTemplates[rating-1][g.rnd.Intn(3)],
			ReviewDate:     order.OrderDate.AddDate(0, 0, g.between(0, maxReviewDelayDays)),
			FoodRating:     g.subRating(rating),
			ServiceRating:  g.subRating(rating),
			AmbianceRating: g.subRating(rating),
		})
	}
	return out
}

func (g *Generator) rating() int {
	total := 0
	for _, weight := range ratingWeights {
		total += weight
	}
	p := g.rnd.Intn(total)
	for i, weight := range ratingWeights {
		if p < weight {
			return i + 1
		}
		p -= weight
	}
	return len(ratingWeights)
}

// subRating stays within one point of the overall rating, clamped to 1..5.
func (g *Generator) subRating(rating int) int {
	return min(5, max(1, rating+g.between(-1, 1)))
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
