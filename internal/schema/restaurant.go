package schema

var restaurantTables = []Table{
	{
		Name:        "restaurants",
		Description: "Restaurant information",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Description: "Primary key"},
			{Name: "name", Type: "TEXT", Description: "Restaurant name"},
			{Name: "location", Type: "TEXT", Description: "Restaurant location"},
			{Name: "cuisine_type", Type: "TEXT", Description: "Type of cuisine (Italian, Chinese, etc.)"},
			{Name: "capacity", Type: "INTEGER", Description: "Seating capacity"},
			{Name: "created_at", Type: "DATETIME", Description: "Creation timestamp", Nullable: true},
		},
	},
	{
		Name:        "menu_items",
		Description: "Menu items for each restaurant",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Description: "Primary key"},
			{Name: "restaurant_id", Type: "INTEGER", Description: "Foreign key to restaurants", References: "restaurants.id"},
			{Name: "name", Type: "TEXT", Description: "Item name"},
			{Name: "category", Type: "TEXT", Description: "Food category (Appetizers, Main Course, etc.)"},
			{Name: "price", Type: "REAL", Description: "Item price"},
			{Name: "description", Type: "TEXT", Description: "Item description", Nullable: true},
			{Name: "calories", Type: "INTEGER", Description: "Calorie count", Nullable: true},
			{Name: "is_available", Type: "INTEGER", Description: "1 if available, 0 if not"},
		},
	},
	{
		Name:        "customers",
		Description: "Customer information",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Description: "Primary key"},
			{Name: "name", Type: "TEXT", Description: "Customer name"},
			{Name: "email", Type: "TEXT", Description: "Customer email (unique)"},
			{Name: "age_group", Type: "TEXT", Description: "Age range (18-25, 26-35, etc.)", Nullable: true},
			{Name: "preferred_cuisine", Type: "TEXT", Description: "Preferred cuisine type", Nullable: true},
			{Name: "loyalty_points", Type: "INTEGER", Description: "Loyalty program points"},
			{Name: "registration_date", Type: "DATETIME", Description: "Registration date", Nullable: true},
		},
	},
	{
		Name:        "orders",
		Description: "Customer orders",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Description: "Primary key"},
			{Name: "restaurant_id", Type: "INTEGER", Description: "Foreign key to restaurants", References: "restaurants.id"},
			{Name: "customer_id", Type: "INTEGER", Description: "Foreign key to customers", References: "customers.id"},
			{Name: "order_date", Type: "DATETIME", Description: "Order timestamp"},
			{Name: "total_amount", Type: "REAL", Description: "Total order value"},
			{Name: "order_type", Type: "TEXT", Description: "dine-in, takeout, or delivery"},
			{Name: "status", Type: "TEXT", Description: "Order status"},
			{Name: "payment_method", Type: "TEXT", Description: "cash, card, or digital", Nullable: true},
			{Name: "table_number", Type: "INTEGER", Description: "Table number if dine-in", Nullable: true},
		},
	},
	{
		Name:        "order_items",
		Description: "Items in each order",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Description: "Primary key"},
			{Name: "order_id", Type: "INTEGER", Description: "Foreign key to orders", References: "orders.id"},
			{Name: "menu_item_id", Type: "INTEGER", Description: "Foreign key to menu_items", References: "menu_items.id"},
			{Name: "quantity", Type: "INTEGER", Description: "Number of items"},
			{Name: "unit_price", Type: "REAL", Description: "Price per unit"},
			{Name: "total_price", Type: "REAL", Description: "Total price for this item"},
		},
	},
	{
		Name:        "reviews",
		Description: "Customer reviews",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", Description: "Primary key"},
			{Name: "restaurant_id", Type: "INTEGER", Description: "Foreign key to restaurants", References: "restaurants.id"},
			{Name: "customer_id", Type: "INTEGER", Description: "Foreign key to customers", References: "customers.id"},
			{Name: "rating", Type: "INTEGER", Description: "Overall rating (1-5)"},
			{Name: "review_text", Type: "TEXT", Description: "Review content", Nullable: true},
			{Name: "review_date", Type: "DATETIME", Description: "Review timestamp", Nullable: true},
			{Name: "food_rating", Type: "INTEGER", Description: "Food rating (1-5)", Nullable: true},
			{Name: "service_rating", Type: "INTEGER", Description: "Service rating (1-5)", Nullable: true},
			{Name: "ambiance_rating", Type: "INTEGER", Description: "Ambiance rating (1-5)", Nullable: true},
		},
	},
}

// Restaurant returns the descriptor for the six restaurant analytics tables.
func Restaurant() Descriptor {
	descriptor, err := NewDescriptor(restaurantTables)
	if err != nil {
		panic(err)
	}
	return descriptor
}
