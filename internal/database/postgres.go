package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"wheelstore/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const queryTimeout = 3 * time.Second

// schema is applied on startup; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	type TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_items (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	UNIQUE (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	order_number TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	phone TEXT NOT NULL,
	address TEXT NOT NULL,
	total_price DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	id SERIAL PRIMARY KEY,
	order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	quantity INTEGER NOT NULL
);
`

// PostgresDatabase implements DBInterface on a pgx connection pool.
type PostgresDatabase struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates the pool, pings it and applies the schema.
func ConnectPostgres(dsn string) (*PostgresDatabase, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DSN: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	db := &PostgresDatabase{pool: pool}
	if err := db.migrate(); err != nil {
		return nil, err
	}
	log.Println("Database connection established")
	return db, nil
}

// Close releases the connection pool.
func (db *PostgresDatabase) Close() {
	db.pool.Close()
}

func (db *PostgresDatabase) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to apply schema: %w", err)
	}
	return nil
}

// --- Products ---

func (db *PostgresDatabase) GetAllProducts() ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := db.pool.Query(ctx, `
		SELECT id, name, price, type, image, description, created_at, updated_at
		FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.Image, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (db *PostgresDatabase) GetProductByID(id int) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var p models.Product
	err := db.pool.QueryRow(ctx, `
		SELECT id, name, price, type, image, description, created_at, updated_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.Image, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *PostgresDatabase) CreateProduct(p *models.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	now := time.Now()
	err := db.pool.QueryRow(ctx, `
		INSERT INTO products (name, price, type, image, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`, p.Name, p.Price, p.Type, p.Image, p.Description, now).Scan(&p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *PostgresDatabase) UpdateProduct(p *models.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tag, err := db.pool.Exec(ctx, `
		UPDATE products SET name = $1, price = $2, type = $3, image = $4, description = $5, updated_at = $6
		WHERE id = $7`, p.Name, p.Price, p.Type, p.Image, p.Description, time.Now(), p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (db *PostgresDatabase) DeleteProduct(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tag, err := db.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- Users ---

func (db *PostgresDatabase) CreateUser(email, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user models.User
	now := time.Now()
	err = db.pool.QueryRow(ctx, `
		INSERT INTO users (email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id, email, created_at, updated_at`,
		strings.ToLower(strings.TrimSpace(email)), string(hash), now).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

func (db *PostgresDatabase) AuthenticateUser(email, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var user models.User
	err := db.pool.QueryRow(ctx, `
		SELECT id, email, password, created_at, updated_at
		FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (db *PostgresDatabase) GetUserByID(id int) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var user models.User
	err := db.pool.QueryRow(ctx, `
		SELECT id, email, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Sessions ---

func (db *PostgresDatabase) CreateSession(token string, userID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := db.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id) VALUES ($1, $2)`, token, userID)
	return err
}

func (db *PostgresDatabase) GetSessionUser(token string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var user models.User
	err := db.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.created_at, u.updated_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = $1`, token).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *PostgresDatabase) DeleteSession(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// --- Cart ---

func (db *PostgresDatabase) GetCartItems(userID int) ([]models.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := db.pool.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity,
		       p.id, p.name, p.price, p.type, p.image, p.description, p.created_at, p.updated_at
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		var p models.Product
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&p.ID, &p.Name, &p.Price, &p.Type, &p.Image, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.Product = p
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *PostgresDatabase) AddToCart(userID, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	// One line per (user, product): bump quantity on conflict.
	_, err := db.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity)
	if err != nil && strings.Contains(err.Error(), "foreign key") {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return err
}

func (db *PostgresDatabase) UpdateCartItem(userID, itemID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tag, err := db.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $1 WHERE id = $2 AND user_id = $3`,
		quantity, itemID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

func (db *PostgresDatabase) RemoveFromCart(userID, itemID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tag, err := db.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

func (db *PostgresDatabase) ClearCart(userID int) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := db.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

// --- Orders ---

func (db *PostgresDatabase) CreateOrder(userID int, form models.OrderForm) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT c.product_id, c.quantity, p.name, p.price
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}

	var orderItems []models.OrderItem
	totalPrice := 0.0
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Name, &item.Price); err != nil {
			rows.Close()
			return nil, err
		}
		totalPrice += item.Price * float64(item.Quantity)
		orderItems = append(orderItems, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderItems) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	order := models.Order{
		UserID:        userID,
		CustomerName:  form.CustomerName,
		CustomerEmail: form.CustomerEmail,
		Phone:         form.Phone,
		Address:       form.Address,
		TotalPrice:    totalPrice,
		Status:        "pending",
		CreatedAt:     now,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, order_number, customer_name, customer_email, phone, address, total_price, status, created_at)
		VALUES ($1, '', $2, $3, $4, $5, $6, 'pending', $7)
		RETURNING id`,
		userID, form.CustomerName, form.CustomerEmail, form.Phone, form.Address, totalPrice, now).
		Scan(&order.ID)
	if err != nil {
		return nil, err
	}

	order.OrderNumber = generateOrderNumber(order.ID)
	if _, err := tx.Exec(ctx, `UPDATE orders SET order_number = $1 WHERE id = $2`, order.OrderNumber, order.ID); err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, orderItems[i].ProductID, orderItems[i].Name, orderItems[i].Price, orderItems[i].Quantity).
			Scan(&orderItems[i].ID)
		if err != nil {
			return nil, err
		}
	}
	order.Items = orderItems

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &order, nil
}

func (db *PostgresDatabase) GetUserOrders(userID int) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := db.pool.Query(ctx, `
		SELECT id, user_id, order_number, customer_name, customer_email, phone, address, total_price, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail,
			&o.Phone, &o.Address, &o.TotalPrice, &o.Status, &o.CreatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
