package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"wheelstore/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors shared by every DB implementation. Handlers translate
// these into the JSON error envelope.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCart          = errors.New("cart is empty")
)

// DBInterface is the storage contract shared by the JSON-file store and the
// Postgres store.
type DBInterface interface {
	GetAllProducts() ([]models.Product, error)
	GetProductByID(id int) (*models.Product, error)
	CreateProduct(p *models.Product) error
	UpdateProduct(p *models.Product) error
	DeleteProduct(id int) error

	CreateUser(email, password string) (*models.User, error)
	AuthenticateUser(email, password string) (*models.User, error)
	GetUserByID(id int) (*models.User, error)

	CreateSession(token string, userID int) error
	GetSessionUser(token string) (*models.User, error)
	DeleteSession(token string) error

	GetCartItems(userID int) ([]models.CartItem, error)
	AddToCart(userID, productID, quantity int) error
	UpdateCartItem(userID, itemID, quantity int) error
	RemoveFromCart(userID, itemID int) error
	ClearCart(userID int) error

	CreateOrder(userID int, form models.OrderForm) (*models.Order, error)
	GetUserOrders(userID int) ([]models.Order, error)
}

// session binds an opaque cookie token to a user.
type session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// dbData is the whole JSON file.
type dbData struct {
	Products  []models.Product  `json:"products"`
	Users     []models.User     `json:"users"`
	Sessions  []session         `json:"sessions"`
	CartItems []models.CartItem `json:"cart_items"`
	Orders    []models.Order    `json:"orders"`
}

// JSONDatabase keeps everything in one JSON file guarded by a RWMutex.
// It is the default backend and the one the test suite runs against.
type JSONDatabase struct {
	mu       sync.RWMutex
	data     dbData
	filePath string
}

// NewDatabase loads (or creates) the JSON file at path and seeds the
// catalog when it is empty.
func NewDatabase(path string) (*JSONDatabase, error) {
	db := &JSONDatabase{filePath: path}
	if err := db.loadData(); err != nil {
		return nil, err
	}
	if len(db.data.Products) == 0 {
		db.seedProducts()
		if err := db.saveData(); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (db *JSONDatabase) loadData() error {
	fileData, err := os.ReadFile(db.filePath)
	if os.IsNotExist(err) {
		return db.saveData()
	}
	if err != nil {
		return err
	}
	if len(fileData) == 0 {
		return nil
	}
	return json.Unmarshal(fileData, &db.data)
}

func (db *JSONDatabase) saveData() error {
	data, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(db.filePath, data, 0644)
}

// seedProducts fills the catalog with the standard wheel range.
func (db *JSONDatabase) seedProducts() {
	now := time.Now()
	seed := []models.Product{
		{Name: "Polyurethane Wheel Ø80mm", Price: 19.99, Type: "polyurethane", Image: "images/wheel1.jpg"},
		{Name: "Nylon Wheel Ø70mm", Price: 14.50, Type: "nylon", Image: "images/wheel2.jpg"},
		{Name: "Rubber Coated Wheel Ø90mm", Price: 22.00, Type: "rubber", Image: "images/wheel3.jpg"},
		{Name: "Polyurethane Wheel Ø100mm", Price: 25.00, Type: "polyurethane", Image: "images/wheel4.jpg"},
		{Name: "Nylon Wheel Ø85mm", Price: 17.80, Type: "nylon", Image: "images/wheel5.jpg"},
		{Name: "Rubber Wheel Ø75mm", Price: 16.20, Type: "rubber", Image: "images/wheel6.jpg"},
		{Name: "Polyurethane Wheel Ø110mm", Price: 28.40, Type: "polyurethane", Image: "images/wheel7.jpg"},
		{Name: "Nylon Heavy Duty Ø95mm", Price: 20.00, Type: "nylon", Image: "images/wheel8.jpg"},
		{Name: "Rubber Shock-Absorb Ø100mm", Price: 27.50, Type: "rubber", Image: "images/wheel9.jpg"},
		{Name: "Polyurethane Silent Ø90mm", Price: 23.90, Type: "polyurethane", Image: "images/wheel10.jpg"},
	}
	for i := range seed {
		seed[i].ID = i + 1
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
	}
	db.data.Products = seed
}

// --- Products ---

func (db *JSONDatabase) GetAllProducts() ([]models.Product, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	products := make([]models.Product, len(db.data.Products))
	copy(products, db.data.Products)
	return products, nil
}

func (db *JSONDatabase) GetProductByID(id int) (*models.Product, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, p := range db.data.Products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
}

func (db *JSONDatabase) CreateProduct(p *models.Product) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	p.ID = db.nextProductID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	db.data.Products = append(db.data.Products, *p)
	return db.saveData()
}

func (db *JSONDatabase) UpdateProduct(p *models.Product) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, existing := range db.data.Products {
		if existing.ID == p.ID {
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = time.Now()
			db.data.Products[i] = *p
			return db.saveData()
		}
	}
	return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
}

func (db *JSONDatabase) DeleteProduct(id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, p := range db.data.Products {
		if p.ID == id {
			db.data.Products = append(db.data.Products[:i], db.data.Products[i+1:]...)
			return db.saveData()
		}
	}
	return fmt.Errorf("product %d: %w", id, ErrNotFound)
}

// --- Users ---

// CreateUser registers a new user with a bcrypt-hashed password.
func (db *JSONDatabase) CreateUser(email, password string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range db.data.Users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := models.User{
		ID:           db.nextUserID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.data.Users = append(db.data.Users, user)
	if err := db.saveData(); err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthenticateUser verifies email and password. Both unknown email and bad
// password come back as ErrInvalidCredentials.
func (db *JSONDatabase) AuthenticateUser(email, password string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range db.data.Users {
		if u.Email == email {
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
				return nil, ErrInvalidCredentials
			}
			user := u
			return &user, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (db *JSONDatabase) GetUserByID(id int) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, u := range db.data.Users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
}

// --- Sessions ---

func (db *JSONDatabase) CreateSession(token string, userID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data.Sessions = append(db.data.Sessions, session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	})
	return db.saveData()
}

func (db *JSONDatabase) GetSessionUser(token string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, s := range db.data.Sessions {
		if s.Token == token {
			for _, u := range db.data.Users {
				if u.ID == s.UserID {
					user := u
					return &user, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("session: %w", ErrNotFound)
}

func (db *JSONDatabase) DeleteSession(token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, s := range db.data.Sessions {
		if s.Token == token {
			db.data.Sessions = append(db.data.Sessions[:i], db.data.Sessions[i+1:]...)
			return db.saveData()
		}
	}
	return nil
}

// --- Cart ---

// GetCartItems returns the user's cart lines with products embedded,
// ordered by line id so the rendering order is stable.
func (db *JSONDatabase) GetCartItems(userID int) ([]models.CartItem, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	items := []models.CartItem{}
	for _, item := range db.data.CartItems {
		if item.UserID != userID {
			continue
		}
		for _, p := range db.data.Products {
			if p.ID == item.ProductID {
				item.Product = p
				break
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// AddToCart inserts a new line or increments the existing line for the same
// product. Duplicate products never produce a second line.
func (db *JSONDatabase) AddToCart(userID, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	found := false
	for _, p := range db.data.Products {
		if p.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	for i, item := range db.data.CartItems {
		if item.UserID == userID && item.ProductID == productID {
			db.data.CartItems[i].Quantity += quantity
			return db.saveData()
		}
	}

	db.data.CartItems = append(db.data.CartItems, models.CartItem{
		ID:        db.nextCartItemID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return db.saveData()
}

func (db *JSONDatabase) UpdateCartItem(userID, itemID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("invalid quantity: %d", quantity)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for i, item := range db.data.CartItems {
		if item.ID == itemID && item.UserID == userID {
			db.data.CartItems[i].Quantity = quantity
			return db.saveData()
		}
	}
	return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
}

func (db *JSONDatabase) RemoveFromCart(userID, itemID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, item := range db.data.CartItems {
		if item.ID == itemID && item.UserID == userID {
			db.data.CartItems = append(db.data.CartItems[:i], db.data.CartItems[i+1:]...)
			return db.saveData()
		}
	}
	return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
}

func (db *JSONDatabase) ClearCart(userID int) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	kept := db.data.CartItems[:0]
	for _, item := range db.data.CartItems {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	db.data.CartItems = kept
	return db.saveData()
}

// --- Orders ---

// CreateOrder snapshots the cart into an order, totals it and clears the
// cart. The whole step happens under one lock so the cart can never be
// half-ordered.
func (db *JSONDatabase) CreateOrder(userID int, form models.OrderForm) (*models.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var orderItems []models.OrderItem
	totalPrice := 0.0
	for _, item := range db.data.CartItems {
		if item.UserID != userID {
			continue
		}
		var product *models.Product
		for _, p := range db.data.Products {
			if p.ID == item.ProductID {
				pp := p
				product = &pp
				break
			}
		}
		if product == nil {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		totalPrice += product.Price * float64(item.Quantity)
	}

	if len(orderItems) == 0 {
		return nil, ErrEmptyCart
	}

	orderID := db.nextOrderID()
	for i := range orderItems {
		orderItems[i].ID = i + 1
		orderItems[i].OrderID = orderID
	}

	order := models.Order{
		ID:            orderID,
		UserID:        userID,
		OrderNumber:   generateOrderNumber(orderID),
		CustomerName:  form.CustomerName,
		CustomerEmail: form.CustomerEmail,
		Phone:         form.Phone,
		Address:       form.Address,
		TotalPrice:    totalPrice,
		Status:        "pending",
		Items:         orderItems,
		CreatedAt:     time.Now(),
	}
	db.data.Orders = append(db.data.Orders, order)

	kept := db.data.CartItems[:0]
	for _, item := range db.data.CartItems {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	db.data.CartItems = kept

	if err := db.saveData(); err != nil {
		return nil, err
	}
	return &order, nil
}

func (db *JSONDatabase) GetUserOrders(userID int) ([]models.Order, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range db.data.Orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// --- ID helpers ---

func (db *JSONDatabase) nextProductID() int {
	max := 0
	for _, p := range db.data.Products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func (db *JSONDatabase) nextUserID() int {
	max := 0
	for _, u := range db.data.Users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func (db *JSONDatabase) nextCartItemID() int {
	max := 0
	for _, item := range db.data.CartItems {
		if item.ID > max {
			max = item.ID
		}
	}
	return max + 1
}

func (db *JSONDatabase) nextOrderID() int {
	max := 0
	for _, o := range db.data.Orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

func generateOrderNumber(orderID int) string {
	return fmt.Sprintf("WH-%s-%04d", time.Now().Format("20060102"), orderID)
}
