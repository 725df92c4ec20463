package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"wheelstore/internal/config"
	"wheelstore/internal/database"
	"wheelstore/internal/models"
	"wheelstore/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "session"
const adminCookie = "admin_session"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Response is the envelope every API endpoint answers with.
type Response struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Handler wires the API endpoints to storage and services.
type Handler struct {
	db       database.DBInterface
	cfg      *config.Config
	carts    *services.CartService
	email    *services.EmailService
	security *services.SecurityLogger

	adminMu       sync.RWMutex
	adminSessions map[string]time.Time
}

func NewHandler(db database.DBInterface, cfg *config.Config, carts *services.CartService, email *services.EmailService, security *services.SecurityLogger) *Handler {
	return &Handler{
		db:            db,
		cfg:           cfg,
		carts:         carts,
		email:         email,
		security:      security,
		adminSessions: make(map[string]time.Time),
	}
}

// currentUser resolves the session cookie to a user, or nil.
func (h *Handler) currentUser(c *gin.Context) *models.User {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return nil
	}
	user, err := h.db.GetSessionUser(token)
	if err != nil {
		return nil
	}
	return user
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{OK: false, Message: "Not authenticated"})
}

// --- Auth ---

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account.
func (h *Handler) Register(c *gin.Context) {
	var payload credentialsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid request format"})
		return
	}

	if payload.Email == "" || payload.Password == "" {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Email and password are required"})
		return
	}
	if !emailRegex.MatchString(payload.Email) {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid email format"})
		return
	}
	if len(payload.Password) < 6 {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Password must be at least 6 characters"})
		return
	}

	user, err := h.db.CreateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, Response{OK: false, Message: "Email already registered"})
			return
		}
		log.Printf("Handler.Register - error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, Response{OK: true, Message: "User registered successfully", Data: user})
}

// Login authenticates and mints a session cookie.
func (h *Handler) Login(c *gin.Context) {
	var payload credentialsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid request format"})
		return
	}

	if payload.Email == "" || payload.Password == "" {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Email and password are required"})
		return
	}

	user, err := h.db.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		h.security.LogEvent("LOGIN_FAILED", payload.Email, c.ClientIP())
		c.JSON(http.StatusUnauthorized, Response{OK: false, Message: "Invalid credentials"})
		return
	}

	token := uuid.New().String()
	if err := h.db.CreateSession(token, user.ID); err != nil {
		log.Printf("Handler.Login - error creating session: %v", err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to login"})
		return
	}
	c.SetCookie(sessionCookie, token, 24*3600, "/", "", false, true)

	c.JSON(http.StatusOK, Response{OK: true, Message: "Login successful", Data: user})
}

// Logout destroys the session.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if err := h.db.DeleteSession(token); err != nil {
			log.Printf("Handler.Logout - error deleting session: %v", err)
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, Response{OK: true, Message: "Logout successful"})
}

// GetCurrentUser returns the logged-in user or 401.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, Response{OK: true, Data: user})
}

// --- Products ---

// GetProducts returns the full catalog; filtering is the client's job.
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.db.GetAllProducts()
	if err != nil {
		log.Printf("Handler.GetProducts - %v", err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to get products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, Response{OK: true, Data: products})
}

// --- Cart ---

func (h *Handler) GetCart(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	items, err := h.carts.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("Handler.GetCart - UserID: %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to get cart items"})
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}
	c.JSON(http.StatusOK, Response{OK: true, Data: items})
}

func (h *Handler) AddToCart(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	var payload struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid request format"})
		return
	}
	if payload.ProductID <= 0 || payload.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid product ID or quantity"})
		return
	}

	if err := h.carts.AddToCart(user.ID, payload.ProductID, payload.Quantity); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{OK: false, Message: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to add to cart"})
		return
	}

	c.JSON(http.StatusOK, Response{OK: true, Message: "Item added to cart"})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid item ID"})
		return
	}

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid request format"})
		return
	}
	if payload.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Quantity must be greater than 0"})
		return
	}

	if err := h.carts.UpdateItem(user.ID, itemID, payload.Quantity); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{OK: false, Message: "Cart item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to update cart item"})
		return
	}

	c.JSON(http.StatusOK, Response{OK: true, Message: "Cart item updated"})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid item ID"})
		return
	}

	if err := h.carts.RemoveItem(user.ID, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{OK: false, Message: "Cart item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to remove from cart"})
		return
	}

	c.JSON(http.StatusOK, Response{OK: true, Message: "Item removed from cart"})
}

func (h *Handler) ClearCart(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	if err := h.carts.Clear(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, Response{OK: true, Message: "Cart cleared"})
}

// --- Orders ---

// CreateOrder turns the cart into an order. All four contact fields are
// required; the cart is cleared atomically with order creation.
func (h *Handler) CreateOrder(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	var form models.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid request format"})
		return
	}

	if form.CustomerName == "" || form.CustomerEmail == "" || form.Phone == "" || form.Address == "" {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "All contact fields are required (name, email, phone, address)"})
		return
	}
	if !emailRegex.MatchString(form.CustomerEmail) {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid email format"})
		return
	}

	order, err := h.carts.Checkout(user.ID, form)
	if err != nil {
		if errors.Is(err, database.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Cart is empty"})
			return
		}
		log.Printf("Handler.CreateOrder - UserID: %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to create order"})
		return
	}

	// Mail failures must not fail the order.
	if err := h.email.SendOrderConfirmation(order); err != nil {
		log.Printf("Handler.CreateOrder - confirmation email failed: %v", err)
	}

	c.JSON(http.StatusCreated, Response{OK: true, Message: "Order created successfully", Data: order})
}

func (h *Handler) GetOrders(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		unauthenticated(c)
		return
	}

	orders, err := h.db.GetUserOrders(user.ID)
	if err != nil {
		log.Printf("Handler.GetOrders - UserID: %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to get orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, Response{OK: true, Data: orders})
}

// --- Admin ---

// AdminLogin checks the configured credentials and mints an admin cookie.
// With no ADMIN_PASSWORD configured the admin API stays locked.
func (h *Handler) AdminLogin(c *gin.Context) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid request format"})
		return
	}

	if h.cfg.AdminPassword == "" ||
		payload.Username != h.cfg.AdminUsername || payload.Password != h.cfg.AdminPassword {
		h.security.LogEvent("ADMIN_LOGIN_FAILED", payload.Username, c.ClientIP())
		c.JSON(http.StatusUnauthorized, Response{OK: false, Message: "Invalid credentials"})
		return
	}

	token := uuid.New().String()
	h.adminMu.Lock()
	h.adminSessions[token] = time.Now()
	h.adminMu.Unlock()

	c.SetCookie(adminCookie, token, 3600, "/", "", false, true)
	c.JSON(http.StatusOK, Response{OK: true, Message: "Login successful"})
}

// AdminAuthMiddleware guards the admin product endpoints.
func (h *Handler) AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || token == "" {
			unauthenticated(c)
			c.Abort()
			return
		}
		h.adminMu.RLock()
		_, ok := h.adminSessions[token]
		h.adminMu.RUnlock()
		if !ok {
			unauthenticated(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) AddProduct(c *gin.Context) {
	var form models.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid product data"})
		return
	}

	product := models.Product{
		Name:        form.Name,
		Price:       form.Price,
		Type:        form.Type,
		Image:       form.Image,
		Description: form.Description,
	}
	if err := h.db.CreateProduct(&product); err != nil {
		log.Printf("Handler.AddProduct - %v", err)
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, Response{OK: true, Message: "Product created", Data: product})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid product ID"})
		return
	}

	var form models.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid product data"})
		return
	}

	product := models.Product{
		ID:          id,
		Name:        form.Name,
		Price:       form.Price,
		Type:        form.Type,
		Image:       form.Image,
		Description: form.Description,
	}
	if err := h.db.UpdateProduct(&product); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{OK: false, Message: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, Response{OK: true, Message: "Product updated", Data: product})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{OK: false, Message: "Invalid product ID"})
		return
	}

	if err := h.db.DeleteProduct(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, Response{OK: false, Message: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{OK: false, Message: "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, Response{OK: true, Message: "Product deleted"})
}
