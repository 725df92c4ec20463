package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"wheelstore/internal/models"
)

// Contact is the checkout form.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Validate rejects the form before any request is sent: all four fields
// required, email must look like an email.
func (c Contact) Validate() error {
	if c.Name == "" || c.Email == "" || c.Phone == "" || c.Address == "" {
		return &ValidationError{Message: "All contact fields are required (name, email, phone, address)."}
	}
	if !emailRegex.MatchString(c.Email) {
		return &ValidationError{Message: "Enter a valid email address."}
	}
	return nil
}

// Checkout submits the cart as an order.
type Checkout struct {
	api     *API
	cart    *CartStore
	confirm Confirmer
	notify  Notifier
}

func NewCheckout(api *API, cart *CartStore, confirm Confirmer, notify Notifier) *Checkout {
	return &Checkout{api: api, cart: cart, confirm: confirm, notify: notify}
}

// Submit places the order. An empty cart sends nothing and informs the
// user; invalid contact details block the request; the user confirms
// before submission. On success the cart is resynced (now empty) and the
// server-assigned order id is announced; on failure the server message is
// surfaced verbatim and the cart is left untouched.
func (co *Checkout) Submit(ctx context.Context, contact Contact) (*models.Order, error) {
	if co.cart.Count() == 0 {
		co.notify.Info("Your cart is empty! Add some wheels before checking out.")
		return nil, nil
	}

	if err := contact.Validate(); err != nil {
		co.notify.Error(err.Error())
		return nil, err
	}

	if !co.confirm.Confirm("Proceed to checkout? Your order will be placed.") {
		return nil, nil
	}

	payload := models.OrderForm{
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
		Phone:         contact.Phone,
		Address:       contact.Address,
	}

	var order models.Order
	if err := co.api.do(ctx, http.MethodPost, "/api/orders", payload, &order); err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			co.notify.Error(userMessage(err))
		}
		return nil, err
	}

	// Expected to come back empty; a reload failure here does not undo
	// the order.
	if err := co.cart.Load(ctx); err != nil {
		co.notify.Error(userMessage(err))
	}

	co.notify.Success(fmt.Sprintf("Order %s placed! Your order number is #%d.", order.OrderNumber, order.ID))
	return &order, nil
}
