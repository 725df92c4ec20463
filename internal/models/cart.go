package models

// CartItem is one line in a user's cart. The line ID is distinct from the
// product ID; the server collapses duplicate products into a single line.
type CartItem struct {
	ID        int     `json:"id"`
	UserID    int     `json:"user_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// LineTotal returns price × quantity for this line.
func (i CartItem) LineTotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// CartTotal sums price × quantity over all lines.
func CartTotal(items []CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// CartCount sums quantities over all lines.
func CartCount(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
