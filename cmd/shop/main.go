package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"wheelstore/internal/client"
)

func main() {
	baseURL := os.Getenv("SHOP_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	api, err := client.New(baseURL)
	if err != nil {
		log.Fatalf("main - client init failed: %v", err)
	}

	shop := newShop(api, bufio.NewReader(os.Stdin))
	shop.run(context.Background())
}

// shop is the interactive storefront. It owns the terminal and wires the
// prompt into the stores' Confirmer/Notifier seams.
type shop struct {
	in       *bufio.Reader
	session  *client.Session
	catalog  *client.Catalog
	cart     *client.CartStore
	checkout *client.Checkout
}

func newShop(api *client.API, in *bufio.Reader) *shop {
	s := &shop{in: in}
	confirm := client.ConfirmerFunc(s.askYesNo)
	notify := terminalNotifier{}

	s.session = client.NewSession(api, confirm, notify)
	s.catalog = client.NewCatalog(api)
	s.cart = client.NewCartStore(api, confirm, notify)
	s.checkout = client.NewCheckout(api, s.cart, confirm, notify)
	return s
}

// terminalNotifier prints transient messages the way the web toast does.
type terminalNotifier struct{}

func (terminalNotifier) Success(msg string) { fmt.Printf("[OK] %s\n", msg) }
func (terminalNotifier) Info(msg string)    { fmt.Printf("[INFO] %s\n", msg) }
func (terminalNotifier) Error(msg string)   { fmt.Printf("[ERROR] %s\n", msg) }

func (s *shop) askYesNo(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (s *shop) readLine(prompt string) string {
	fmt.Print(prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (s *shop) run(ctx context.Context) {
	// Page load: resolve auth state first, then catalog and cart.
	if _, err := s.session.CurrentUser(ctx); err != nil {
		fmt.Println("[ERROR] Could not reach the shop, is the server running?")
	}
	if err := s.catalog.Load(ctx); err != nil {
		fmt.Println("[ERROR] Could not load products.")
	}
	if err := s.cart.Load(ctx); err != nil && !errors.Is(err, client.ErrUnauthenticated) {
		fmt.Println("[ERROR] Could not load your cart.")
	}

	fmt.Println("Welcome to the wheel shop. Type 'help' for commands.")
	s.showPage()

	for {
		line := s.readLine(s.prompt())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			s.printHelp()
		case "products", "list":
			s.showPage()
		case "search":
			f := s.catalog.Filter()
			s.catalog.SetFilter(strings.Join(args, " "), f.Category, f.PriceMin, f.PriceMax)
			s.showPage()
		case "category":
			category := "all"
			if len(args) > 0 {
				category = args[0]
			}
			f := s.catalog.Filter()
			s.catalog.SetFilter(f.Search, category, f.PriceMin, f.PriceMax)
			s.showPage()
		case "price":
			s.cmdPrice(args)
		case "page":
			s.cmdPage(args)
		case "add":
			s.cmdAdd(ctx, args)
		case "cart":
			s.showCart()
		case "inc":
			s.cmdLine(ctx, args, s.cart.Increase)
		case "dec":
			s.cmdLine(ctx, args, s.cart.Decrease)
		case "rm":
			s.cmdLine(ctx, args, s.cart.Remove)
		case "clear":
			if err := s.cart.Clear(ctx); errors.Is(err, client.ErrUnauthenticated) {
				s.loginFlow(ctx)
			}
		case "checkout":
			s.cmdCheckout(ctx)
		case "login":
			s.loginFlow(ctx)
		case "register":
			s.registerFlow(ctx)
		case "logout":
			if home, _ := s.session.Logout(ctx); home {
				s.cart.Load(ctx)
				s.showPage()
			}
		case "account", "orders":
			s.showAccount(ctx)
		case "quit", "exit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Printf("Unknown command %q, type 'help'.\n", cmd)
		}
	}
}

func (s *shop) prompt() string {
	nav := s.session.Nav()
	if nav.ShowAccount {
		return fmt.Sprintf("%s (cart: %d)> ", s.session.User().Email, s.cart.Count())
	}
	return "guest> "
}

func (s *shop) printHelp() {
	fmt.Println(`Commands:
  products              show the current catalog page
  search <text>         filter by name
  category <c>          filter by category ('all' resets)
  price <min> <max>     filter by price range
  page <n>              jump to page n
  add <product-id>      add one unit to the cart
  cart                  show the cart
  inc|dec|rm <item-id>  change or remove a cart line
  clear                 empty the cart
  checkout              place the order
  login / register / logout / account
  quit`)
}

func (s *shop) showPage() {
	page := s.catalog.VisiblePage()
	if len(page.Items) == 0 {
		fmt.Println("No products match your filters.")
		return
	}
	for _, p := range page.Items {
		fmt.Printf("  #%d  %-38s €%.2f  [%s]\n", p.ID, p.Name, p.Price, p.Type)
	}
	fmt.Printf("Page %d of %d\n", page.Number, page.PageCount)
}

func (s *shop) showCart() {
	items := s.cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}
	for _, item := range items {
		fmt.Printf("  #%d  %-38s x%d  €%.2f\n", item.ID, item.Product.Name, item.Quantity, item.LineTotal())
	}
	fmt.Printf("Total: %s\n", s.cart.TotalLabel())
}

func (s *shop) cmdPrice(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: price <min> <max>")
		return
	}
	min, err1 := strconv.ParseFloat(args[0], 64)
	max, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		fmt.Println("Usage: price <min> <max>")
		return
	}
	f := s.catalog.Filter()
	s.catalog.SetFilter(f.Search, f.Category, min, max)
	s.showPage()
}

func (s *shop) cmdPage(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: page <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Usage: page <n>")
		return
	}
	s.catalog.SetPage(n)
	s.showPage()
}

func (s *shop) cmdAdd(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: add <product-id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Usage: add <product-id>")
		return
	}
	if err := s.cart.Add(ctx, id); errors.Is(err, client.ErrUnauthenticated) {
		fmt.Println("Please log in to use the cart.")
		s.loginFlow(ctx)
	}
}

func (s *shop) cmdLine(ctx context.Context, args []string, op func(context.Context, int) error) {
	if len(args) != 1 {
		fmt.Println("Usage: inc|dec|rm <item-id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Usage: inc|dec|rm <item-id>")
		return
	}
	if err := op(ctx, id); err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			s.loginFlow(ctx)
		} else {
			fmt.Printf("[ERROR] %v\n", err)
		}
	}
}

func (s *shop) cmdCheckout(ctx context.Context) {
	if s.cart.Count() == 0 {
		fmt.Println("[INFO] Your cart is empty! Add some wheels before checking out.")
		return
	}

	contact := client.Contact{
		Name:    s.readLine("Name: "),
		Email:   s.readLine("Email: "),
		Phone:   s.readLine("Phone: "),
		Address: s.readLine("Address: "),
	}

	order, err := s.checkout.Submit(ctx, contact)
	if errors.Is(err, client.ErrUnauthenticated) {
		s.loginFlow(ctx)
		return
	}
	if order != nil {
		s.showPage()
	}
}

func (s *shop) loginFlow(ctx context.Context) {
	email := s.readLine("Email: ")
	password := s.readLine("Password: ")

	if _, err := s.session.Login(ctx, email, password); err != nil {
		var vErr *client.ValidationError
		if errors.As(err, &vErr) {
			fmt.Printf("[ERROR] %s\n", vErr.Message)
		} else {
			fmt.Printf("[ERROR] %s\n", loginFailureMessage(err))
		}
		return
	}
	s.cart.Load(ctx)
	s.showPage()
}

func loginFailureMessage(err error) string {
	var appErr *client.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Login failed, please try again."
}

func (s *shop) registerFlow(ctx context.Context) {
	email := s.readLine("Email: ")
	password := s.readLine("Password (min 6 chars): ")

	if err := s.session.Register(ctx, email, password); err != nil {
		var vErr *client.ValidationError
		if errors.As(err, &vErr) {
			fmt.Printf("[ERROR] %s\n", vErr.Message)
		} else {
			fmt.Printf("[ERROR] %s\n", loginFailureMessage(err))
		}
	}
}

func (s *shop) showAccount(ctx context.Context) {
	user := s.session.User()
	if user == nil {
		fmt.Println("You are not logged in.")
		return
	}
	fmt.Printf("Logged in as %s\n", user.Email)

	orders, err := s.session.Orders(ctx)
	if err != nil {
		fmt.Println("[ERROR] Could not load your orders.")
		return
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	for _, o := range orders {
		fmt.Printf("  %s  €%.2f  %s  (%d items)\n", o.OrderNumber, o.TotalPrice, o.Status, len(o.Items))
	}
}
