package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"customkeeps/internal/cart"
	"customkeeps/internal/checkout"
	"customkeeps/internal/config"
	"customkeeps/internal/coupon"
	"customkeeps/internal/logger"
	"customkeeps/internal/payment"
	"customkeeps/internal/storefront"

	"go.uber.org/zap"
)

const maxCommitRetries = 3

// itemFlags collects repeated -item "Product:qty:color:design-ref" values.
type itemFlags []storefront.CartItemRequest

func (f *itemFlags) String() string { return fmt.Sprint(len(*f), " items") }

func (f *itemFlags) Set(v string) error {
	parts := strings.SplitN(v, ":", 4)
	if len(parts) != 4 {
		return fmt.Errorf("want Product:qty:color:design-ref, got %q", v)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("quantity %q: %w", parts[1], err)
	}
	*f = append(*f, storefront.CartItemRequest{
		ProductName:    parts[0],
		Quantity:       qty,
		Color:          parts[2],
		DesignImageRef: parts[3],
	})
	return nil
}

type options struct {
	configPath string
	email      string
	password   string
	register   bool
	coupon     string
	items      itemFlags
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.email, "email", "", "account email")
	fs.StringVar(&opts.password, "password", "", "account password (default $CUSTOMKEEPS_PASSWORD)")
	fs.BoolVar(&opts.register, "register", false, "create the account before signing in")
	fs.StringVar(&opts.coupon, "coupon", "", "coupon code to apply")
	fs.Var(&opts.items, "item", "add Product:qty:color:design-ref to the server cart (repeatable)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.password == "" {
		opts.password = os.Getenv("CUSTOMKEEPS_PASSWORD")
	}
	if opts.email == "" || opts.password == "" {
		return opts, errors.New("-email and a password are required")
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "checkout:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadClient(opts.configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	client := storefront.NewClient(cfg.API.BaseURL,
		storefront.WithTimeout(cfg.API.Timeout),
		storefront.WithBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout),
	)

	session, err := signIn(ctx, client, opts)
	if err != nil {
		return err
	}
	defer session.Close()
	client.SetTokenSource(session)

	for _, it := range opts.items {
		if _, err := client.AddCartItem(ctx, it); err != nil {
			return fmt.Errorf("add %s: %w", it.ProductName, err)
		}
	}
	items, err := client.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	payments := payment.NewSessionController(
		client,
		payment.NewStripeConfirmer(cfg.Stripe.BaseURL, cfg.Stripe.PublishableKey, cfg.Stripe.PaymentMethod),
		cfg.Checkout.HoldDuration,
	)
	orch := checkout.New(session, cart.NewStore(), coupon.NewRemoteEvaluator(client), payments, client,
		checkout.WithCallTimeout(cfg.Checkout.CallTimeout),
	)
	defer orch.Close()

	unsubscribe := orch.Subscribe(phaseReporter(out))
	defer unsubscribe()

	stopOnCancel := context.AfterFunc(ctx, orch.Close)
	defer stopOnCancel()

	return checkoutFlow(orch, items, opts.coupon, in, out)
}

func signIn(ctx context.Context, client *storefront.Client, opts options) (*checkout.Session, error) {
	if opts.register {
		if _, err := client.Register(ctx, opts.email, opts.password); err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
	}
	res, err := client.Login(ctx, opts.email, opts.password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return checkout.SessionFromToken(res.Token, res.Email)
}

// checkoutFlow drives one purchase and prints the resulting order history.
// A failed order commit is only retried when the user answers yes on in.
func checkoutFlow(orch *checkout.Orchestrator, items []cart.LineItem, code string, in io.Reader, out io.Writer) error {
	st := orch.Dispatch(checkout.ReplaceCart{Items: items})
	if st.LastError != nil {
		return st.LastError
	}
	if len(st.Items) == 0 {
		return checkout.ErrEmptyCart
	}
	printCart(out, st)

	if code != "" {
		orch.Dispatch(checkout.ApplyCoupon{Code: code})
		orch.Settle()
		st = orch.State()
		fmt.Fprintln(out, st.Coupon.Message)
	}

	if st = orch.Dispatch(checkout.OpenCheckout{}); st.LastError != nil {
		return st.LastError
	}
	orch.Settle()
	if st = orch.State(); st.LastError != nil {
		return st.LastError
	}

	if st = orch.Dispatch(checkout.HoldStart{}); st.LastError != nil {
		return st.LastError
	}
	orch.Settle()

	answers := bufio.NewScanner(in)
	for attempt := 1; ; attempt++ {
		st = orch.State()
		if st.Phase != checkout.PhaseError || !errors.Is(st.LastError, checkout.ErrCommit) || attempt > maxCommitRetries {
			break
		}
		fmt.Fprintln(out, st.Message)
		if !confirmRetry(answers, out) {
			break
		}
		logger.L().Warn("retrying order commit", zap.Int("attempt", attempt))
		orch.Dispatch(checkout.RetryCommit{})
		orch.Settle()
	}
	if st.Phase != checkout.PhaseDone {
		if st.LastError != nil {
			return st.LastError
		}
		return fmt.Errorf("checkout stopped in phase %s", st.Phase)
	}
	fmt.Fprintln(out, st.Message)

	orch.Dispatch(checkout.RefreshOrders{})
	orch.Settle()
	printOrders(out, orch.State())
	return nil
}

func confirmRetry(answers *bufio.Scanner, out io.Writer) bool {
	fmt.Fprint(out, "Retry recording the order? [y/N] ")
	if !answers.Scan() {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answers.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func phaseReporter(out io.Writer) func(checkout.State) {
	last := checkout.PhaseBrowsing
	return func(st checkout.State) {
		if st.Phase == last {
			return
		}
		last = st.Phase
		fmt.Fprintf(out, "-> %s\n", st.Phase)
	}
}

func printCart(out io.Writer, st checkout.State) {
	for _, it := range st.Items {
		fmt.Fprintf(out, "%-20s x%-3d %-8s %s\n", it.ProductName, it.Quantity, it.Color, it.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(out, "subtotal %s\n", st.Totals.Subtotal.StringFixed(2))
}

func printOrders(out io.Writer, st checkout.State) {
	fmt.Fprintf(out, "%d order(s)\n", len(st.Orders))
	for _, o := range st.Orders {
		fmt.Fprintf(out, "%s  %-16s %s  %s\n", o.OrderNumber, o.Status, o.TotalAmount.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04"))
	}
}
