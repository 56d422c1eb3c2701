package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/bookings"
	"github.com/MrEthical07/goAuthClient/metrics/export/prometheus"
	"github.com/MrEthical07/goAuthClient/store"
)

var errUsage = errors.New("usage")

type app struct {
	cfg     *Config
	client  *goAuthClient.Client
	api     *bookings.Client
	out     io.Writer
	errOut  io.Writer
	closers []func()
}

func newApp(ctx context.Context, cfg *Config, stdout, stderr io.Writer) (*app, error) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, out: stdout, errOut: stderr}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	builder := goAuthClient.New().WithConfig(clientCfg).WithLogger(logger)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		builder.WithTokenStore(store.NewRedisStore(rdb, cfg.Redis.Prefix, cfg.Profile, cfg.Redis.TTL))
	} else {
		builder.WithTokenStore(store.NewMemoryStore())
	}

	if cfg.AuditLog != "" {
		f, err := os.OpenFile(cfg.AuditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.closers = append(a.closers, func() { _ = f.Close() })
		builder.WithAuditSink(goAuthClient.NewJSONWriterSink(f))
	}

	client, err := builder.Build()
	if err != nil {
		a.Close()
		return nil, err
	}
	// the client flushes audit events before the sink file is closed
	a.closers = append([]func(){client.Close}, a.closers...)
	a.client = client
	a.api = bookings.New(client)
	return a, nil
}

func (a *app) Close() {
	for _, fn := range a.closers {
		fn()
	}
	a.closers = nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "whoami":
		return a.whoami(ctx)
	case "trips":
		return a.trips(ctx, args)
	case "bookings":
		return a.bookings(ctx, args)
	case "logout":
		return a.logout(ctx)
	default:
		fmt.Fprintf(a.errOut, "busctl: unknown command %q\n", cmd)
		return errUsage
	}
}

// ensureSession restores a stored session, falling back to the configured
// credentials.
func (a *app) ensureSession(ctx context.Context) error {
	session := a.client.Session()
	if err := session.Bootstrap(ctx); err != nil {
		return err
	}
	if session.Authenticated() {
		return nil
	}
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return fmt.Errorf("not logged in: run `busctl login` or set BUSCTL_EMAIL and BUSCTL_PASSWORD")
	}
	_, err := a.client.Login(ctx, goAuthClient.LoginInput{Email: a.cfg.Email, Password: a.cfg.Password})
	return err
}

func (a *app) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.newFlags("login")
	email := fs.String("email", a.cfg.Email, "account email")
	password := fs.String("password", a.cfg.Password, "account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(a.errOut, "login: -email and -password are required")
		return errUsage
	}

	resp, err := a.client.Login(ctx, goAuthClient.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.printUser(resp.User)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.newFlags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, at least 6 characters")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *name == "" || *email == "" || len(*password) < 6 {
		fmt.Fprintln(a.errOut, "register: -name, -email and a -password of at least 6 characters are required")
		return errUsage
	}

	resp, err := a.client.Register(ctx, goAuthClient.RegisterInput{Name: *name, Email: *email, Password: *password, Phone: *phone})
	if err != nil {
		return err
	}
	a.printUser(resp.User)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	var me goAuthClient.User
	if err := a.client.Get(ctx, "/users/me", &me); err != nil {
		return err
	}
	a.printUser(&me)
	return nil
}

func (a *app) trips(ctx context.Context, args []string) error {
	fs := a.newFlags("trips")
	from := fs.String("from", "", "departure city")
	to := fs.String("to", "", "arrival city")
	date := fs.String("date", "", "departure date, YYYY-MM-DD")
	maxPrice := fs.Float64("max-price", 0, "hide trips above this price")
	sortBy := fs.String("sort", "departure", "departure, arrival, price or duration")
	desc := fs.Bool("desc", false, "sort descending")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	q := bookings.TripQuery{FromCity: *from, ToCity: *to}
	if *date != "" {
		d, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			fmt.Fprintf(a.errOut, "trips: bad -date %q\n", *date)
			return errUsage
		}
		q.Date = d
	}
	key, ok := parseSortKey(*sortBy)
	if !ok {
		fmt.Fprintf(a.errOut, "trips: unknown -sort %q\n", *sortBy)
		return errUsage
	}

	trips, err := a.api.SearchTrips(ctx, q)
	if err != nil {
		return err
	}
	trips = bookings.FilterTrips(trips, bookings.TripFilter{MaxPrice: *maxPrice})
	bookings.SortTrips(trips, key, *desc)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROUTE\tDEPARTS\tDURATION\tPRICE\tSTATUS")
	for _, t := range trips {
		route := t.RouteID
		if t.Route != nil {
			route = t.Route.FromCity + " → " + t.Route.ToCity
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%s\n",
			t.ID, route, t.DepartureTime.Local().Format("2006-01-02 15:04"),
			(time.Duration(t.Duration) * time.Minute).String(), t.Price, t.Status)
	}
	return tw.Flush()
}

func (a *app) bookings(ctx context.Context, args []string) error {
	fs := a.newFlags("bookings")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}

	list, err := a.api.MyBookings(ctx, bookings.Page{Page: *page, Limit: *limit})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tTRIP\tSEATS\tTOTAL\tSTATUS")
	for _, b := range list {
		status := string(b.Status)
		if b.Expired(time.Now()) {
			status += " (hold expired)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%s\n", b.BookingCode, b.TripID, strings.Join(b.Seats, ","), b.TotalPrice, status)
	}
	return tw.Flush()
}

func (a *app) logout(ctx context.Context) error {
	if err := a.client.Session().Bootstrap(ctx); err != nil {
		return err
	}
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) printUser(u *goAuthClient.User) {
	if u == nil {
		fmt.Fprintln(a.out, "ok")
		return
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", u.Name, u.Email, u.Role, u.ID)
}

func (a *app) printMetrics(w io.Writer) {
	_, _ = io.WriteString(w, prometheus.NewExporter(a.client).Render())
}

func parseSortKey(s string) (bookings.SortKey, bool) {
	switch strings.ToLower(s) {
	case "departure", "":
		return bookings.SortByDeparture, true
	case "arrival":
		return bookings.SortByArrival, true
	case "price":
		return bookings.SortByPrice, true
	case "duration":
		return bookings.SortByDuration, true
	}
	return 0, false
}
