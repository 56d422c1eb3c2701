// Command busctl is a terminal client for the bus booking API.
//
// Usage:
//
//	busctl [-config file] [-metrics] <command> [flags]
//
// Commands: login, register, whoami, trips, bookings, logout.
//
// Settings come from BUSCTL_* environment variables, optionally preloaded from a
// .env file, or from a YAML file given with -config. The session is kept in
// Redis when BUSCTL_REDIS_ADDR is set, so it survives between invocations;
// otherwise it lives in memory and BUSCTL_EMAIL / BUSCTL_PASSWORD are used to
// log in on every run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("busctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("BUSCTL_CONFIG"), "YAML config file")
	showMetrics := fs.Bool("metrics", false, "print client metrics in Prometheus format after the command")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: busctl [-config file] [-metrics] <login|register|whoami|trips|bookings|logout> [flags]")
		return 2
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "busctl: %v\n", err)
		return 1
	}
	app, err := newApp(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "busctl: %v\n", err)
		return 1
	}
	defer app.Close()

	err = app.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
	if *showMetrics {
		app.printMetrics(stderr)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	case goAuthClient.IsSessionExpired(err):
		fmt.Fprintln(stderr, "busctl: session expired, run `busctl login`")
		return 1
	default:
		fmt.Fprintf(stderr, "busctl: %v\n", err)
		return 1
	}
}
