// Command refresh-loadtest measures 401 recovery under concurrency. It starts an
// in-process authtest backend with rotating refresh tokens, expires every access
// token once per round, and fires concurrent requests at it, first without and
// then with refresh coalescing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/authtest"
	"github.com/MrEthical07/goAuthClient/store"
)

const (
	userEmail    = "load@example.com"
	userPassword = "load-secret"
)

func main() {
	var (
		workers      = flag.Int("workers", 64, "concurrent requests per round")
		rounds       = flag.Int("rounds", 50, "rounds; each round expires all access tokens first")
		refreshDelay = flag.Duration("refresh-delay", 20*time.Millisecond, "latency added to every refresh response")
		redisAddr    = flag.String("redis-addr", "", "redis address for the token store; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *workers <= 0 || *rounds <= 0 {
		fmt.Fprintln(os.Stderr, "workers and rounds must be > 0")
		os.Exit(2)
	}

	rdb, cleanup, err := openRedis(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	fmt.Println("---- results ----")
	for _, coalesce := range []bool{false, true} {
		stats, err := runPhase(rdb, coalesce, *workers, *rounds, *refreshDelay)
		if err != nil {
			fmt.Fprintf(os.Stderr, "phase failed: %v\n", err)
			os.Exit(1)
		}
		name := "independent"
		if coalesce {
			name = "coalesced"
		}
		printStats(name, stats)
	}
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

type phaseStats struct {
	total        time.Duration
	ops          int
	failures     int64
	expired      int64
	refreshCalls int
	p50          time.Duration
	p95          time.Duration
	p99          time.Duration
	opsPerS      float64
}

func runPhase(rdb redis.UniversalClient, coalesce bool, workers, rounds int, delay time.Duration) (phaseStats, error) {
	srv := authtest.New(authtest.Options{RotateRefresh: true, RefreshDelay: delay})
	defer srv.Close()
	if _, err := srv.AddUser("Load", userEmail, userPassword, goAuthClient.RolePassenger); err != nil {
		return phaseStats{}, err
	}

	cfg := goAuthClient.DefaultConfig()
	cfg.BaseURL = srv.URL()
	cfg.Refresh.Mode = goAuthClient.RefreshModeBody
	cfg.Refresh.Coalesce = coalesce

	profile := fmt.Sprintf("loadtest-%t", coalesce)
	client, err := goAuthClient.New().
		WithConfig(cfg).
		WithTokenStore(store.NewRedisStore(rdb, "loadtest", profile, time.Hour)).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		return phaseStats{}, err
	}
	defer client.Close()

	ctx := context.Background()
	var (
		failures  int64
		expired   int64
		latencies = make([]time.Duration, 0, workers*rounds)
		mu        sync.Mutex
	)

	start := time.Now()
	for range rounds {
		if !client.Session().Authenticated() {
			if _, err := client.Login(ctx, goAuthClient.LoginInput{Email: userEmail, Password: userPassword}); err != nil {
				return phaseStats{}, fmt.Errorf("login: %w", err)
			}
		}
		srv.ExpireAccess()

		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				t0 := time.Now()
				err := client.Get(ctx, "/users/me", nil)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					if goAuthClient.IsSessionExpired(err) {
						atomic.AddInt64(&expired, 1)
					}
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}()
		}
		wg.Wait()
	}

	stats := computeStats(time.Since(start), latencies, failures)
	stats.expired = expired
	stats.refreshCalls = srv.RefreshCalls()
	return stats, nil
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d expired=%d refresh_calls=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.expired,
		s.refreshCalls,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
