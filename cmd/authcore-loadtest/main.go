package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/holasoymalva/authcore"
	"github.com/holasoymalva/authcore/identity"
	"github.com/holasoymalva/authcore/password"
	"github.com/holasoymalva/authcore/session"
)

const seedPassword = "load-test-password-123"

func main() {
	var (
		identities  = flag.Int("identities", 1000, "number of local identities to seed")
		logins      = flag.Int("logins", 2000, "operations for the login phase")
		ops         = flag.Int("ops", 200000, "operations per phase (verify + check)")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt", "redis key prefix")
		argonMemory = flag.Uint("argon-memory", 8192, "argon2 memory in KB; raise to probe real login cost")
	)
	flag.Parse()

	if *identities <= 0 || *logins <= 0 || *ops <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "identities, logins, ops, and concurrency must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authcore.DefaultConfig()
	// Throwaway signing secret; tokens never leave this process.
	cfg.Token.Secret = []byte("loadtest-secret-loadtest-secret!")
	cfg.Token.Issuer = "authcore-loadtest"
	// Argon2 is tuned down so the login phase measures engine overhead
	// rather than hash hardness. -argon-memory restores realistic cost.
	cfg.Password.Memory = uint32(*argonMemory)
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Roles = []authcore.Role{
		{Name: "viewer", Permissions: []string{"docs.read"}},
		{Name: "editor", Permissions: []string{"docs.write"}, Inherits: "viewer"},
		{Name: "admin", Permissions: []string{"*"}},
	}
	cfg.Metrics.Enabled = true

	identityStore := identity.NewRedisStore(client, *prefix+":id")
	sessionStore := session.NewRedisStore(client, *prefix+":sess", 24*time.Hour)

	engine, err := authcore.New().
		WithConfig(cfg).
		WithIdentityStore(identityStore).
		WithSessionStore(sessionStore).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	hasher, err := password.NewHasher(password.Config{
		Memory:      uint32(*argonMemory),
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build hasher: %v\n", err)
		os.Exit(1)
	}
	// One hash shared by every seeded identity; hashing per identity would
	// turn seeding into its own argon2 benchmark.
	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash seed password: %v\n", err)
		os.Exit(1)
	}

	roles := []string{"viewer", "editor", "admin"}
	emails := make([]string, *identities)
	tokens := make([]string, *identities)

	fmt.Printf("seeding %d identities...\n", *identities)
	startSeed := time.Now()
	for i := 0; i < *identities; i++ {
		role := roles[i%len(roles)]
		email := fmt.Sprintf("load-%d@example.com", i)
		ident := identity.Identity{
			ID:           fmt.Sprintf("load-%d", i),
			DisplayName:  fmt.Sprintf("Load User %d", i),
			Email:        email,
			Role:         role,
			Provider:     identity.ProviderLocal,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if _, err := identityStore.Create(ctx, ident); err != nil {
			fmt.Fprintf(os.Stderr, "seed identity: %v\n", err)
			os.Exit(1)
		}

		token, err := engine.IssueToken(authcore.Claims{Subject: ident.ID, Role: role}, time.Hour)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
			os.Exit(1)
		}
		emails[i] = email
		tokens[i] = token
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loginStats := runPhase(*logins, *concurrency, func(r *rand.Rand) error {
		email := emails[r.Intn(len(emails))]
		_, err := engine.Login(ctx, identity.ProviderLocal, authcore.Credential{
			Email:    email,
			Password: seedPassword,
		})
		return err
	})

	verifyStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		_, err := engine.VerifyToken(tokens[r.Intn(len(tokens))])
		return err
	})

	checkStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		// docs.read is granted to every seeded role, directly or through
		// inheritance, so failures here are real errors.
		return engine.CheckPermission(roles[r.Intn(len(roles))], "docs.read")
	})

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("verify", verifyStats)
	printStats("check", checkStats)

	snap := engine.MetricsSnapshot()
	fmt.Println("---- engine counters ----")
	fmt.Printf("logins:   ok=%d failed=%d\n", snap.Counters[authcore.MetricLoginSuccess], snap.Counters[authcore.MetricLoginFailure])
	fmt.Printf("tokens:   issued=%d verified=%d\n", snap.Counters[authcore.MetricTokenIssued], snap.Counters[authcore.MetricTokenVerified])
	fmt.Printf("checks:   allowed=%d denied=%d\n", snap.Counters[authcore.MetricPermissionAllowed], snap.Counters[authcore.MetricPermissionDenied])
	fmt.Printf("sessions: recorded=%d record-failed=%d\n", snap.Counters[authcore.MetricSessionRecorded], snap.Counters[authcore.MetricSessionRecordFailure])
}

func runPhase(ops, concurrency int, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
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
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
