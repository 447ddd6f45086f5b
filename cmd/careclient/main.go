// Command careclient is the terminal front end of CareConnect: account
// management for everyone, request submission for patients and families,
// and a live pending list for caregivers.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/account"
	"github.com/eldercare/careconnect/internal/client/auth"
	"github.com/eldercare/careconnect/internal/client/careapi"
	"github.com/eldercare/careconnect/internal/client/session"
	redisdb "github.com/eldercare/careconnect/internal/infrastructure/db/redis"
	"github.com/eldercare/careconnect/internal/pkg/config"
	"github.com/eldercare/careconnect/pkg/logger"
)

const usage = `usage: careclient [-ephemeral] <command> [flags]

commands:
  signup    create an account
  login     sign in (-remember keeps you signed in)
  logout    sign out on this device
  whoami    show the signed-in user
  services  list the service catalogue
  request   submit a service request (patients and families)
  watch     follow and act on pending requests (caregivers)
`

// app holds what every command needs.
type app struct {
	cfg      *config.Client
	log      zerolog.Logger
	identity *auth.Context
	api      *careapi.Client
	accounts *account.Service
	out      io.Writer
	in       io.Reader
}

func main() {
	os.Exit(run())
}

func run() int {
	global := flag.NewFlagSet("careclient", flag.ContinueOnError)
	ephemeral := global.Bool("ephemeral", false, "keep the session in memory only")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "careclient",
		Pretty:  true,
		Output:  os.Stderr,
	})

	short, long, closeTiers, err := openTiers(ctx, cfg, *ephemeral)
	if err != nil {
		log.Error().Err(err).Msg("session storage unavailable")
		return 1
	}
	defer closeTiers()

	identity := auth.NewContext(session.NewStore(short, long, logger.For("session")), logger.For("auth"))
	identity.Init(ctx)

	api := careapi.New(cfg.APIURL,
		careapi.WithTimeout(cfg.HTTPTimeout),
		careapi.WithTokenSource(identity.Token),
		careapi.WithLogger(logger.For("careapi")),
	)

	a := &app{
		cfg:      cfg,
		log:      log,
		identity: identity,
		api:      api,
		accounts: account.NewService(api, identity, logger.For("account")),
		out:      os.Stdout,
		in:       os.Stdin,
	}

	cmd, args := global.Arg(0), global.Args()[1:]
	handlers := map[string]func(context.Context, []string) error{
		"signup":   a.signup,
		"login":    a.login,
		"logout":   a.logout,
		"whoami":   a.whoami,
		"services": a.services,
		"request":  a.request,
		"watch":    a.watch,
	}
	h, ok := handlers[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	if err := h(ctx, args); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// openTiers returns the two session tiers: Redis-backed and keyed by device
// normally, process memory with -ephemeral.
func openTiers(ctx context.Context, cfg *config.Client, ephemeral bool) (session.Tier, session.Tier, func(), error) {
	if ephemeral {
		return session.NewMemoryTier(), session.NewMemoryTier(), func() {}, nil
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	device := deviceID(cfg.DeviceID)
	short := redisdb.NewSessionTier(rdb, device, "session", cfg.SessionTTL)
	long := redisdb.NewSessionTier(rdb, device, "remember", cfg.RememberTTL)
	return short, long, func() { _ = rdb.Close() }, nil
}

func deviceID(configured string) string {
	if configured != "" {
		return configured
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	// Without a stable name the session only lives for this run.
	return uuid.NewString()
}
