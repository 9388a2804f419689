package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/hintly/internal/hints"
	"github.com/abhisek/hintly/internal/llm"
	"github.com/abhisek/hintly/internal/lock"
	"github.com/abhisek/hintly/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			rt.cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, closeSvc, err := newService(ctx, rt)
		if err != nil {
			return err
		}
		defer closeSvc()

		return server.New(svc, rt.store, rt.log).Run(ctx, rt.cfg.Server.Addr)
	},
}

// newService wires the provider, the progress locker and the hint service.
// The returned func releases the locker's connection.
func newService(ctx context.Context, rt *env) (*hints.Service, func(), error) {
	provider, err := llm.NewProviderFromEnv(ctx, rt.store, rt.log)
	if err != nil {
		return nil, nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	rt.log.Info("llm provider ready", "model", provider.ModelID())

	var locker lock.Locker
	closeFn := func() {}
	if rt.cfg.Redis.Addr != "" {
		rl, err := lock.NewRedisLocker(ctx, rt.cfg.Redis.Addr, rt.cfg.Redis.Password, rt.cfg.Redis.LockTTL, rt.log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.log.Info("using redis progress locks", "addr", rt.cfg.Redis.Addr)
		locker = rl
		closeFn = func() { rl.Close() }
	}

	return hints.NewService(rt.store, provider, locker, hintsConfig(rt.cfg), rt.log), closeFn, nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
