package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/pokrok/internal/cache"
	"github.com/julianstephens/pokrok/internal/cli"
	"github.com/julianstephens/pokrok/internal/config"
	"github.com/julianstephens/pokrok/internal/logger"
	"github.com/julianstephens/pokrok/internal/server"
)

type ServeCmd struct {
	Addr  string `help:"Listen address (default from config)."`
	Redis string `help:"Redis address for the response cache (default from config)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}
	if c.Redis != "" {
		ctx.Config.Server.RedisAddr = c.Redis
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	respCache := responseCache(sigCtx, ctx.Config)
	defer respCache.Close()

	srv := server.New(ctx.Service, server.WithCache(respCache, ctx.Config.CacheTTL()))
	ctx.Println(cli.Success("Serving pokrok API on http://" + addr))
	return srv.ListenAndServe(sigCtx, addr)
}

// responseCache prefers Redis and falls back to an in-process cache when it
// is not configured or not reachable.
func responseCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.Server.RedisAddr == "" {
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, cfg.Server.RedisAddr, cfg.Server.RedisDB)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache", "addr", cfg.Server.RedisAddr, "error", err)
		return cache.NewMemory()
	}
	return rc
}
