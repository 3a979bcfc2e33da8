package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/config"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/item"
	itemrepo "github.com/ovaphlow/pitchfork/service-veracity/internal/item/repo"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/product"
	productrepo "github.com/ovaphlow/pitchfork/service-veracity/internal/product/repo"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/router"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-veracity/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/database"
	"github.com/ovaphlow/pitchfork/service-veracity/pkg/utilities"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	if err := utilities.SetSnowflakeNode(cfg.SnowflakeNode); err != nil {
		sugar.Fatalf("snowflake node: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := database.Connect(cfg.Database())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	if err := database.Migrate(ctx, sqlDB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}
	db := database.Wrap(sqlDB)

	tokens := session.NewTokenService([]byte(cfg.TokenKey), cfg.TokenTTL)
	cookies := session.Cookies{Secure: cfg.CookieSecure, TTL: tokens.TTL()}

	users := user.NewUserService(userrepo.NewUserRepo(db), user.BcryptHasher{}, tokens)
	gate := session.NewGate(tokens, users, sugar)

	products := productrepo.NewRepo(db)
	items := item.NewService(itemrepo.NewItemRepo(db), products)

	handler := router.RegisterRoutes(sugar, router.Handlers{
		Users:    user.NewHandler(users, gate, cookies, sugar),
		Products: product.NewHandler(product.NewService(products), sugar),
		Items:    item.NewHandler(items, sugar),
		Gate:     gate,
	}, router.Options{
		Origin:      cfg.Origin,
		RateLimit:   cfg.RateLimit,
		Development: !cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("server started", "port", cfg.Port, "started_at", time.Now().Format(time.RFC3339))

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
