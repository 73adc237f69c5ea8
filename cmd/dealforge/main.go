package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"dealforge/internal/catalog"
	"dealforge/internal/config"
	"dealforge/internal/http/handlers"
	applog "dealforge/internal/log"
	"dealforge/internal/repos"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

func main() {
	app := &cli.App{
		Name:           "dealforge",
		Usage:          "software deals storefront",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the storefront HTTP server",
				Action: serve,
			},
			{
				Name:  "deals",
				Usage: "print the catalog as JSON, filtered and sorted like /browse",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search"},
					&cli.StringSliceFlag{Name: "category"},
					&cli.StringFlag{Name: "min-price"},
					&cli.StringFlag{Name: "max-price"},
					&cli.StringFlag{Name: "min-rating"},
					&cli.StringFlag{Name: "min-discount"},
					&cli.StringFlag{Name: "sort", Value: string(catalog.SortFeatured)},
				},
				Action: listDeals,
			},
			{
				Name:   "reset",
				Usage:  "drop stored deals, reviews and carts so the bundled catalog is used again",
				Action: reset,
			},
			{
				Name:      "hash-token",
				Usage:     "print the bcrypt hash to use as ADMIN_TOKEN_HASH",
				ArgsUsage: "<token>",
				Action:    hashToken,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(_ *cli.Context) error {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	app := handlers.NewApp(cfg, handlers.NewDeps(db, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdown); err != nil {
			log.Printf("[warn] shutdown: %v", err)
		}
	}()

	log.Printf("[http] listening on :%s", cfg.Port)
	return app.Listen(":" + cfg.Port)
}

func listDeals(c *cli.Context) error {
	cfg := config.Load()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	deals := services.NewDealService(repos.NewKVRepo(db), services.Latency{})
	all, err := deals.GetAll(c.Context)
	if err != nil {
		return err
	}
	f, ok := validate.Filter(c.String("search"), c.StringSlice("category"), c.String("min-price"),
		c.String("max-price"), c.String("min-rating"), c.String("min-discount"))
	if !ok {
		return cli.Exit("search may only contain letters, numbers, spaces and _ ' & . + # -", 2)
	}
	out := catalog.Apply(all, f, catalog.ParseSort(c.String("sort")))

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func reset(c *cli.Context) error {
	cfg := config.Load()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	kv := repos.NewKVRepo(db)
	keys := []string{services.DealsKey, services.ReviewsKey}
	carts, err := kv.Keys(c.Context, services.CartKey(""))
	if err != nil {
		return err
	}
	for _, k := range append(keys, carts...) {
		if err := kv.Delete(c.Context, k); err != nil {
			return err
		}
	}
	applog.Audit(nil, "store.reset", map[string]any{"carts": len(carts)})
	return nil
}

func hashToken(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: dealforge hash-token <token>", 2)
	}
	h, err := services.HashToken(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, h)
	return nil
}
