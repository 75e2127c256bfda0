// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Command bootstrapcored runs the bootstrap account prioritization
// core behind a TCP listener, exposing Prometheus metrics and a JSON
// debug endpoint over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/erigon-bootstrap/accountsets"
	"github.com/erigontech/erigon-bootstrap/internal/obslog"
	"github.com/erigontech/erigon-bootstrap/ledger"
	"github.com/erigontech/erigon-bootstrap/metrics"
	"github.com/erigontech/erigon-bootstrap/store"
	"github.com/erigontech/erigon-bootstrap/transport"
)

var greatBootstrapBanner = `
 ____                  _       _
| __ )  ___   ___  ___| |_ ___| |_ _ __ __ _ _ __
|  _ \ / _ \ / _ \/ __| __/ __| __| '__/ _  | '_ \
| |_) | (_) | (_) \__ \ |_\__ \ |_| | | (_| | |_) |
|____/ \___/ \___/|___/\__|___/\__|_|  \__,_| .__/
                                             |_|
`

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	app := &cli.App{
		Name:  "bootstrapcored",
		Usage: "bootstrap account prioritization core",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":7070", Usage: "TCP listen address for the peer acceptor"},
			&cli.StringFlag{Name: "http-addr", Value: ":7071", Usage: "HTTP listen address for /metrics and /debug/info"},
			&cli.IntFlag{Name: "priorities-max", Value: 256 * 1024},
			&cli.IntFlag{Name: "blocking-max", Value: 256 * 1024},
			&cli.DurationFlag{Name: "cooldown", Value: 3 * time.Second},
			&cli.StringFlag{Name: "cooldown-ms", Usage: "cooldown in milliseconds, decimal or 0x-hex; overrides --cooldown"},
			&cli.Float64Flag{Name: "accept-rate", Value: 200.0, Usage: "max inbound connections accepted per second"},
			&cli.Int64Flag{Name: "max-inbound", Value: 128, Usage: "max concurrent inbound connections"},
			&cli.StringFlag{Name: "config", Usage: "optional TOML config file, overriding the flags above"},
			&cli.BoolFlag{Name: "dev-log", Usage: "use a console-friendly development logger instead of JSON"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info(greatBootstrapBanner)

	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("bootstrapcored: loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("bootstrapcored: invalid config: %w", err)
	}

	registry := prometheus.NewRegistry()
	counters := metrics.NewCounters(registry)

	engine := accountsets.New(cfg, counters, clock.New())

	ledgerStore := store.NewMemStore()
	var epochs *ledger.Epochs
	if err := ledgerStore.View(func(txn store.Txn) error {
		var err error
		epochs, err = ledger.LoadEpochs(txn)
		return err
	}); err != nil {
		return fmt.Errorf("bootstrapcored: loading epoch registry: %w", err)
	}

	listener := transport.New(transport.Config{
		Addr:             c.String("addr"),
		MaxInboundConns:  c.Int64("max-inbound"),
		AcceptRatePerSec: c.Float64("accept-rate"),
	}, engine, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mux := httprouter.New()
	mux.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.GET("/debug/info", debugInfoHandler(engine))
	mux.POST("/debug/blocks", debugPutBlockHandler(ledgerStore))
	mux.GET("/debug/representative/:account", debugRepresentativeHandler(ledgerStore, epochs))
	mux.POST("/debug/epochs/:epoch", debugPutEpochHandler(ledgerStore, epochs))

	httpServer := &http.Server{Addr: c.String("http-addr"), Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server exited", "err", err)
		}
	}()

	errc := make(chan error, 1)
	go func() { errc <- listener.Run(ctx, time.Second) }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		if err != nil && ctx.Err() == nil {
			log.Error("listener exited", "err", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(c *cli.Context) (*obslog.Logger, error) {
	if c.Bool("dev-log") {
		return obslog.NewDevelopment()
	}
	return obslog.New()
}
