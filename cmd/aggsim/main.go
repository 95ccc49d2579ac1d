// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command aggsim is a scenario driver for the aggregator engine: it
// loads a YAML file describing seeded base values and a sequence of
// per-aggregator operations, runs them inside one txvm.Transaction,
// and reports the result.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/mattn/go-colorable"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/DioneProtocol/aggsim/plugin/delta"
	"github.com/DioneProtocol/aggsim/plugin/txvm"
	"github.com/DioneProtocol/aggsim/storage"
)

func main() {
	app := &cli.App{
		Name:  "aggsim",
		Usage: "replay aggregator scenarios against the delta engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scenario", Aliases: []string{"s"}, Required: true, Usage: "path to a scenario YAML file"},
			&cli.StringFlag{Name: "store", Value: "memory", Usage: "resolver backend: memory or pebble"},
			&cli.StringFlag{Name: "pebble-dir", Value: "", Usage: "directory for the pebble store, required when --store=pebble"},
			&cli.StringFlag{Name: "log-file", Value: "", Usage: "rotate logs to this file instead of stdout"},
			&cli.BoolFlag{Name: "watch", Usage: "rerun the scenario whenever the scenario file changes"},
			&cli.BoolFlag{Name: "verbose", Usage: "dump every aggregator's internal state after the run"},
			&cli.BoolFlag{Name: "memstats", Usage: "print in-memory size of the live registry after the run"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configureLogging(c.String("log-file"))

	fs := afero.NewOsFs()
	scenarioPath := c.String("scenario")

	runOnce := func() error {
		s, err := loadScenario(fs, scenarioPath)
		if err != nil {
			return err
		}
		outcome, err := replay(s, c.String("store"), c.String("pebble-dir"))
		if err != nil {
			return err
		}
		printReport(os.Stdout, outcome)
		if c.Bool("memstats") {
			reportMemStats(os.Stdout, outcome)
		}
		if c.Bool("verbose") {
			for id, agg := range outcome.Live {
				dumpAggregator(os.Stdout, id, agg)
			}
		}
		return nil
	}

	if !c.Bool("watch") {
		return runOnce()
	}
	return watchAndRun(scenarioPath, runOnce)
}

// replay opens a resolver for store (and pebbleDir, when store is
// "pebble"), seeds it, opens one transaction, and replays every step
// in order.
func replay(s *scenario, store, pebbleDir string) (txvm.Outcome, error) {
	resolver, closeResolver, err := openResolver(store, pebbleDir)
	if err != nil {
		return txvm.Outcome{}, err
	}
	defer closeResolver()

	switch mem, ok := resolver.(*storage.MemoryResolver); {
	case ok:
		for _, sd := range s.Seeds {
			mem.Put(ephemeral(sd.Aggregator), delta.U128FromUint64(sd.Base))
		}
	case len(s.Seeds) > 0:
		// PebbleResolver only resolves Legacy ids (it needs a durable
		// StorageKey); every aggregator this CLI's scenario format
		// builds is Ephemeral, so a seed here can never be written or
		// later resolved. Fail loudly instead of replaying a scenario
		// whose materialize steps are silently guaranteed to fail.
		return txvm.Outcome{}, fmt.Errorf("aggsim: --store=pebble cannot seed %d aggregator(s): pebble only resolves durable (Legacy) ids, but scenario seeds always target Ephemeral ids; drop the seeds or use --store=memory", len(s.Seeds))
	}

	tx := txvm.New(transactionID(), resolver, txvm.Config{DeltaEnabled: s.DeltaEnabled})

	for _, st := range s.Steps {
		if err := applyStep(tx, resolver, st); err != nil {
			tx.Abort()
			return txvm.Outcome{}, fmt.Errorf("aggsim: step %+v: %w", st, err)
		}
	}

	return tx.Commit()
}

func applyStep(tx *txvm.Transaction, resolver storage.Resolver, st step) error {
	id := ephemeral(st.Aggregator)

	switch st.Kind {
	case "create":
		tx.CreateAggregator(id, delta.U128FromUint64(st.Limit))
		return nil
	case "remove":
		tx.RemoveAggregator(id)
		return nil
	case "add", "sub":
		agg, err := tx.GetAggregator(id, delta.U128FromUint64(st.Limit))
		if err != nil {
			return err
		}
		if st.Kind == "add" {
			return agg.Add(delta.U128FromUint64(st.Amount))
		}
		return agg.Sub(delta.U128FromUint64(st.Amount))
	case "materialize":
		agg, err := tx.GetAggregator(id, delta.U128FromUint64(st.Limit))
		if err != nil {
			return err
		}
		_, err = agg.ReadAndMaterialize(resolver, id)
		return err
	default:
		return fmt.Errorf("unknown step kind %q", st.Kind)
	}
}

// transactionID mints a fresh per-run transaction id from a random UUID,
// zero-extended into the 32 bytes txvm.Transaction keys its outcome on.
func transactionID() [32]byte {
	var id [32]byte
	u := uuid.New()
	copy(id[:], u[:])
	return id
}

func openResolver(store, pebbleDir string) (storage.Resolver, func(), error) {
	switch store {
	case "memory":
		return storage.NewMemoryResolver(64 << 20), func() {}, nil
	case "pebble":
		if pebbleDir == "" {
			return nil, nil, fmt.Errorf("aggsim: --pebble-dir is required when --store=pebble")
		}
		r, err := storage.OpenPebbleResolver(pebbleDir)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("aggsim: unknown --store %q", store)
	}
}

func configureLogging(logFile string) {
	var out io.Writer = colorable.NewColorableStdout()
	if logFile != "" {
		out = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}
	handler := log.StreamHandler(out, log.TerminalFormat(logFile == ""))
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlDebug, handler))
}

// watchAndRun runs fn once, then again every time path changes, using
// fsnotify for interactive scenario iteration.
func watchAndRun(path string, fn func() error) error {
	if err := fn(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("aggsim: starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("aggsim: watching %s: %w", path, err)
	}

	// Editors routinely fire several Write events for one save; a burst
	// of those must not replay the scenario once per event.
	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && limiter.Allow() {
				if err := fn(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("aggsim: watcher error", "err", err)
		}
	}
}
