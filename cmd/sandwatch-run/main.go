// Package main - sandwatch-run
// Headless runner: plays one countdown offline and writes every frame as
// NDJSON, one descriptor per line. Useful for renderer development and for
// eyeballing frame output without a server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sandwatch-io/sandwatch/internal/engine"
	"github.com/sandwatch-io/sandwatch/internal/events"
	"github.com/sandwatch-io/sandwatch/internal/frame"
	"github.com/sandwatch-io/sandwatch/internal/platform/config"
	"github.com/sandwatch-io/sandwatch/internal/platform/logger"
)

func main() {
	durationS := flag.Int("duration", 5, "countdown length in seconds")
	tickMS := flag.Int("tick", 30, "tick interval in milliseconds")
	seed := flag.Int64("seed", 0, "particle RNG seed (0 = entropy)")
	out := flag.String("out", "-", "output file for NDJSON frames ('-' = stdout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	cfg.DurationSeconds = *durationS
	cfg.TickInterval = time.Duration(*tickMS) * time.Millisecond
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create output file:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	buf := bufio.NewWriter(w)
	defer buf.Flush()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	sim, err := engine.NewSimulation(cfg, engine.SystemClock{}, rand.New(rand.NewSource(rngSeed)))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot build simulation:", err)
		os.Exit(1)
	}
	eng := engine.NewEngine(sim, events.NewEventLog(nil), logger.NewLogger(), cfg.TickInterval)

	enc := json.NewEncoder(buf)
	done := make(chan struct{})
	eng.OnFrame(func(fd *frame.Descriptor) {
		if err := enc.Encode(fd); err != nil {
			fmt.Fprintln(os.Stderr, "frame write failed:", err)
			os.Exit(1)
		}
		if fd.State == string(engine.StateCompleted) {
			close(done)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	if err := eng.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "start failed:", err)
		os.Exit(1)
	}

	<-done
	fmt.Fprintf(os.Stderr, "countdown of %ds finished\n", *durationS)
}
