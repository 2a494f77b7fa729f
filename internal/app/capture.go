package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/inertial_motion/internal/capture"
	"github.com/relabs-tech/inertial_motion/internal/config"
)

const captureBatch = 200

// RunCapture records fixed-length runs of the acquisition board output into
// the capture database, one session per keypress, until stdin is closed.
func RunCapture(label string, duration time.Duration) error {
	cfg := config.Get()

	store, err := capture.Open(cfg.CaptureDBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Printf("capture: recording into %s", cfg.CaptureDBPath)

	in := bufio.NewReader(os.Stdin)
	for run := 1; ; run++ {
		fmt.Printf("Press Enter to capture a %v sample (Ctrl+D to finish): ", duration)
		if _, err := in.ReadString('\n'); err != nil {
			fmt.Println()
			return nil
		}

		port, err := openSerial(cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		ctx, cancel := context.WithTimeout(ctx, duration)
		closeOnDone(ctx, port)

		id, n, err := recordSession(ctx, store, newLineFeed(port), fmt.Sprintf("%s #%d", label, run))
		cancel()
		stop()
		if err != nil {
			return err
		}
		fmt.Printf("saved %d samples as session %s\n", n, id)
	}
}

// recordSession stores every sample of f in a new session until the feed
// ends or ctx is done.
func recordSession(ctx context.Context, store *capture.Store, f feed, label string) (string, int, error) {
	// Writes must outlive the recording deadline so the last batch lands.
	storeCtx := context.WithoutCancel(ctx)

	id, err := store.NewSession(storeCtx, label)
	if err != nil {
		return "", 0, err
	}

	var (
		batch = make([]capture.Sample, 0, captureBatch)
		total int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.AppendSamples(storeCtx, id, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		s, err := f.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				return id, total, fmt.Errorf("capture read: %w", err)
			}
			break
		}
		batch = append(batch, capture.Sample{Time: s.Time, Accel: s.Accel})
		if len(batch) == captureBatch {
			if err := flush(); err != nil {
				return id, total, err
			}
		}
	}
	if err := flush(); err != nil {
		return id, total, err
	}
	return id, total, nil
}
