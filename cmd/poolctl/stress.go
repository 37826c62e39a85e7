package main

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/poolworks/entrypool"
	"github.com/poolworks/entrypool/blockmem"
	"github.com/spf13/cobra"
)

var (
	stressSize    uint32
	stressCount   int
	stressWorkers int
	stressChurn   int
	stressRelease float64
	stressEPB     uint32
	stressMmap    bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().Uint32Var(&stressSize, "size", 64, "Entry size in bytes")
	cmd.Flags().IntVar(&stressCount, "count", 100000, "Number of entries to allocate")
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Concurrent workers sharing the pool")
	cmd.Flags().IntVar(&stressChurn, "churn", 0, "Rounds of freeing and reallocating half of each worker's entries")
	cmd.Flags().Float64Var(&stressRelease, "release", 1.0, "Fraction of entries to free before teardown")
	cmd.Flags().Uint32Var(&stressEPB, "entries-per-block", 0, "Entries carved per block (0 = default)")
	cmd.Flags().BoolVar(&stressMmap, "mmap", false, "Back blocks with anonymous mmap instead of the heap")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run an allocation workload and print the registry report",
		Long: `The stress command allocates entries of one size class from several
workers, optionally churns them through free/alloc rounds, frees a
configurable fraction, prints the registry report, and then destroys the
pool. Entries left unreleased show up in the destruction audit on stderr.

Example:
  poolctl stress --size 48 --count 500000
  poolctl stress --count 1000000 --churn 10 --release 0.5 --json
  poolctl stress --mmap --entries-per-block 65536`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

func runStress() error {
	if stressCount <= 0 {
		return fmt.Errorf("count must be positive, got %d", stressCount)
	}
	if stressWorkers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", stressWorkers)
	}
	if stressChurn < 0 {
		return fmt.Errorf("churn must not be negative, got %d", stressChurn)
	}
	if stressRelease < 0 || stressRelease > 1 {
		return fmt.Errorf("release must be in [0, 1], got %g", stressRelease)
	}

	cfg := entrypool.Config{EntriesPerBlock: stressEPB}
	if stressMmap {
		src, err := blockmem.NewMmapSource()
		if err != nil {
			return fmt.Errorf("mmap source unavailable: %w", err)
		}
		cfg.Source = src
	}
	registry := entrypool.NewRegistry(&cfg)

	printVerbose("Acquiring pool for entry size %d\n", stressSize)
	pool, err := registry.AcquirePool(stressSize)
	if err != nil {
		return fmt.Errorf("failed to acquire pool: %w", err)
	}

	perWorker := stressCount / stressWorkers
	extra := stressCount % stressWorkers
	errCh := make(chan error, stressWorkers)
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < stressWorkers; w++ {
		n := perWorker
		if w < extra {
			n++
		}
		wg.Add(1)
		go func(worker, n int) {
			defer wg.Done()
			refs := make([]entrypool.EntryRef, 0, n)
			for i := 0; i < n; i++ {
				ref, buf, err := pool.Alloc()
				if err != nil {
					errCh <- err
					return
				}
				binary.LittleEndian.PutUint64(buf[:8], uint64(worker)<<32|uint64(i))
				refs = append(refs, ref)
			}

			// Each churn round recycles half the worker's entries
			// through the reuse list.
			half := len(refs) / 2
			for round := 0; round < stressChurn; round++ {
				for _, ref := range refs[half:] {
					if err := pool.Free(ref); err != nil {
						errCh <- err
						return
					}
				}
				refs = refs[:half]
				for i := half; i < n; i++ {
					ref, _, err := pool.Alloc()
					if err != nil {
						errCh <- err
						return
					}
					refs = append(refs, ref)
				}
			}

			keep := int(float64(len(refs)) * (1 - stressRelease))
			for _, ref := range refs[keep:] {
				if err := pool.Free(ref); err != nil {
					errCh <- err
					return
				}
			}
		}(w, n)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return fmt.Errorf("workload failed: %w", err)
	}
	elapsed := time.Since(start)

	rep := registry.Report()
	if jsonOut {
		out, err := rep.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		printInfo("%s", rep.FormatText())
		printInfo("\nWorkload: %d entries of size %d across %d workers in %s (%.0f entries/s)\n",
			stressCount, stressSize, stressWorkers, elapsed.Round(time.Millisecond),
			float64(stressCount)/elapsed.Seconds())
	}

	printVerbose("Releasing the pool instance\n")
	pool.ReleaseInstance()
	return nil
}
