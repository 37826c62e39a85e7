package main

import (
	"fmt"
	"strconv"

	"github.com/poolworks/entrypool"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newAlignCmd())
}

func newAlignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <size>...",
		Short: "Show which size class serves each requested entry size",
		Long: `The align command maps requested entry sizes to the size class a
registry would serve them from. Sizes are raised to the minimum entry size
and rounded up to the entry alignment, so nearby sizes share one pool.

Example:
  poolctl align 1 8 9 100
  poolctl align --json 24 25`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(args)
		},
	}
	return cmd
}

type sizeClass struct {
	Requested uint32 `json:"requested"`
	Class     uint32 `json:"class"`
}

func runAlign(args []string) error {
	classes := make([]sizeClass, 0, len(args))
	for _, arg := range args {
		size, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", arg, err)
		}
		if size == 0 {
			return fmt.Errorf("size 0 is rejected by the registry and has no class")
		}
		classes = append(classes, sizeClass{
			Requested: uint32(size),
			Class:     entrypool.AlignedSize(uint32(size)),
		})
	}

	if jsonOut {
		return printJSON(classes)
	}
	for _, c := range classes {
		printInfo("size %d -> class %d\n", c.Requested, c.Class)
	}

	// Point out requests that would end up sharing one pool.
	byClass := make(map[uint32][]uint32)
	order := make([]uint32, 0, len(classes))
	for _, c := range classes {
		if len(byClass[c.Class]) == 0 {
			order = append(order, c.Class)
		}
		byClass[c.Class] = append(byClass[c.Class], c.Requested)
	}
	for _, class := range order {
		if sizes := byClass[class]; len(sizes) > 1 {
			printInfo("sizes %v share class %d\n", sizes, class)
		}
	}
	return nil
}
