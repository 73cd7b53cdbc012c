package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/joshuapare/refkit/dispose"
	"github.com/joshuapare/refkit/ref"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Report block geometry for common payload shapes",
		Long: `The info command allocates probe blocks and reports the total size the
allocator produced for common payload shapes, plus the runtime parameters
that shape them.

Example:
  refbench info
  refbench info --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
}

type probeReport struct {
	Payload   string `json:"payload"`
	BlockSize uint64 `json:"block_size"`
}

type infoReport struct {
	GOOS     string        `json:"goos"`
	GOARCH   string        `json:"goarch"`
	PageSize int           `json:"page_size"`
	MaxCount int64         `json:"max_count"`
	Probes   []probeReport `json:"probes"`
}

func runInfo() error {
	// The disposer sees the whole block on release, header included, so a
	// probe allocation measures real geometry rather than assumptions.
	var last uintptr
	capture := dispose.Func(func(b ref.Block) {
		last = b.Size()
		b.Free()
	})
	opts := &ref.Options{Disposer: capture}

	probe := func(label string, alloc func()) probeReport {
		alloc()
		return probeReport{Payload: label, BlockSize: uint64(last)}
	}

	report := infoReport{
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		PageSize: os.Getpagesize(),
		MaxCount: ref.MaxCount,
		Probes: []probeReport{
			probe("byte", func() { s := ref.NewIn(byte(0), opts); s.Release() }),
			probe("uint64", func() { s := ref.NewIn(uint64(0), opts); s.Release() }),
			probe("[32]byte", func() { s := ref.NewIn([32]byte{}, opts); s.Release() }),
			probe("[64]uint64", func() { s := ref.NewIn([64]uint64{}, opts); s.Release() }),
			probe("slice of 16 uint64", func() { s := ref.NewSliceIn(make([]uint64, 16), opts); s.Release() }),
			probe("str of 11 bytes", func() { s := ref.NewStrIn("hello world", opts); s.Release() }),
		},
	}

	if jsonOut {
		return printJSON(report)
	}
	fmt.Printf("runtime: %s/%s, page size %d\n", report.GOOS, report.GOARCH, report.PageSize)
	fmt.Printf("max count: %d\n", report.MaxCount)
	fmt.Println("probe blocks:")
	for _, p := range report.Probes {
		fmt.Printf("  %-20s %5d bytes\n", p.Payload, p.BlockSize)
	}
	return nil
}
