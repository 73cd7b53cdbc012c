// Command benchmark_parser turns `go test -bench` output from the ref
// package into a markdown report, pairing the batched and unbatched
// variants of a benchmark family so the count-traffic savings are visible
// at a glance.
//
// Usage:
//
//	go test -bench=. -benchmem ./ref | go run scripts/benchmark_parser.go
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Family      string
	Variant     string
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the batched and unbatched variants of a family.
type ComparisonResult struct {
	Family          string
	BatchedNs       float64
	UnbatchedNs     float64
	Speedup         float64
	BatchedMem      int64
	UnbatchedMem    int64
	BatchedAllocs   int64
	UnbatchedAllocs int64
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	var scanner *bufio.Scanner
	var inputF *os.File
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		inputF = f
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(os.Stdin)
	}

	results := parseBenchmarks(scanner)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons, standalone := pairVariants(results)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Paired %d batched/unbatched comparisons\n", len(comparisons))
	}

	report := generateMarkdownReport(comparisons, standalone)

	if *outputFile != "" {
		err := os.WriteFile(*outputFile, []byte(report), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			if inputF != nil {
				inputF.Close()
			}
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}

	if inputF != nil {
		inputF.Close()
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// BenchmarkShared_CloneRelease-8   96834210   12.4 ns/op   0 B/op   0 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+(?:B|MB)/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Tolerate `go test -json` event lines.
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		name := matches[1]
		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)

		var bytesPerOp, allocsPerOp int64
		if matches[4] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		family, variant := splitBenchmarkName(name)
		results = append(results, BenchmarkResult{
			Name:        name,
			Family:      family,
			Variant:     variant,
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}

	return results
}

// splitBenchmarkName parses Benchmark<Family>_<Variant>-<procs>, where the
// variant is optional. BenchmarkCloneMany_Batched-8 yields ("CloneMany",
// "Batched").
func splitBenchmarkName(name string) (string, string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if dashIdx := strings.LastIndex(name, "-"); dashIdx > 0 {
		if _, err := strconv.Atoi(name[dashIdx+1:]); err == nil {
			name = name[:dashIdx]
		}
	}
	if idx := strings.Index(name, "_"); idx > 0 {
		return name[:idx], name[idx+1:]
	}
	return name, ""
}

// pairVariants splits results into Batched/Unbatched comparison pairs and
// standalone rows.
func pairVariants(results []BenchmarkResult) ([]ComparisonResult, []BenchmarkResult) {
	grouped := make(map[string]map[string]BenchmarkResult)
	for _, result := range results {
		if grouped[result.Family] == nil {
			grouped[result.Family] = make(map[string]BenchmarkResult)
		}
		grouped[result.Family][result.Variant] = result
	}

	var comparisons []ComparisonResult
	var standalone []BenchmarkResult

	for family, variants := range grouped {
		batched, hasBatched := variants["Batched"]
		unbatched, hasUnbatched := variants["Unbatched"]
		if hasBatched && hasUnbatched {
			comparisons = append(comparisons, ComparisonResult{
				Family:          family,
				BatchedNs:       batched.NsPerOp,
				UnbatchedNs:     unbatched.NsPerOp,
				Speedup:         unbatched.NsPerOp / batched.NsPerOp,
				BatchedMem:      batched.BytesPerOp,
				UnbatchedMem:    unbatched.BytesPerOp,
				BatchedAllocs:   batched.AllocsPerOp,
				UnbatchedAllocs: unbatched.AllocsPerOp,
			})
			continue
		}
		for _, result := range variants {
			standalone = append(standalone, result)
		}
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Family < comparisons[j].Family
	})
	sort.Slice(standalone, func(i, j int) bool {
		return standalone[i].Name < standalone[j].Name
	})

	return comparisons, standalone
}

func generateMarkdownReport(comparisons []ComparisonResult, standalone []BenchmarkResult) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Standalone benchmarks**: %d\n", len(standalone)))
	sb.WriteString(fmt.Sprintf("- **Batched/unbatched pairs**: %d\n", len(comparisons)))
	if len(comparisons) > 0 {
		total := 0.0
		for _, comp := range comparisons {
			total += comp.Speedup
		}
		sb.WriteString(
			fmt.Sprintf(
				"- **Average batching speedup**: **%.2fx**\n",
				total/float64(len(comparisons)),
			),
		)
	}
	sb.WriteString("\n")

	if len(comparisons) > 0 {
		sb.WriteString("## Batched vs Unbatched\n\n")
		sb.WriteString(
			"| Family | Batched (ns/op) | Unbatched (ns/op) | Speedup | Memory (B/op) | Allocs |\n",
		)
		sb.WriteString(
			"|--------|-----------------|-------------------|---------|---------------|--------|\n",
		)
		for _, comp := range comparisons {
			indicator := "✓"
			if comp.Speedup < 1.0 {
				indicator = "✗"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | **%.2fx** %s | %s vs %s | %s vs %s |\n",
				comp.Family,
				formatNumber(comp.BatchedNs),
				formatNumber(comp.UnbatchedNs),
				comp.Speedup,
				indicator,
				formatBytes(comp.BatchedMem),
				formatBytes(comp.UnbatchedMem),
				formatNumber(float64(comp.BatchedAllocs)),
				formatNumber(float64(comp.UnbatchedAllocs)),
			))
		}
		sb.WriteString("\n")
	}

	if len(standalone) > 0 {
		sb.WriteString("## All Benchmarks\n\n")
		sb.WriteString("| Benchmark | ns/op | B/op | allocs/op |\n")
		sb.WriteString("|-----------|-------|------|-----------|\n")
		for _, result := range standalone {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				result.Name,
				formatNumber(result.NsPerOp),
				formatBytes(result.BytesPerOp),
				formatNumber(float64(result.AllocsPerOp)),
			))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: batching the count adjustments wins ✓\n")
	sb.WriteString("- **Memory comparison**: Lower is better\n")
	sb.WriteString("- **Allocations**: Fewer is better\n")

	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
