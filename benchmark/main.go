// Package main provides a performance benchmarking tool for the lochist CLI.
// It measures how long an accumulation takes with each line counter, once with
// an empty store (cold) and then with everything cached (warm), and writes the
// timings as CSV.
//
// Prerequisites:
// - lochist binary installed and available in PATH
// - A directory of cloned repositories
// - Any of tokei, scc, cloc in PATH (builtin always runs)
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the timings of one counter.
type BenchmarkResult struct {
	Counter  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase string
	Timeout  time.Duration
	Days     int
	WarmRuns int
	Counters []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase: os.Args[1],
		Timeout:  30 * time.Minute,
		Days:     7,
		WarmRuns: 3,
		Counters: []string{"tokei", "scc", "cloc", "builtin"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the lochist binary and the repository base exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("lochist"); err != nil {
		return fmt.Errorf("lochist binary not found in PATH")
	}
	info, err := os.Stat(config.RepoBase)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("repository base %s is not a directory", config.RepoBase)
	}
	return nil
}

// runBenchmarks times each available counter against a fresh store.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %s, %d days, %v timeout, %d warm runs\n",
		config.RepoBase, config.Days, config.Timeout, config.WarmRuns)

	for _, counter := range config.Counters {
		if counter != "builtin" {
			if _, err := exec.LookPath(counter); err != nil {
				fmt.Printf("Skipping %s: not in PATH\n", counter)
				continue
			}
		}
		results = append(results, runBenchmarkSuite(config, counter))
	}
	return results
}

// runBenchmarkSuite runs one cold accumulation and several warm ones for a counter.
func runBenchmarkSuite(config BenchmarkConfig, counter string) BenchmarkResult {
	fmt.Printf("Benchmarking %s\n", counter)

	storeDir, err := os.MkdirTemp("", "lochist-bench-")
	if err != nil {
		fmt.Printf("  failed to create store dir: %v\n", err)
		return BenchmarkResult{Counter: counter, ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(storeDir) }()
	storePath := filepath.Join(storeDir, "history.json")

	cold, ok := runOnce(config, counter, storePath)
	coldStr := "TIMEOUT"
	if ok {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}

	var sum float64
	var warmRuns int
	for range config.WarmRuns {
		if t, ok := runOnce(config, counter, storePath); ok {
			sum += t
			warmRuns++
		}
	}
	warmStr := "TIMEOUT"
	if warmRuns > 0 {
		warmStr = fmt.Sprintf("%.3fs", sum/float64(warmRuns))
	}

	fmt.Printf("  Cold: %s, Warm average: %s\n", coldStr, warmStr)
	return BenchmarkResult{Counter: counter, ColdTime: coldStr, WarmTime: warmStr}
}

// runOnce executes one accumulation and returns its wall time in seconds.
func runOnce(config BenchmarkConfig, counter, storePath string) (float64, bool) {
	cmd := exec.Command("lochist", "accumulate", config.RepoBase,
		"--days", strconv.Itoa(config.Days),
		"--counter", counter,
		"--store", storePath,
		"--color", "no",
	)

	start := time.Now()
	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return 0, false
	}
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return time.Since(start).Seconds(), err == nil
	case <-time.After(config.Timeout):
		_ = cmd.Process.Kill()
		<-done
		return 0, false
	}
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("lochist_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"counter", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Counter, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s: Cold: %s, Warm: %s\n", result.Counter, result.ColdTime, result.WarmTime)
	}
}
