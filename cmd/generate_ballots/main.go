// Command generate_ballots writes a synthetic ranked-ballot CSV for
// testing and benchmarking the counter.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
)

func main() {
	var (
		names      = flag.String("candidates", "Platypus,Wombat,Emu,Koala", "Comma-separated candidate names")
		ballots    = flag.Int("ballots", 100, "Number of ballots to generate")
		partial    = flag.Float64("partial", 0, "Probability a ballot is truncated (optional preferential)")
		seed       = flag.Int64("seed", 1, "Random seed, for reproducible fixtures")
		header     = flag.Bool("header", false, "Emit a header row")
		outputPath = flag.String("output", "ballots.csv", "Output file path")
	)
	flag.Parse()

	candidates := strings.Split(*names, ",")
	if len(candidates) < 2 {
		log.Fatal("need at least two candidates")
	}
	if *partial < 0 || *partial > 1 {
		log.Fatal("partial must be within [0, 1]")
	}

	f, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if *header {
		row := make([]string, len(candidates))
		for i := range row {
			row[i] = fmt.Sprintf("Preference %d", i+1)
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("write header: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(*seed))
	for n := 0; n < *ballots; n++ {
		perm := rng.Perm(len(candidates))
		row := make([]string, 0, len(candidates))
		for _, i := range perm {
			row = append(row, candidates[i])
		}
		if rng.Float64() < *partial {
			// Keep at least the first preference.
			row = row[:1+rng.Intn(len(row))]
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("write ballot: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush output: %v", err)
	}

	fmt.Printf("Wrote %d ballots for %d candidates to %s\n", *ballots, len(candidates), *outputPath)
}
