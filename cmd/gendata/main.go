package main

import (
	"flag"
	"log"
	"time"

	"canteenopt/internal/synth"
)

var (
	dir   = flag.String("dir", "data", "Output directory for the CSV files")
	start = flag.String("start", "2023-01-01", "First date (YYYY-MM-DD)")
	end   = flag.String("end", "2024-12-31", "Last date (YYYY-MM-DD)")
	seed  = flag.Int64("seed", 42, "Random seed")
)

func main() {
	flag.Parse()

	from, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	to, err := time.Parse("2006-01-02", *end)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}
	if to.Before(from) {
		log.Fatalf("End date %s precedes start date %s", *end, *start)
	}

	gen := synth.New(*seed)
	if err := gen.WriteAll(*dir, from, to); err != nil {
		log.Fatalf("Failed to generate datasets: %v", err)
	}

	days := int(to.Sub(from).Hours()/24) + 1
	log.Printf("Generated %d days of synthetic data in %s", days, *dir)
}
