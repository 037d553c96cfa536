package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
)

// Metrics
var (
	totalRequests uint64
	success200    uint64 // Completed transfers
	fail409       uint64 // Insufficient balance
	fail404       uint64 // Unknown beneficio
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	before := fetchTotalValue()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()

	after := fetchTotalValue()
	printResults(time.Since(start), before, after)
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		from, to := generatePair()

		payload := map[string]interface{}{
			"fromId": from,
			"toId":   to,
			"amount": 1,
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/api/v1/beneficios/transferir", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 200:
			atomic.AddUint64(&success200, 1)
		case 409:
			atomic.AddUint64(&fail409, 1)
		case 404:
			atomic.AddUint64(&fail404, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func generatePair() (int64, int64) {
	// Assumes 1000 beneficios seeded (IDs 1-1000)
	totalBeneficios := 1000

	if workload == "hotspot" {
		// Hotspot: 90% of traffic bounces between beneficios 1 & 2
		if rand.Float32() < 0.90 {
			if rand.Float32() < 0.5 {
				return 1, 2
			}
			return 2, 1
		}
	}

	// Uniform Random
	a := rand.Intn(totalBeneficios) + 1
	b := rand.Intn(totalBeneficios) + 1
	for a == b {
		b = rand.Intn(totalBeneficios) + 1
	}
	return int64(a), int64(b)
}

// fetchTotalValue reads the stats endpoint so conservation can be verified:
// the total must not move no matter how many transfers land.
func fetchTotalValue() json.Number {
	resp, err := http.Get(targetURL + "/api/v1/beneficios/stats")
	if err != nil {
		log.Printf("stats fetch failed: %v", err)
		return "0"
	}
	defer resp.Body.Close()

	var stats struct {
		TotalValue json.Number `json:"totalValue"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&stats); err != nil {
		log.Printf("stats decode failed: %v", err)
		return "0"
	}
	return stats.TotalValue
}

func printResults(d time.Duration, totalBefore, totalAfter json.Number) {
	total := atomic.LoadUint64(&totalRequests)
	s200 := atomic.LoadUint64(&success200)
	f409 := atomic.LoadUint64(&fail409)
	f404 := atomic.LoadUint64(&fail404)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":           workload,
		"duration_sec":       d.Seconds(),
		"total_requests":     total,
		"throughput_tps":     tps,
		"success":            s200,
		"insufficient_funds": f409,
		"not_found":          f404,
		"errors":             fErr,
		"total_value_before": totalBefore,
		"total_value_after":  totalAfter,
		"value_conserved":    totalBefore == totalAfter,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
