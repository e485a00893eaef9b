package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        uint64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

func (r Result) Details() []string {
	return []string{
		fmt.Sprintf("total_requests=%d", r.TotalRequests),
		fmt.Sprintf("failures=%d", r.Failures),
		fmt.Sprintf("status_2xx=%d", r.Status2xx),
		fmt.Sprintf("status_4xx=%d", r.Status4xx),
		fmt.Sprintf("status_5xx=%d", r.Status5xx),
	}
}

// Run drives the catalog web UI at a fixed request rate until the duration
// elapses or ctx is cancelled.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	endpoints, err := endpointsForProfile(cfg.Profile, cfg.Seed)
	if err != nil {
		return Result{}, err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx int64
	jobs := make(chan string, cfg.Concurrency*2)
	wg := sync.WaitGroup{}

	for range cfg.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{
				TotalRequests: atomic.LoadInt64(&total),
				Failures:      atomic.LoadInt64(&failures),
				Status2xx:     atomic.LoadInt64(&s2xx),
				Status4xx:     atomic.LoadInt64(&s4xx),
				Status5xx:     atomic.LoadInt64(&s5xx),
			}, nil
		case <-ticker.C:
			select {
			case jobs <- endpoints[i%len(endpoints)]:
				i++
			case <-ctx.Done():
			}
		}
	}
}

var sampleValues = map[string][]string{
	"name":  {"Chair", "ab", "Oak Desk", "", "Lamp (large)"},
	"price": {"19.99", "0", "abc", "120", ""},
	"image": {"https://example.com/pic.png", "ftp://example.com/a.png", "example.com/a.jpg", "https://example.com/page.html"},
}

// endpointsForProfile builds a shuffled request plan. Validation requests
// sample both valid and invalid values.
func endpointsForProfile(profile string, seed uint64) ([]string, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	validate := func(n int) []string {
		out := make([]string, 0, n)
		fields := []string{"name", "price", "image"}
		for range n {
			field := fields[rng.IntN(len(fields))]
			values := sampleValues[field]
			q := url.Values{"field": {field}, "value": {values[rng.IntN(len(values))]}}
			out = append(out, "/validate?"+q.Encode())
		}
		return out
	}
	browse := []string{"/", "/health/live", "/health/ready", "/assets/catalog.css"}

	var plan []string
	switch strings.ToLower(profile) {
	case "", "mixed":
		plan = append(append(plan, browse...), validate(8)...)
	case "browse":
		plan = browse
	case "validate":
		plan = validate(16)
	default:
		return nil, fmt.Errorf("unknown profile: %s", profile)
	}
	rng.Shuffle(len(plan), func(i, j int) { plan[i], plan[j] = plan[j], plan[i] })
	return plan, nil
}
