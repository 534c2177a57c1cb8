// Command loadgen exercises a running searchd: it seeds a synthetic corpus
// through POST /documents, then drives concurrent POST /search traffic and
// reports throughput and latency percentiles.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var words = []string{
	"index", "search", "token", "ranking", "cursor", "prefix", "document",
	"engine", "query", "cache", "shard", "vector", "corpus", "stream",
	"latency", "metric", "broker", "storage", "replica", "snapshot",
}

type stats struct {
	requests  atomic.Int64
	errors    atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(d time.Duration, ok bool) {
	s.requests.Add(1)
	if !ok {
		s.errors.Add(1)
		return
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func (s *stats) percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(s.latencies)-1) * p)
	return s.latencies[idx]
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:3000", "searchd base URL")
	docs := flag.Int("docs", 5000, "documents to seed before the run")
	concurrency := flag.Int("concurrency", 8, "concurrent search workers")
	duration := flag.Duration("duration", 30*time.Second, "run duration")
	prefixRatio := flag.Float64("prefix-ratio", 0.3, "fraction of queries in prefix mode")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	if err := seed(client, *baseURL, *docs); err != nil {
		fmt.Fprintln(os.Stderr, "loadgen: seeding failed:", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d documents, running %d workers for %s\n",
		*docs, *concurrency, *duration)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	st := &stats{}
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			worker(ctx, client, *baseURL, *prefixRatio, st, rand.New(rand.NewSource(seed)))
		}(int64(i))
	}
	wg.Wait()
	report(st, time.Since(start))
}

func seed(client *http.Client, baseURL string, total int) error {
	rng := rand.New(rand.NewSource(42))
	const batchSize = 500
	for offset := 0; offset < total; offset += batchSize {
		n := batchSize
		if offset+n > total {
			n = total - offset
		}
		docs := make([]map[string]any, n)
		for i := range docs {
			docs[i] = map[string]any{
				"id":   fmt.Sprintf("synthetic-%06d", offset+i),
				"text": randomText(rng),
			}
		}
		body, _ := json.Marshal(map[string]any{"documents": docs})
		resp, err := client.Post(baseURL+"/documents", "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("seed batch at %d: status %d", offset, resp.StatusCode)
		}
	}
	return nil
}

func randomText(rng *rand.Rand) string {
	n := 10 + rng.Intn(40)
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(words[rng.Intn(len(words))])
	}
	return buf.String()
}

func worker(ctx context.Context, client *http.Client, baseURL string, prefixRatio float64, st *stats, rng *rand.Rand) {
	for ctx.Err() == nil {
		query := words[rng.Intn(len(words))] + " " + words[rng.Intn(len(words))]
		mode := "fulltext"
		if rng.Float64() < prefixRatio {
			mode = "prefix"
			query = query[:len(query)-2]
		}
		body, _ := json.Marshal(map[string]any{"query": query, "mode": mode})

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			baseURL+"/search", bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		begin := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				st.record(time.Since(begin), false)
			}
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		st.record(time.Since(begin), resp.StatusCode == http.StatusOK)
	}
}

func report(st *stats, elapsed time.Duration) {
	st.mu.Lock()
	sort.Slice(st.latencies, func(i, j int) bool { return st.latencies[i] < st.latencies[j] })
	st.mu.Unlock()

	total := st.requests.Load()
	fmt.Printf("\nrequests:   %d (%.1f/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("errors:     %d\n", st.errors.Load())
	fmt.Printf("latency:    p50=%s p95=%s p99=%s max=%s\n",
		st.percentile(0.50), st.percentile(0.95), st.percentile(0.99), st.percentile(1.0))
}
