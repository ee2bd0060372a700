//go:build test

package mem

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/histrank/pkg/rank"
	"github.com/bastiangx/histrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// memSource feeds the engine without touching disk.
type memSource struct {
	lines []string
}

func (m *memSource) Len() int          { return len(m.lines) }
func (m *memSource) Line(i int) string { return m.lines[i] }
func (m *memSource) ItemOffset() int   { return 0 }

var commandTemplates = []string{
	"git status",
	"git push origin main",
	"git pull --rebase",
	"git log --oneline -20",
	"make test",
	"make build",
	"make deploy ENV=staging",
	"docker ps -a",
	"docker compose up -d",
	"vim ~/.bashrc",
	"kubectl get pods -n default",
	"ssh deploy@web-01",
	"tail -f /var/log/app.log",
	"curl -s https://api.internal/health",
}

var queryPatterns = [][]string{
	{"g", "gi", "git", "git ", "git s", "git st"},
	{"m", "ma", "mak", "make", "make ", "make t"},
	{"d", "do", "doc", "dock", "docke", "docker"},
	{"k", "ku", "kub", "kube", "kubec", "kubect", "kubectl"},
	{"s", "ss", "ssh", "ssh ", "ssh d"},
	{"c", "cu", "cur", "curl"},
	{"t", "ta", "tai", "tail"},
	{"v", "vi", "vim"},
}

// syntheticHistory repeats the templates with occasional unique lines
// so dedup and the bucket spread both get exercised.
func syntheticHistory(n int) *memSource {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i%7 == 0 {
			lines = append(lines, fmt.Sprintf("echo run-%d", i))
			continue
		}
		lines = append(lines, commandTemplates[i%len(commandTemplates)])
	}
	return &memSource{lines: lines}
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000, 2500}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runBasicMemoryTest(t, iterCount)
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 1000},
		{workers: 2, iterationsPerWorker: 500},
		{workers: 4, iterationsPerWorker: 250},
		{workers: 8, iterationsPerWorker: 125},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

func TestMemoryStabilityLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	cycles := 50
	opsPerCycle := 200

	runLongRunMemoryTest(t, cycles, opsPerCycle)
}

// runBasicMemoryTest reranks and queries repeatedly; every pass's
// corpus must be collectable once dropped.
func runBasicMemoryTest(t *testing.T, iterations int) {
	src := syntheticHistory(2000)
	opts := rank.DefaultOptions()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	totalOps := 0
	for i := 0; i < iterations; i++ {
		corpus := rank.Prioritize(src, opts)
		sug := suggest.NewSuggester(corpus.Items)
		pattern := queryPatterns[i%len(queryPatterns)]
		for _, q := range pattern {
			results := sug.Query(q, 10, suggest.ModePrefix)
			_ = results
			totalOps++
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc - baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		iterations, totalOps, memDelta, memPerOp, goroutineDelta)

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}

	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

// runConcurrentMemoryTest hammers one shared suggester from several
// goroutines. Queries only read the trie, so no locking is involved.
func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	memFile, err := os.Create("concurrent_memory.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer func() {
		memFile.Close()
		os.Remove("concurrent_memory.prof")
	}()

	src := syntheticHistory(2000)
	corpus := rank.Prioritize(src, rank.DefaultOptions())
	sug := suggest.NewSuggester(corpus.Items)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	opsPerIteration := 0
	for _, pattern := range queryPatterns {
		opsPerIteration += len(pattern)
	}
	totalOps := workers * iterationsPerWorker * opsPerIteration

	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, pattern := range queryPatterns {
					for _, q := range pattern {
						results := sug.Query(q, 10, suggest.ModePrefix)
						_ = results
					}
				}
			}
		}()
	}

	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc - baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("workers=%d iter_per_worker=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		workers, iterationsPerWorker, totalOps, memDelta, memPerOp, goroutineDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}

	if goroutineDelta > 3 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

// runLongRunMemoryTest cycles full rerank+query rounds the way a
// long-lived server would after repeated reload requests.
func runLongRunMemoryTest(t *testing.T, cycles, opsPerCycle int) {
	memFile, err := os.Create("longrun_stability.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer func() {
		memFile.Close()
		os.Remove("longrun_stability.prof")
	}()

	src := syntheticHistory(2000)
	opts := rank.DefaultOptions()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	totalOps := 0
	maxMemDelta := int64(0)

	for cycle := 0; cycle < cycles; cycle++ {
		corpus := rank.Prioritize(src, opts)
		sug := suggest.NewSuggester(corpus.Items)

		for op := 0; op < opsPerCycle; op++ {
			pattern := queryPatterns[op%len(queryPatterns)]
			q := pattern[op%len(pattern)]
			results := sug.Query(q, 10, suggest.ModeSubstring)
			_ = results
			totalOps++
		}

		if cycle%10 == 0 {
			var m runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m)

			memDelta := int64(m.Alloc - baseline.Alloc)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
			memPerOp := float64(memDelta) / float64(totalOps)

			if memDelta > maxMemDelta {
				maxMemDelta = memDelta
			}

			t.Logf("cycle=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
				cycle, totalOps, memDelta, memPerOp, goroutineDelta)
		}

		time.Sleep(5 * time.Millisecond)
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	finalMemDelta := int64(final.Alloc - baseline.Alloc)
	finalGoroutineDelta := finalGoroutines - baselineGoroutines
	finalMemPerOp := float64(finalMemDelta) / float64(totalOps)

	t.Logf("final_summary: cycles=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d max_mem_delta=%d",
		cycles, totalOps, finalMemDelta, finalMemPerOp, finalGoroutineDelta, maxMemDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if finalMemPerOp > 500 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", finalMemPerOp)
	}

	if finalGoroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", finalGoroutineDelta)
	}

	if maxMemDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
