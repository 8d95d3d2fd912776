package metrics

import (
	"runtime"
	"time"
)

// CollectRuntime starts a background sampler exporting Go runtime gauges
// under the given prefix.
func (r *Registry) CollectRuntime(prefix string, interval time.Duration) {
	goroutines := r.Gauge(prefix+"_goroutines", "Number of goroutines")
	heap := r.Gauge(prefix+"_heap_inuse_bytes", "Heap bytes in use")
	gcTotal := r.Gauge(prefix+"_gc_cycles_total", "Completed GC cycles")

	sample := func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		goroutines.Set(int64(runtime.NumGoroutine()))
		heap.Set(int64(ms.HeapInuse))
		gcTotal.Set(int64(ms.NumGC))
	}
	sample()

	go func() {
		for range time.Tick(interval) {
			sample()
		}
	}()
}
