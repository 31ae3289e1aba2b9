package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32
	var shared atomic.Int32

	const callers = 16
	gate := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-gate
			val, err, wasShared := g.Do("preview:metro-youth-2026:10U", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 8, nil
			})
			if err != nil {
				t.Errorf("Do returned error: %v", err)
				return
			}
			if got, _ := val.(int); got != 8 {
				t.Errorf("Do returned %v, want 8", val)
			}
			if wasShared {
				shared.Add(1)
			}
		}()
	}

	close(gate)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("function executed %d times, want 1", got)
	}
	if got := shared.Load(); got != callers-1 {
		t.Fatalf("%d callers saw a shared result, want %d", got, callers-1)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	v1, err1, _ := g.Do("a", func() (any, error) { return "one", nil })
	v2, err2, _ := g.Do("b", func() (any, error) { return "two", nil })

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if v1 != "one" || v2 != "two" {
		t.Fatalf("got %v and %v, want one and two", v1, v2)
	}
}
