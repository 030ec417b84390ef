package report

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hamed0406/pingsweep/internal/domain"
)

func TestAggregator_ZeroOnStart(t *testing.T) {
	a := New()
	if got := a.Snapshot(); got != (Snapshot{}) {
		t.Fatalf("want zero snapshot, got %+v", got)
	}
}

func TestAggregator_RecordByKind(t *testing.T) {
	a := New()
	a.Record(domain.Success("a", 200, 0))
	a.Record(domain.Success("b", 503, 0))
	a.Record(domain.Timeout("c"))
	a.Record(domain.Failure("d", errors.New("refused")))

	got := a.Snapshot()
	want := Snapshot{Success: 2, Timeout: 1, Error: 1}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if got.Total() != 4 {
		t.Fatalf("want total 4, got %d", got.Total())
	}
}

func TestAggregator_ConcurrentIncrements(t *testing.T) {
	a := New()
	const workers, per = 16, 500

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < per; j++ {
				a.RecordSuccess()
				a.RecordTimeout()
				a.RecordError()
			}
		}()
	}
	wg.Wait()

	got := a.Snapshot()
	if got.Success != workers*per || got.Timeout != workers*per || got.Error != workers*per {
		t.Fatalf("lost updates: %+v", got)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Snapshot{Success: 2, Timeout: 1, Error: 1})

	out := buf.String()
	for _, want := range []string{"--- Report ---", "Success: 2", "Timeout: 1", "Error: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
