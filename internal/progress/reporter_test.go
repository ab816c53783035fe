package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf)

	r.Start(2, "Loading policies")
	r.Advance("reddit.txt")
	r.Advance("meta.md")
	r.Finish()

	want := "Loading policies: 2 files\n[1/2] reddit.txt\n[2/2] meta.md\nLoading policies complete\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLineReporterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf)
	r.Start(50, "Embedding")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Advance("doc")
		}()
	}
	wg.Wait()

	if !strings.Contains(buf.String(), "[50/50] doc") {
		t.Errorf("expected final count line, got %q", buf.String())
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*LineReporter); !ok {
		t.Error("expected LineReporter under CI")
	}
}

func TestNopReporter(t *testing.T) {
	var r Reporter = Nop{}
	r.Start(1, "x")
	r.Advance("y")
	r.Finish()
}
