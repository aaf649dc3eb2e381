package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/seatplan/pkg/placement"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndStops(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), "Placing...")
	s.w = &buf
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	if !strings.Contains(buf.String(), "Placing...") {
		t.Errorf("output = %q", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerCancelledByParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Placing...")
	s.w = &syncBuffer{}
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation")
	}
}

func TestSpinnerProgress(t *testing.T) {
	s := newSpinner(context.Background(), "")
	progress := s.Progress()

	progress(placement.Progress{CurrentStep: placement.StepPlacing, StudentID: "s1", StudentsPlaced: 3, TotalStudents: 10})
	if s.message != "Placing students 3/10" {
		t.Errorf("message = %q", s.message)
	}

	progress(placement.Progress{CurrentStep: placement.StepReporting})
	if s.message != "Checking rules..." {
		t.Errorf("message = %q", s.message)
	}
}
