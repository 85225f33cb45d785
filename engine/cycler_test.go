package engine

import (
	"testing"
	"time"
)

func TestCyclerAdvanceWraps(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(5 * time.Second)
	c.SetLength(3)
	c.Arm(now)

	if c.Due(now.Add(4 * time.Second)) {
		t.Error("Should not be due before slide elapses")
	}

	want := []int{1, 2, 0, 1}
	for i, w := range want {
		now = now.Add(5 * time.Second)
		if !c.Due(now) {
			t.Fatalf("step %d: expected due", i)
		}
		if got := c.Advance(now); got != w {
			t.Errorf("step %d: Advance = %d, want %d", i, got, w)
		}
	}
}

func TestCyclerPausePreservesRemaining(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(5 * time.Second)
	c.SetLength(2)
	c.Arm(now)

	now = now.Add(3 * time.Second)
	c.Pause(now)
	if _, ok := c.Deadline(); ok {
		t.Error("Paused cycler should have no deadline")
	}

	now = now.Add(time.Minute)
	if c.Due(now) {
		t.Error("Paused cycler must never be due")
	}
	if got := c.Remaining(now); got != 2*time.Second {
		t.Errorf("Remaining while paused = %v, want 2s", got)
	}

	c.Resume(now)
	d, ok := c.Deadline()
	if !ok || d != now.Add(2*time.Second) {
		t.Errorf("Deadline after resume = %v (%v), want %v", d, ok, now.Add(2*time.Second))
	}
	if c.Index() != 0 {
		t.Errorf("Index changed across pause: %d", c.Index())
	}
}

func TestCyclerArmWhilePaused(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(5 * time.Second)
	c.SetLength(2)
	c.Arm(now)
	c.Pause(now.Add(4 * time.Second))

	// New content arriving while paused restarts the slide but stays paused
	c.Arm(now.Add(10 * time.Second))
	if _, ok := c.Deadline(); ok {
		t.Error("Arm must not start the timer while paused")
	}
	if got := c.Remaining(now); got != 5*time.Second {
		t.Errorf("Remaining = %v, want full slide", got)
	}
}

func TestCyclerEmptyQueue(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(time.Second)
	c.Arm(now)
	if _, ok := c.Deadline(); ok {
		t.Error("Empty cycler should not arm")
	}

	c.SetLength(4)
	c.Arm(now)
	c.Advance(now.Add(time.Second))
	c.Advance(now.Add(2 * time.Second))
	c.Advance(now.Add(3 * time.Second))
	if c.Index() != 3 {
		t.Fatalf("Index = %d, want 3", c.Index())
	}

	c.SetLength(2)
	if c.Index() != 0 {
		t.Errorf("Index should clamp to 0 on shrink, got %d", c.Index())
	}

	c.SetLength(0)
	if _, ok := c.Deadline(); ok {
		t.Error("Emptied queue should disarm")
	}
	if got := c.Advance(now); got != 0 {
		t.Errorf("Advance on empty = %d", got)
	}
}

func TestCyclerPauseWhileIdle(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(2 * time.Second)
	c.SetLength(1)
	c.Pause(now)
	c.Resume(now)

	if d, ok := c.Deadline(); !ok || d != now.Add(2*time.Second) {
		t.Errorf("Deadline = %v (%v), want full slide from resume", d, ok)
	}
}

// TestCyclerRefillWhilePaused verifies a queue emptied and refilled during a pause resumes with a full slide
func TestCyclerRefillWhilePaused(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(2 * time.Second)
	c.SetLength(3)
	c.Arm(now)

	now = now.Add(500 * time.Millisecond)
	c.Pause(now)
	c.SetLength(0)
	c.SetLength(2)
	if c.Remaining(now) != 2*time.Second {
		t.Errorf("Expected full slide remaining after refill, got %v", c.Remaining(now))
	}

	now = now.Add(time.Minute)
	c.Resume(now)
	d, ok := c.Deadline()
	if !ok || d != now.Add(2*time.Second) {
		t.Fatalf("Expected deadline %v after resume, got %v (%v)", now.Add(2*time.Second), d, ok)
	}
	if !c.Due(now.Add(2 * time.Second)) {
		t.Error("Expected due one slide after resume")
	}
}

// TestCyclerResumeEmpty verifies resuming with a still-empty queue stays idle
func TestCyclerResumeEmpty(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewCycler(time.Second)
	c.SetLength(1)
	c.Arm(now)
	c.Pause(now)
	c.SetLength(0)
	c.Resume(now)
	if _, ok := c.Deadline(); ok {
		t.Error("Expected no deadline for an empty queue")
	}

	// Refilled later while playing, Arm starts a full slide
	c.SetLength(1)
	c.Arm(now)
	if d, ok := c.Deadline(); !ok || d != now.Add(time.Second) {
		t.Errorf("Expected armed after refill, got %v (%v)", d, ok)
	}
}
