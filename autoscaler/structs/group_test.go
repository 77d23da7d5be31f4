package structs

import (
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	err error
}

func (s *stubProvider) Name() string                { return "stub" }
func (s *stubProvider) SafetyCheck(g *Group) bool   { return true }
func (s *stubProvider) Refresh(g *Group) error      { return nil }
func (s *stubProvider) Scale(g *Group, c int) error { return s.err }

func TestGroup_TimedOut(t *testing.T) {
	group := &Group{Name: "workers-a"}

	if group.TimedOut() {
		t.Fatal("expected group without cooldown to not be timed out")
	}

	group.CooldownUntil = time.Now().Add(time.Minute)
	if !group.TimedOut() {
		t.Fatal("expected group to be timed out during cooldown")
	}
}

func TestGroup_ScaleResolvesOperation(t *testing.T) {
	group := &Group{Name: "workers-a", Provider: &stubProvider{}}

	op := group.Scale(3)
	if err := op.Wait(); err != nil {
		t.Fatalf("expected scale to succeed but got %v", err)
	}
	if op.NewCapacity != 3 {
		t.Fatalf("expected new capacity 3 but got %v", op.NewCapacity)
	}
}

func TestGroup_ScalePropagatesProviderError(t *testing.T) {
	scaleErr := errors.New("throttled")
	group := &Group{Name: "workers-a", Provider: &stubProvider{err: scaleErr}}

	op := group.Scale(3)
	if err := op.Wait(); !errors.Is(err, scaleErr) {
		t.Fatalf("expected provider error but got %v", err)
	}
}

func TestAsyncOperation_CallbackAfterResolution(t *testing.T) {
	op := NewAsyncOperation(&Group{Name: "workers-a"}, 2)
	op.Finish(nil)

	invoked := false
	op.AddDoneCallback(func(op *AsyncOperation) {
		invoked = true
	})

	if !invoked {
		t.Fatal("expected late callback to run immediately")
	}
}

func TestAsyncOperation_FinishIsIdempotent(t *testing.T) {
	op := NewAsyncOperation(&Group{Name: "workers-a"}, 2)

	op.Finish(errors.New("first"))
	op.Finish(nil)

	if op.Err() == nil {
		t.Fatal("expected the first resolution to stick")
	}
}
