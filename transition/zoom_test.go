package transition_test

import (
	"testing"

	"github.com/ndev/portfolio/transition"
)

func TestStepClamps(t *testing.T) {
	for _, speed := range []float32{0.03, 0.5, 1, 7, 1e6} {
		z := transition.NewZoom()
		z.Speed = speed

		z.Hide(nil)
		for i := 0; i < 100; i++ {
			z.Step()
			if z.Progress < 0 || z.Progress > 1 {
				t.Fatalf("speed %v: progress %v out of range", speed, z.Progress)
			}
		}
		z.Show()
		for i := 0; i < 100; i++ {
			z.Step()
			if z.Progress < 0 || z.Progress > 1 {
				t.Fatalf("speed %v: progress %v out of range", speed, z.Progress)
			}
		}
		if z.Progress != 0 || z.Active {
			t.Errorf("speed %v: expected idle at 0, got %v active=%v", speed, z.Progress, z.Active)
		}
	}
}

func TestTriggerResumes(t *testing.T) {
	z := transition.NewZoom()
	z.Speed = 0.25
	z.Hide(nil)
	z.Step()
	z.Step()

	z.Show()
	if z.Progress != 0.5 {
		t.Fatalf("reversing should keep progress, got %v", z.Progress)
	}
	z.Step()
	if z.Progress != 0.25 {
		t.Errorf("expected 0.25 after one reverse step, got %v", z.Progress)
	}

	z.Hide(nil)
	z.Step()
	if z.Progress != 0.5 {
		t.Errorf("re-triggering should resume, got %v", z.Progress)
	}
}

func TestCompleteOncePerTraversal(t *testing.T) {
	z := transition.NewZoom()
	z.Speed = 0.3

	calls := 0
	z.Hide(func() { calls++ })
	for i := 0; i < 10; i++ {
		z.Step()
	}
	if calls != 1 {
		t.Fatalf("completion ran %d times, want 1", calls)
	}
	if z.Active {
		t.Error("zoom should stop at the upper bound")
	}

	z.Trigger(transition.Showing, func() { calls++ })
	for i := 0; i < 10; i++ {
		z.Step()
	}
	if calls != 1 {
		t.Errorf("completion must not run when reaching 0, ran %d times", calls)
	}
}

func TestCompleteRunsInsideStep(t *testing.T) {
	z := transition.NewZoom()
	z.Speed = 1
	done := false
	z.Hide(func() { done = true })
	z.Step()
	if !done {
		t.Error("completion should run synchronously within the reaching step")
	}
}

func TestIdleDoesNotMove(t *testing.T) {
	z := transition.NewZoom()
	z.Progress = 0.4
	z.Step()
	u := z.Uniforms()
	if u.Progress != 0.4 || u.Level != transition.DefaultTargetLevel {
		t.Errorf("unexpected idle uniforms %+v", u)
	}
	if u.Center.X() != 0.5 || u.Center.Y() != 0.5 {
		t.Errorf("unexpected center %v", u.Center)
	}
}

func TestResetDropsCompletion(t *testing.T) {
	z := transition.NewZoom()
	z.Speed = 0.5
	z.Hide(func() { t.Error("completion must not run after reset") })
	z.Step()
	z.Reset()
	if z.Active || z.Progress != 0 {
		t.Fatalf("reset left active=%v progress=%v", z.Active, z.Progress)
	}
	z.Trigger(transition.Hiding, nil)
	z.Step()
	z.Step()
}
