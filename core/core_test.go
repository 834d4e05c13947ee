package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ndev/portfolio/core"
)

func TestQueueDrainRunsInOrder(t *testing.T) {
	q := core.NewQueue()
	var got []int
	q.Post(func() { got = append(got, 1) })
	q.Post(func() { got = append(got, 2) })
	q.Post(nil)

	if q.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", q.Len())
	}
	if n := q.Drain(); n != 2 {
		t.Fatalf("drained %d tasks", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("bad order: %v", got)
	}
}

func TestQueuePostFromTaskWaitsForNextDrain(t *testing.T) {
	q := core.NewQueue()
	var ran bool
	q.Post(func() {
		q.Post(func() { ran = true })
	})
	q.Drain()
	if ran {
		t.Fatal("nested task ran in the same drain")
	}
	q.Drain()
	if !ran {
		t.Fatal("nested task never ran")
	}
}

func TestQueueConcurrentPost(t *testing.T) {
	q := core.NewQueue()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			q.Post(func() {})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if n := q.Drain(); n != 8 {
		t.Fatalf("expected 8 tasks, got %d", n)
	}
}

func TestToken(t *testing.T) {
	var nilToken *core.Token
	if nilToken.Cancelled() {
		t.Error("nil token reports cancelled")
	}

	token := core.NewToken()
	if token.Cancelled() {
		t.Error("fresh token reports cancelled")
	}
	token.Cancel()
	token.Cancel()
	if !token.Cancelled() {
		t.Error("token not cancelled")
	}
}

func TestTimeFrameRunsRequestedCallbacksOnce(t *testing.T) {
	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 60})
	if tm.Interval() != time.Second/60 {
		t.Fatalf("bad interval %s", tm.Interval())
	}

	var calls int
	var reschedule func(time.Duration)
	reschedule = func(time.Duration) {
		calls++
		tm.RequestFrame(reschedule)
	}
	tm.RequestFrame(reschedule)

	tm.Frame()
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if tm.Pending() != 1 {
		t.Fatalf("rescheduled callback not pending")
	}
	tm.Frame()
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestTimeUnlimitedFps(t *testing.T) {
	tm := core.NewTime(core.TimeConfiguration{})
	if tm.Interval() != time.Nanosecond {
		t.Fatalf("bad interval %s", tm.Interval())
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.FramesPerSecond != 60 {
		t.Errorf("fps default: %d", cfg.Time.FramesPerSecond)
	}
	if cfg.Renderer.ParticleCount != 100 {
		t.Errorf("particles default: %d", cfg.Renderer.ParticleCount)
	}
	if cfg.Server.Address != "0.0.0.0:4040" {
		t.Errorf("address default: %s", cfg.Server.Address)
	}
	if len(cfg.Renderer.Extensions) != 2 {
		t.Errorf("extensions default: %v", cfg.Renderer.Extensions)
	}
	if cfg.Assets.LoadTimeout != 0 {
		t.Errorf("load timeout default: %s", cfg.Assets.LoadTimeout)
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	data := "NDEV_RENDERER_PARTICLES=250\nNDEV_ASSETS_LOAD_TIMEOUT=2s\nNDEV_LOG_FORMAT=json\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("NDEV_RENDERER_PARTICLES")
		os.Unsetenv("NDEV_ASSETS_LOAD_TIMEOUT")
		os.Unsetenv("NDEV_LOG_FORMAT")
	})

	cfg, err := core.LoadConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Renderer.ParticleCount != 250 {
		t.Errorf("particles: %d", cfg.Renderer.ParticleCount)
	}
	if cfg.Assets.LoadTimeout != 2*time.Second {
		t.Errorf("load timeout: %s", cfg.Assets.LoadTimeout)
	}
	if err := core.SetupLogging(cfg.Log); err != nil {
		t.Error(err)
	}
}

func TestSetupLoggingRejectsUnknown(t *testing.T) {
	if err := core.SetupLogging(core.LogConfiguration{Level: "loud"}); err == nil {
		t.Error("expected level error")
	}
	if err := core.SetupLogging(core.LogConfiguration{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected format error")
	}
}

func TestConfigurationFromEnv(t *testing.T) {
	t.Setenv("NDEV_TIME_FPS", "30")
	cfg, err := core.ConfigurationFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.FramesPerSecond != 30 {
		t.Errorf("fps: %d", cfg.Time.FramesPerSecond)
	}
	if cfg.Renderer.ShaderDirectory != "shaders" {
		t.Errorf("shader dir default: %s", cfg.Renderer.ShaderDirectory)
	}
}
