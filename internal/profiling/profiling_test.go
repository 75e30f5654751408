package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for i := 0; i < 3; i++ {
		stop := Track("test.op")
		time.Sleep(time.Millisecond)
		stop()
	}
	Track("test.fast")()

	samples := Snapshot()
	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
	if samples[0].Name != "test.op" || samples[0].Calls != 3 {
		t.Errorf("Expected test.op first with 3 calls, got %+v", samples[0])
	}
	if samples[0].Total < 3*time.Millisecond {
		t.Errorf("Expected at least 3ms, got %v", samples[0].Total)
	}
	if top := TopN(1); !strings.HasPrefix(top, "test.op:") || !strings.HasSuffix(top, "(3)") {
		t.Errorf("Unexpected TopN output %q", top)
	}
}

func TestResetFrame(t *testing.T) {
	Track("test.op")()
	before := Frames()
	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Error("Expected empty snapshot after reset")
	}
	if Frames() != before+1 {
		t.Errorf("Expected frame counter to advance")
	}
	if TopN(5) != "" {
		t.Error("Expected empty TopN after reset")
	}
}
