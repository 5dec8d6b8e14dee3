package sim

import (
	"context"
	"sync"
	"testing"
	"time"
)

type collectObserver struct {
	mu      sync.Mutex
	samples []int
}

func (c *collectObserver) Observe(bpm int) {
	c.mu.Lock()
	c.samples = append(c.samples, bpm)
	c.mu.Unlock()
}

func (c *collectObserver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

func TestHeartProfiles(t *testing.T) {
	calm := NewHeartGenerator(&collectObserver{}, ProfileCalm, 0)
	stressed := NewHeartGenerator(&collectObserver{}, ProfileStressed, 0)

	calmMax, stressedMax := 0, 0
	for tick := 1; tick <= 120; tick++ {
		if v := calm.sample(tick); v > calmMax {
			calmMax = v
		}
		if v := stressed.sample(tick); v > stressedMax {
			stressedMax = v
		}
	}

	if calmMax > 100 {
		t.Errorf("calm profile peaked at %d, expected resting range", calmMax)
	}
	if stressedMax <= 120 {
		t.Errorf("stressed profile peaked at %d, expected a stress-level plateau", stressedMax)
	}
}

func TestHeartGeneratorRun(t *testing.T) {
	obs := &collectObserver{}
	g := NewHeartGenerator(obs, ProfileCalm, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for obs.count() < 5 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for samples")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	for _, v := range obs.samples {
		if v < 60 || v > 80 {
			t.Errorf("calm sample %d outside resting range", v)
		}
	}
}
