package router

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutex_SerialisesPerKey(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("user")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
	if k.len() != 0 {
		t.Errorf("len() = %d after all unlocks, want 0", k.len())
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	unlockA := k.Lock("a")

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	unlockA()
}

func TestGreetingFor(t *testing.T) {
	t.Parallel()

	tests := map[int]string{0: "Bom dia", 11: "Bom dia", 12: "Boa tarde", 17: "Boa tarde", 18: "Boa noite", 23: "Boa noite"}
	for hour, want := range tests {
		got := greetingFor(time.Date(2025, 1, 1, hour, 59, 0, 0, time.UTC))
		if got != want {
			t.Errorf("greetingFor(%02d:59) = %q, want %q", hour, got, want)
		}
	}
}
