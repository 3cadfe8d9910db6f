package ramp

import (
	"testing"
	"time"
)

func TestLinearUp(t *testing.T) {
	var got []uint8
	var slept time.Duration
	Linear[uint8](0, 100, 100*time.Millisecond, 4,
		func(d time.Duration) bool { slept += d; return true },
		func(v uint8) { got = append(got, v) })

	want := []uint8{25, 50, 75, 100}
	if len(got) != len(want) {
		t.Fatalf("levels = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("levels = %v, want %v", got, want)
		}
	}
	if slept != 100*time.Millisecond {
		t.Fatalf("slept %v", slept)
	}
}

func TestLinearDownSkipsRepeats(t *testing.T) {
	var got []uint8
	Linear[uint8](3, 0, time.Second, 10,
		func(time.Duration) bool { return true },
		func(v uint8) { got = append(got, v) })
	if got[len(got)-1] != 0 {
		t.Fatalf("last = %d", got[len(got)-1])
	}
	for i := 1; i < len(got); i++ {
		if got[i] >= got[i-1] {
			t.Fatalf("not strictly falling: %v", got)
		}
	}
}

func TestLinearSnap(t *testing.T) {
	var got []int
	Linear(5, 9, 0, 10, func(time.Duration) bool { t.Fatal("waited"); return false },
		func(v int) { got = append(got, v) })
	if len(got) != 1 || got[0] != 9 {
		t.Fatalf("got %v", got)
	}
}

func TestLinearCancel(t *testing.T) {
	n := 0
	var got []int
	Linear(0, 100, time.Second, 10,
		func(time.Duration) bool { n++; return n < 3 },
		func(v int) { got = append(got, v) })
	if len(got) != 2 || got[1] != 20 {
		t.Fatalf("got %v", got)
	}
}
