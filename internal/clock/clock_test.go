package clock

import (
	"testing"
	"time"
)

func TestFake_AdvanceFiresInOrder(t *testing.T) {
	c := NewFake()
	var order []string

	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "fade") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "settle") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "settle-2") })

	c.Advance(50 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("Expected no timers to fire yet, got %v", order)
	}

	c.Advance(time.Second)
	want := []string{"settle", "settle-2", "fade"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestFake_Stop(t *testing.T) {
	c := NewFake()
	fired := false
	timer := c.AfterFunc(10*time.Millisecond, func() { fired = true })

	if !timer.Stop() {
		t.Error("Expected Stop to report an active timer")
	}
	if timer.Stop() {
		t.Error("Expected second Stop to report false")
	}

	c.Advance(time.Second)
	if fired {
		t.Error("Stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected 0 pending timers, got %d", c.Pending())
	}
}

func TestFake_TimerScheduledFromCallback(t *testing.T) {
	c := NewFake()
	count := 0
	c.AfterFunc(10*time.Millisecond, func() {
		count++
		c.AfterFunc(10*time.Millisecond, func() { count++ })
	})

	c.Advance(25 * time.Millisecond)
	if count != 2 {
		t.Errorf("Expected both timers to fire, got %d", count)
	}
}

func TestFake_Now(t *testing.T) {
	c := NewFake()
	start := c.Now()
	c.Advance(time.Minute)
	if got := c.Now().Sub(start); got != time.Minute {
		t.Errorf("Expected clock to advance by 1m, got %v", got)
	}
}
