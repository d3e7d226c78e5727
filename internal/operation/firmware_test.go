package operation

import (
	"errors"
	"testing"
	"time"
)

func TestFirmware_StartWhileUpdatingIsBusy(t *testing.T) {
	clock := NewManualClock(epoch)
	fw := NewFirmware(clock, 5*time.Second)
	var completed []string
	onDone := func(id string) { completed = append(completed, id) }

	if err := fw.Start("1", onDone); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	deadline := fw.Deadline("1")

	clock.Advance(4 * time.Second)
	err := fw.Start("1", onDone)
	if !errors.Is(err, ErrUpdateInProgress) || !errors.Is(err, ErrBusy) {
		t.Fatalf("second Start() error = %v, want ErrUpdateInProgress", err)
	}
	if !fw.Deadline("1").Equal(deadline) {
		t.Error("countdown was restarted")
	}

	clock.Advance(time.Second)
	if len(completed) != 1 || completed[0] != "1" {
		t.Fatalf("completed = %v, want [1] at the original deadline", completed)
	}
	if fw.IsUpdating("1") {
		t.Error("device still updating after completion")
	}

	clock.Advance(time.Minute)
	if len(completed) != 1 {
		t.Errorf("completed = %v, want a single completion", completed)
	}
}

func TestFirmware_DevicesRunIndependently(t *testing.T) {
	clock := NewManualClock(epoch)
	fw := NewFirmware(clock, 5*time.Second)
	var completed []string
	onDone := func(id string) { completed = append(completed, id) }

	_ = fw.Start("b", onDone)
	clock.Advance(2 * time.Second)
	if err := fw.Start("a", onDone); err != nil {
		t.Fatalf("Start(a) error = %v", err)
	}

	if got := fw.Active(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Active() = %v, want [a b]", got)
	}

	clock.Advance(3 * time.Second)
	if len(completed) != 1 || completed[0] != "b" {
		t.Fatalf("completed = %v, want [b]", completed)
	}
	if !fw.IsUpdating("a") {
		t.Error("a should still be updating")
	}

	clock.Advance(2 * time.Second)
	if len(completed) != 2 || completed[1] != "a" {
		t.Errorf("completed = %v, want [b a]", completed)
	}
}

func TestFirmware_Cancel(t *testing.T) {
	clock := NewManualClock(epoch)
	fw := NewFirmware(clock, time.Second)
	ran := false

	if fw.Cancel("x") {
		t.Error("Cancel() on idle device = true")
	}
	_ = fw.Start("x", func(string) { ran = true })
	if !fw.Cancel("x") {
		t.Error("Cancel() on updating device = false")
	}
	clock.Advance(time.Minute)

	if ran || fw.IsUpdating("x") {
		t.Error("cancelled update completed or stayed busy")
	}
}

func TestFirmware_CancelThenRestart(t *testing.T) {
	clock := NewManualClock(epoch)
	fw := NewFirmware(clock, 5*time.Second)
	completions := 0

	_ = fw.Start("x", func(string) { completions++ })
	clock.Advance(3 * time.Second)
	fw.Cancel("x")
	_ = fw.Start("x", func(string) { completions++ })

	clock.Advance(2 * time.Second)
	if completions != 0 {
		t.Fatal("stale completion fired after restart")
	}
	if !fw.IsUpdating("x") {
		t.Fatal("restarted update should be in flight")
	}
	clock.Advance(3 * time.Second)
	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
}

func TestFirmware_CancelAll(t *testing.T) {
	clock := NewManualClock(epoch)
	fw := NewFirmware(clock, time.Second)
	ran := 0

	for _, id := range []string{"1", "2", "3"} {
		_ = fw.Start(id, func(string) { ran++ })
	}
	if n := fw.CancelAll(); n != 3 {
		t.Errorf("CancelAll() = %d, want 3", n)
	}
	clock.Advance(time.Minute)

	if ran != 0 {
		t.Errorf("%d cancelled updates completed", ran)
	}
	if len(fw.Active()) != 0 {
		t.Errorf("Active() = %v, want empty", fw.Active())
	}
}
