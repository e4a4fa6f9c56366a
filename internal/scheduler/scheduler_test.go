package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

type counter struct{ hotel, ent atomic.Int32 }

func (c *counter) HotelWatchTick()    { c.hotel.Add(1) }
func (c *counter) EntertainmentTick() { c.ent.Add(1) }

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&counter{}, "@every 2s", "not a spec", nil)
	if err := s.RegisterAll(); err == nil {
		t.Error("bad entertainment spec accepted")
	}
	s = NewScheduler(&counter{}, "nope", "@every 5s", nil)
	if err := s.StartHotelWatch(); err == nil {
		t.Error("bad hotel spec accepted")
	}
}

func TestHotelWatchLifecycle(t *testing.T) {
	s := NewScheduler(&counter{}, "@every 2s", "@every 5s", nil)
	if err := s.RegisterAll(); err != nil {
		t.Fatal(err)
	}

	if err := s.StartHotelWatch(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartHotelWatch(); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}

	s.StopHotelWatch()
	s.StopHotelWatch()
	if s.HotelWatchActive() || len(s.Cron.Entries()) != 1 {
		t.Errorf("after stop: active=%v entries=%d", s.HotelWatchActive(), len(s.Cron.Entries()))
	}

	if err := s.StartHotelWatch(); err != nil || !s.HotelWatchActive() {
		t.Errorf("restart for the next game: %v", err)
	}
}

func TestTicksFire(t *testing.T) {
	c := &counter{}
	s := NewScheduler(c, "@every 1s", "@every 1s", nil)
	if err := s.RegisterAll(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartHotelWatch(); err != nil {
		t.Fatal(err)
	}
	s.Start()
	time.Sleep(2500 * time.Millisecond)
	s.Stop()

	if c.hotel.Load() == 0 || c.ent.Load() == 0 {
		t.Errorf("ticks hotel=%d entertainment=%d", c.hotel.Load(), c.ent.Load())
	}
}
