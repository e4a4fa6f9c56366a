package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Ticker receives the periodic agent timers.
type Ticker interface {
	HotelWatchTick()
	EntertainmentTick()
}

// Scheduler manages the agent's cron timers. The entertainment cycle runs
// for the life of the process; the hotel watch is added at game start and
// removed once the last hotel auction has closed.
type Scheduler struct {
	Cron   *cron.Cron
	Ticker Ticker

	hotelSpec         string
	entertainmentSpec string
	log               *zap.Logger

	mu         sync.Mutex
	hotelEntry cron.EntryID
}

// NewScheduler creates a new Scheduler.
func NewScheduler(t Ticker, hotelSpec, entertainmentSpec string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:              cron.New(cron.WithSeconds()),
		Ticker:            t,
		hotelSpec:         hotelSpec,
		entertainmentSpec: entertainmentSpec,
		log:               log,
	}
}

// RegisterAll registers the entertainment cycle.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.entertainmentSpec, s.Ticker.EntertainmentTick); err != nil {
		return fmt.Errorf("register entertainment cycle: %w", err)
	}
	return nil
}

// StartHotelWatch adds the hotel watch unless it is already registered.
func (s *Scheduler) StartHotelWatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hotelEntry != 0 {
		return nil
	}
	id, err := s.Cron.AddFunc(s.hotelSpec, s.Ticker.HotelWatchTick)
	if err != nil {
		return fmt.Errorf("register hotel watch: %w", err)
	}
	s.hotelEntry = id
	s.log.Info("hotel watch started", zap.String("spec", s.hotelSpec))
	return nil
}

// StopHotelWatch removes the hotel watch. It is safe to call when the watch
// is not running.
func (s *Scheduler) StopHotelWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hotelEntry == 0 {
		return
	}
	s.Cron.Remove(s.hotelEntry)
	s.hotelEntry = 0
	s.log.Info("hotel watch stopped")
}

// HotelWatchActive reports whether the hotel watch is registered.
func (s *Scheduler) HotelWatchActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hotelEntry != 0
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
