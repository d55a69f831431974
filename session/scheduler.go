package session

import (
	"log/slog"
	"strconv"
	"time"
)

// Start turns automation on. Calling it while running is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	started := s.startLocked()
	v := s.viewLocked()
	s.mu.Unlock()

	if started {
		slog.Info("automation started", "interval", v.AutoClickRate)
		s.notify(v)
	}
}

// Stop turns automation off and cancels the pending timer. No tick fires
// after Stop returns; a tick already committed is not rolled back.
func (s *Session) Stop() {
	s.mu.Lock()
	stopped := s.stopLocked()
	v := s.viewLocked()
	s.mu.Unlock()

	if stopped {
		slog.Info("automation stopped")
		s.notify(v)
	}
}

// Toggle flips automation and reports whether it is now active.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	active := !s.stopLocked()
	if active {
		s.startLocked()
	}
	v := s.viewLocked()
	s.mu.Unlock()

	slog.Info("automation toggled", "active", active, "interval", v.AutoClickRate)
	s.notify(v)
	return active
}

func (s *Session) startLocked() bool {
	if s.stop != nil {
		return false
	}
	stop := make(chan struct{})
	s.stop = stop
	s.state.Active = true
	s.wg.Add(1)
	go s.schedule(stop)
	return true
}

func (s *Session) stopLocked() bool {
	if s.stop == nil {
		return false
	}
	close(s.stop)
	s.stop = nil
	s.state.Active = false
	return true
}

// schedule arms one timer per tick. The interval is read when arming, so a
// boost takes effect from the next wait rather than cutting the current one
// short.
func (s *Session) schedule(stop <-chan struct{}) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		interval := time.Duration(s.state.AutoClickRate) * time.Millisecond
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-s.after(interval):
		}

		if !s.tick(stop) {
			return
		}
	}
}

// tick runs one AdvanceTick under the lock. It re-checks stop while holding
// the lock so a Stop that raced the timer wins.
func (s *Session) tick(stop <-chan struct{}) bool {
	s.mu.Lock()
	select {
	case <-stop:
		s.mu.Unlock()
		return false
	default:
	}
	fired := AdvanceTick(s.state, s.engine, s.now())
	v := s.viewLocked()
	s.mu.Unlock()

	ticksTotal.Inc()
	for _, f := range fired {
		ruleFiringsTotal.WithLabelValues(string(f.Action), strconv.FormatBool(f.Applied)).Inc()
	}
	s.notify(v)
	return true
}
