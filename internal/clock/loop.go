// Package clock drives passive income. One repeating ticker, the only
// scheduled activity in the game.
package clock

import (
	"errors"
	"sync/atomic"
	"time"
)

// Game is what the loop drives each tick. Tick returns the balance
// after the tick and whether it earned anything, so the loop can decide
// whether to persist.
type Game interface {
	Tick() (float64, bool)
	SaveNow()
}

// saveEvery bounds write frequency: persist when the balance lands on a
// multiple of this. Best-effort only - a tick that jumps past the
// multiple skips that save cycle. User intents still write through on
// their own.
const saveEvery = 5

// Loop fires Game.Tick once per interval. It must be started exactly
// once; a second Start would double the passive-income rate, so it is
// rejected instead.
type Loop struct {
	game     Game
	interval time.Duration
	started  atomic.Bool
	stop     chan struct{}
}

func NewLoop(game Game, interval time.Duration) *Loop {
	return &Loop{
		game:     game,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (l *Loop) Start() error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("clock already started")
	}
	go l.run()
	return nil
}

// Stop ends the loop. Tests only; the game never pauses its clock.
func (l *Loop) Stop() {
	close(l.stop)
}

func (l *Loop) run() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			balance, earned := l.game.Tick()
			// An idle tick changed nothing; saving it would turn a
			// zero-income profile parked on a multiple of saveEvery
			// into a write per tick.
			if earned && int64(balance)%saveEvery == 0 {
				l.game.SaveNow()
			}
		case <-l.stop:
			return
		}
	}
}
