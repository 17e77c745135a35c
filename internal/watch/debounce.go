package watch

import (
	"context"
	"time"
)

// Coalesce reads changes from in and hands them to flush in batches:
// a batch accumulates while events keep arriving and flushes after
// quiet elapses with none. Повторы по одному пути схлопываются, причём
// структурное событие не понижается до записи. Returns when in closes
// (flushing the pending batch) or ctx is cancelled (dropping it).
func Coalesce(ctx context.Context, in <-chan Change, quiet time.Duration, flush func([]Change)) {
	var (
		batch []Change
		index = make(map[string]int)
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ch, ok := <-in:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				if len(batch) > 0 {
					flush(batch)
				}
				return
			}
			if i, dup := index[ch.Path]; dup {
				if batch[i].Op == OpWrite && ch.Op != OpWrite {
					batch[i].Op = ch.Op
				}
			} else {
				index[ch.Path] = len(batch)
				batch = append(batch, ch)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(quiet)
			fire = timer.C
		case <-fire:
			flush(batch)
			batch = nil
			index = make(map[string]int)
			fire = nil
		}
	}
}
