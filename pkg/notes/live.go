package notes

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ActiveNotes runs the active-notes query once up front, so a broken store fails
// here, then keeps re-running it after every write until ctx is done.
//
// Each re-run is O(table size); a slow reader only ever sees the latest snapshot.
func (s *SQLStore) ActiveNotes(ctx context.Context) (<-chan []Note, error) {
	// Subscribe first so a write racing the initial query is not lost.
	id, signal := s.subscribe()

	initial, err := s.listActive(ctx)
	if err != nil {
		s.unsubscribe(id)
		return nil, err
	}

	out := make(chan []Note, 1)
	out <- initial

	go func() {
		defer close(out)
		defer s.unsubscribe(id)

		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}

			snapshot, err := s.listActive(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				s.logger.Error("live query failed, closing subscription", zap.Error(err))
				return
			}

			select {
			case out <- snapshot:
			default:
				// Replace the snapshot the reader has not picked up yet.
				select {
				case <-out:
				default:
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Invalidate forces every live query to re-run, as if a write had happened.
func (s *SQLStore) Invalidate() {
	s.notify()
}

func (s *SQLStore) subscribe() (int, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return id, ch
}

func (s *SQLStore) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// notify wakes every live query. Pending wake-ups coalesce.
func (s *SQLStore) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
