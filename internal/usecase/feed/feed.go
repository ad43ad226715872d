package feed

import (
	"sync"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

// Feed fans progress snapshots out to per-project subscribers. Subscribers
// hold a buffer of one: a slow consumer sees the latest snapshot, never a
// backlog, and never blocks a publisher.
type Feed struct {
	mu       sync.Mutex
	projects map[int64]*projectFeed
}

type projectFeed struct {
	seq    uint64
	last   *domain.ProgressSnapshot
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription delivers snapshots for one project on C. C is closed after
// a terminal snapshot has been delivered or on Unsubscribe.
type Subscription struct {
	C chan domain.ProgressSnapshot

	feed      *Feed
	projectID int64
}

func New() *Feed {
	return &Feed{projects: map[int64]*projectFeed{}}
}

// Publish stamps the snapshot with the project's next sequence number and
// offers it to every subscriber. A subscriber whose buffer is full has its
// stale snapshot replaced with the new one. A snapshot reporting fewer
// completed chunks than the last one delivered is discarded: completed
// counts never move backwards on the wire.
func (f *Feed) Publish(snap domain.ProgressSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pf := f.projects[snap.ProjectID]
	if pf == nil {
		pf = &projectFeed{subs: map[*Subscription]struct{}{}}
		f.projects[snap.ProjectID] = pf
	}
	if pf.closed {
		return
	}
	if pf.last != nil && snap.CompletedChunks < pf.last.CompletedChunks {
		return
	}

	pf.seq++
	snap.Seq = pf.seq
	pf.last = &snap

	for sub := range pf.subs {
		select {
		case sub.C <- snap:
		default:
			// Drain the stale snapshot and put the fresh one in its place.
			select {
			case <-sub.C:
			default:
			}
			sub.C <- snap
		}
	}

	if snap.Status.Terminal() {
		pf.closed = true
		for sub := range pf.subs {
			close(sub.C)
			delete(pf.subs, sub)
		}
	}
}

// Subscribe registers for a project's snapshots. The last published
// snapshot, if any, is delivered immediately so a late subscriber does not
// wait for the next tick to see current state. Subscribing to a project
// whose feed already ended returns a closed channel carrying that final
// snapshot.
func (f *Feed) Subscribe(projectID int64) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	pf := f.projects[projectID]
	if pf == nil {
		pf = &projectFeed{subs: map[*Subscription]struct{}{}}
		f.projects[projectID] = pf
	}

	sub := &Subscription{
		C:         make(chan domain.ProgressSnapshot, 1),
		feed:      f,
		projectID: projectID,
	}
	if pf.last != nil {
		sub.C <- *pf.last
	}
	if pf.closed {
		close(sub.C)
		return sub
	}
	pf.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe detaches the subscription. Safe to call more than once and
// after the feed has closed the channel.
func (s *Subscription) Unsubscribe() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	pf := s.feed.projects[s.projectID]
	if pf == nil {
		return
	}
	if _, ok := pf.subs[s]; ok {
		delete(pf.subs, s)
		close(s.C)
	}
}

// Drop forgets a project's feed entirely, releasing its sequence counter
// and last snapshot. Used when a project is deleted.
func (f *Feed) Drop(projectID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pf := f.projects[projectID]
	if pf == nil {
		return
	}
	for sub := range pf.subs {
		close(sub.C)
	}
	delete(f.projects, projectID)
}
