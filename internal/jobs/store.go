package jobs

import (
	"log"
	"sync"
	"time"
)

// DefaultTTL is how long completed jobs are kept.
const DefaultTTL = time.Hour

// Store holds jobs in memory. Completed jobs older than the TTL are evicted
// by a background ticker until Close is called.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a store and starts its eviction loop. A non-positive ttl uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go s.evictLoop(sweepInterval(ttl))
	return s
}

func sweepInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv > time.Minute {
		iv = time.Minute
	}
	if iv < 10*time.Millisecond {
		iv = 10 * time.Millisecond
	}
	return iv
}

func (s *Store) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.EvictExpired()
		case <-s.stop:
			return
		}
	}
}

// Put adds a job.
func (s *Store) Put(j *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
}

// Get returns the job with id.
func (s *Store) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// EvictExpired removes completed jobs older than the TTL and returns how many were removed.
func (s *Store) EvictExpired() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, j := range s.jobs {
		if j.expired(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	if n > 0 {
		log.Printf("[jobs] evicted %d expired jobs, %d remaining", n, len(s.jobs))
	}
	return n
}

// Close stops the eviction loop and drops all jobs. It is safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		s.jobs = make(map[string]*Job)
		s.mu.Unlock()
	})
}
