package behavior

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"FraudGuard/pkg/config"
)

// profile is the behavioral state kept per user. devices grows for the
// lifetime of the process; the hourly counter resets on every hour
// boundary crossing.
type profile struct {
	devices     map[int64]struct{}
	txCountHour int
	lastHour    time.Time
	hasLastHour bool
}

type shard struct {
	mu       sync.Mutex
	profiles map[int64]*profile
}

// Store tracks per-user behavioral profiles across a fixed set of lock
// stripes. A user's profile is owned by exactly one shard, so updates
// for the same user serialize on one mutex while different users mostly
// proceed in parallel.
type Store struct {
	shards         []*shard
	newDeviceBoost float64
	burstThreshold int
	burstBoost     float64
	users          atomic.Int64
}

// NewStore creates a sharded profile store from config.
func NewStore(cfg *config.Config) *Store {
	n := cfg.Behavior.Shards
	if n <= 0 {
		n = 64
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{profiles: make(map[int64]*profile)}
	}
	return &Store{
		shards:         shards,
		newDeviceBoost: cfg.Behavior.NewDeviceBoost,
		burstThreshold: cfg.Behavior.BurstThreshold,
		burstBoost:     cfg.Behavior.BurstBoost,
	}
}

func (s *Store) shardFor(userID int64) *shard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(userID))
	h := fnv.New32a()
	_, _ = h.Write(buf[:])
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Update applies one transaction's observation to the user's profile as
// a single atomic step and returns the behavioral alert reasons plus
// their combined boost. The read-evaluate-mutate sequence runs entirely
// under the shard lock, so two concurrent transactions for the same
// user can never both see a device as new or both observe the same
// pre-increment counter value.
func (s *Store) Update(userID, deviceID int64, now time.Time) ([]string, float64) {
	hour := now.Truncate(time.Hour)

	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	p, ok := sh.profiles[userID]
	if !ok {
		p = &profile{devices: make(map[int64]struct{})}
		sh.profiles[userID] = p
		s.users.Add(1)
	}

	var reasons []string
	var boost float64

	if _, seen := p.devices[deviceID]; !seen {
		// A user's very first transaction introduces their first device,
		// which still counts as novel.
		reasons = append(reasons, "New Device")
		boost += s.newDeviceBoost
		p.devices[deviceID] = struct{}{}
	}

	if !p.hasLastHour || !p.lastHour.Equal(hour) {
		p.lastHour = hour
		p.hasLastHour = true
		p.txCountHour = 0
	}
	p.txCountHour++

	if p.txCountHour > s.burstThreshold {
		reasons = append(reasons, "Burst")
		boost += s.burstBoost
	}

	return reasons, boost
}

// Users returns the number of users with a tracked profile.
func (s *Store) Users() int {
	return int(s.users.Load())
}

// Snapshot returns a copy of the user's current state for inspection.
func (s *Store) Snapshot(userID int64) (devices, txCountHour int, ok bool) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	p, found := sh.profiles[userID]
	if !found {
		return 0, 0, false
	}
	return len(p.devices), p.txCountHour, true
}
