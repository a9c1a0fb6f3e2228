package stat

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/blabu/prsiService/logWrapper"
)

// SVersion - server version
const SVersion = "v1.2.0"

// Statistics - basic server runtime metrics plus the per IP connection
// counters the accept path consults
type Statistics struct {
	ServerVersion          string           `json:"version"`
	TimeUP                 time.Time        `json:"timeUP"`
	NowConnected           int32            `json:"nowConnected"`
	MaxConcurentConnection int32            `json:"maxConcurentConnection"`
	AllConnection          int32            `json:"allConnection"`
	IPAddresses            map[string]AllIP `json:"allIP"`
	oldIPAddrTime          time.Duration
	rwM                    sync.RWMutex
}

// AllIP - connection counter for one remote address
type AllIP struct {
	IP               string    `json:"IP"`
	Count            uint32    `json:"Count"`
	TimeLastActivity time.Time `json:"LastTime"`
}

// CreateStatistics - creates the statistics object. oldIPAddrTime is the
// inactivity window after which an address counter restarts from one.
func CreateStatistics(oldIPAddrTime time.Duration) *Statistics {
	return &Statistics{
		ServerVersion: SVersion,
		TimeUP:        time.Now(),
		IPAddresses:   make(map[string]AllIP, 1),
		oldIPAddrTime: oldIPAddrTime,
	}
}

// NewConnection - atomically registers a new connection
func (s *Statistics) NewConnection() {
	atomic.AddInt32(&s.AllConnection, 1)
	atomic.AddInt32(&s.NowConnected, 1)
	now := atomic.LoadInt32(&s.NowConnected)
	if now > s.MaxConcurentConnection {
		atomic.StoreInt32(&s.MaxConcurentConnection, now)
	}
}

// CloseConnection - reflects a closed connection in the statistics
func (s *Statistics) CloseConnection() {
	atomic.AddInt32(&s.NowConnected, -1)
}

// AddIPAddres - adds one to the connection count from the given IP address
// and returns the resulting value
func (s *Statistics) AddIPAddres(addr string) uint32 {
	s.rwM.Lock()
	defer s.rwM.Unlock()
	res := s.IPAddresses[addr]
	if time.Since(res.TimeLastActivity) > s.oldIPAddrTime {
		res.Count = 1
	} else {
		res.Count++
	}
	res.IP = addr
	res.TimeLastActivity = time.Now()
	s.IPAddresses[addr] = res
	return res.Count
}

// GetJsonStat - the statistics as JSON for the shutdown log line
func (s *Statistics) GetJsonStat() []byte {
	s.rwM.RLock()
	defer s.rwM.RUnlock()
	res, err := json.Marshal(s)
	if err != nil {
		log.Warning(err.Error())
		return []byte{}
	}
	return res
}
