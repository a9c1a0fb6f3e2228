package store

import "time"

// Result - the outcome of one finished match. Only decided outcomes are
// recorded, a session both sides abandoned leaves no trace.
type Result struct {
	MatchID string    `json:"matchID"`
	Winner  string    `json:"winner"`
	Loser   string    `json:"loser"`
	When    time.Time `json:"when"`
}

// DB - the finished match ledger. Live session state never touches it, so
// nothing here survives a restart except completed results.
type DB interface {
	SaveResult(r Result) error
	Record(username string) (wins, losses uint64, err error)
	ForEachResult(callBack func(r Result) error) error
	Close() error
}
