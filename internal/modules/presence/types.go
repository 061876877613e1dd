package presence

// Record is the pair of recency timestamps kept per visitor. Both values
// are unix seconds. LastSeen is the server receipt time of the newest
// heartbeat; LastActivity is visitor-reported and may lag LastSeen.
type Record struct {
	UID          string
	LastSeen     int64
	LastActivity int64
}

// Summary is one classification pass over the registry, as emitted to
// observers. OnlineTotal == ActiveTotal + IdleTotal always; offline
// visitors appear nowhere.
type Summary struct {
	TS          int64    `json:"ts"`
	OnlineTotal int      `json:"online_total"`
	ActiveTotal int      `json:"active_total"`
	IdleTotal   int      `json:"idle_total"`
	ActiveUIDs  []string `json:"active_uids"`
	IdleUIDs    []string `json:"idle_uids"`
}
