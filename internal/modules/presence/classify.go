package presence

import "sort"

// Classify partitions a snapshot at the given instant. A record is online
// iff now-LastSeen <= onlineTTL, and an online record is active iff
// now-LastActivity <= activityWindow; both boundaries are inclusive.
// Offline records are dropped entirely. Pure function, no side effects.
func Classify(records []Record, now, onlineTTL, activityWindow int64) Summary {
	active := make([]string, 0, len(records))
	idle := make([]string, 0)

	for _, r := range records {
		if now-r.LastSeen > onlineTTL {
			continue
		}
		if now-r.LastActivity <= activityWindow {
			active = append(active, r.UID)
		} else {
			idle = append(idle, r.UID)
		}
	}

	sort.Strings(active)
	sort.Strings(idle)

	return Summary{
		TS:          now,
		OnlineTotal: len(active) + len(idle),
		ActiveTotal: len(active),
		IdleTotal:   len(idle),
		ActiveUIDs:  active,
		IdleUIDs:    idle,
	}
}
