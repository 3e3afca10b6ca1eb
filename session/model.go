package session

import "time"

// Session is one recorded login. Records are append-only: after creation
// the only mutation a store performs is setting EndedAt once.
type Session struct {
	ID         string     `json:"id"`
	IdentityID string     `json:"identity_id"`
	Provider   string     `json:"provider"`
	IP         string     `json:"ip,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// Active reports whether the session has not been ended.
func (s Session) Active() bool {
	return s.EndedAt == nil
}
