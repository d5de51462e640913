package event

import "time"

type DomainEvent interface {
	Name() string
}

// OnlineUsersUpdated carries the full set of online usernames after a
// presence transition. Each event supersedes the previous one.
type OnlineUsersUpdated struct {
	Usernames []string
	At        time.Time
}

func (OnlineUsersUpdated) Name() string { return "update_online_users" }
