package domain

// PresenceEntry binds a username to one live connection.
type PresenceEntry struct {
	Username     string
	ConnectionID string
}
