/*
Package chat contains the core logic of the real-time direct-message relay.

This file defines the Presence registry, the single owner of the mapping from
user identity to active connection. All updates go through its methods; the
map is never handed out.
*/
package chat

// Presence tracks which users currently hold a live connection.
// One connection per user: a second connection from the same user replaces
// the registry entry.
//
// Presence has no lock of its own; the Hub serializes every call under its
// mutex, which also keeps presence changes consistent with room membership.
type Presence struct {
	entries map[int64]*Client
}

// NewPresence returns an empty registry.
func NewPresence() *Presence {
	return &Presence{
		entries: make(map[int64]*Client),
	}
}

// set registers the client as the user's live connection and returns the
// superseded client, if any.
func (p *Presence) set(userID int64, c *Client) *Client {
	replaced := p.entries[userID]
	if replaced == c {
		return nil
	}

	p.entries[userID] = c

	return replaced
}

// remove clears the user's entry, but only if it still points at the given
// client. A superseded connection's teardown must not clear its replacement.
// Reports whether the entry was removed.
func (p *Presence) remove(userID int64, c *Client) bool {
	current, ok := p.entries[userID]
	if !ok || current != c {
		return false
	}

	delete(p.entries, userID)

	return true
}

// isOnline reports whether the user has a live connection registered.
func (p *Presence) isOnline(userID int64) bool {
	_, ok := p.entries[userID]
	return ok
}

// clients returns a snapshot of every registered connection.
func (p *Presence) clients() []*Client {
	all := make([]*Client, 0, len(p.entries))
	for _, c := range p.entries {
		all = append(all, c)
	}

	return all
}
