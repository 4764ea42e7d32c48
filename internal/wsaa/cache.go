package wsaa

import (
	"sync"
	"time"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// ticketCache keeps parsed tickets per service until they expire
type ticketCache struct {
	mu      sync.RWMutex
	entries map[string]*model.AuthTicket
}

func newTicketCache() *ticketCache {
	return &ticketCache{
		entries: make(map[string]*model.AuthTicket),
	}
}

func (c *ticketCache) get(service string, at time.Time) (*model.AuthTicket, bool) {
	c.mu.RLock()
	ticket, exists := c.entries[service]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if ticket.Expired(at) {
		c.mu.Lock()
		delete(c.entries, service)
		c.mu.Unlock()
		return nil, false
	}

	return ticket, true
}

func (c *ticketCache) set(service string, ticket *model.AuthTicket) {
	c.mu.Lock()
	c.entries[service] = ticket
	c.mu.Unlock()
}
