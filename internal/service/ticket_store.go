package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"legal-companion/internal/domain"
)

// ErrTicketNotFound indica ticket inexistente, vencido o ya revocado.
var ErrTicketNotFound = errors.New("verification ticket not found")

// TicketStore guarda tickets de verificacion de email con TTL.
type TicketStore interface {
	Store(ctx context.Context, ticket domain.VerificationTicket) error
	Lookup(ctx context.Context, token string) (domain.VerificationTicket, error)
	Revoke(ctx context.Context, token string) error
}

// memoryPruneInterval acota cada cuanto Store recorre el mapa buscando vencidos.
const memoryPruneInterval = time.Minute

type memoryTicketStore struct {
	mu        sync.Mutex
	items     map[string]domain.VerificationTicket
	now       func() time.Time
	nextPrune time.Time
}

func NewMemoryTicketStore() TicketStore {
	return &memoryTicketStore{
		items: make(map[string]domain.VerificationTicket),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryTicketStore) Store(_ context.Context, ticket domain.VerificationTicket) error {
	if strings.TrimSpace(ticket.Token) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	s.items[ticket.Token] = ticket
	return nil
}

// pruneLocked borra los tickets vencidos; los que nunca se consumen no
// quedan retenidos mas alla de su TTL y el intervalo de poda.
func (s *memoryTicketStore) pruneLocked(now time.Time) {
	if now.Before(s.nextPrune) {
		return
	}
	for token, ticket := range s.items {
		if !now.Before(ticket.ExpiresAt) {
			delete(s.items, token)
		}
	}
	s.nextPrune = now.Add(memoryPruneInterval)
}

func (s *memoryTicketStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memoryTicketStore) Lookup(_ context.Context, token string) (domain.VerificationTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.items[token]
	if !ok {
		return domain.VerificationTicket{}, ErrTicketNotFound
	}
	if !s.now().Before(ticket.ExpiresAt) {
		delete(s.items, token)
		return domain.VerificationTicket{}, ErrTicketNotFound
	}
	return ticket, nil
}

func (s *memoryTicketStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

// redisKV es el subconjunto de redis.Client que usa el store.
type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const redisOpTimeout = 500 * time.Millisecond

type redisTicketStore struct {
	client redisKV
	prefix string
	now    func() time.Time
}

func NewRedisTicketStore(client *redis.Client) TicketStore {
	if client == nil {
		return nil
	}
	return newRedisTicketStore(client)
}

func newRedisTicketStore(client redisKV) *redisTicketStore {
	return &redisTicketStore{
		client: client,
		prefix: "auth:ticket:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *redisTicketStore) Store(ctx context.Context, ticket domain.VerificationTicket) error {
	if strings.TrimSpace(ticket.Token) == "" {
		return nil
	}
	ttl := ticket.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+ticket.Token, payload, ttl).Err()
}

func (s *redisTicketStore) Lookup(ctx context.Context, token string) (domain.VerificationTicket, error) {
	if strings.TrimSpace(token) == "" {
		return domain.VerificationTicket{}, ErrTicketNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.VerificationTicket{}, ErrTicketNotFound
		}
		return domain.VerificationTicket{}, err
	}
	var ticket domain.VerificationTicket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return domain.VerificationTicket{}, err
	}
	if !s.now().Before(ticket.ExpiresAt) {
		return domain.VerificationTicket{}, ErrTicketNotFound
	}
	return ticket, nil
}

func (s *redisTicketStore) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+token).Err()
}
