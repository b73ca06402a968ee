package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"loginguard/internal/domain"
	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/sentinel"
)

// AuthenticationTTL is how long an approved login stays valid.
const AuthenticationTTL = 30 * time.Minute

type player struct {
	minecraftName    string
	registrationCode string
}

type authentication struct {
	requestID id.RequestID
	createdAt time.Time
}

// InMemoryStore mirrors PostgresStore for tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	clock    clock.Clock
	nextID   id.RequestID
	players  map[id.DiscordID]player
	requests map[id.RequestID]domain.AuthenticationRequest
	auths    map[id.DiscordID]authentication
}

func NewInMemoryStore(clk clock.Clock) *InMemoryStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &InMemoryStore{
		clock:    clk,
		players:  make(map[id.DiscordID]player),
		requests: make(map[id.RequestID]domain.AuthenticationRequest),
		auths:    make(map[id.DiscordID]authentication),
	}
}

// AddRequest records a login attempt the way the game server plugin does and
// returns its id.
func (s *InMemoryStore) AddRequest(account, originAddress string) id.RequestID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.requests[s.nextID] = domain.AuthenticationRequest{ID: s.nextID, SubjectAccount: account, OriginAddress: originAddress}
	return s.nextID
}

// LinkMinecraftName completes a registration, as the in-game /register command does.
func (s *InMemoryStore) LinkMinecraftName(identity id.DiscordID, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[identity]
	if !ok {
		return fmt.Errorf("player %s: %w", identity, sentinel.ErrNotFound)
	}
	p.minecraftName = account
	s.players[identity] = p
	return nil
}

func (s *InMemoryStore) GetRequestContext(_ context.Context, requestID id.RequestID) (*domain.AuthenticationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("authentication request %s: %w", requestID, sentinel.ErrNotFound)
	}
	return &req, nil
}

func (s *InMemoryStore) GetLinkedIdentity(_ context.Context, account string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for identity, p := range s.players {
		if p.minecraftName != "" && p.minecraftName == account {
			return identity.String(), nil
		}
	}
	return "", fmt.Errorf("player %q: %w", account, sentinel.ErrNotFound)
}

func (s *InMemoryStore) IsAuthenticated(_ context.Context, identity id.DiscordID, originAddress string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	auth, ok := s.auths[identity]
	if !ok || s.clock.Now().Sub(auth.createdAt) >= AuthenticationTTL {
		return false, nil
	}
	req, ok := s.requests[auth.requestID]
	return ok && req.OriginAddress == originAddress, nil
}

func (s *InMemoryStore) DeleteAuthentication(_ context.Context, identity id.DiscordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auths[identity]; !ok {
		return fmt.Errorf("authentication %s: %w", identity, sentinel.ErrNotFound)
	}
	delete(s.auths, identity)
	return nil
}

func (s *InMemoryStore) InsertAuthentication(_ context.Context, identity id.DiscordID, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auths[identity]; ok {
		return fmt.Errorf("insert authentication: %s already authenticated", identity)
	}
	if _, ok := s.requests[requestID]; !ok {
		return fmt.Errorf("insert authentication: request %s: %w", requestID, sentinel.ErrNotFound)
	}
	s.auths[identity] = authentication{requestID: requestID, createdAt: s.clock.Now()}
	return nil
}

func (s *InMemoryStore) AddPlayer(_ context.Context, identity id.DiscordID, registrationCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[identity]; ok {
		return fmt.Errorf("add player: %s already registered", identity)
	}
	s.players[identity] = player{registrationCode: registrationCode}
	return nil
}

func (s *InMemoryStore) DeletePlayer(_ context.Context, identity id.DiscordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[identity]; !ok {
		return fmt.Errorf("player %s: %w", identity, sentinel.ErrNotFound)
	}
	delete(s.players, identity)
	delete(s.auths, identity)
	return nil
}

func (s *InMemoryStore) IsRegistered(_ context.Context, identity id.DiscordID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.players[identity]
	return ok, nil
}

func (s *InMemoryStore) GetMinecraftName(_ context.Context, identity id.DiscordID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[identity]
	if !ok || p.minecraftName == "" {
		return "", fmt.Errorf("minecraft name for %s: %w", identity, sentinel.ErrNotFound)
	}
	return p.minecraftName, nil
}

func (s *InMemoryStore) GetRegistrationCode(_ context.Context, identity id.DiscordID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[identity]
	if !ok {
		return "", fmt.Errorf("registration code for %s: %w", identity, sentinel.ErrNotFound)
	}
	return p.registrationCode, nil
}
