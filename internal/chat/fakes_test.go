package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"campus-chat/internal/store"
	"campus-chat/models"
)

var errInsertFailed = errors.New("insert failed")

// memStore is an in-memory MessageStore for tests. IDs are assigned in
// insertion order, matching the Postgres BIGSERIAL contract.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	msgs       []models.Message
	failInsert bool
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) Insert(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert {
		return errInsertFailed
	}
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = time.Now()
	s.msgs = append(s.msgs, *msg)
	return nil
}

func (s *memStore) filtered(ref models.RoomRef) []models.Message {
	var out []models.Message
	for _, m := range s.msgs {
		if ref.Kind == models.KindGroup {
			if m.Kind == models.KindGroup && m.GroupID == ref.GroupID {
				out = append(out, m)
			}
			continue
		}
		if m.Kind == models.KindDirect &&
			((m.SenderID == ref.UserA && m.ReceiverID == ref.UserB) ||
				(m.SenderID == ref.UserB && m.ReceiverID == ref.UserA)) {
			out = append(out, m)
		}
	}
	return out
}

func (s *memStore) Count(_ context.Context, ref models.RoomRef) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filtered(ref))), nil
}

func (s *memStore) Messages(_ context.Context, ref models.RoomRef, limit, offset int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.filtered(ref)
	// newest-first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// memGroups is an in-memory GroupStore for tests.
type memGroups struct {
	mu      sync.Mutex
	groups  map[string]models.Group
	members map[string]map[string]struct{}
}

func newMemGroups(groupIDs ...string) *memGroups {
	g := &memGroups{
		groups:  make(map[string]models.Group),
		members: make(map[string]map[string]struct{}),
	}
	for _, id := range groupIDs {
		g.groups[id] = models.Group{ID: id, Name: id}
	}
	return g
}

func (g *memGroups) CreateGroup(_ context.Context, group *models.Group) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.groups[group.ID] = *group
	return nil
}

func (g *memGroups) GetGroup(_ context.Context, id string) (*models.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	group, ok := g.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &group, nil
}

func (g *memGroups) ListGroups(_ context.Context) ([]models.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Group
	for _, group := range g.groups {
		out = append(out, group)
	}
	return out, nil
}

func (g *memGroups) AddMember(_ context.Context, groupID, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.members[groupID] == nil {
		g.members[groupID] = make(map[string]struct{})
	}
	g.members[groupID][userID] = struct{}{}
	return nil
}

func (g *memGroups) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.members[groupID][userID]
	return ok, nil
}
