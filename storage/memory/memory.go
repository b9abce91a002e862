// Package memory provides a mutex-guarded in-memory Store implementation
// for tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/wishbot/storage"
)

type pair struct {
	lo, hi int64
}

type request struct {
	requester, recipient int64
}

// Store keeps all records in process memory. A single mutex serializes
// mutations, which trivially satisfies the one-winner rule for conflicting
// transitions on the same pair.
type Store struct {
	mu sync.Mutex

	nextUserID int64
	nextWishID int64

	users       []*storage.User
	byID        map[int64]*storage.User
	byTG        map[int64]*storage.User
	wishes      map[int64][]storage.WishItem
	friendships []pair
	requests    []request
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		byID:   make(map[int64]*storage.User),
		byTG:   make(map[int64]*storage.User),
		wishes: make(map[int64][]storage.WishItem),
	}
}

// CreateUser registers a new user keyed by telegram id.
func (s *Store) CreateUser(_ context.Context, telegramID int64, name string) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byTG[telegramID]; ok {
		return nil, storage.ErrUserExists
	}
	s.nextUserID++
	u := &storage.User{
		ID:         s.nextUserID,
		TelegramID: telegramID,
		Name:       name,
		CreatedAt:  time.Now(),
	}
	s.users = append(s.users, u)
	s.byID[u.ID] = u
	s.byTG[u.TelegramID] = u
	copied := *u
	return &copied, nil
}

// UserByTelegramID looks a user up by external chat id.
func (s *Store) UserByTelegramID(_ context.Context, telegramID int64) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byTG[telegramID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// UserByID looks a user up by internal id.
func (s *Store) UserByID(_ context.Context, id int64) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// DeleteUser removes the user, its wish items, and every relation touching it.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byTG, u.TelegramID)
	delete(s.wishes, id)
	for i, cand := range s.users {
		if cand.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	kept := s.friendships[:0]
	for _, p := range s.friendships {
		if p.lo != id && p.hi != id {
			kept = append(kept, p)
		}
	}
	s.friendships = kept
	keptReq := s.requests[:0]
	for _, r := range s.requests {
		if r.requester != id && r.recipient != id {
			keptReq = append(keptReq, r)
		}
	}
	s.requests = keptReq
	return nil
}

// AddWish appends a wish item to the user's list.
func (s *Store) AddWish(_ context.Context, userID int64, fields storage.WishFields) (*storage.WishItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[userID]; !ok {
		return nil, storage.ErrNotFound
	}
	s.nextWishID++
	item := storage.WishItem{
		ID:          s.nextWishID,
		UserID:      userID,
		Name:        fields.Name,
		Price:       fields.Price,
		Description: fields.Description,
		PhotoID:     fields.PhotoID,
		URL:         fields.URL,
		CreatedAt:   time.Now(),
	}
	s.wishes[userID] = append(s.wishes[userID], item)
	return &item, nil
}

// WishesByUser returns the user's wish items in insertion order.
func (s *Store) WishesByUser(_ context.Context, userID int64) ([]storage.WishItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.wishes[userID]
	out := make([]storage.WishItem, len(items))
	copy(out, items)
	return out, nil
}

// DeleteWish removes the item when it belongs to the user.
func (s *Store) DeleteWish(_ context.Context, userID, wishID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.wishes[userID]
	for i, item := range items {
		if item.ID == wishID {
			s.wishes[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) areFriendsLocked(a, b int64) bool {
	lo, hi := storage.PairKey(a, b)
	for _, p := range s.friendships {
		if p.lo == lo && p.hi == hi {
			return true
		}
	}
	return false
}

func (s *Store) requestIndexLocked(requester, recipient int64) int {
	for i, r := range s.requests {
		if r.requester == requester && r.recipient == recipient {
			return i
		}
	}
	return -1
}

// CreateFriendRequest records a pending request requester->recipient.
func (s *Store) CreateFriendRequest(_ context.Context, requesterID, recipientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requesterID == recipientID {
		return storage.ErrSelfRelation
	}
	if _, ok := s.byID[requesterID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.byID[recipientID]; !ok {
		return storage.ErrNotFound
	}
	if s.areFriendsLocked(requesterID, recipientID) {
		return storage.ErrAlreadyFriends
	}
	if s.requestIndexLocked(requesterID, recipientID) >= 0 ||
		s.requestIndexLocked(recipientID, requesterID) >= 0 {
		return storage.ErrRequestExists
	}
	s.requests = append(s.requests, request{requester: requesterID, recipient: recipientID})
	return nil
}

// DeleteFriendRequest removes the pending request without creating a friendship.
func (s *Store) DeleteFriendRequest(_ context.Context, requesterID, recipientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.requestIndexLocked(requesterID, recipientID)
	if i < 0 {
		return storage.ErrNoSuchRequest
	}
	s.requests = append(s.requests[:i], s.requests[i+1:]...)
	return nil
}

// AcceptFriendRequest converts the pending request into a friendship.
func (s *Store) AcceptFriendRequest(_ context.Context, requesterID, recipientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.requestIndexLocked(requesterID, recipientID)
	if i < 0 {
		return storage.ErrNoSuchRequest
	}
	s.requests = append(s.requests[:i], s.requests[i+1:]...)
	if !s.areFriendsLocked(requesterID, recipientID) {
		lo, hi := storage.PairKey(requesterID, recipientID)
		s.friendships = append(s.friendships, pair{lo: lo, hi: hi})
	}
	return nil
}

// DeleteFriendship dissolves the friendship regardless of which side asks.
func (s *Store) DeleteFriendship(_ context.Context, a, b int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := storage.PairKey(a, b)
	for i, p := range s.friendships {
		if p.lo == lo && p.hi == hi {
			s.friendships = append(s.friendships[:i], s.friendships[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// Friends returns the user's friends in pair creation order.
func (s *Store) Friends(_ context.Context, userID int64) ([]storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []storage.User
	for _, p := range s.friendships {
		var otherID int64
		switch userID {
		case p.lo:
			otherID = p.hi
		case p.hi:
			otherID = p.lo
		default:
			continue
		}
		if other, ok := s.byID[otherID]; ok {
			out = append(out, *other)
		}
	}
	return out, nil
}

// IncomingRequests returns requesters pending towards userID in creation order.
func (s *Store) IncomingRequests(_ context.Context, userID int64) ([]storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []storage.User
	for _, r := range s.requests {
		if r.recipient != userID {
			continue
		}
		if requester, ok := s.byID[r.requester]; ok {
			out = append(out, *requester)
		}
	}
	return out, nil
}

// AreFriends reports whether the pair is friends.
func (s *Store) AreFriends(_ context.Context, a, b int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.areFriendsLocked(a, b), nil
}

// HasPendingRequest reports whether requester->recipient is pending.
func (s *Store) HasPendingRequest(_ context.Context, requesterID, recipientID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestIndexLocked(requesterID, recipientID) >= 0, nil
}

// Counts returns aggregate record counts.
func (s *Store) Counts(_ context.Context) (*storage.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishes := int64(0)
	for _, items := range s.wishes {
		wishes += int64(len(items))
	}
	return &storage.Stats{
		Users:           int64(len(s.users)),
		Wishes:          wishes,
		Friendships:     int64(len(s.friendships)),
		PendingRequests: int64(len(s.requests)),
	}, nil
}
