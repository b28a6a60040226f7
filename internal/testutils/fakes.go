package testutils

import (
	"sync"
	"time"

	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/damilareoj/student-portal-backend/internal/store"
	"github.com/google/uuid"
)

// MemUserStore is an in-memory store.UserStore with the same uniqueness and
// not-found semantics as the Postgres-backed one.
type MemUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *MemUserStore) ByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemUserStore) ByMatric(matric string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.MatricNumber == matric {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemUserStore) ByID(id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, store.ErrNotFound
}

func (s *MemUserStore) ByResetToken(token string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.MatricNumber == user.MatricNumber {
			return store.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *MemUserStore) Save(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = copyUser(user)
	return nil
}

// Count reports the number of stored users.
func (s *MemUserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Snapshot returns the stored record for an email, or nil.
func (s *MemUserStore) Snapshot(email string) *models.User {
	u, err := s.ByEmail(email)
	if err != nil {
		return nil
	}
	return u
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.OTPHash != nil {
		v := *u.OTPHash
		c.OTPHash = &v
	}
	if u.OTPExpiresAt != nil {
		v := *u.OTPExpiresAt
		c.OTPExpiresAt = &v
	}
	if u.ResetToken != nil {
		v := *u.ResetToken
		c.ResetToken = &v
	}
	if u.ResetTokenExpires != nil {
		v := *u.ResetTokenExpires
		c.ResetTokenExpires = &v
	}
	return &c
}

// Mail is one message captured by RecordingNotifier.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// RecordingNotifier captures outbound mail; set Err to simulate delivery
// failure.
type RecordingNotifier struct {
	mu   sync.Mutex
	Err  error
	sent []Mail
}

func (n *RecordingNotifier) Send(to, subject, body string) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *RecordingNotifier) Sent() []Mail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Mail(nil), n.sent...)
}

func (n *RecordingNotifier) Last() *Mail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return nil
	}
	m := n.sent[len(n.sent)-1]
	return &m
}
