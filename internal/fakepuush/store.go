package fakepuush

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// historyLimit is how many uploads the hist endpoint lists.
const historyLimit = 10

// User is an account known to the fake server.
type User struct {
	Email    string
	Password string
	APIKey   string
	Premium  bool
	// Expires is echoed verbatim in auth responses.
	Expires string
}

type storedFile struct {
	id       string
	owner    string
	filename string
	uploaded time.Time
	views    int
	data     []byte
}

// Store keeps users and uploads in memory.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*User // by API key
	byEmail map[string]*User
	files   map[string]*storedFile
	order   map[string][]string // upload ids per API key, oldest first
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*User),
		byEmail: make(map[string]*User),
		files:   make(map[string]*storedFile),
		order:   make(map[string][]string),
		now:     time.Now,
	}
}

// AddUser registers a user. An empty APIKey gets a generated one, which is
// returned.
func (s *Store) AddUser(u User) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.APIKey == "" {
		u.APIKey = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	if u.Expires == "" {
		u.Expires = "0"
	}
	user := u
	s.users[u.APIKey] = &user
	if u.Email != "" {
		s.byEmail[strings.ToLower(u.Email)] = &user
	}
	return u.APIKey
}

func (s *Store) userByKey(key string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key]
	return u, ok
}

func (s *Store) userByLogin(email, password string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[strings.ToLower(email)]
	if !ok || u.Password != password {
		return nil, false
	}
	return u, true
}

// usage returns the total bytes stored for key.
func (s *Store) usage(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, id := range s.order[key] {
		total += len(s.files[id].data)
	}
	return total
}

func (s *Store) add(owner, filename string, data []byte) *storedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := newID()
	for s.files[id] != nil {
		id = newID()
	}
	f := &storedFile{
		id:       id,
		owner:    owner,
		filename: filename,
		uploaded: s.now(),
		data:     data,
	}
	s.files[id] = f
	s.order[owner] = append(s.order[owner], id)
	return f
}

func (s *Store) get(owner, id string) (*storedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok || f.owner != owner {
		return nil, false
	}
	return f, true
}

func (s *Store) remove(owner, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok || f.owner != owner {
		return false
	}
	delete(s.files, id)
	ids := s.order[owner]
	for i, other := range ids {
		if other == id {
			s.order[owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return true
}

// recent returns up to historyLimit uploads of owner, newest first.
func (s *Store) recent(owner string) []storedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[owner]
	out := make([]storedFile, 0, historyLimit)
	for i := len(ids) - 1; i >= 0 && len(out) < historyLimit; i-- {
		out = append(out, *s.files[ids[i]])
	}
	return out
}

// View records a view of the upload and returns its content.
func (s *Store) View(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, false
	}
	f.views++
	return f.data, true
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
