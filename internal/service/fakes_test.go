package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"user_auth/internal/model"
	"user_auth/internal/repository"
)

// memDB is an in-memory stand-in for the three tables
type memDB struct {
	mu          sync.Mutex
	nextUser    int64
	nextProfile int64
	users       map[int64]model.User
	profiles    map[int64]model.Profile
	tokens      map[string]model.Token
	commitErr   error
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[int64]model.User{},
		profiles: map[int64]model.Profile{},
		tokens:   map[string]model.Token{},
	}
}

type snapshot struct {
	nextUser, nextProfile int64
	users                 map[int64]model.User
	profiles              map[int64]model.Profile
	tokens                map[string]model.Token
}

func (db *memDB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := snapshot{
		nextUser:    db.nextUser,
		nextProfile: db.nextProfile,
		users:       map[int64]model.User{},
		profiles:    map[int64]model.Profile{},
		tokens:      map[string]model.Token{},
	}
	for k, v := range db.users {
		s.users[k] = v
	}
	for k, v := range db.profiles {
		s.profiles[k] = v
	}
	for k, v := range db.tokens {
		s.tokens[k] = v
	}
	return s
}

func (db *memDB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextUser, db.nextProfile = s.nextUser, s.nextProfile
	db.users, db.profiles, db.tokens = s.users, s.profiles, s.tokens
}

func (db *memDB) tokensFor(userID int64) []model.Token {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.Token
	for _, t := range db.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

type memStore struct {
	db   *memDB
	inTx bool
}

func newMemStore() *memStore {
	return &memStore{db: newMemDB()}
}

func (s *memStore) Users() repository.UserRepository       { return &memUsers{db: s.db} }
func (s *memStore) Profiles() repository.ProfileRepository { return &memProfiles{db: s.db} }
func (s *memStore) Tokens() repository.TokenRepository     { return &memTokens{db: s.db} }

func (s *memStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	snap := s.db.snapshot()
	if err := fn(&memStore{db: s.db, inTx: true}); err != nil {
		s.db.restore(snap)
		return err
	}
	if s.db.commitErr != nil {
		s.db.restore(snap)
		return fmt.Errorf("failed to commit transaction: %w", s.db.commitErr)
	}
	return nil
}

type memUsers struct{ db *memDB }

func (r *memUsers) Create(ctx context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("failed to create user: %w", repository.ErrDuplicateEmail)
		}
	}
	r.db.nextUser++
	user.ID = r.db.nextUser
	user.DateJoined = time.Now()
	r.db.users[user.ID] = *user
	return nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := r.FindByEmail(ctx, email)
	return u != nil, err
}

func (r *memUsers) LockByID(ctx context.Context, id int64) error {
	if u, _ := r.FindByID(ctx, id); u == nil {
		return repository.ErrNotFound
	}
	return nil
}

func (r *memUsers) Update(ctx context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName, u.LastName = user.FirstName, user.LastName
	u.IsPropertyOwner, u.IsAdmin, u.IsStaff, u.IsActive = user.IsPropertyOwner, user.IsAdmin, user.IsStaff, user.IsActive
	r.db.users[user.ID] = u
	return nil
}

func (r *memUsers) SetActive(ctx context.Context, id int64, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	r.db.users[id] = u
	return nil
}

func (r *memUsers) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u := r.db.users[id]
	u.LastLogin = &at
	r.db.users[id] = u
	return nil
}

type memProfiles struct{ db *memDB }

func (r *memProfiles) phoneTaken(phone *string, excludeID int64) bool {
	if phone == nil {
		return false
	}
	for _, p := range r.db.profiles {
		if p.ID != excludeID && p.PhoneNumber != nil && *p.PhoneNumber == *phone {
			return true
		}
	}
	return false
}

func (r *memProfiles) Create(ctx context.Context, profile *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.phoneTaken(profile.PhoneNumber, 0) {
		return fmt.Errorf("failed to create profile: %w", repository.ErrDuplicatePhone)
	}
	for _, p := range r.db.profiles {
		if p.UserID == profile.UserID {
			return errors.New("profile already exists for user")
		}
	}
	r.db.nextProfile++
	profile.ID = r.db.nextProfile
	profile.CreatedAt = time.Now()
	profile.ModifiedAt = profile.CreatedAt
	stored := *profile
	stored.User = model.User{}
	r.db.profiles[profile.ID] = stored
	return nil
}

func (r *memProfiles) withUser(p model.Profile) *model.Profile {
	p.User = r.db.users[p.UserID]
	return &p
}

func (r *memProfiles) FindByID(ctx context.Context, id int64) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[id]
	if !ok {
		return nil, nil
	}
	return r.withUser(p), nil
}

func (r *memProfiles) FindByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.profiles {
		if p.UserID == userID {
			return r.withUser(p), nil
		}
	}
	return nil, nil
}

func (r *memProfiles) List(ctx context.Context, filters model.ProfileFilters) ([]model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []model.Profile{}
	for _, p := range r.db.profiles {
		full := r.withUser(p)
		if filters.Email != nil && !strings.EqualFold(full.User.Email, *filters.Email) {
			continue
		}
		if filters.PhoneNumber != nil && (full.PhoneNumber == nil || *full.PhoneNumber != *filters.PhoneNumber) {
			continue
		}
		if filters.Search != nil {
			phone := ""
			if full.PhoneNumber != nil {
				phone = *full.PhoneNumber
			}
			term := strings.ToLower(*filters.Search)
			if !strings.Contains(strings.ToLower(full.User.Email), term) && !strings.Contains(phone, term) {
				continue
			}
		}
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProfiles) PhoneExists(ctx context.Context, phone string, excludeID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.phoneTaken(&phone, excludeID), nil
}

func (r *memProfiles) Update(ctx context.Context, profile *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[profile.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.phoneTaken(profile.PhoneNumber, profile.ID) {
		return fmt.Errorf("failed to update profile: %w", repository.ErrDuplicatePhone)
	}
	p.Photo, p.PhoneNumber, p.AdditionalInfo = profile.Photo, profile.PhoneNumber, profile.AdditionalInfo
	p.ModifiedAt = time.Now()
	profile.ModifiedAt = p.ModifiedAt
	r.db.profiles[p.ID] = p
	return nil
}

func (r *memProfiles) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.profiles, id)
	return nil
}

type memTokens struct{ db *memDB }

func (r *memTokens) Create(ctx context.Context, token *model.Token) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tokens {
		if t.UserID == token.UserID {
			return errors.New("duplicate key value violates unique constraint \"auth_tokens_user_id_key\"")
		}
	}
	token.Created = time.Now()
	r.db.tokens[token.Key] = *token
	return nil
}

func (r *memTokens) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tokens[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memTokens) FindByUserID(ctx context.Context, userID int64) (*model.Token, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tokens {
		if t.UserID == userID {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTokens) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k, t := range r.db.tokens {
		if t.UserID == userID {
			delete(r.db.tokens, k)
			n++
		}
	}
	return n, nil
}

// memMedia records saved assets
type memMedia struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

func newMemMedia() *memMedia {
	return &memMedia{objects: map[string][]byte{}}
}

func (m *memMedia) Save(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.objects[key] = data
	return nil
}

func (m *memMedia) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

func (m *memMedia) URL(key string) string {
	return "/media/" + key
}
