package services

import (
	"errors"
	"time"

	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/repository"
	"gorm.io/gorm"
)

// memStore backs the fake repositories. Uniqueness rules mirror the
// real schema: users.email, identities (provider, provider_user_id),
// sessions.jti.
type memStore struct {
	users      map[uint]*domain.User
	identities map[uint]*domain.UserIdentity
	sessions   map[string]*domain.RefreshSession

	nextUserID     uint
	nextIdentityID uint

	// missNextIdentityFind makes the next FindByProvider miss, simulating
	// a lookup that ran before a concurrent insert committed.
	missNextIdentityFind bool
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uint]*domain.User{},
		identities: map[uint]*domain.UserIdentity{},
		sessions:   map[string]*domain.RefreshSession{},
	}
}

type snapshot struct {
	users      map[uint]*domain.User
	identities map[uint]*domain.UserIdentity
	sessions   map[string]*domain.RefreshSession
	nextUser   uint
	nextIdent  uint
}

func (s *memStore) snapshot() snapshot {
	snap := snapshot{
		users:      map[uint]*domain.User{},
		identities: map[uint]*domain.UserIdentity{},
		sessions:   map[string]*domain.RefreshSession{},
		nextUser:   s.nextUserID,
		nextIdent:  s.nextIdentityID,
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, i := range s.identities {
		cp := *i
		snap.identities[id] = &cp
	}
	for jti, sess := range s.sessions {
		cp := *sess
		snap.sessions[jti] = &cp
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.users = snap.users
	s.identities = snap.identities
	s.sessions = snap.sessions
	s.nextUserID = snap.nextUser
	s.nextIdentityID = snap.nextIdent
}

// ---------- user repository ----------

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) CreateUser(user *domain.User) (*domain.User, error) {
	if user.Email != nil {
		for _, u := range r.s.users {
			if u.Email != nil && *u.Email == *user.Email {
				return nil, gorm.ErrDuplicatedKey
			}
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return user, nil
}

func (r *memUserRepo) FindUserByEmail(email string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindUserById(userID uint) (*domain.User, error) {
	u, ok := r.s.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) SaveUser(user *domain.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdateFields(userID uint, fields map[string]interface{}) error {
	u, ok := r.s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["last_login_at"]; ok {
		t := v.(time.Time)
		u.LastLoginAt = &t
	}
	return nil
}

// ---------- identity repository ----------

type memIdentityRepo struct{ s *memStore }

func (r *memIdentityRepo) CreateIdentity(identity *domain.UserIdentity) (*domain.UserIdentity, error) {
	for _, i := range r.s.identities {
		if i.Provider == identity.Provider && i.ProviderUserID == identity.ProviderUserID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	r.s.nextIdentityID++
	identity.ID = r.s.nextIdentityID
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	cp := *identity
	r.s.identities[identity.ID] = &cp
	return identity, nil
}

func (r *memIdentityRepo) FindByProvider(provider, providerUserID string) (*domain.UserIdentity, error) {
	if r.s.missNextIdentityFind {
		r.s.missNextIdentityFind = false
		return nil, gorm.ErrRecordNotFound
	}
	for _, i := range r.s.identities {
		if i.Provider == provider && i.ProviderUserID == providerUserID {
			cp := *i
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memIdentityRepo) FindByUser(userID uint) ([]domain.UserIdentity, error) {
	var out []domain.UserIdentity
	for _, i := range r.s.identities {
		if i.UserID == userID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *memIdentityRepo) FindByUserAndProvider(userID uint, provider string) (*domain.UserIdentity, error) {
	for _, i := range r.s.identities {
		if i.UserID == userID && i.Provider == provider {
			cp := *i
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memIdentityRepo) SaveIdentity(identity *domain.UserIdentity) error {
	if _, ok := r.s.identities[identity.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	identity.UpdatedAt = time.Now()
	cp := *identity
	r.s.identities[identity.ID] = &cp
	return nil
}

func (r *memIdentityRepo) DeleteIdentity(identityID uint) error {
	delete(r.s.identities, identityID)
	return nil
}

func (r *memIdentityRepo) CountByUser(userID uint) (int64, error) {
	var n int64
	for _, i := range r.s.identities {
		if i.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ---------- session repository ----------

type memSessionRepo struct{ s *memStore }

func (r *memSessionRepo) CreateSession(session *domain.RefreshSession) (*domain.RefreshSession, error) {
	if _, ok := r.s.sessions[session.JTI]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	session.CreatedAt = time.Now()
	cp := *session
	r.s.sessions[session.JTI] = &cp
	return session, nil
}

func (r *memSessionRepo) FindActive(jti string) (*domain.RefreshSession, error) {
	sess, ok := r.s.sessions[jti]
	if !ok || !sess.ExpiresAt.After(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sess
	return &cp, nil
}

func (r *memSessionRepo) Revoke(jti string) error {
	delete(r.s.sessions, jti)
	return nil
}

func (r *memSessionRepo) RevokeAllForUser(userID uint) error {
	for jti, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, jti)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired() (int64, error) {
	var n int64
	for jti, sess := range r.s.sessions {
		if !sess.ExpiresAt.After(time.Now()) {
			delete(r.s.sessions, jti)
			n++
		}
	}
	return n, nil
}

// ---------- tx manager ----------

type memTxManager struct{ s *memStore }

func (m *memTxManager) InTx(fn func(r repository.TxRepos) error) error {
	snap := m.s.snapshot()
	err := fn(repository.TxRepos{
		Users:      &memUserRepo{s: m.s},
		Identities: &memIdentityRepo{s: m.s},
		Sessions:   &memSessionRepo{s: m.s},
	})
	if err != nil {
		m.s.restore(snap)
	}
	return err
}

// ---------- crypter / producer ----------

type fakeCrypter struct{}

func (fakeCrypter) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return "enc:" + plaintext, nil
}

func (fakeCrypter) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", errors.New("decryption failed")
	}
	return ciphertext[4:], nil
}

type recordingProducer struct {
	keys []string
}

func (p *recordingProducer) PublishMessage(key, value []byte) error {
	p.keys = append(p.keys, string(key))
	return nil
}
