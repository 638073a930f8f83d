// Package auth handles pharmacist accounts and signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"apotek/database"
	"apotek/model"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidEmail       = errors.New("email is not valid")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)

var validate = validator.New()

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event reports a session change.
type Event struct {
	Kind   EventKind `json:"kind"`
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// Session is a signed-in user and the token that proves it.
type Session struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// subscriberBuffer is how many events a slow subscriber may fall behind
// before further events to it are dropped.
const subscriberBuffer = 8

type Service struct {
	db     *sqlx.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

func NewService(db *sqlx.DB, secret string, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.Named("auth"),
		subs:   make(map[int]chan Event),
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := database.GetUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := database.InsertUser(ctx, s.db, u); err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := database.GetUserByEmail(ctx, s.db, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.log.Warn("sign-in rejected", zap.String("email", normalizeEmail(email)))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		User:      *u,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	sess.Token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.log.Info("user signed in", zap.String("user_id", u.ID), zap.String("session", sess.ID))
	s.publish(Event{Kind: SignedIn, UserID: u.ID, Email: u.Email, At: now})
	return sess, nil
}

// Session resolves a token. It returns nil without error for a missing,
// malformed, expired or revoked token.
func (s *Service) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		s.log.Debug("session token rejected", zap.Error(err))
		return nil, nil
	}

	revoked, err := database.IsSessionRevoked(ctx, s.db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	u, err := database.GetUserByID(ctx, s.db, claims.Subject)
	if err != nil || u == nil {
		return nil, err
	}

	sess := &Session{ID: claims.ID, Token: token, User: *u}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return sess, nil
}

// SignOut revokes the token's session. Signing out an unknown or expired
// token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sess, err := s.Session(ctx, token)
	if err != nil || sess == nil {
		return err
	}
	now := s.now()
	if err := database.RevokeSession(ctx, s.db, sess.ID, now); err != nil {
		return err
	}
	s.log.Info("user signed out", zap.String("user_id", sess.User.ID), zap.String("session", sess.ID))
	s.publish(Event{Kind: SignedOut, UserID: sess.User.ID, Email: sess.User.Email, At: now})
	return nil
}

// Subscribe returns a channel of session changes and a function that
// ends the subscription.
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publish never blocks; a full subscriber misses the event.
func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn("session event dropped for slow subscriber", zap.Int("subscriber", id), zap.String("kind", string(ev.Kind)))
		}
	}
}

func (s *Service) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
