// Package account handles insight-company signup, signin and session tokens.
package account

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

var (
	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = eris.New("account: email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// signin reveals nothing about which one failed.
	ErrInvalidCredentials = eris.New("account: invalid credentials")
	// ErrInvalidToken is returned for expired or malformed session tokens.
	ErrInvalidToken = eris.New("account: invalid session token")
)

// Options configures the account service.
type Options struct {
	SigningKey []byte
	SessionTTL time.Duration
	BcryptCost int
}

// Service implements signup, signin and session verification.
type Service struct {
	store store.Store
	opts  Options
	now   func() time.Time
}

// NewService creates a Service.
func NewService(st store.Store, opts Options) *Service {
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: st, opts: opts, now: time.Now}
}

// Session is a signed-in account plus its bearer token.
type Session struct {
	Account model.Account `json:"account"`
	Token   string        `json:"token"`
}

// SignUp registers a new account and returns an active session.
func (s *Service) SignUp(ctx context.Context, email, password, companyName string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, eris.New("account: invalid email")
	}
	if len(password) < 8 {
		return nil, eris.New("account: password must be at least 8 characters")
	}

	existing, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, eris.Wrap(err, "account: lookup email")
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, eris.Wrap(err, "account: hash password")
	}

	acct := model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CompanyName:  strings.TrimSpace(companyName),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return nil, eris.Wrap(err, "account: create")
	}
	return s.session(acct)
}

// SignIn checks credentials and returns an active session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acct, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, eris.Wrap(err, "account: lookup email")
	}
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(*acct)
}

// VerifyToken parses a session token and returns the account ID it names.
func (s *Service) VerifyToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.opts.SigningKey, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *Service) session(acct model.Account) (*Session, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   acct.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.SessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.SigningKey)
	if err != nil {
		return nil, eris.Wrap(err, "account: sign session token")
	}
	acct.PasswordHash = nil
	return &Session{Account: acct, Token: token}, nil
}
