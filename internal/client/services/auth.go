// Package services contains the application services of the reader client:
// the durable local store, the auth token slot and the sync orchestrator.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/client/client"
	"github.com/dmitrijs2005/readkeeper/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/readkeeper/internal/common"
	"github.com/dmitrijs2005/readkeeper/internal/dbx"
	"github.com/dmitrijs2005/readkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// tokenKey is the metadata slot holding the bearer credential.
const tokenKey = "auth_token"

// TokenStore is the single persisted auth token slot. It implements
// client.TokenSource.
type TokenStore struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	log logging.Logger
	now func() time.Time
}

var _ client.TokenSource = (*TokenStore)(nil)

func NewTokenStore(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *TokenStore {
	if log == nil {
		log = logging.NewNop()
	}
	return &TokenStore{db: db, rm: rm, log: log.With("component", "auth"), now: time.Now}
}

// Token returns the held token. A JWT whose exp claim has passed counts as
// absent and is dropped. Opaque tokens never expire locally.
func (s *TokenStore) Token(ctx context.Context) (string, bool) {
	v, err := s.rm.Metadata(s.db).Get(ctx, tokenKey)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "token slot unreadable", "error", err)
		}
		return "", false
	}

	tok := string(v)
	if tok == "" {
		return "", false
	}
	if expired(tok, s.now()) {
		s.log.Info(ctx, "held token expired")
		s.Revoke(ctx)
		return "", false
	}
	return tok, true
}

// Set replaces the held token.
func (s *TokenStore) Set(ctx context.Context, token string) error {
	if err := s.rm.Metadata(s.db).Set(ctx, tokenKey, []byte(token)); err != nil {
		return common.NewStorageError("set_token", err)
	}
	return nil
}

// Revoke empties the slot.
func (s *TokenStore) Revoke(ctx context.Context) {
	if err := s.rm.Metadata(s.db).Delete(ctx, tokenKey); err != nil {
		s.log.Warn(ctx, "token not revoked", "error", err)
	}
}

func expired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// AuthService manages the bearer credential used against the service.
type AuthService interface {
	// Login validates token against the service and stores it.
	Login(ctx context.Context, token string) error
	// Logout drops the held token and the local state derived from the
	// authenticated session.
	Logout(ctx context.Context) error
	LoggedIn(ctx context.Context) bool
	AuthEnabled(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	tokens *TokenStore
	db     *sql.DB
	rm     repomanager.RepositoryManager
}

func NewAuthService(c client.Client, tokens *TokenStore, db *sql.DB, rm repomanager.RepositoryManager) AuthService {
	return &authService{client: c, tokens: tokens, db: db, rm: rm}
}

func (a *authService) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return common.ErrInvalidToken
	}
	if err := a.client.CheckAuth(ctx, token); err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	return a.tokens.Set(ctx, token)
}

// Logout empties the token slot and the other metadata in one transaction.
func (a *authService) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, a.db, func(ctx context.Context, tx dbx.DBTX) error {
		return a.rm.Metadata(tx).Clear(ctx)
	})
	if err != nil {
		return common.NewStorageError("logout", err)
	}
	return nil
}

func (a *authService) LoggedIn(ctx context.Context) bool {
	_, ok := a.tokens.Token(ctx)
	return ok
}

func (a *authService) AuthEnabled(ctx context.Context) (bool, error) {
	h, err := a.client.Health(ctx)
	if err != nil {
		return false, err
	}
	return h.AuthEnabled, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
