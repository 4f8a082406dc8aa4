package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lumio_social/internal/config"
	"lumio_social/internal/model"
)

// =============================================================================
// MOCK CHALLENGE REPOSITORY
// =============================================================================

type mockChallengeRepository struct {
	createFn  func(ctx context.Context, challenge *model.Challenge) error
	consumeFn func(ctx context.Context, wallet model.ActorID, nonce string) (*model.Challenge, error)

	created []*model.Challenge
}

func (m *mockChallengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	m.created = append(m.created, challenge)
	if m.createFn != nil {
		return m.createFn(ctx, challenge)
	}
	return nil
}

func (m *mockChallengeRepository) Consume(ctx context.Context, wallet model.ActorID, nonce string) (*model.Challenge, error) {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, wallet, nonce)
	}
	for i, c := range m.created {
		if c.Wallet == wallet && c.Nonce == nonce {
			m.created = append(m.created[:i], m.created[i+1:]...)
			return c, nil
		}
	}
	return nil, model.ErrChallengeNotFound
}

func testAuthConfig() *config.Config {
	return &config.Config{JWTSecret: "secret", AccessTokenMaxAge: 900, ChallengeMaxAge: 300}
}

func newKeyPair(t *testing.T) (model.ActorID, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var id model.ActorID
	copy(id[:], pub)
	return id, priv
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	// ARRANGE
	repo := &mockChallengeRepository{}
	svc := NewAuthService(repo, testAuthConfig())
	wallet, priv := newKeyPair(t)

	challenge, err := svc.IssueChallenge(context.Background(), wallet)
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	sig := ed25519.Sign(priv, []byte(challenge.Nonce))

	// ACT
	resp, err := svc.Login(context.Background(), model.LoginRequest{
		Wallet:    wallet,
		Nonce:     challenge.Nonce,
		Signature: hex.EncodeToString(sig),
	})

	// ASSERT
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.Wallet != wallet || resp.ExpiresIn != 900 {
		t.Errorf("response = %+v", resp)
	}

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["wallet"] != wallet.String() {
		t.Errorf("wallet claim = %v, want %s", claims["wallet"], wallet)
	}

	// nonce is single-use
	_, err = svc.Login(context.Background(), model.LoginRequest{Wallet: wallet, Nonce: challenge.Nonce, Signature: hex.EncodeToString(sig)})
	if !errors.Is(err, model.ErrChallengeNotFound) {
		t.Errorf("replay: expected ErrChallengeNotFound, got %v", err)
	}
}

func TestAuthService_Login_BadSignature(t *testing.T) {
	repo := &mockChallengeRepository{}
	svc := NewAuthService(repo, testAuthConfig())
	wallet, _ := newKeyPair(t)
	_, otherKey := newKeyPair(t)

	challenge, _ := svc.IssueChallenge(context.Background(), wallet)
	sig := ed25519.Sign(otherKey, []byte(challenge.Nonce))

	_, err := svc.Login(context.Background(), model.LoginRequest{Wallet: wallet, Nonce: challenge.Nonce, Signature: hex.EncodeToString(sig)})
	if !errors.Is(err, model.ErrInvalidSignature) {
		t.Fatalf("Expected ErrInvalidSignature, got: %v", err)
	}
}

func TestAuthService_Login_MalformedSignature(t *testing.T) {
	repo := &mockChallengeRepository{}
	svc := NewAuthService(repo, testAuthConfig())
	wallet, _ := newKeyPair(t)
	challenge, _ := svc.IssueChallenge(context.Background(), wallet)

	_, err := svc.Login(context.Background(), model.LoginRequest{Wallet: wallet, Nonce: challenge.Nonce, Signature: "0xdeadbeef"})
	if !errors.Is(err, model.ErrInvalidSignature) {
		t.Fatalf("Expected ErrInvalidSignature, got: %v", err)
	}
}

func TestAuthService_Login_ExpiredChallenge(t *testing.T) {
	wallet, priv := newKeyPair(t)
	repo := &mockChallengeRepository{
		consumeFn: func(ctx context.Context, w model.ActorID, nonce string) (*model.Challenge, error) {
			return &model.Challenge{Wallet: w, Nonce: nonce, ExpiresAt: time.Now().Add(-time.Second)}, nil
		},
	}
	svc := NewAuthService(repo, testAuthConfig())
	sig := ed25519.Sign(priv, []byte("n"))

	_, err := svc.Login(context.Background(), model.LoginRequest{Wallet: wallet, Nonce: "n", Signature: hex.EncodeToString(sig)})
	if !errors.Is(err, model.ErrChallengeExpired) {
		t.Fatalf("Expected ErrChallengeExpired, got: %v", err)
	}
}

func TestAuthService_IssueChallenge_RepoError(t *testing.T) {
	repoErr := errors.New("redis down")
	repo := &mockChallengeRepository{
		createFn: func(ctx context.Context, challenge *model.Challenge) error { return repoErr },
	}
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.IssueChallenge(context.Background(), wallet(1))
	if !errors.Is(err, repoErr) {
		t.Fatalf("Expected wrapped repo error, got: %v", err)
	}
}
