package auth_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/pollwise/pollwise/auth"
)

// testConfig implements auth.Config
type testConfig struct {
	signingKey  string
	issuer      string
	audience    []string
	accessTTL   int
	refreshDays int
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:  "test-signing-key",
		issuer:      "test-issuer",
		audience:    []string{"test-audience"},
		accessTTL:   1,
		refreshDays: 7,
	}
}

func (c *testConfig) GetSigningKey() string { return c.signingKey }
func (c *testConfig) GetIssuer() string { return c.issuer }
func (c *testConfig) GetAudience() []string { return c.audience }
func (c *testConfig) GetAccessTokenTTL() int { return c.accessTTL }
func (c *testConfig) GetRefreshTokenTTLDays() int { return c.refreshDays }

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(ctx context.Context, to, otpCode string) error {
	args := m.Called(ctx, to, otpCode)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, to, otpCode string) error {
	args := m.Called(ctx, to, otpCode)
	return args.Error(0)
}

func (m *MockMailer) SendWelcomeEmail(ctx context.Context, to, fullName string) error {
	args := m.Called(ctx, to, fullName)
	return args.Error(0)
}

// noopMailer is a Mailer whose sends always succeed.
type noopMailer struct{}

func (noopMailer) SendVerificationEmail(ctx context.Context, to, otpCode string) error { return nil }
func (noopMailer) SendPasswordResetEmail(ctx context.Context, to, otpCode string) error {
	return nil
}
func (noopMailer) SendWelcomeEmail(ctx context.Context, to, fullName string) error { return nil }

// MockUsers implements auth.Users. The embedded repository interface
// covers the generic methods the tests never reach; the ones the flows
// touch are shadowed below.
type MockUsers struct {
	mock.Mock
	repository.Repository[*auth.User]
}

func userResult(args mock.Arguments) (*auth.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	return userResult(args)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	return userResult(args)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	return userResult(args)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	args := m.Called(ctx, tx, email)
	return userResult(args)
}

func (m *MockUsers) ListAll(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash, salt string) error {
	args := m.Called(ctx, tx, id, hash, salt)
	return args.Error(0)
}

func (m *MockUsers) MarkEmailVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockRefreshTokens implements auth.RefreshTokens
type MockRefreshTokens struct {
	mock.Mock
}

func tokenResult(args mock.Arguments) (*auth.RefreshToken, error) {
	if t := args.Get(0); t != nil {
		return t.(*auth.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokens) Create(ctx context.Context, record *auth.RefreshToken) (*auth.RefreshToken, error) {
	args := m.Called(ctx, record)
	return tokenResult(args)
}

func (m *MockRefreshTokens) CreateTx(ctx context.Context, tx bun.IDB, record *auth.RefreshToken) (*auth.RefreshToken, error) {
	args := m.Called(ctx, tx, record)
	return tokenResult(args)
}

func (m *MockRefreshTokens) FindActive(ctx context.Context, token string) (*auth.RefreshToken, error) {
	args := m.Called(ctx, token)
	return tokenResult(args)
}

func (m *MockRefreshTokens) FindActiveTx(ctx context.Context, tx bun.IDB, token string) (*auth.RefreshToken, error) {
	args := m.Called(ctx, tx, token)
	return tokenResult(args)
}

func (m *MockRefreshTokens) ConsumeTx(ctx context.Context, tx bun.IDB, token string) (*auth.RefreshToken, error) {
	args := m.Called(ctx, tx, token)
	return tokenResult(args)
}

func (m *MockRefreshTokens) Revoke(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokens) RevokeTx(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	args := m.Called(ctx, tx, token)
	return args.Bool(0), args.Error(1)
}

// MockEmailVerifications implements auth.EmailVerifications
type MockEmailVerifications struct {
	mock.Mock
}

func verificationResult(args mock.Arguments) (*auth.EmailVerification, error) {
	if v := args.Get(0); v != nil {
		return v.(*auth.EmailVerification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmailVerifications) Issue(ctx context.Context, userID uuid.UUID, code string) (*auth.EmailVerification, error) {
	args := m.Called(ctx, userID, code)
	return verificationResult(args)
}

func (m *MockEmailVerifications) IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (*auth.EmailVerification, error) {
	args := m.Called(ctx, tx, userID, code)
	return verificationResult(args)
}

func (m *MockEmailVerifications) ConsumeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tx, userID, code)
	return args.Bool(0), args.Error(1)
}

// stubRepoManager wires the mock repositories behind the manager
// interface. RunInTx runs the callback directly; the repositories are
// mocks, so no real transaction is needed.
type stubRepoManager struct {
	users         *MockUsers
	refreshTokens *MockRefreshTokens
	verifications *MockEmailVerifications
}

func newStubRepoManager() *stubRepoManager {
	return &stubRepoManager{
		users:         &MockUsers{},
		refreshTokens: &MockRefreshTokens{},
		verifications: &MockEmailVerifications{},
	}
}

func (s *stubRepoManager) Validate() error { return nil }

func (s *stubRepoManager) MustValidate() {}

func (s *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (s *stubRepoManager) Users() auth.Users { return s.users }

func (s *stubRepoManager) RefreshTokens() auth.RefreshTokens { return s.refreshTokens }

func (s *stubRepoManager) EmailVerifications() auth.EmailVerifications { return s.verifications }
