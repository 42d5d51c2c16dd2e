package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/pkg/domain"
	"libraryapi/pkg/store"
	"libraryapi/pkg/token"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	tokens, err := token.NewAuthority(token.Config{Secret: "test-secret"})
	require.NoError(t, err)
	a, err := New(Config{Store: store.NewMemoryStore(), Tokens: tokens})
	require.NoError(t, err)
	return a
}

func TestRegisterIssuesValidSession(t *testing.T) {
	a := newTestApp(t)

	session, err := a.Register("harper", "harper@example.com", "mockingbird")
	require.NoError(t, err)
	assert.Equal(t, "harper", session.Username)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	claims, err := a.Tokens().Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "harper", claims.Username)
	assert.Equal(t, "harper@example.com", claims.Email)
}

func TestRegisterRejectsDuplicateUsernameAndEmail(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Register("harper", "harper@example.com", "mockingbird")
	require.NoError(t, err)

	_, err = a.Register("harper", "other@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = a.Register("someone", "harper@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Register("", "e@example.com", "password1")
	assert.ErrorIs(t, err, ErrRegistrationFields)
	_, err = a.Register("u", "", "password1")
	assert.ErrorIs(t, err, ErrRegistrationFields)
	_, err = a.Register("u", "e@example.com", "")
	assert.ErrorIs(t, err, ErrRegistrationFields)
}

func TestLoginByUsernameAndByEmail(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Register("harper", "harper@example.com", "mockingbird")
	require.NoError(t, err)

	byName, err := a.Login("harper", "mockingbird")
	require.NoError(t, err)
	assert.Equal(t, "harper", byName.Username)

	byEmail, err := a.Login("harper@example.com", "mockingbird")
	require.NoError(t, err)
	assert.Equal(t, "harper", byEmail.Username)

	// each login mints a fresh token
	assert.NotEqual(t, byName.Token, byEmail.Token)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Register("harper", "harper@example.com", "mockingbird")
	require.NoError(t, err)

	_, wrongPassword := a.Login("harper", "not-the-password")
	_, unknownUser := a.Login("nobody", "mockingbird")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser)
}

func TestLoginIdentifierIsCaseSensitive(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Register("harper", "harper@example.com", "mockingbird")
	require.NoError(t, err)

	_, err = a.Login("Harper", "mockingbird")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterConflictWhenPreCheckRaceIsLost(t *testing.T) {
	// The store constraint, not the pre-check, is the final arbiter:
	// a duplicate insert that slips past HasUser must still conflict.
	tokens, err := token.NewAuthority(token.Config{Secret: "test-secret"})
	require.NoError(t, err)
	racing := &racingStore{MemoryStore: store.NewMemoryStore()}
	a, err := New(Config{Store: racing, Tokens: tokens})
	require.NoError(t, err)

	_, err = a.Register("harper", "harper@example.com", "mockingbird")
	assert.ErrorIs(t, err, ErrUserExists)
}

// racingStore simulates losing the check-then-insert race: the existence
// pre-check sees nothing, then a concurrent registration wins the insert.
type racingStore struct {
	*store.MemoryStore
}

func (r *racingStore) HasUser(username, email string) (bool, error) {
	return false, nil
}

func (r *racingStore) CreateUser(u domain.User) (domain.User, error) {
	return domain.User{}, store.ErrConflict
}
