package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/backend/domain"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", "taskforge-test", time.Minute, time.Hour)

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	userID, err := issuer.Verify(access, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	userID, err = issuer.Verify(refresh, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	issuer := NewIssuer("test-secret", "taskforge-test", time.Minute, time.Hour)

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = issuer.Verify(access, KindRefresh)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", "taskforge-test", time.Millisecond, time.Hour)

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Verify(access, KindAccess)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("test-secret", "taskforge-test", time.Minute, time.Hour)
	other := NewIssuer("other-secret", "taskforge-test", time.Minute, time.Hour)

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = other.Verify(access, KindAccess)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	issuer := NewIssuer("test-secret", "taskforge-test", time.Minute, time.Hour)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(input, KindAccess)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "input %q", input)
	}
}

func TestHashRefresh(t *testing.T) {
	assert.Equal(t, HashRefresh("token"), HashRefresh("token"))
	assert.NotEqual(t, HashRefresh("token"), HashRefresh("other"))
	assert.NotContains(t, HashRefresh("token"), "token")
}
