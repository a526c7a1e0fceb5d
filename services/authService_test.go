package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Njagi/sokoni-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Cart{}, &models.CartItem{}))
	return db
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "Ann", result.User.Name)
	assert.Equal(t, "ann@x.com", result.User.Email)
	assert.NotZero(t, result.User.ID)

	user, err := svc.ResolveToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
	assert.Empty(t, user.Password)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t)

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "ann@x.com"}},
		{"missing email", RegisterInput{Name: "Ann"}},
		{"malformed email", RegisterInput{Name: "Ann", Email: "not-an-email"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.input)
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, KindValidation, svcErr.Kind)
		})
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	// Case-insensitive match on the stored, lowercased email.
	_, err = svc.Register(RegisterInput{Name: "Ann Again", Email: "ANN@X.com"})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindConflict, svcErr.Kind)
}

func TestRegisterDerivesUniqueUsernames(t *testing.T) {
	svc := newTestAuthService(t)

	first, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	second, err := svc.Register(RegisterInput{Name: "Other Ann", Email: "ann@y.com"})
	require.NoError(t, err)

	var users []models.User
	require.NoError(t, svc.db.Find(&users).Error)
	require.Len(t, users, 2)
	assert.NotEqual(t, users[0].Username, users[1].Username)
	assert.NotEqual(t, first.User.ID, second.User.ID)
}

func TestLoginReusesValidToken(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	for range 3 {
		result, err := svc.Login("ann@x.com", "")
		require.NoError(t, err)
		assert.Equal(t, registered.Token, result.Token)
	}
}

func TestLoginReplacesExpiredToken(t *testing.T) {
	db := newTestDB(t)
	expired := NewAuthService(db, AuthConfig{JWTSecret: "test-secret", TokenTTL: -time.Hour})
	svc := NewAuthService(db, AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})

	registered, err := expired.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	result, err := svc.Login("ann@x.com", "")
	require.NoError(t, err)
	assert.NotEqual(t, registered.Token, result.Token)

	_, err = svc.ResolveToken(registered.Token)
	assert.Error(t, err)
	_, err = svc.ResolveToken(result.Token)
	assert.NoError(t, err)
}

func TestLoginReplacesCorruptedToken(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	err = svc.db.Model(&models.User{}).
		Where("id = ?", registered.User.ID).
		Update("session_token", "not.a.jwt").Error
	require.NoError(t, err)

	result, err := svc.Login("ann@x.com", "")
	require.NoError(t, err)
	assert.NotEqual(t, "not.a.jwt", result.Token)

	_, err = svc.ResolveToken(result.Token)
	assert.NoError(t, err)
}

func TestLoginPasswordChecks(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "sup3r-secret"})
	require.NoError(t, err)

	_, err = svc.Login("ann@x.com", "wrong")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindAuth, svcErr.Kind)

	_, err = svc.Login("ann@x.com", "")
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindAuth, svcErr.Kind)

	result, err := svc.Login("ann@x.com", "sup3r-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Login("nobody@x.com", "")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
}

func TestCheckTokenUnknownEmailFailsSoftly(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.CheckToken("nobody@x.com")
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.Empty(t, result.Token)
}

func TestCheckTokenReconciles(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	result, err := svc.CheckToken("ann@x.com")
	require.NoError(t, err)
	assert.True(t, result.Exists)
	assert.Equal(t, registered.Token, result.Token)
	assert.Equal(t, registered.User, result.User)
}

func TestLogoutRevokesOutstandingTokens(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = svc.ResolveToken(registered.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(registered.User.ID))

	// The old token is unexpired but carries a stale version.
	_, err = svc.ResolveToken(registered.Token)
	assert.Error(t, err)

	result, err := svc.Login("ann@x.com", "")
	require.NoError(t, err)
	assert.NotEqual(t, registered.Token, result.Token)
	_, err = svc.ResolveToken(result.Token)
	assert.NoError(t, err)
}

func TestResolveTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t)

	for _, token := range []string{"", "not.a.jwt", "a.b.c"} {
		_, err := svc.ResolveToken(token)
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindAuth, svcErr.Kind)
	}
}

func TestResolveTokenRejectsDeactivatedAccount(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	err = svc.db.Model(&models.User{}).
		Where("id = ?", registered.User.ID).
		Update("is_active", false).Error
	require.NoError(t, err)

	_, err = svc.ResolveToken(registered.Token)
	assert.Error(t, err)

	_, err = svc.Login("ann@x.com", "")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindAuth, svcErr.Kind)
}

func TestProfile(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	profile, err := svc.Profile(registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.User, *profile)

	_, err = svc.Profile(9999)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
}

func TestPasswordResetFlow(t *testing.T) {
	svc := newTestAuthService(t)

	registered, err := svc.Register(RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "old-password"})
	require.NoError(t, err)

	profile, code, err := svc.ForgotPassword("ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, registered.User.Email, profile.Email)
	require.NotEmpty(t, code)

	require.NoError(t, svc.ResetPassword(code, "new-password"))

	// Old sessions are revoked and the old password no longer works.
	_, err = svc.ResolveToken(registered.Token)
	assert.Error(t, err)
	_, err = svc.Login("ann@x.com", "old-password")
	assert.Error(t, err)

	result, err := svc.Login("ann@x.com", "new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// The code is single-use.
	err = svc.ResetPassword(code, "another-password")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
}
