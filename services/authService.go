package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Njagi/sokoni-api/models"
	"github.com/Njagi/sokoni-api/utils"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Sessions are long-lived; clients hold a single token per user and the
// login/check-token paths re-issue lazily when it stops verifying.
const defaultTokenTTL = 365 * 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	msgNameRequired       = "name is required"
	msgEmailRequired      = "a valid email is required"
	msgEmailTaken         = "user with this email already exists"
	msgUserNotFound       = "user with this email does not exist"
	msgInvalidCredentials = "invalid email or password"
	msgAccountDeactivated = "account is deactivated"
	msgInvalidToken       = "invalid or expired token"
	msgInvalidResetLink   = "invalid or expired reset link"
)

// AuthConfig carries the signing material and expiry policy. It is built
// once in main and injected, the service never reads the environment.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type AuthService struct {
	db     *gorm.DB
	config AuthConfig
}

func NewAuthService(db *gorm.DB, config AuthConfig) *AuthService {
	if config.TokenTTL == 0 {
		config.TokenTTL = defaultTokenTTL
	}
	return &AuthService{db: db, config: config}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

type AuthResult struct {
	Token string
	User  models.UserProfile
}

type CheckTokenResult struct {
	Exists bool
	Token  string
	User   models.UserProfile
}

type sessionClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

// Register creates the user, issues a session token and persists it on the
// record. The password is optional; when present the model hook hashes it.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationError(msgNameRequired)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		return nil, validationError(msgEmailRequired)
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictError(msgEmailTaken)
	}

	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Username: s.deriveUsername(email),
		Email:    email,
		Phone:    input.Phone,
		Address:  input.Address,
		Password: input.Password,
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.signAndStore(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// Login reconciles the stored session token for the given email: reuse it
// while it verifies, replace it otherwise. Accounts that registered with a
// password must present it; password-less accounts authenticate by email
// alone.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return nil, validationError(msgEmailRequired)
	}

	user, err := s.findByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, authError(msgAccountDeactivated)
	}
	if user.Password != "" && !user.CheckPassword(password) {
		return nil, authError(msgInvalidCredentials)
	}

	token, err := s.reconcileToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user.Profile()}, nil
}

// CheckToken runs the same reconciliation as Login but fails softly when
// the email is unknown. It exists for clients that only hold an email.
func (s *AuthService) CheckToken(email string) (*CheckTokenResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return nil, validationError(msgEmailRequired)
	}

	user, err := s.findByEmail(normalized)
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) && svcErr.Kind == KindNotFound {
			return &CheckTokenResult{Exists: false}, nil
		}
		return nil, err
	}

	token, err := s.reconcileToken(user)
	if err != nil {
		return nil, err
	}

	return &CheckTokenResult{Exists: true, Token: token, User: user.Profile()}, nil
}

// Profile returns the projection for an already-authenticated user id.
func (s *AuthService) Profile(userID uint) (*models.UserProfile, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(msgUserNotFound)
		}
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// Logout revokes every outstanding token for the user by bumping the token
// version and dropping the stored token.
func (s *AuthService) Logout(userID uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"session_token": "",
			"token_version": gorm.Expr("token_version + 1"),
		}).Error
}

// ResolveToken verifies a bearer token and loads the user it belongs to,
// with the password field cleared. Signature mismatch, expiry and malformed
// input are rejected identically, as are tokens issued before the user's
// last logout.
func (s *AuthService) ResolveToken(tokenString string) (*models.User, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, authError(msgInvalidToken)
	}

	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authError(msgInvalidToken)
		}
		return nil, err
	}
	if claims.TokenVersion != user.TokenVersion {
		return nil, authError(msgInvalidToken)
	}
	if !user.IsActive {
		return nil, authError(msgAccountDeactivated)
	}

	user.Password = ""
	return &user, nil
}

// ForgotPassword stores a reset code on the user and returns it together
// with the profile so the caller can send the email.
func (s *AuthService) ForgotPassword(email string) (*models.UserProfile, string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return nil, "", validationError(msgEmailRequired)
	}

	user, err := s.findByEmail(normalized)
	if err != nil {
		return nil, "", err
	}

	code, err := utils.GenerateCode(32)
	if err != nil {
		return nil, "", err
	}
	if err := s.db.Model(user).Update("password_reset_token", code).Error; err != nil {
		return nil, "", err
	}

	profile := user.Profile()
	return &profile, code, nil
}

// ResetPassword consumes a reset code, stores the new password and revokes
// existing sessions.
func (s *AuthService) ResetPassword(resetToken, password string) error {
	if resetToken == "" {
		return validationError(msgInvalidResetLink)
	}

	var user models.User
	err := s.db.Where("password_reset_token = ?", resetToken).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError(msgInvalidResetLink)
		}
		return err
	}

	user.Password = password
	user.PasswordResetToken = ""
	user.SessionToken = ""
	user.TokenVersion++
	return s.db.Save(&user).Error
}

func (s *AuthService) findByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(msgUserNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// reconcileToken returns the stored session token while it still verifies
// and issues a persisted replacement otherwise, so repeated logins hand the
// same token back until it expires or is tampered with.
func (s *AuthService) reconcileToken(user *models.User) (string, error) {
	if user.SessionToken != "" {
		if _, err := s.parseToken(user.SessionToken); err == nil {
			return user.SessionToken, nil
		}
	}
	return s.signAndStore(user)
}

func (s *AuthService) signAndStore(user *models.User) (string, error) {
	token, err := s.signToken(user)
	if err != nil {
		return "", err
	}
	if err := s.db.Model(user).Update("session_token", token).Error; err != nil {
		return "", err
	}
	user.SessionToken = token
	return token, nil
}

func (s *AuthService) signToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) parseToken(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// deriveUsername builds a username from the email local part, suffixing a
// short random code while the candidate is taken.
func (s *AuthService) deriveUsername(email string) string {
	base := strings.SplitN(email, "@", 2)[0]
	candidate := base
	for range 5 {
		var count int64
		if err := s.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		code, err := utils.GenerateCode(4)
		if err != nil {
			break
		}
		candidate = base + "-" + code
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano())
}
