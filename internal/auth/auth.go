package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ukydev/fleet-equipment/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// account is one entry of the fixed credential table.
type account struct {
	passwordHash string
	principal    models.Principal
}

// Credential is a username/password pair bound to a principal.
type Credential struct {
	Username  string
	Password  string
	Principal models.Principal
}

// DefaultCredentials is the built-in account table.
var DefaultCredentials = []Credential{
	{
		Username:  "adm",
		Password:  "adm123",
		Principal: models.Principal{Role: models.RoleAdmin, City: models.CityGlobal, Name: "General Administrator"},
	},
	{
		Username:  "super_tl",
		Password:  "123",
		Principal: models.Principal{Role: models.RoleSupervisor, City: "Three Lagoas", Name: "Supervisor TL"},
	},
	{
		Username:  "op_geral",
		Password:  "123",
		Principal: models.Principal{Role: models.RoleOperator, City: models.CityGlobal, Name: "Operator"},
	},
}

// Service handles authentication and session operations
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	accounts  map[string]account
	sessions  *SessionStore
	now       func() time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	Session *Session
}

// NewService creates an authentication service over the given credentials.
func NewService(secret string, tokenExp time.Duration, credentials []Credential) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}

	s := &Service{
		jwtSecret: []byte(secret),
		tokenExp:  tokenExp,
		accounts:  make(map[string]account, len(credentials)),
		sessions:  NewSessionStore(),
		now:       time.Now,
	}
	for _, c := range credentials {
		if !models.IsValidRole(c.Principal.Role) {
			return nil, fmt.Errorf("account %q: invalid role %q", c.Username, c.Principal.Role)
		}
		hash, err := s.HashPassword(c.Password)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", c.Username, err)
		}
		s.accounts[c.Username] = account{passwordHash: hash, principal: c.Principal}
	}
	return s, nil
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticate resolves a username/password pair to its principal.
func (s *Service) Authenticate(username, password string) (models.Principal, error) {
	acct, ok := s.accounts[username]
	if !ok || !s.CheckPassword(password, acct.passwordHash) {
		return models.Principal{}, ErrInvalidCredentials
	}
	return acct.principal, nil
}

// Login authenticates, opens a session and issues a token for it.
func (s *Service) Login(username, password string) (*LoginResult, error) {
	principal, err := s.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.sessions.PruneExpired(now)
	session := &Session{
		ID:        uuid.New().String(),
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenExp),
	}
	token, err := s.GenerateToken(session)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return &LoginResult{Token: token, Session: session}, nil
}

// Logout destroys a session. Tokens issued for it stop resolving.
func (s *Service) Logout(sessionID string) error {
	if !s.sessions.Delete(sessionID) {
		return ErrSessionNotFound
	}
	return nil
}

// Resolve validates a token and returns its live session.
func (s *Service) Resolve(tokenString string) (*Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	session, ok := s.sessions.Get(claims.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Sessions returns the live session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// GenerateToken generates a JWT token for a session
func (s *Service) GenerateToken(session *Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":  session.ID,
		"role": string(session.Principal.Role),
		"city": string(session.Principal.City),
		"name": session.Principal.Name,
		"exp":  session.ExpiresAt.Unix(),
		"iat":  session.CreatedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return nil, ErrInvalidToken
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	city, _ := claims["city"].(string)
	name, _ := claims["name"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SessionID: sessionID,
		Principal: models.Principal{Role: models.Role(roleStr), City: models.City(city), Name: name},
		Exp:       int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
