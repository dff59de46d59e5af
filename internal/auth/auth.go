package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoCredential covers both a missing credential and an ambiguous
	// one: exactly one of bearer token or guest flag per connection.
	ErrNoCredential = errors.New("missing or ambiguous credential")
)

// Identity is who occupies a seat. Guests are ephemeral: a fresh random id
// per connection, excluded from persistent stats.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Guest  bool
}

// GuestIdentity mints an anonymous identity with no durable profile behind it.
func GuestIdentity() Identity {
	return guestIdentity(uuid.New())
}

func guestIdentity(id uuid.UUID) Identity {
	return Identity{
		UserID: id,
		Name:   "Guest-" + strings.ToUpper(id.String()[:4]),
		Guest:  true,
	}
}

type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

func (s *Service) IssueToken(userID uuid.UUID, name string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"name": name,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

func (s *Service) ParseToken(raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = "Player"
	}
	return Identity{UserID: userID, Name: name}, nil
}

// FromRequest authenticates a connection attempt. Callers send exactly one of
// an Authorization bearer header or ?guest=1; anything else is refused.
func (s *Service) FromRequest(r *http.Request) (Identity, error) {
	bearer := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		bearer = strings.TrimPrefix(h, "Bearer ")
	}
	guest := r.URL.Query().Get("guest") == "1"

	switch {
	case bearer != "" && guest:
		return Identity{}, ErrNoCredential
	case bearer != "":
		return s.ParseToken(bearer)
	case guest:
		// A returning guest presents the session id it was handed so the
		// match resolves it to the seat it already holds after a drop.
		if raw := r.URL.Query().Get("guest_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return Identity{}, ErrInvalidToken
			}
			return guestIdentity(id), nil
		}
		return GuestIdentity(), nil
	default:
		return Identity{}, ErrNoCredential
	}
}
