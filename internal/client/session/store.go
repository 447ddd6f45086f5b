// Package session persists the signed-in identity across two storage tiers:
// a short-lived one that ends with the current session and a long-lived one
// used when the user asked to be remembered.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/eldercare/careconnect/internal/core/domain"
)

// RecordKey is the fixed key the identity record lives under in either tier.
const RecordKey = "eldercare_user"

// ErrNoUser is returned by Save when the session carries no user id.
var ErrNoUser = errors.New("session has no user")

// Tier is one storage lifetime.
type Tier interface {
	// Get returns the stored value and whether one was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is the restored identity. Token is empty for records written
// before login returned one.
type Session struct {
	User       domain.User
	Token      string
	RememberMe bool
}

// record is the persisted form: {"user": {...}, "token": "..."}.
type record struct {
	User  domain.User `json:"user"`
	Token string      `json:"token,omitempty"`
}

// Store mediates all access to the two tiers. At most one tier holds a
// record after any Save or Clear.
type Store struct {
	short Tier
	long  Tier
	log   zerolog.Logger
}

func NewStore(short, long Tier, log zerolog.Logger) *Store {
	return &Store{short: short, long: long, log: log}
}

// Load returns the persisted session, reading the long-lived tier first.
// A malformed record wipes both tiers and yields (nil, nil). A tier that
// cannot be read is logged and treated as empty.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	for _, t := range []struct {
		tier     Tier
		remember bool
	}{{s.long, true}, {s.short, false}} {
		raw, ok, err := t.tier.Get(ctx, RecordKey)
		if err != nil {
			s.log.Warn().Err(err).Bool("remember", t.remember).Msg("session tier unreadable")
			continue
		}
		if !ok {
			continue
		}

		rec, err := decode(raw)
		if err != nil {
			s.log.Warn().Err(err).Bool("remember", t.remember).Msg("discarding corrupt session record")
			if err := s.Clear(ctx); err != nil {
				s.log.Error().Err(err).Msg("failed to wipe corrupt session")
			}
			return nil, nil
		}
		return &Session{User: rec.User, Token: rec.Token, RememberMe: t.remember}, nil
	}
	return nil, nil
}

// Save writes sess to the long-lived tier when remember is set, otherwise to
// the short-lived one, and removes any record from the other tier.
func (s *Store) Save(ctx context.Context, sess Session, remember bool) error {
	if sess.User.ID == "" {
		return ErrNoUser
	}
	raw, err := json.Marshal(record{User: sess.User, Token: sess.Token})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	target, other := s.short, s.long
	if remember {
		target, other = s.long, s.short
	}
	if err := target.Set(ctx, RecordKey, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := other.Delete(ctx, RecordKey); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the record from both tiers.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.long.Delete(ctx, RecordKey),
		s.short.Delete(ctx, RecordKey),
	)
}

func decode(raw string) (*record, error) {
	if !gjson.Valid(raw) {
		return nil, errors.New("record is not valid JSON")
	}
	if id := gjson.Get(raw, "user.id"); id.Type != gjson.String || id.Str == "" {
		return nil, errors.New("record has no user id")
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
