package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/client/session"
	"github.com/eldercare/careconnect/internal/core/domain"
)

type countingStore struct {
	*session.Store
	loads int
}

func (s *countingStore) Load(ctx context.Context) (*session.Session, error) {
	s.loads++
	return s.Store.Load(ctx)
}

func newTiers() (*session.MemoryTier, *session.MemoryTier) {
	return session.NewMemoryTier(), session.NewMemoryTier()
}

var carol = domain.User{ID: "c1", Name: "Carol", Email: "carol@example.com", Role: domain.RoleCaregiver}

func TestContext_StartsLoadingAndInitsOnce(t *testing.T) {
	short, long := newTiers()
	store := &countingStore{Store: session.NewStore(short, long, zerolog.Nop())}
	ac := NewContext(store, zerolog.Nop())

	if ac.State() != StateLoading {
		t.Fatalf("expected loading, got %s", ac.State())
	}
	ac.Init(context.Background())
	ac.Init(context.Background())

	if store.loads != 1 {
		t.Fatalf("expected one load, got %d", store.loads)
	}
	if ac.State() != StateAnonymous || ac.IsAuthenticated() {
		t.Fatalf("expected anonymous, got %s", ac.State())
	}
}

func TestContext_RememberedLoginSurvivesReload(t *testing.T) {
	ctx := context.Background()
	short, long := newTiers()

	first := NewContext(session.NewStore(short, long, zerolog.Nop()), zerolog.Nop())
	first.Init(ctx)
	if err := first.Login(ctx, session.Session{User: carol, Token: "tok"}, true); err != nil {
		t.Fatalf("login: %v", err)
	}

	reloaded := NewContext(session.NewStore(short, long, zerolog.Nop()), zerolog.Nop())
	reloaded.Init(ctx)

	if !reloaded.IsAuthenticated() || !reloaded.RememberMe() {
		t.Fatalf("expected remembered identity after reload")
	}
	if reloaded.Token() != "tok" || reloaded.User().ID != "c1" {
		t.Fatalf("unexpected identity: %+v", reloaded.User())
	}
	if short.Len() != 0 || long.Len() != 1 {
		t.Fatalf("expected only the long-lived tier populated, short=%d long=%d", short.Len(), long.Len())
	}
}

func TestContext_LoginTwiceLeavesOneTier(t *testing.T) {
	ctx := context.Background()
	short, long := newTiers()
	ac := NewContext(session.NewStore(short, long, zerolog.Nop()), zerolog.Nop())
	ac.Init(ctx)

	_ = ac.Login(ctx, session.Session{User: carol}, false)
	_ = ac.Login(ctx, session.Session{User: carol}, true)

	if short.Len() != 0 || long.Len() != 1 {
		t.Fatalf("expected only the long-lived tier, short=%d long=%d", short.Len(), long.Len())
	}
}

func TestContext_Logout(t *testing.T) {
	ctx := context.Background()
	short, long := newTiers()
	ac := NewContext(session.NewStore(short, long, zerolog.Nop()), zerolog.Nop())
	ac.Init(ctx)
	_ = ac.Login(ctx, session.Session{User: carol}, true)

	if err := ac.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if ac.IsAuthenticated() || ac.User() != nil || ac.State() != StateAnonymous {
		t.Fatalf("expected anonymous after logout")
	}
	if short.Len() != 0 || long.Len() != 0 {
		t.Fatalf("expected both tiers empty")
	}
}

func TestContext_LoginRequiresUserID(t *testing.T) {
	short, long := newTiers()
	ac := NewContext(session.NewStore(short, long, zerolog.Nop()), zerolog.Nop())
	if err := ac.Login(context.Background(), session.Session{}, false); !errors.Is(err, session.ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
	if ac.State() != StateLoading {
		t.Fatalf("failed login must not settle the state")
	}
}

func TestContext_UserIsACopy(t *testing.T) {
	ctx := context.Background()
	short, long := newTiers()
	ac := NewContext(session.NewStore(short, long, zerolog.Nop()), zerolog.Nop())
	_ = ac.Login(ctx, session.Session{User: carol}, false)

	u := ac.User()
	u.Name = "Mallory"
	if ac.User().Name != "Carol" {
		t.Fatalf("cached user was mutated through the returned pointer")
	}
}
