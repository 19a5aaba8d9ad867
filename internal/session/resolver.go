package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/MusclesGloves/storefront/internal/domain"
	"github.com/MusclesGloves/storefront/internal/storage"
)

type State string

const (
	StateAnonymous     State = "ANONYMOUS"
	StatePending       State = "PENDING"
	StateAuthenticated State = "AUTHENTICATED"
	StateRejected      State = "REJECTED"
)

const (
	tokenKey = "token"
	userKey  = "user"
	rolesKey = "roles"
)

// IdentityClient revalidates a bearer token against the identity endpoint.
type IdentityClient interface {
	Me(ctx context.Context, token string) (domain.Identity, error)
}

// CartClearer lets logout optionally drop the cart without the resolver
// knowing anything else about it.
type CartClearer interface {
	Clear(ctx context.Context)
}

// Resolver owns the token/user/roles slots and keeps them consistent under
// asynchronous revalidation. user and roles are a cache of the last
// successful identity fetch for the current token, never set directly.
//
// Every revalidation is fenced by the token it was issued for; a response
// whose fence no longer matches the current token is discarded, so a stale
// fetch can never overwrite a newer login or logout.
type Resolver struct {
	mu    sync.Mutex
	state State
	token string
	user  *domain.User
	roles map[string]struct{}

	store             storage.Store
	identity          IdentityClient
	cart              CartClearer
	clearCartOnLogout bool
}

// NewResolver derives the initial state synchronously from the persisted
// token: empty means Anonymous with cleared slots, non-empty means Pending
// with the cached user/roles visible while revalidation runs.
func NewResolver(ctx context.Context, store storage.Store, identity IdentityClient, cart CartClearer, clearCartOnLogout bool) *Resolver {
	r := &Resolver{
		state:             StateAnonymous,
		roles:             make(map[string]struct{}),
		store:             store,
		identity:          identity,
		cart:              cart,
		clearCartOnLogout: clearCartOnLogout,
	}

	token, err := store.Get(ctx, tokenKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("session token load error: %v", err)
	}
	if token == "" {
		r.clearSlots(ctx)
		return r
	}

	r.token = token
	r.state = StatePending
	r.loadCachedIdentity(ctx)
	go r.revalidate(token)
	return r
}

// Login stores the freshly issued token and starts revalidation. An empty
// token is a logout.
func (r *Resolver) Login(ctx context.Context, token string) {
	if token == "" {
		r.Logout(ctx)
		return
	}

	r.mu.Lock()
	r.token = token
	r.state = StatePending
	if err := r.store.Set(ctx, tokenKey, token); err != nil {
		log.Printf("token persist error: %v", err)
	}
	r.mu.Unlock()

	go r.revalidate(token)
}

// Logout clears token, user and roles, in memory and persistence, and
// optionally the cart.
func (r *Resolver) Logout(ctx context.Context) {
	r.mu.Lock()
	r.clearSlots(ctx)
	r.state = StateAnonymous
	r.mu.Unlock()

	if r.clearCartOnLogout && r.cart != nil {
		r.cart.Clear(ctx)
	}
}

// HasRole accepts both the bare role name and its "ROLE_"-prefixed
// spelling; role strings arrive in either convention.
func (r *Resolver) HasRole(role string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role]; ok {
		return true
	}
	_, ok := r.roles["ROLE_"+role]
	return ok
}

func (r *Resolver) IsAdmin() bool { return r.HasRole("ADMIN") }

func (r *Resolver) IsUser() bool { return r.HasRole("USER") }

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resolver) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func (r *Resolver) User() *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.user == nil {
		return nil
	}
	u := *r.user
	return &u
}

func (r *Resolver) Roles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.roles))
	for role := range r.roles {
		out = append(out, role)
	}
	return out
}

// revalidate runs off the caller's goroutine. There is no cancellation
// beyond the fence check: a fetch for a superseded token resolves and is
// then thrown away.
func (r *Resolver) revalidate(token string) {
	ctx := context.Background()
	ident, err := r.identity.Me(ctx, token)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != token {
		// A newer login or logout won; this response is stale.
		return
	}

	if err != nil {
		// A token that no longer validates is untrusted: force logout.
		log.Printf("session revalidation failed, clearing session: %v", err)
		r.clearSlots(ctx)
		r.state = StateRejected
		return
	}

	r.state = StateAuthenticated
	user := domain.User{Username: ident.Username}
	r.user = &user
	r.roles = make(map[string]struct{}, len(ident.Roles))
	for _, role := range ident.Roles {
		r.roles[role] = struct{}{}
	}
	r.persistIdentity(ctx, user, ident.Roles)
}

// loadCachedIdentity shows the last persisted user/roles optimistically
// while a non-empty token awaits revalidation.
func (r *Resolver) loadCachedIdentity(ctx context.Context) {
	if blob, err := r.store.Get(ctx, userKey); err == nil {
		var user domain.User
		if err := storage.UnmarshalVersioned(blob, &user); err != nil {
			log.Printf("discarding unreadable cached user: %v", err)
		} else {
			r.user = &user
		}
	}

	if blob, err := r.store.Get(ctx, rolesKey); err == nil {
		var roles []string
		if err := storage.UnmarshalVersioned(blob, &roles); err != nil {
			log.Printf("discarding unreadable cached roles: %v", err)
			return
		}
		for _, role := range roles {
			r.roles[role] = struct{}{}
		}
	}
}

func (r *Resolver) persistIdentity(ctx context.Context, user domain.User, roles []string) {
	if blob, err := storage.MarshalVersioned(user); err == nil {
		if err := r.store.Set(ctx, userKey, blob); err != nil {
			log.Printf("user persist error: %v", err)
		}
	}
	if blob, err := storage.MarshalVersioned(roles); err == nil {
		if err := r.store.Set(ctx, rolesKey, blob); err != nil {
			log.Printf("roles persist error: %v", err)
		}
	}
}

// clearSlots resets token/user/roles in memory and persistence. Callers
// hold the lock (or own the resolver exclusively during construction).
func (r *Resolver) clearSlots(ctx context.Context) {
	r.token = ""
	r.user = nil
	r.roles = make(map[string]struct{})
	for _, key := range []string{tokenKey, userKey, rolesKey} {
		if err := r.store.Delete(ctx, key); err != nil {
			log.Printf("clear %s error: %v", key, err)
		}
	}
}
