package request

import (
	"context"
	"sync"

	"github.com/eldercare/careconnect/internal/client/poll"
	"github.com/eldercare/careconnect/internal/core/domain"
)

// PendingLister fetches the pending set from the backend.
type PendingLister interface {
	ListPending(ctx context.Context) ([]domain.ServiceRequest, error)
}

// PendingView is the caregiver's local snapshot of pending requests.
//
// Every Remove advances a generation counter. A snapshot fetched from the
// generation returned by Begin is installed with ReplaceFrom, which leaves
// out ids removed after the fetch started: the server may have answered
// before it saw the decision.
type PendingView struct {
	mu      sync.RWMutex
	items   []domain.ServiceRequest
	gen     uint64
	removed map[string]uint64
}

func NewPendingView() *PendingView {
	return &PendingView{removed: make(map[string]uint64)}
}

// Replace swaps in a whole new snapshot unconditionally.
func (v *PendingView) Replace(items []domain.ServiceRequest) {
	snapshot := make([]domain.ServiceRequest, len(items))
	copy(snapshot, items)

	v.mu.Lock()
	v.items = snapshot
	clear(v.removed)
	v.mu.Unlock()
}

// Begin returns the current generation. Call it before fetching a snapshot.
func (v *PendingView) Begin() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.gen
}

// ReplaceFrom installs a snapshot whose fetch started at generation since.
func (v *PendingView) ReplaceFrom(since uint64, items []domain.ServiceRequest) {
	v.mu.Lock()
	defer v.mu.Unlock()

	snapshot := make([]domain.ServiceRequest, 0, len(items))
	for _, item := range items {
		if at, ok := v.removed[item.ID]; ok && at > since {
			continue
		}
		snapshot = append(snapshot, item)
	}
	v.items = snapshot

	// Removals older than this fetch are already reflected by the server.
	for id, at := range v.removed {
		if at <= since {
			delete(v.removed, id)
		}
	}
}

// Remove drops the request with id and reports whether it was present.
// The removal is recorded either way so an in-flight fetch cannot bring
// the request back.
func (v *PendingView) Remove(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.removed[id] = v.gen
	for i := range v.items {
		if v.items[i].ID == id {
			v.items = append(v.items[:i:i], v.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the snapshot.
func (v *PendingView) List() []domain.ServiceRequest {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.ServiceRequest, len(v.items))
	copy(out, v.items)
	return out
}

func (v *PendingView) Contains(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for i := range v.items {
		if v.items[i].ID == id {
			return true
		}
	}
	return false
}

// Refresher returns a poll function that replaces the view with the latest
// pending set. A failed fetch leaves the view untouched.
func Refresher(api PendingLister, view *PendingView) poll.FetchFunc {
	return func(ctx context.Context) error {
		since := view.Begin()
		items, err := api.ListPending(ctx)
		if err != nil {
			return err
		}
		view.ReplaceFrom(since, items)
		return nil
	}
}
