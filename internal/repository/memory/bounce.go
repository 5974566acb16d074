package memory

import (
	"context"
	"sync"

	"github.com/ignite/listflow/internal/domain"
)

// BounceRepo implements bounce.Repository with a mutex-guarded map keyed
// by list and member.
type BounceRepo struct {
	mu    sync.Mutex
	infos map[[2]string]*domain.BounceInfo
}

// NewBounceRepo creates an empty in-memory bounce info repository.
func NewBounceRepo() *BounceRepo {
	return &BounceRepo{infos: make(map[[2]string]*domain.BounceInfo)}
}

// Get returns the live BounceInfo for a member, nil when none exists.
func (r *BounceRepo) Get(_ context.Context, listID, member string) (*domain.BounceInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.infos[[2]string{listID, member}]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

// Put creates or replaces the member's BounceInfo.
func (r *BounceRepo) Put(_ context.Context, info *domain.BounceInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *info
	r.infos[[2]string{info.ListID, info.Member}] = &cp
	return nil
}

// Delete clears the member's BounceInfo; deleting an absent record is
// not an error.
func (r *BounceRepo) Delete(_ context.Context, listID, member string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.infos, [2]string{listID, member})
	return nil
}
