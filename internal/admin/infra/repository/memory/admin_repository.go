package memory

import (
	"context"
	"sync"

	"github.com/rmontero/liveauction/internal/admin/domain"
)

// AdminRepository is a concurrency-safe in-memory implementation of
// domain.AdminRepository. Used by tests and by standalone mode.
type AdminRepository struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
}

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{
		admins: make(map[string]domain.Admin),
	}
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[admin.Username]; ok {
		return domain.ErrAdminExists
	}
	r.admins[admin.Username] = *admin
	return nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[username]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	out := admin
	return &out, nil
}
