package domain

import "context"

// Admin is a stored administrator credential: a username and the hash of
// its secret. The plaintext secret never leaves the application layer.
type Admin struct {
	Username       string
	HashedPassword string
}

// AdminRepository is the persistence port for admin credentials. No update
// or removal is exposed; registration is the only write.
type AdminRepository interface {
	Create(ctx context.Context, admin *Admin) error
	GetByUsername(ctx context.Context, username string) (*Admin, error)
}
