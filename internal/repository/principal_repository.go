package repository

import (
	"context"

	"github.com/spec-kit/transit-auth-service/internal/domain"
)

// PrincipalRepository bundles the two principal lookups the token
// verifier needs behind one interface.
type PrincipalRepository struct {
	users  UserRepository
	admins AdminRepository
}

// NewPrincipalRepository combines the user and admin repositories.
func NewPrincipalRepository(users UserRepository, admins AdminRepository) *PrincipalRepository {
	return &PrincipalRepository{users: users, admins: admins}
}

// GetUserByID resolves a user subject.
func (r *PrincipalRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users.GetByID(ctx, id)
}

// GetAdminByID resolves an admin subject.
func (r *PrincipalRepository) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	return r.admins.GetByID(ctx, id)
}
