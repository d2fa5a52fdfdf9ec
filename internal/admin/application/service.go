package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmontero/liveauction/internal/admin/domain"
	"github.com/rmontero/liveauction/internal/shared/logger"
)

var log = logger.GetLogger()

// AdminService registers administrators and verifies their credentials.
// Every administrative mutation goes through Verify first.
type AdminService interface {
	Register(ctx context.Context, username, password string) error
	// Verify fails with domain.ErrInvalidCredentials on an unknown username
	// or a wrong password; the caller cannot tell the two apart.
	Verify(ctx context.Context, username, password string) error
}

type adminService struct {
	admins domain.AdminRepository
}

func NewAdminService(admins domain.AdminRepository) AdminService {
	return &adminService{admins: admins}
}

// Register hashes the password with bcrypt and stores the credential.
func (s *adminService) Register(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("admin service: failed to hash password: %w", err)
	}

	admin := &domain.Admin{
		Username:       username,
		HashedPassword: string(hash),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if !errors.Is(err, domain.ErrAdminExists) {
			log.Error("AdminService: failed to store admin",
				zap.String("username", username),
				zap.Error(err),
			)
		}
		return fmt.Errorf("admin service: failed to register %s: %w", username, err)
	}

	log.Info("Admin registered", zap.String("username", username))
	return nil
}

// Verify implements AdminService.
func (s *adminService) Verify(ctx context.Context, username, password string) error {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("admin service: failed to load admin %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte(password)); err != nil {
		log.Warn("Admin verification failed", zap.String("username", username))
		return domain.ErrInvalidCredentials
	}
	return nil
}
