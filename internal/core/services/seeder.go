package services

import (
	"context"
	"fmt"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/core/domain"

	"github.com/sirupsen/logrus"
)

// SeedData is the static content every deployment starts with
type SeedData struct {
	Roles         []string
	AdminEmail    string
	AdminPassword string
}

// Seeder handles database seeding
type Seeder struct {
	roles CRUDService[models.Role]
	users *UserService
	log   logrus.FieldLogger
}

// NewSeeder creates a new seeder instance
func NewSeeder(roles CRUDService[models.Role], users *UserService, log logrus.FieldLogger) *Seeder {
	return &Seeder{roles: roles, users: users, log: log}
}

// Run creates the missing roles and the admin account. Running it again
// changes nothing.
func (s *Seeder) Run(ctx context.Context, data SeedData) error {
	s.log.Info("🌱 Running database seeders...")

	for _, name := range data.Roles {
		if err := s.seedRole(ctx, name); err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}

	if data.AdminEmail == "" || data.AdminPassword == "" {
		s.log.Warn("⚠️ Admin seeder skipped: no admin credentials configured")
	} else if err := s.seedAdminUser(ctx, data.AdminEmail, data.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	s.log.Info("✅ Database seeding completed")
	return nil
}

func (s *Seeder) seedRole(ctx context.Context, name string) error {
	exists, err := s.roles.Exists(ctx, repositories.Payload{"name": name})
	if err != nil || exists {
		return err
	}
	if _, err := s.roles.Create(ctx, repositories.Payload{"name": name}); err != nil {
		return err
	}
	s.log.WithField("role", name).Info("✅ Role created")
	return nil
}

func (s *Seeder) seedAdminUser(ctx context.Context, email, plain string) error {
	// Check if admin already exists
	exists, err := s.users.Exists(ctx, repositories.Payload{"email": email})
	if err != nil || exists {
		return err
	}

	admins, err := s.roles.FetchAll(ctx, repositories.Filter{Where: repositories.Payload{"name": domain.RoleAdmin}})
	if err != nil {
		return err
	}
	roleIDs := make([]uint, 0, 1)
	for _, r := range admins {
		roleIDs = append(roleIDs, r.ID)
	}

	payload := repositories.Payload{
		"email":     email,
		"password":  plain,
		"firstName": "Admin",
	}
	payload[repositories.FieldRoleIDs] = roleIDs

	admin, err := s.users.Create(ctx, payload)
	if err != nil {
		return err
	}

	s.log.WithField("email", admin.Email).Info("✅ Admin user created")
	return nil
}
