package services

import (
	"context"
	"testing"

	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/pkg/logger"
	"orderdesk-api/internal/pkg/testdb"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newServices(t *testing.T) *Services {
	t.Helper()
	db := testdb.Open(t)
	svc := New(db, repositories.NewAccessTokenRepository(db), 0, logger.Discard())
	svc.Users.SetHashCost(bcrypt.MinCost)
	return svc
}

func createUser(t *testing.T, svc *Services, email, plain string) uint {
	t.Helper()
	u, err := svc.Users.Create(context.Background(), repositories.Payload{"email": email, "password": plain})
	require.NoError(t, err)
	return u.ID
}

func userWithID(id uint) *models.User {
	return &models.User{ID: id}
}
