package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/bookstore/pkg/config"
	"github.com/angelmondragon/bookstore/pkg/db/dbtest"
	"github.com/angelmondragon/bookstore/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	hasher := security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	svc, err := NewService(repo, hasher)
	require.NoError(t, err)
	return svc, repo
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, RegisterInput{Email: "  Reader@Example.COM ", Password: "s3cret!", FirstName: " Ada "})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", profile.Email)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, models.RoleUser, profile.Role)

	stored, err := repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "DUP@example.com", Password: "pw"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestRegisterRequiresEmailAndPassword(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "  "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Email: "login@example.com", Password: "correct horse"})
	require.NoError(t, err)

	profile, err := svc.Login(ctx, LoginInput{Email: "Login@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, profile.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "login@example.com", Password: "wrong"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct horse"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestExists(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, RegisterInput{Email: "exists@example.com", Password: "pw"})
	require.NoError(t, err)

	ok, err := repo.Exists(ctx, profile.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", DisplayName(&models.User{FirstName: "Ada", Email: "a@example.com"}))
	assert.Equal(t, "a@example.com", DisplayName(&models.User{FirstName: " ", Email: "a@example.com"}))
}
