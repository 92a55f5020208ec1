package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/enums"
	pkgerrors "github.com/harborline/shipline-backend/pkg/errors"
	"github.com/harborline/shipline-backend/pkg/migrate"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := db.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, migrate.AutoMigrateModels(conn))
	return NewRepository(conn)
}

func TestRepositoryCreateAndFind(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, CreateUserDTO{Identity: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.RoleUser, created.Role)

	byIdentity, err := r.FindByIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byIdentity.ID)

	byID, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Identity)

	_, err = r.FindByIdentity(ctx, "bob")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryDuplicateIdentity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, CreateUserDTO{Identity: "alice", PasswordHash: "hash", Role: enums.RoleAdmin})
	require.NoError(t, err)
	_, err = r.Create(ctx, CreateUserDTO{Identity: "alice", PasswordHash: "other"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDuplicateKey(err))
}

func TestRepositoryUpdateHashAndDelete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	user, err := r.Create(ctx, CreateUserDTO{Identity: "op-1", PasswordHash: "$2a$old"})
	require.NoError(t, err)
	require.NoError(t, r.UpdatePasswordHash(ctx, user.ID, "$argon2id$new"))

	reloaded, err := r.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$new", reloaded.PasswordHash)

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, r.DeleteByIdentity(ctx, "op-1"))
	_, err = r.FindByIdentity(ctx, "op-1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFromModelOmitsHash(t *testing.T) {
	assert.Nil(t, FromModel(nil))
	dto := CreateUserDTO{Identity: "x1", PasswordHash: "secret"}.ToModel()
	out := FromModel(dto)
	assert.Equal(t, "x1", out.Identity)
	assert.Equal(t, enums.RoleUser, out.Role)
}
