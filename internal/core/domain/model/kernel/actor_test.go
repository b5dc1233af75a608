package kernel_test

import (
	"testing"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := kernel.ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, kernel.RoleAdmin, role)

	_, err = kernel.ParseRole("driver")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewActor(t *testing.T) {
	t.Run("valid actor", func(t *testing.T) {
		id := kernel.NewUUID()
		actor, err := kernel.NewActor(id, kernel.RoleCourier)

		require.NoError(t, err)
		assert.True(t, actor.UserID().IsEqual(id))
		assert.Equal(t, kernel.RoleCourier, actor.Role())
		assert.False(t, actor.IsAdmin())
		require.NoError(t, actor.Validate())
	})

	t.Run("rejects zero id", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.RoleAdmin)
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.NewUUID(), kernel.Role("root"))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestActor_RequireAdmin(t *testing.T) {
	admin, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin)
	courier, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleCourier)

	require.NoError(t, admin.RequireAdmin("cancel"))

	err := courier.RequireAdmin("cancel")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Contains(t, err.Error(), "role courier cannot cancel")

	err = kernel.Actor{}.RequireAdmin("cancel")
	require.ErrorIs(t, err, errs.ErrUnauthenticated)
}
