package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealforge/internal/services"
)

func TestAdminAuth(t *testing.T) {
	hash, err := services.HashToken("s3cret")
	require.NoError(t, err)

	a := &services.AdminAuth{Hash: hash}
	assert.True(t, a.Enabled())
	assert.NoError(t, a.Check("s3cret"))
	assert.ErrorIs(t, a.Check("wrong"), services.ErrBadToken)
	assert.ErrorIs(t, a.Check(""), services.ErrBadToken)

	var off *services.AdminAuth
	assert.ErrorIs(t, off.Check("s3cret"), services.ErrAdminDisabled)
	assert.ErrorIs(t, (&services.AdminAuth{}).Check("s3cret"), services.ErrAdminDisabled)

	_, err = services.HashToken("")
	assert.Error(t, err)
}
