package page

import (
	"context"
	"testing"
	"time"

	"github.com/banjito/ampcalibration/internal/auth"
	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ auth.ProviderSource = (*Context)(nil)
var _ auth.RoleCache = Roles{}

func TestContextClient(t *testing.T) {
	handle := provider.NewHandle()
	factory := NewFactory(handle, session.NewMock(), local.NewMock())
	page := factory.New("browser")
	defer page.Teardown()

	_, ok := page.Client()
	assert.False(t, ok)
	_, ok = page.Browser()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := page.AwaitClient(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	handle.Resolve(provider.NewClient(zap.NewNop(), provider.Config{
		URL:     "https://edcrednhbzpovwxriluc.supabase.co",
		AnonKey: "key",
	}))

	p, ok := page.Client()
	assert.True(t, ok)
	assert.NotNil(t, p)

	p, err = page.AwaitClient(context.Background())
	require.Nil(t, err)
	assert.NotNil(t, p)
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	storage := local.NewMock()
	factory := NewFactory(provider.NewHandle(), session.NewMock(), storage)

	alpha := factory.New("alpha")
	beta := factory.New("beta")

	require.Nil(t, alpha.Roles().Set(ctx, session.RoleTechnician))
	require.Nil(t, alpha.Roles().Set(ctx, session.RoleAdmin))

	role, ok, err := alpha.Roles().Get(ctx)
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, session.RoleAdmin, role)

	value, ok, err := storage.Storage("alpha").GetItem(ctx, RoleKey)
	require.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "admin", value)

	_, ok, err = beta.Roles().Get(ctx)
	require.Nil(t, err)
	assert.False(t, ok)

	require.Nil(t, alpha.Roles().Clear(ctx))
	_, ok, err = alpha.Roles().Get(ctx)
	require.Nil(t, err)
	assert.False(t, ok)
}

func TestTeardown(t *testing.T) {
	page := NewFactory(provider.NewHandle(), session.NewMock(), local.NewMock()).New("browser")

	var order []int
	page.OnTeardown(func() { order = append(order, 1) })
	page.OnTeardown(func() { order = append(order, 2) })

	page.Teardown()
	page.Teardown()
	assert.Equal(t, []int{2, 1}, order)

	page.OnTeardown(func() { order = append(order, 3) })
	assert.Equal(t, []int{2, 1, 3}, order)
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	page := NewFactory(provider.NewHandle(), session.NewMock(), local.NewMock()).New("browser")
	ctx := WithContext(context.Background(), page)
	assert.Same(t, page, FromContext(ctx))
}
