package settings

import (
	"context"
	"path/filepath"
	"testing"

	"pointsbot/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationChannel(t *testing.T) {
	store, err := filestore.Open(filepath.Join(t.TempDir(), "points.json"), nil)
	require.NoError(t, err)
	f := &Feature{uowFactory: store}
	ctx := context.Background()

	channel, err := f.currentChannel(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, channel)

	id := int64(987654321)
	require.NoError(t, f.updateChannel(ctx, 1, &id))

	channel, err = f.currentChannel(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, id, *channel)

	// Other guilds are unaffected
	other, err := f.currentChannel(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, f.updateChannel(ctx, 1, nil))
	channel, err = f.currentChannel(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, channel)
}
