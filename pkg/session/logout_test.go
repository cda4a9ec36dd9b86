package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/idler/pkg/inventory"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/pkg/paths"
	"github.com/grovetools/idler/pkg/tags"
	"github.com/grovetools/idler/state"
	"github.com/grovetools/idler/testutil"
)

func TestLogoutClearsEverything(t *testing.T) {
	testutil.TempHome(t)
	st := state.NewStore(paths.StateFilePath())
	snapshot := inventory.NewFileSession("logout-test")

	item := library.Item{AppID: 570, Name: "Dota 2"}
	ts := tags.NewStore(st)
	for _, c := range library.Categories {
		_, err := ts.Toggle(c, item)
		require.NoError(t, err)
	}
	require.NoError(t, st.Set(state.KeyPreferences, inventory.Preferences{SortStyle: "recent", ShowStats: true}))
	require.NoError(t, st.Set(state.KeySteamCookies, "sid=1; sls=2"))
	require.NoError(t, st.Set("unrelated", "kept"))
	require.NoError(t, snapshot.Save([]library.Item{item}))

	require.NoError(t, Logout(st, snapshot))

	for _, key := range state.AllKeys {
		_, ok, err := st.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s should be absent", key)
	}
	sets, err := ts.Sets()
	require.NoError(t, err)
	for _, c := range library.Categories {
		assert.Empty(t, sets.Get(c))
	}

	_, ok := snapshot.Load()
	assert.False(t, ok, "session snapshot should be gone")

	v, err := st.GetString("unrelated")
	require.NoError(t, err)
	assert.Equal(t, "kept", v)
}

func TestLogoutWithoutSnapshot(t *testing.T) {
	testutil.TempHome(t)
	st := state.NewStore(paths.StateFilePath())
	require.NoError(t, Logout(st, nil))
}
