package helper

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/idler/config"
	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/pkg/eventlog"
	"github.com/grovetools/idler/pkg/process"
	"github.com/grovetools/idler/testutil"
)

type fixture struct {
	home    string
	utility string
	exec    *testutil.RecordingExecutor
	helper  *Native
}

func newFixture(t *testing.T, substitute string, args ...string) *fixture {
	t.Helper()
	if _, err := exec.LookPath(substitute); err != nil {
		t.Skipf("%s not available", substitute)
	}

	home := testutil.TempHome(t)
	utility := testutil.WriteFile(t, home, "app/libs/SteamUtility", "#!/bin/sh\n")
	rec := &testutil.RecordingExecutor{Substitute: substitute, SubstituteArgs: args}

	h := NewNative(config.HelperConfig{SteamPidFile: filepath.Join(home, "steam.pid")},
		WithExecutor(rec),
		WithExecutable(func() (string, error) { return filepath.Join(home, "app", "idler"), nil }),
		WithClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
	return &fixture{home: home, utility: utility, exec: rec, helper: h}
}

func TestUtilityPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/opt", "idler", "libs", "SteamUtility"),
		UtilityPath("/opt/idler/idler", "libs/SteamUtility"))
	assert.Equal(t, "/usr/lib/SteamUtility", UtilityPath("/opt/idler/idler", "/usr/lib/SteamUtility"))
}

func TestCheckStatus(t *testing.T) {
	f := newFixture(t, "true")
	ctx := context.Background()

	running, err := f.helper.CheckStatus(ctx)
	require.NoError(t, err)
	assert.False(t, running, "no pid file means Steam is not running")

	require.NoError(t, process.WritePIDFile(filepath.Join(f.home, "steam.pid"), os.Getpid()))
	running, err = f.helper.CheckStatus(ctx)
	require.NoError(t, err)
	assert.True(t, running)
}

func TestFilePathAndUtility(t *testing.T) {
	f := newFixture(t, "true")
	host, err := f.helper.FilePath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.utility, UtilityPath(host, config.DefaultUtilityPath))
}

func TestStartStopIdle(t *testing.T) {
	f := newFixture(t, "sleep", "30")
	ctx := context.Background()

	require.NoError(t, f.helper.StartIdle(ctx, f.utility, "570", "true"))

	calls := f.exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, f.utility, calls[0].Name)
	assert.Equal(t, []string{"idle", "570", "true"}, calls[0].Args)

	running, pid, err := process.IsRunning(f.helper.idlePidFile("570"))
	require.NoError(t, err)
	assert.True(t, running)

	ids, err := f.helper.Idling()
	require.NoError(t, err)
	assert.Equal(t, []string{"570"}, ids)

	// A second start for the same app does not spawn another process
	err = f.helper.StartIdle(ctx, f.utility, "570", "true")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyIdling))
	assert.Len(t, f.exec.Calls(), 1)

	require.NoError(t, f.helper.StopIdle(ctx, "570"))
	assert.Eventually(t, func() bool { return !process.IsProcessAlive(pid) }, 5*time.Second, 20*time.Millisecond)
	_, err = os.Stat(f.helper.idlePidFile("570"))
	assert.True(t, os.IsNotExist(err))

	// Stopping again is harmless
	require.NoError(t, f.helper.StopIdle(ctx, "570"))
}

func TestStartIdleValidation(t *testing.T) {
	f := newFixture(t, "true")
	ctx := context.Background()

	err := f.helper.StartIdle(ctx, f.utility, "57a", "false")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	err = f.helper.StartIdle(ctx, f.utility, "570", "maybe")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	err = f.helper.StartIdle(ctx, filepath.Join(f.home, "missing"), "570", "false")
	assert.True(t, errors.Is(err, errors.ErrCodeHelperNotFound))

	assert.Empty(t, f.exec.Calls())
}

func TestUnlockAchievement(t *testing.T) {
	f := newFixture(t, "true")

	require.NoError(t, f.helper.UnlockAchievement(context.Background(), f.utility, "480", "ACH_WIN_ONE_GAME", "false"))
	calls := f.exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"unlock", "480", "ACH_WIN_ONE_GAME", "false"}, calls[0].Args)
}

func TestUnlockAchievementFailure(t *testing.T) {
	f := newFixture(t, "false")

	err := f.helper.UnlockAchievement(context.Background(), f.utility, "480", "ACH_WIN_ONE_GAME", "true")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeHelperFailed))

	var idlerErr *errors.IdlerError
	require.ErrorAs(t, err, &idlerErr)
	assert.Equal(t, 1, idlerErr.Details["exitCode"])
}

func TestLogEvent(t *testing.T) {
	f := newFixture(t, "true")
	ctx := context.Background()

	require.NoError(t, f.helper.LogEvent(ctx, "Started idling Dota 2"))

	dir, err := f.helper.AppLogDir(ctx)
	require.NoError(t, err)
	entries, err := eventlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-02 03:04:05", entries[0].Timestamp)
	assert.Equal(t, "Started idling Dota 2", entries[0].Message)
}

func TestIdlePidFileMatchesPaths(t *testing.T) {
	f := newFixture(t, "true")
	assert.Equal(t, filepath.Join(f.home, "state", "idle", strconv.Itoa(570)+".pid"), f.helper.idlePidFile("570"))
}
