package profiling

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/idler/testutil"
)

func TestDisabledRecorderIsSilent(t *testing.T) {
	r := &Recorder{}
	stop := r.Stage("inventory")
	stop()

	var buf bytes.Buffer
	r.Report(&buf)
	assert.Empty(t, buf.String())
}

func TestStagesNest(t *testing.T) {
	r := &Recorder{}
	r.Enable()

	outer := r.Stage("list")
	inner := r.Stage("inventory")
	inner()
	derive := r.Stage("derive")
	derive()
	outer()
	outer() // closing twice is harmless

	var buf bytes.Buffer
	r.Report(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "- list ("), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  - inventory ("), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "  - derive ("), lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "total "), lines[4])
}

func TestRegisterWritesProfiles(t *testing.T) {
	dir := testutil.TempHome(t)
	t.Cleanup(Reset)

	root := &cobra.Command{Use: "idler"}
	Register(root)
	root.AddCommand(&cobra.Command{
		Use: "work",
		Run: func(cmd *cobra.Command, args []string) {
			defer Stage("work")()
		},
	})

	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")
	var errOut bytes.Buffer
	root.SetErr(&errOut)
	root.SetArgs([]string{"work", "--cpu-profile", cpu, "--mem-profile", mem, "--timing"})
	require.NoError(t, root.Execute())

	for _, p := range []string{cpu, mem} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
	assert.Contains(t, errOut.String(), "- work (")
}
