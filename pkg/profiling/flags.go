package profiling

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/logging"
)

// Flags holds the profiling flags of a command tree.
type Flags struct {
	cpuPath string
	memPath string
	timing  bool

	cpuFile *os.File
}

// Register adds --cpu-profile, --mem-profile and --timing to root and
// installs the hooks that act on them.
func Register(root *cobra.Command) *Flags {
	f := &Flags{}
	root.PersistentFlags().StringVar(&f.cpuPath, "cpu-profile", "", "Write CPU profile to file")
	root.PersistentFlags().StringVar(&f.memPath, "mem-profile", "", "Write memory profile to file")
	root.PersistentFlags().BoolVar(&f.timing, "timing", false, "Print per-stage timings on exit")
	root.PersistentPreRunE = f.Start
	root.PersistentPostRun = f.Finish
	return f
}

// Start begins CPU profiling and stage timing as requested.
func (f *Flags) Start(cmd *cobra.Command, args []string) error {
	if f.timing {
		Enable()
	}
	if f.cpuPath == "" {
		return nil
	}

	file, err := os.Create(f.cpuPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "create CPU profile").WithDetail("path", f.cpuPath)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "start CPU profile")
	}
	f.cpuFile = file
	return nil
}

// Finish writes the profiles and the timing report to the command's stderr.
func (f *Flags) Finish(cmd *cobra.Command, args []string) {
	logger := logging.NewLogger("profiling")
	w := cmd.ErrOrStderr()

	if f.cpuFile != nil {
		pprof.StopCPUProfile()
		f.cpuFile.Close()
		f.cpuFile = nil
		fmt.Fprintf(w, "CPU profile written to %s\n", f.cpuPath)
	}

	if f.memPath != "" {
		if err := writeHeapProfile(f.memPath); err != nil {
			logger.WithError(err).WithField("path", f.memPath).Warn("Could not write memory profile")
		} else {
			fmt.Fprintf(w, "Memory profile written to %s\n", f.memPath)
		}
	}

	if f.timing {
		Report(w)
	}
}

func writeHeapProfile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(file)
}
