package helper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/idler/command"
	"github.com/grovetools/idler/config"
	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/pkg/eventlog"
	"github.com/grovetools/idler/pkg/paths"
	"github.com/grovetools/idler/pkg/process"
)

// Native runs the helper utility as a child process. Each idled app gets a
// detached utility process tracked by a PID file under the idle directory.
type Native struct {
	builder      *command.SafeBuilder
	steamPidFile string
	logDir       string
	idleDir      string
	executable   func() (string, error)
	now          func() time.Time
	logger       *logrus.Entry
}

// Option customizes a Native helper.
type Option func(*Native)

// WithExecutor replaces the process executor.
func WithExecutor(exec command.Executor) Option {
	return func(n *Native) { n.builder = command.NewSafeBuilderWithExecutor(exec) }
}

// WithExecutable overrides how the host executable path is found.
func WithExecutable(fn func() (string, error)) Option {
	return func(n *Native) { n.executable = fn }
}

// WithClock overrides the event log timestamp source.
func WithClock(now func() time.Time) Option {
	return func(n *Native) { n.now = now }
}

// NewNative returns a helper configured from the helper config section.
func NewNative(cfg config.HelperConfig, opts ...Option) *Native {
	pidFile := cfg.SteamPidFile
	if pidFile == "" {
		pidFile = config.DefaultSteamPidFile
	}

	n := &Native{
		builder:      command.NewSafeBuilder(),
		steamPidFile: config.ExpandPath(pidFile),
		logDir:       paths.LogDir(),
		idleDir:      paths.IdleDir(),
		executable:   os.Executable,
		now:          time.Now,
		logger:       logging.NewLogger("helper"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Native) CheckStatus(ctx context.Context) (bool, error) {
	running, pid, err := process.IsRunning(n.steamPidFile)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodePreconditionFailed, "read Steam pid file").
			WithDetail("path", n.steamPidFile)
	}
	n.logger.WithFields(logrus.Fields{"running": running, "pid": pid}).Debug("Checked Steam status")
	return running, nil
}

func (n *Native) FilePath(ctx context.Context) (string, error) {
	p, err := n.executable()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "locate executable")
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p, nil
}

func (n *Native) AppLogDir(ctx context.Context) (string, error) {
	return n.logDir, nil
}

func (n *Native) validate(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := n.builder.Validate(pairs[i], pairs[i+1]); err != nil {
			return errors.InvalidInput(pairs[i], err.Error())
		}
	}
	return nil
}

func requireUtility(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return errors.HelperNotFound(filePath)
	}
	return nil
}

func (n *Native) idlePidFile(appID string) string {
	return filepath.Join(n.idleDir, appID+".pid")
}

// StartIdle launches "<utility> idle <appID> <quiet>" in the background. An
// app that is already being idled is left alone and ErrCodeAlreadyIdling is
// returned.
func (n *Native) StartIdle(ctx context.Context, filePath, appID, quiet string) error {
	if err := n.validate(command.ArgFilePath, filePath, command.ArgAppID, appID, command.ArgFlag, quiet); err != nil {
		return err
	}
	if err := requireUtility(filePath); err != nil {
		return err
	}

	pidFile := n.idlePidFile(appID)
	if running, pid, _ := process.IsRunning(pidFile); running {
		n.logger.WithFields(logrus.Fields{"app_id": appID, "pid": pid}).Debug("Already idling")
		return errors.AlreadyIdling(appID, pid)
	}

	cmd, err := n.builder.Build(ctx, filePath, "idle", appID, quiet)
	if err != nil {
		return errors.HelperFailed("start_idle", err)
	}
	proc, err := cmd.Start()
	if err != nil {
		return errors.HelperFailed("start_idle", err)
	}

	pid := proc.Process.Pid
	// Reap the child when it exits so the PID stops reporting as alive
	go func() { _ = proc.Wait() }()

	if err := process.WritePIDFile(pidFile, pid); err != nil {
		_ = process.Terminate(pid)
		return errors.Wrap(err, errors.ErrCodeStateIO, "record idle process")
	}

	n.logger.WithFields(logrus.Fields{"app_id": appID, "pid": pid, "quiet": quiet}).Info("Idle process started")
	return nil
}

// StopIdle terminates the idle process for appID. Nothing running is not an error.
func (n *Native) StopIdle(ctx context.Context, appID string) error {
	if err := n.validate(command.ArgAppID, appID); err != nil {
		return err
	}

	pidFile := n.idlePidFile(appID)
	running, pid, err := process.IsRunning(pidFile)
	if err != nil {
		n.logger.WithError(err).WithField("app_id", appID).Warn("Discarding unreadable idle pid file")
	}
	if running {
		if err := process.Terminate(pid); err != nil {
			return errors.HelperFailed("stop_idle", err).WithDetail("pid", pid)
		}
		n.logger.WithFields(logrus.Fields{"app_id": appID, "pid": pid}).Info("Idle process stopped")
	}
	if err := process.RemovePIDFile(pidFile); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "remove idle pid file")
	}
	return nil
}

// Idling lists the app ids with a live idle process.
func (n *Native) Idling() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(n.idleDir, "*.pid"))
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, m := range matches {
		if running, _, _ := process.IsRunning(m); running {
			ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".pid"))
		}
	}
	return ids, nil
}

// UnlockAchievement runs "<utility> unlock <appID> <achievementID> <unlockAll>"
// to completion.
func (n *Native) UnlockAchievement(ctx context.Context, filePath, appID, achievementID, unlockAll string) error {
	if err := n.validate(
		command.ArgFilePath, filePath,
		command.ArgAppID, appID,
		command.ArgAchievementID, achievementID,
		command.ArgFlag, unlockAll,
	); err != nil {
		return err
	}
	if err := requireUtility(filePath); err != nil {
		return err
	}

	cmd, err := n.builder.Build(ctx, filePath, "unlock", appID, achievementID, unlockAll)
	if err != nil {
		return errors.HelperFailed("unlock_achievement", err)
	}
	out, err := cmd.Run()
	if err != nil {
		return errors.HelperFailed("unlock_achievement", err).
			WithDetail("output", strings.TrimSpace(string(out)))
	}
	return nil
}

func (n *Native) LogEvent(ctx context.Context, message string) error {
	return eventlog.Append(n.logDir, n.now(), message)
}
