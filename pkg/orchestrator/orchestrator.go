// Package orchestrator gates idling and achievement unlocking behind the
// Steam liveness check and delegates the work to the native helper.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/pkg/helper"
	"github.com/grovetools/idler/pkg/telemetry"
)

// Outcome classifies the result of an operation.
type Outcome int

const (
	// Dispatched means the helper accepted the request.
	Dispatched Outcome = iota
	// PreconditionFailed means Steam was not running; nothing was invoked.
	PreconditionFailed
	// InvocationFailed means a helper call returned an error.
	InvocationFailed
)

func (o Outcome) String() string {
	switch o {
	case Dispatched:
		return "dispatched"
	case PreconditionFailed:
		return "precondition_failed"
	case InvocationFailed:
		return "invocation_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is returned by every operation. Err is nil only when Outcome is
// Dispatched.
type Result struct {
	Outcome Outcome
	Err     error
}

// OK reports whether the operation was dispatched.
func (r Result) OK() bool {
	return r.Outcome == Dispatched
}

// Counter is the slice of the telemetry aggregator the orchestrator uses.
type Counter interface {
	Increment(t telemetry.EventType)
}

// Orchestrator runs idle and unlock operations. It never panics and never
// returns a bare error; every failure is logged and carried in a Result.
type Orchestrator struct {
	helper      helper.Helper
	counter     Counter
	utilityPath string
	logger      *logrus.Entry
}

// New returns an orchestrator. utilityPath is resolved against the host
// executable's directory unless absolute.
func New(h helper.Helper, counter Counter, utilityPath string) *Orchestrator {
	return &Orchestrator{
		helper:      h,
		counter:     counter,
		utilityPath: utilityPath,
		logger:      logging.NewLogger("orchestrator"),
	}
}

func (o *Orchestrator) logEvent(ctx context.Context, message string) {
	if err := o.helper.LogEvent(ctx, message); err != nil {
		o.logger.WithError(err).Warn("Failed to log event")
	}
}

func (o *Orchestrator) failed(op string, err error) Result {
	o.logger.WithError(err).WithField("operation", op).Error("Helper invocation failed")
	return Result{Outcome: InvocationFailed, Err: err}
}

// steamRunning evaluates the liveness precondition. A check that errors
// counts as not running.
func (o *Orchestrator) steamRunning(ctx context.Context, op string) bool {
	running, err := o.helper.CheckStatus(ctx)
	if err != nil {
		o.logger.WithError(err).WithField("operation", op).Warn("Steam status check failed")
		return false
	}
	return running
}

func (o *Orchestrator) resolveUtility(ctx context.Context) (string, error) {
	host, err := o.helper.FilePath(ctx)
	if err != nil {
		return "", err
	}
	return helper.UtilityPath(host, o.utilityPath), nil
}

// StartIdle starts idling appID. With Steam not running it returns
// PreconditionFailed without invoking the helper or counting telemetry. An
// app that is already idling is reported as Dispatched but is neither
// counted nor logged again.
func (o *Orchestrator) StartIdle(ctx context.Context, appID int, name string, quiet bool) Result {
	if !o.steamRunning(ctx, "start_idle") {
		return Result{Outcome: PreconditionFailed, Err: errors.SteamNotRunning("start_idle")}
	}

	utility, err := o.resolveUtility(ctx)
	if err != nil {
		return o.failed("start_idle", err)
	}
	if err := o.helper.StartIdle(ctx, utility, strconv.Itoa(appID), strconv.FormatBool(quiet)); err != nil {
		if errors.Is(err, errors.ErrCodeAlreadyIdling) {
			o.logger.WithField("app_id", appID).Debug("Idle request for running app ignored")
			return Result{Outcome: Dispatched}
		}
		return o.failed("start_idle", err)
	}

	o.counter.Increment(telemetry.Idle)
	o.logEvent(ctx, fmt.Sprintf("Started idling %s", name))
	return Result{Outcome: Dispatched}
}

// Game identifies one game to idle.
type Game struct {
	AppID int
	Name  string
}

// StartIdleMany starts each game in order and returns one result per game.
func (o *Orchestrator) StartIdleMany(ctx context.Context, games []Game, quiet bool) []Result {
	results := make([]Result, len(games))
	for i, g := range games {
		results[i] = o.StartIdle(ctx, g.AppID, g.Name, quiet)
	}
	return results
}

// StopIdle stops idling appID. It is always attempted, whether or not Steam
// is running or the app was being idled.
func (o *Orchestrator) StopIdle(ctx context.Context, appID int) Result {
	if err := o.helper.StopIdle(ctx, strconv.Itoa(appID)); err != nil {
		return o.failed("stop_idle", err)
	}
	o.logEvent(ctx, fmt.Sprintf("Stopped idling %d", appID))
	return Result{Outcome: Dispatched}
}

// UnlockAchievement unlocks achievementID for appID, or every achievement
// when unlockAll is set.
func (o *Orchestrator) UnlockAchievement(ctx context.Context, appID int, achievementID string, unlockAll bool) Result {
	if !o.steamRunning(ctx, "unlock_achievement") {
		o.logEvent(ctx, "[Error] Achievement failed - Steam is not running")
		return Result{Outcome: PreconditionFailed, Err: errors.SteamNotRunning("unlock_achievement")}
	}

	utility, err := o.resolveUtility(ctx)
	if err != nil {
		return o.failed("unlock_achievement", err)
	}
	if err := o.helper.UnlockAchievement(ctx, utility, strconv.Itoa(appID), achievementID, strconv.FormatBool(unlockAll)); err != nil {
		return o.failed("unlock_achievement", err)
	}

	o.counter.Increment(telemetry.Achievement)
	o.logEvent(ctx, fmt.Sprintf("Unlocked achievement %s (%d)", achievementID, appID))
	return Result{Outcome: Dispatched}
}
