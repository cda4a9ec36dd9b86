// Package session implements sign-out: every durable slot and the session
// inventory snapshot are cleared.
package session

import (
	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/state"
)

// Snapshot is the session tier that logout drops.
type Snapshot interface {
	Clear() error
}

// Logout clears the preferences, the three tag sets, the cookie blob and the
// session snapshot. Work already in flight is not cancelled.
func Logout(st *state.Store, snapshot Snapshot) error {
	logger := logging.NewLogger("session")

	if err := st.Clear(state.AllKeys...); err != nil {
		return err
	}
	if snapshot != nil {
		if err := snapshot.Clear(); err != nil {
			return err
		}
	}

	logger.WithField("keys", state.AllKeys).Info("Logged out; durable state cleared")
	return nil
}
