//go:build linux

package probe

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

func becomeSubreaper() error {
	return unix.Prctl(unix.PR_SET_CHILD_SUBREAPER, uintptr(1), 0, 0, 0)
}

// reapChildren collects every child that changes state until ctx is done.
// ECHILD only means nothing is left to reap yet; orphans may still be
// reparented to us later.
func reapChildren(ctx context.Context, log logrus.FieldLogger) {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, 0, nil)
		switch {
		case err == nil:
			log.WithFields(reapedFields(pid, status)).Info("child exited")
			continue
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
		default:
			log.WithError(err).Warn("wait for children")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// reapedFields describes how a reaped child ended: its exit status, or the
// signal that killed it.
func reapedFields(pid int, status unix.WaitStatus) logrus.Fields {
	fields := logrus.Fields{"child_pid": pid}
	switch {
	case status.Exited():
		fields["status"] = status.ExitStatus()
	case status.Signaled():
		fields["signal"] = status.Signal().String()
	}
	return fields
}
