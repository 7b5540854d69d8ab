//go:build !linux

package probe

import (
	"context"

	"github.com/sirupsen/logrus"
)

func becomeSubreaper() error {
	return ErrUnsupported
}

func reapChildren(ctx context.Context, log logrus.FieldLogger) {}
