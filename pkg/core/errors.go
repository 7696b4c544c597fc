package core

import (
	"context"
	"errors"
	"io/fs"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/aretw0/drumconv/pkg/midifile"
)

// Common errors.
var (
	ErrOutputExists = errors.New("output file already exists")
	ErrNotListable  = errors.New("repository does not support listing")
	ErrNotWatchable = errors.New("repository does not support watching")
)

// The helpers below tag errors leaving the service with an ftag.Kind, which
// the CLI turns into an exit code.

func decodeFailed(err error, path string) error {
	return fault.Wrap(err,
		ftag.With(ftag.InvalidArgument),
		fmsg.WithDesc("decode "+path, path+" is not a valid Standard MIDI File"),
	)
}

func encodeFailed(err error, path string) error {
	return fault.Wrap(err,
		ftag.With(ftag.Internal),
		fmsg.WithDesc("encode "+path, "could not encode the converted file"),
	)
}

func ioFailed(err error, op, path string) error {
	kind := ftag.Internal
	desc := "could not " + op + " " + path
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = ftag.Cancelled
	case errors.Is(err, fs.ErrNotExist):
		kind = ftag.NotFound
		desc = path + " does not exist"
	case errors.Is(err, fs.ErrPermission):
		kind = ftag.PermissionDenied
		desc = "permission denied for " + path
	case errors.Is(err, ErrOutputExists):
		kind = ftag.AlreadyExists
		desc = path + " already exists"
	}
	return fault.Wrap(err, ftag.With(kind), fmsg.WithDesc(op+" "+path, desc))
}

// IsDecodeError reports whether err was caused by malformed input.
func IsDecodeError(err error) bool {
	var de *midifile.DecodeError
	return errors.As(err, &de)
}
