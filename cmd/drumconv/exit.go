package main

import (
	"errors"
	"io/fs"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/aretw0/drumconv/pkg/drummap"
)

// Exit statuses.
const (
	exitFailure = 1 // generic failure or bad usage
	exitInvalid = 2 // malformed MIDI input or drum map
	exitIO      = 3 // file missing, unreadable or unwritable
)

// exitCode maps the kind a service error was tagged with to an exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, drummap.ErrInvalid) || errors.Is(err, drummap.ErrUnknownMap) {
		return exitInvalid
	}

	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		return exitInvalid
	case ftag.NotFound, ftag.PermissionDenied, ftag.AlreadyExists:
		return exitIO
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return exitIO
	}
	return exitFailure
}

// describe prefers the user-facing message attached by the service.
func describe(err error) string {
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return err.Error()
}
