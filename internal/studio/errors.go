package studio

import (
	"errors"
	"fmt"
)

var (
	ErrBusy              = errors.New("a request of this kind is already running")
	ErrStale             = errors.New("session was reset while the request was running")
	ErrNoHelmet1         = errors.New("no helmet 1 image")
	ErrHelmet1NotReady   = errors.New("helmet 1 decal is not extracted")
	ErrNoHelmetType      = errors.New("no helmet 2 type selected")
	ErrNoResult          = errors.New("no single view result")
	ErrInvalidHelmetType = errors.New("invalid helmet type")
	ErrHelmetTypeLocked  = errors.New("helmet type is locked by the helmet 2 photo")
	ErrInvalidStyle      = errors.New("invalid style")
	ErrInvalidTab        = errors.New("invalid tab")
	ErrNothingToDownload = errors.New("nothing to download")
)

// User-facing messages kept on State.Error.
const (
	msgSelectHelmetType    = "Please select a Helmet 2 type."
	msgNeedSingleView      = "Please generate a Single View result first."
	msgNeedSingleViewStyle = "Please generate a Single View result first to apply a style."
	msgUnknown             = "An unknown error occurred."
)

// Error contexts used as the "[Context]" prefix.
const (
	ctxHelmet1Analysis = "Helmet 1 Analysis"
	ctxHelmet1Parse    = "Helmet 1 Parse"
	ctxHelmet2Analysis = "Helmet 2 Analysis"
	ctxSingleViewEdit  = "Single View Edit"
	ctxSingleViewGen   = "Single View Generation"
	ctxFullViewGen     = "Full View Generation"
	ctxStylePackGen    = "Style Pack Generation"
)

// OpError is a failed upstream operation labeled with its context.
type OpError struct {
	Context string
	Err     error
}

func (e *OpError) Error() string {
	msg := msgUnknown
	if e.Err != nil && e.Err.Error() != "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("[%s] %s", e.Context, msg)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
