package listing

import "errors"

var (
	ErrUnknownStep      = errors.New("unknown wizard step")
	ErrStepOutOfOrder   = errors.New("previous wizard steps are not saved yet")
	ErrUnexpectedField  = errors.New("field does not belong to this step")
	ErrInvalidListing   = errors.New("invalid listing")
	ErrDraftIncomplete  = errors.New("draft is not complete")
	ErrNoPhotos         = errors.New("at least one photo is required")
	ErrTooManyPhotos    = errors.New("photo limit reached")
	ErrUnsupportedImage = errors.New("unsupported image")
)
