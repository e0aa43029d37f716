package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreInitialization = errors.New("store initialization failed")
	ErrStoreNotInitialized = errors.New("store is not initialized")
	ErrQuotaExceeded       = errors.New("storage quota exceeded: please delete some notes or export your data")
	ErrStorage             = errors.New("storage operation failed")
)

// Input validation errors. They are returned before any storage access.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyName       = errors.New("folder name cannot be empty")
	ErrNotFound        = errors.New("entity not found")
)

// Recording errors.
var (
	ErrRecordingStart    = errors.New("recording could not be started")
	ErrNoActiveRecording = errors.New("no recording in progress")
	ErrNoCodec           = errors.New("no supported video codec")
)

// Export errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
