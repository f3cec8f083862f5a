package domain

import "errors"

var (
	ErrLaunch               = errors.New("browser launch failed")
	ErrTimeout              = errors.New("timed out")
	ErrConnect              = errors.New("debug endpoint connect failed")
	ErrNavigationTimeout    = errors.New("navigation did not complete")
	ErrImport               = errors.New("registry import failed")
	ErrExecutableNotFound   = errors.New("browser executable not found")
	ErrNoProfiles           = errors.New("no profiles to harvest")
	ErrRegistryTokenMissing = errors.New("registry admin token not configured")
	ErrSecretNotFound       = errors.New("secret not found")
)
