package hub

import "errors"

var (
	// ErrUnbound is returned when an event that needs a bound identity
	// arrives before setup.
	ErrUnbound = errors.New("connection has no bound user identity")

	// ErrAlreadyBound is returned when setup tries to rebind a connection
	// to a different user.
	ErrAlreadyBound = errors.New("connection is already bound to another user")

	// ErrMissingChatID is returned when a message payload carries no
	// resolvable chat id.
	ErrMissingChatID = errors.New("message payload has no chat id")

	// ErrLookup wraps failures from the external chat/message stores.
	ErrLookup = errors.New("store lookup failed")

	// ErrNotInitialized is raised when the package-level hub accessor is
	// used before Start.
	ErrNotInitialized = errors.New("hub not initialized")
)
