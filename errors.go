package ganggames

import "errors"

var (
	// ErrInvalidRoute is returned by NewTable for a route with an empty name, a nil view or a
	// path that is not normalized.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrDuplicatePath is returned by NewTable when two routes share a path.
	ErrDuplicatePath = errors.New("duplicate route path")

	// ErrDuplicateName is returned by NewTable when two routes share a name.
	ErrDuplicateName = errors.New("duplicate route name")

	// ErrUnknownRouteName is returned when navigating to a name that is not in the table.
	ErrUnknownRouteName = errors.New("unknown route name")

	// ErrNavigationDuplicated is returned when navigating to the current location.
	ErrNavigationDuplicated = errors.New("navigation duplicated")

	// ErrNoHistoryEntry is returned when moving past either end of the history.
	ErrNoHistoryEntry = errors.New("no history entry")
)
