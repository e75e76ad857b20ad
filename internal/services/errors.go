// Package services defines the business logic of the SkillUp backend: score
// derivation, milestone detection, notifications, chat read receipts, thread
// selection, leaderboards, and the per-session coordinator tying them to the
// live data feeds.
//
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers. Translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

// Validation errors. These abort the initiating action with no partial write.
var (
	// ErrEmptyTitle is returned when a skill is created without a title.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrEmptyName is returned when a friend is created without a display name.
	ErrEmptyName = errors.New("name is empty")

	// ErrDuplicateFriend is returned when a friend with the same display name
	// (case-insensitive) already exists for the user.
	ErrDuplicateFriend = errors.New("friend name already exists")

	// ErrGroupNameTooShort is returned when a group name has fewer than three
	// characters.
	ErrGroupNameTooShort = errors.New("group name must be at least 3 characters")

	// ErrGroupTooSmall is returned when a group would end up with fewer than
	// two members (creator plus at least one friend).
	ErrGroupTooSmall = errors.New("group needs at least one member besides you")

	// ErrEmptyMessage is returned when a chat message has an empty body.
	ErrEmptyMessage = errors.New("message is empty")
)

// Reference errors.
var (
	// ErrGroupNotFound indicates the requested group does not exist or is not
	// accessible to the current user.
	ErrGroupNotFound = errors.New("group not found")

	// ErrUnknownMode indicates a chat mode outside {community, group}.
	ErrUnknownMode = errors.New("unknown chat mode")

	// ErrGroupRequired indicates group mode was selected without a group id.
	ErrGroupRequired = errors.New("group id required for group mode")
)

// ErrNoScores is the explicit empty-state signal of the leaderboard views,
// distinct from a fetch failure. Handlers render it as "no data yet", never
// as a server error.
var ErrNoScores = errors.New("no score records")
