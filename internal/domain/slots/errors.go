package slots

import "errors"

var (
	ErrInvalidDuration   = errors.New("invalid duration format, use something like '1d', '1w' or '1m'")
	ErrSlotNotFound      = errors.New("slot not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrOwnerNotInGuild   = errors.New("the slot owner is no longer a member of the server")
	ErrCategoryNotFound  = errors.New("slot category not found, check category_id in the config")
	ErrDuplicateSlot     = errors.New("user or channel already has an active slot")
	ErrInvalidTransition = errors.New("slot is not in a state that allows this action")
)
