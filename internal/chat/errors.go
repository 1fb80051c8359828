package chat

import "errors"

var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrChannelNameTaken = errors.New("channel name already taken")
	ErrMessageNotFound  = errors.New("message not found")
	ErrForbidden        = errors.New("forbidden")
)
