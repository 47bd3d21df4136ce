package domain

import "errors"

var (
	ErrRoomRequired        = errors.New("room id is required")
	ErrUsernameExists      = errors.New("username already taken in the room")
	ErrAlreadyJoined       = errors.New("connection already joined a room")
	ErrDuplicateConnection = errors.New("connection id already registered")
	ErrNotFound            = errors.New("participant not found")
)
