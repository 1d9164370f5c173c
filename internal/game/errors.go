package game

import "errors"

var (
	ErrNotCarried        = errors.New("item not carried")
	ErrSlotOccupied      = errors.New("slot is already occupied")
	ErrCharacterNotFound = errors.New("character not found")
	ErrUnknownObject     = errors.New("unknown object")
)
