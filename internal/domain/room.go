package domain

import "errors"

const MaxRoomCodeLen = 36

var ErrRoomCodeEmpty = errors.New("room code empty")

type (
	// RoomCode identifies a durable room. Historical membership lives in
	// the room store; only the connected subset is held in memory.
	RoomCode string

	// GroupName identifies an ephemeral in-memory group. Groups have no
	// durable backing and are lost on restart.
	GroupName string
)

func NewRoomCode(raw string) (RoomCode, error) {
	if raw == "" {
		return "", ErrRoomCodeEmpty
	}
	if len(raw) > MaxRoomCodeLen {
		raw = raw[:MaxRoomCodeLen]
	}
	return RoomCode(raw), nil
}

type Room struct {
	Code RoomCode
	Name string
}
