package main

import (
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// ClientMessage represents incoming messages from clients
type ClientMessage struct {
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	Throttle float64 `json:"throttle,omitempty"`
	Turn     float64 `json:"turn,omitempty"`
	SteerX   float64 `json:"steerX,omitempty"`
	SteerZ   float64 `json:"steerZ,omitempty"`
	Charge   float64 `json:"charge,omitempty"`
	Reel     bool    `json:"reel,omitempty"`
	Command  string  `json:"command,omitempty"`
	Seq      uint32  `json:"seq,omitempty"`
}

// ServerMessage represents outgoing messages to clients
type ServerMessage struct {
	Type    string      `json:"type" msgpack:"type"`
	Payload interface{} `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// WelcomePayload is sent after an angler joins
type WelcomePayload struct {
	ID         string    `msgpack:"id"`
	Name       string    `msgpack:"name"`
	MapSize    float64   `msgpack:"mapSize"`
	Spawn      Vec3      `msgpack:"spawn"`
	Areas      []MapArea `msgpack:"areas"`
	Species    []string  `msgpack:"species"`
	Seed       int64     `msgpack:"seed"`
	CatchModel string    `msgpack:"catchModel"`
}

// GameStatePayload contains the current game state for an angler
type GameStatePayload struct {
	You  AnglerState
	Fish []FishView
}

// AnglerState represents the angler's own state
type AnglerState struct {
	ID       string
	Name     string
	Phase    Phase
	Boat     Vec3
	Rotation float64
	Bait     Vec3
	Launched bool
	InWater  bool
	Area     AreaID
	Score    int
	Catches  int
	Seq      uint32
}

// LeaderboardEntry represents a leaderboard entry
type LeaderboardEntry struct {
	Name    string `msgpack:"name"`
	Score   int    `msgpack:"score"`
	Catches int    `msgpack:"catches"`
}

// CommandResult is the reply to an admin command
type CommandResult struct {
	OK     bool   `msgpack:"ok"`
	Output string `msgpack:"output"`
}

// Binary Protocol Implementation
// Message Types
const (
	MsgTypeState byte = 2
	MsgTypePong  byte = 3
	MsgTypeMeta  byte = 4 // length-prefixed msgpack, used when no meta socket is attached
)

// Flag bits for fish and angler records
const (
	flagHooked   byte = 1
	flagFleeing  byte = 2
	flagFishing  byte = 1
	flagLaunched byte = 2
	flagInWater  byte = 4
)

// IsMetaMessage reports whether a message type belongs on the meta socket
func IsMetaMessage(msgType string) bool {
	switch msgType {
	case "welcome", "hook", "leaderboard", "species", "commandResult", "error":
		return true
	}
	return false
}

// EncodeBinaryMessage encodes a server message for the primary socket. Meta
// messages are wrapped in a MsgTypeMeta frame.
func EncodeBinaryMessage(msg ServerMessage) ([]byte, error) {
	switch msg.Type {
	case "state":
		state, ok := msg.Payload.(GameStatePayload)
		if !ok {
			return nil, fmt.Errorf("state payload has type %T", msg.Payload)
		}
		return encodeGameState(state), nil
	case "pong":
		return []byte{MsgTypePong}, nil
	}

	data, err := EncodeMetaMessage(msg)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 5+len(data))
	buf = append(buf, MsgTypeMeta)
	buf = appendUint32(buf, uint32(len(data)))
	return append(buf, data...), nil
}

// EncodeMetaMessage encodes a message for the meta socket
func EncodeMetaMessage(msg ServerMessage) ([]byte, error) {
	data, err := msgpack.Marshal(&msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return data, nil
}

// DecodeMetaMessage decodes one meta message. The payload comes back as
// generic msgpack values.
func DecodeMetaMessage(data []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("decode meta message: %w", err)
	}
	return msg, nil
}

func encodeGameState(state GameStatePayload) []byte {
	capacity := 1 + 128 + len(state.Fish)*64
	buf := make([]byte, 0, capacity)

	buf = append(buf, MsgTypeState)
	buf = encodeAnglerState(buf, state.You)

	buf = append(buf, byte(len(state.Fish)>>8), byte(len(state.Fish)))
	for _, fish := range state.Fish {
		buf = encodeFishView(buf, fish)
	}
	return buf
}

func encodeAnglerState(buf []byte, a AnglerState) []byte {
	flags := byte(0)
	if a.Phase == PhaseFishing {
		flags |= flagFishing
	}
	if a.Launched {
		flags |= flagLaunched
	}
	if a.InWater {
		flags |= flagInWater
	}
	buf = append(buf, flags)

	buf = appendString(buf, a.ID)
	buf = appendString(buf, a.Name)

	buf = appendVec3(buf, a.Boat)
	buf = appendFloat32(buf, float32(a.Rotation))
	buf = appendVec3(buf, a.Bait)

	buf = append(buf, byte(a.Area))
	buf = appendUint32(buf, uint32(a.Score))
	buf = appendUint32(buf, uint32(a.Catches))
	buf = appendUint32(buf, a.Seq)
	return buf
}

func encodeFishView(buf []byte, f FishView) []byte {
	flags := byte(0)
	if f.State == FishHooked {
		flags |= flagHooked
	}
	if f.Fleeing {
		flags |= flagFleeing
	}
	buf = appendUint64(buf, uint64(f.ID))
	buf = append(buf, flags, byte(f.Species), byte(f.Area), byte(f.TextureID))
	buf = appendString(buf, f.Model)
	buf = appendVec3(buf, f.Position)
	buf = appendFloat32(buf, float32(f.Heading))
	buf = appendFloat32(buf, float32(f.Scale))
	return buf
}

// Helper functions
func appendString(buf []byte, s string) []byte {
	length := uint16(len(s))
	buf = append(buf, byte(length>>8), byte(length))
	return append(buf, s...)
}

func appendFloat32(buf []byte, f float32) []byte {
	return appendUint32(buf, math.Float32bits(f))
}

func appendVec3(buf []byte, v Vec3) []byte {
	buf = appendFloat32(buf, float32(v.X))
	buf = appendFloat32(buf, float32(v.Y))
	return appendFloat32(buf, float32(v.Z))
}

func appendUint32(buf []byte, u uint32) []byte {
	return append(buf, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func appendUint64(buf []byte, u uint64) []byte {
	return append(buf, byte(u>>56), byte(u>>48), byte(u>>40), byte(u>>32),
		byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func readUint32(buf []byte) uint32 {
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
}

// SplitMetaFrame extracts the msgpack body of a MsgTypeMeta frame and returns
// whatever follows it in a batched write
func SplitMetaFrame(frame []byte) (body, rest []byte, err error) {
	if len(frame) < 5 || frame[0] != MsgTypeMeta {
		return nil, nil, fmt.Errorf("not a meta frame")
	}
	n := int(readUint32(frame[1:5]))
	if len(frame) < 5+n {
		return nil, nil, fmt.Errorf("meta frame truncated: want %d bytes, have %d", n, len(frame)-5)
	}
	return frame[5 : 5+n], frame[5+n:], nil
}
