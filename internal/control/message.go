// Package control implements the UDP control-plane surface of the daemon:
// the listening sockets, the message-type dispatcher and the unwrapping of
// encapsulated control messages.
package control

import "fmt"

// Port is the registered LISP control port.
const Port = 4342

// MaxPacketLen bounds one inbound control datagram.
const MaxPacketLen = 4096

// MessageType identifies a control message. It lives in the high nibble of
// the first byte of every message.
type MessageType uint8

const (
	TypeMapRequest  MessageType = 1
	TypeMapReply    MessageType = 2
	TypeMapRegister MessageType = 3
	TypeMapNotify   MessageType = 4
	TypeMapReferral MessageType = 6
	TypeInfoNAT     MessageType = 7 // Info-Request and Info-Reply share the type
	TypeEncap       MessageType = 8
)

// TypeOf extracts the message type from the first byte of b. The caller
// must have checked that b is not empty.
func TypeOf(b []byte) MessageType {
	return MessageType(b[0] >> 4)
}

func (t MessageType) String() string {
	switch t {
	case TypeMapRequest:
		return "map-request"
	case TypeMapReply:
		return "map-reply"
	case TypeMapRegister:
		return "map-register"
	case TypeMapNotify:
		return "map-notify"
	case TypeMapReferral:
		return "map-referral"
	case TypeInfoNAT:
		return "info-nat"
	case TypeEncap:
		return "encap-control"
	}
	return fmt.Sprintf("type-%d", uint8(t))
}
