package protocol

import "fmt"

// LengthError 载荷长度超出 MinPayload..MaxPayload，未发生任何串口读写
type LengthError struct {
	Command Command
	Length  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid %s payload length: allowed %d..%d, got %d",
		e.Command, MinPayload, MaxPayload, e.Length)
}
