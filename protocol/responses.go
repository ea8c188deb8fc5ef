package protocol

import "fmt"

// Response 设备对每个命令包回复的单字节
type Response byte

const (
	ACK        Response = 0x40
	RangeError Response = 0x41 // 地址越界
	BadID      Response = 0x42 // ID不匹配或未使能
	CRCError   Response = 0x43 // CRC不一致
)

// Known 是否为协议定义的应答码
func (r Response) Known() bool {
	return r >= ACK && r <= CRCError
}

func (r Response) String() string {
	switch r {
	case ACK:
		return "ACK"
	case RangeError:
		return "RANGE_ERROR"
	case BadID:
		return "BAD_ID"
	case CRCError:
		return "CRC_ERROR"
	default:
		return fmt.Sprintf("unknown response 0x%02X", byte(r))
	}
}
