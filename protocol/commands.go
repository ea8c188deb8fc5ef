package protocol

import "fmt"

type Command byte

const (
	CommandIdentify Command = 0x30 // 校验设备ID与变体ID
	CommandSetup    Command = 0x31 // 使能flash访问
	CommandErase    Command = 0x32 // 擦除一页
	CommandWrite    Command = 0x33 // 从指定地址写入最多128字节
	CommandVerify   Command = 0x34 // 校验地址区间的CRC16
	CommandReset    Command = 0x36 // 复位芯片
)

func (c Command) String() string {
	switch c {
	case CommandIdentify:
		return "IDENTIFY"
	case CommandSetup:
		return "SETUP"
	case CommandErase:
		return "ERASE"
	case CommandWrite:
		return "WRITE"
	case CommandVerify:
		return "VERIFY"
	case CommandReset:
		return "RESET"
	default:
		return fmt.Sprintf("CMD(0x%02X)", byte(c))
	}
}

const (
	// Marker 每个命令包的起始字节
	Marker = '$'

	MinPayload = 2
	MaxPayload = 130

	// MaxWriteSize WRITE命令单次最多携带的数据字节数(不含2字节地址)
	MaxWriteSize = MaxPayload - 2

	// TrainingByte 自动波特率训练字符，连续发送两次
	TrainingByte = 0xFF

	DefaultBaudRate = 115200
)

// SetupKey SETUP命令的固定载荷
var SetupKey = []byte{0xA5, 0xF1, 0x00}

// ResetKey RESET命令的固定载荷
var ResetKey = []byte{0xFF, 0xFF}

// Training 训练序列
var Training = []byte{TrainingByte, TrainingByte}

/*
 * @Description: 组帧 '$' | len(payload)+1 | cmd | payload
 * @param cmd
 * @param payload 长度必须在 MinPayload..MaxPayload 之间
 * @return []byte
 * @return error
 */
func Encode(cmd Command, payload []byte) ([]byte, error) {
	if len(payload) < MinPayload || len(payload) > MaxPayload {
		return nil, &LengthError{Command: cmd, Length: len(payload)}
	}
	packet := make([]byte, 0, 3+len(payload))
	packet = append(packet, Marker, byte(len(payload)+1), byte(cmd))
	packet = append(packet, payload...)
	return packet, nil
}

// IdentifyPayload {device_id, variant_id}
func IdentifyPayload(deviceID, variantID byte) []byte {
	return []byte{deviceID, variantID}
}

// ErasePayload {addr_hi, addr_lo}，地址为页首地址
func ErasePayload(address uint16) []byte {
	return []byte{byte(address >> 8), byte(address)}
}

// WritePayload {addr_hi, addr_lo, data...}
func WritePayload(address uint16, data []byte) ([]byte, error) {
	if len(data) == 0 || len(data) > MaxWriteSize {
		return nil, fmt.Errorf("write of %d bytes at 0x%04X: allowed 1..%d", len(data), address, MaxWriteSize)
	}
	payload := make([]byte, 0, 2+len(data))
	payload = append(payload, byte(address>>8), byte(address))
	return append(payload, data...), nil
}

// VerifyPayload {start_hi, start_lo, end_hi, end_lo, crc_hi, crc_lo}，end为闭区间
func VerifyPayload(start, end, crc uint16) []byte {
	return []byte{
		byte(start >> 8), byte(start),
		byte(end >> 8), byte(end),
		byte(crc >> 8), byte(crc),
	}
}
