package efm8

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tocurd/go-efm8/protocol"
)

// 串口在超时时间内未收到应答字节
var TimeoutError = errors.New("serial read timed out")

// 目录与全范围扫描均无应答
var NotFoundError = errors.New("could not find any device")

// IOError 串口读写失败
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("serial %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ProtocolError 需要ACK的地方收到了其他应答
type ProtocolError struct {
	Op      string
	Address uint16
	Code    protocol.Response
}

func (e *ProtocolError) Error() string {
	switch e.Op {
	case "write", "verify", "erase":
		return fmt.Sprintf("%s at 0x%04X failed: %s (0x%02X)", e.Op, e.Address, e.Code, byte(e.Code))
	default:
		return fmt.Sprintf("%s failed: %s (0x%02X)", e.Op, e.Code, byte(e.Code))
	}
}

// UnrecognizedDeviceError 扫描到有应答但目录中没有的ID组合
type UnrecognizedDeviceError struct {
	DeviceID  byte
	VariantID byte
}

func (e *UnrecognizedDeviceError) Error() string {
	return fmt.Sprintf("unknown device detected: id=0x%02X, variant=0x%02X, please add it to the device list",
		e.DeviceID, e.VariantID)
}

// AddressRangeError 镜像地址超出芯片flash
type AddressRangeError struct {
	Address   uint32
	FlashSize int
}

func (e *AddressRangeError) Error() string {
	return fmt.Sprintf("image address 0x%04X is outside flash (size %d)", e.Address, e.FlashSize)
}

// OracleError 0x00..0xFF 全部候选值都未通过VERIFY
type OracleError struct {
	Address uint16
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("no byte value verifies at 0x%04X", e.Address)
}
