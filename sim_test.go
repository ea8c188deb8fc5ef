package efm8

import (
	"bytes"

	"github.com/tocurd/go-efm8/protocol"
)

type exchange struct {
	cmd     protocol.Command
	payload []byte
	res     protocol.Response
}

// address 载荷前两字节组成的地址
func (e exchange) address() uint16 {
	return uint16(e.payload[0])<<8 | uint16(e.payload[1])
}

// simDevice 模拟EFM8 bootloader：解析命令包，维护flash内容并按协议应答
type simDevice struct {
	deviceID  byte
	variantID byte
	flash     []byte
	pageSize  int
	enabled   bool

	rx  []byte
	tx  []byte
	raw []byte

	trainings int
	exchanges []exchange
	verifies  map[uint16]int
	closes    int

	// silent 不回复任何应答，模拟超时
	silent bool
	// override 返回 true 时用其应答代替正常处理
	override func(cmd protocol.Command, payload []byte) (protocol.Response, bool)
}

func newSimDevice(device Device) *simDevice {
	flash := make([]byte, device.FlashSize)
	for index := range flash {
		flash[index] = 0xFF
	}
	return &simDevice{
		deviceID:  device.DeviceID,
		variantID: device.VariantID,
		flash:     flash,
		pageSize:  device.PageSize,
		verifies:  make(map[uint16]int),
	}
}

func mustLookup(deviceID, variantID byte) Device {
	device, ok := Lookup(deviceID, variantID)
	if !ok {
		panic("device not in catalog")
	}
	return device
}

func (d *simDevice) Read(p []byte) (int, error) {
	if len(d.tx) == 0 {
		return 0, nil
	}
	n := copy(p, d.tx)
	d.tx = d.tx[n:]
	return n, nil
}

func (d *simDevice) Write(p []byte) (int, error) {
	d.raw = append(d.raw, p...)
	d.rx = append(d.rx, p...)
	for len(d.rx) > 0 {
		if d.rx[0] == protocol.TrainingByte {
			d.trainings++
			d.rx = d.rx[1:]
			continue
		}
		if d.rx[0] != protocol.Marker {
			d.rx = d.rx[1:]
			continue
		}
		if len(d.rx) < 2 || len(d.rx) < int(d.rx[1])+2 {
			break
		}
		size := int(d.rx[1]) + 2
		cmd := protocol.Command(d.rx[2])
		payload := append([]byte(nil), d.rx[3:size]...)
		d.rx = d.rx[size:]

		if cmd == protocol.CommandVerify && len(payload) == 6 {
			d.verifies[uint16(payload[0])<<8|uint16(payload[1])]++
		}
		res := d.handle(cmd, payload)
		d.exchanges = append(d.exchanges, exchange{cmd: cmd, payload: payload, res: res})
		if !d.silent {
			d.tx = append(d.tx, byte(res))
		}
	}
	return len(p), nil
}

func (d *simDevice) Close() error {
	d.closes++
	return nil
}

func (d *simDevice) handle(cmd protocol.Command, payload []byte) protocol.Response {
	if d.override != nil {
		if res, ok := d.override(cmd, payload); ok {
			return res
		}
	}

	switch cmd {
	case protocol.CommandIdentify:
		if len(payload) == 2 && payload[0] == d.deviceID && payload[1] == d.variantID {
			return protocol.ACK
		}
		return protocol.BadID

	case protocol.CommandSetup:
		if !bytes.Equal(payload, protocol.SetupKey) {
			return protocol.BadID
		}
		d.enabled = true
		return protocol.ACK

	case protocol.CommandErase:
		if !d.enabled {
			return protocol.BadID
		}
		address := int(payload[0])<<8 | int(payload[1])
		if address >= len(d.flash) || address%d.pageSize != 0 {
			return protocol.RangeError
		}
		for index := address; index < address+d.pageSize; index++ {
			d.flash[index] = 0xFF
		}
		return protocol.ACK

	case protocol.CommandWrite:
		if !d.enabled {
			return protocol.BadID
		}
		address := int(payload[0])<<8 | int(payload[1])
		data := payload[2:]
		if address+len(data) > len(d.flash) {
			return protocol.RangeError
		}
		// flash只能把1写成0
		for index, value := range data {
			d.flash[address+index] &= value
		}
		return protocol.ACK

	case protocol.CommandVerify:
		if !d.enabled {
			return protocol.BadID
		}
		start := int(payload[0])<<8 | int(payload[1])
		end := int(payload[2])<<8 | int(payload[3])
		crc := uint16(payload[4])<<8 | uint16(payload[5])
		if end < start || end >= len(d.flash) {
			return protocol.RangeError
		}
		if protocol.CRC16(d.flash[start:end+1]) != crc {
			return protocol.CRCError
		}
		return protocol.ACK

	case protocol.CommandReset:
		return protocol.ACK

	default:
		return protocol.BadID
	}
}

// commands 按命令过滤交互记录
func (d *simDevice) commands(cmd protocol.Command) []exchange {
	var result []exchange
	for _, e := range d.exchanges {
		if e.cmd == cmd {
			result = append(result, e)
		}
	}
	return result
}
