package efm8

import (
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/tocurd/go-efm8/protocol"
)

// Loader 一次串口会话，同一时刻只允许一个调用方使用
type Loader struct {
	port   io.ReadWriter
	config Config
	device Device
	closed bool
}

/*
 * @Description: 在已打开的串口上创建会话
 * @param port 读操作需在超时后返回 0 字节
 * @return *Loader
 */
func New(port io.ReadWriter, opts ...Option) *Loader {
	if port == nil {
		panic("port cannot be nil")
	}
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Loader{
		port:   port,
		config: config,
		device: defaultDevice,
	}
}

/*
 * @Description: 以 8N1 打开串口并设置应答超时
 * @param name 例如 /dev/ttyUSB0 或 COM4
 * @return serial.Port
 * @return error
 */
func OpenPort(name string, opts ...Option) (serial.Port, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	glog.Infof("opening port '%s' (%d baud)", name, config.BaudRate)
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port '%s'", name)
	}
	if err = port.SetReadTimeout(config.Timeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "set read timeout")
	}
	if err = port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "reset input buffer")
	}
	return port, nil
}

/*
 * @Description: 创建会话执行 fn，无论 fn 是否出错都只关闭一次串口
 * @param port
 * @param fn
 * @return err fn 的错误优先于关闭错误
 */
func Run(port io.ReadWriter, fn func(*Loader) error, opts ...Option) (err error) {
	loader := New(port, opts...)
	defer func() {
		if closeErr := loader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(loader)
}

// Close 关闭底层串口(若支持)，重复调用无效果
func (t *Loader) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	closer, ok := t.port.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return &IOError{Op: "close", Err: err}
	}
	return nil
}

// Device 当前芯片参数，识别前为默认值
func (t *Loader) Device() Device {
	return t.device
}

/*
 * @Description: 发送自动波特率训练字符，每次会话开始前调用
 * @return error
 */
func (t *Loader) Training() error {
	t.tracef("sending training char 0x%02X", protocol.TrainingByte)
	if _, err := t.port.Write(protocol.Training); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

/*
 * @Description: 发送命令包并读取一个字节的应答
 * @param cmd
 * @param payload 2..130 字节，否则不做任何串口操作直接返回错误
 * @return protocol.Response
 * @return error
 */
func (t *Loader) Send(cmd protocol.Command, payload []byte) (protocol.Response, error) {
	packet, err := protocol.Encode(cmd, payload)
	if err != nil {
		return 0, err
	}

	t.tracef("sending $ len=%d cmd=0x%02X data={ %s}", len(payload), byte(cmd), traceData(payload))
	n, err := t.port.Write(packet)
	if err != nil {
		return 0, &IOError{Op: "write", Err: err}
	}
	if n != len(packet) {
		return 0, &IOError{Op: "write", Err: io.ErrShortWrite}
	}

	reply := make([]byte, 1)
	n, err = t.port.Read(reply)
	if err != nil {
		return 0, &IOError{Op: "read", Err: err}
	}
	if n == 0 {
		return 0, errors.Wrapf(TimeoutError, "%s", cmd)
	}
	t.tracef("reply 0x%02X", reply[0])
	return protocol.Response(reply[0]), nil
}

/*
 * @Description: 发送命令，应答不是ACK时返回 ProtocolError
 * @return error
 */
func (t *Loader) expectACK(op string, address uint16, cmd protocol.Command, payload []byte) error {
	res, err := t.Send(cmd, payload)
	if err != nil {
		return err
	}
	if res != protocol.ACK {
		return &ProtocolError{Op: op, Address: address, Code: res}
	}
	return nil
}

/*
 * @Description: 使能flash访问
 * @return error
 */
func (t *Loader) Setup() error {
	return t.expectACK("enable flash access", 0, protocol.CommandSetup, protocol.SetupKey)
}

/*
 * @Description: 校验ID组合是否与芯片一致
 * @return bool 芯片应答ACK
 * @return error
 */
func (t *Loader) CheckID(deviceID, variantID byte) (bool, error) {
	res, err := t.Send(protocol.CommandIdentify, protocol.IdentifyPayload(deviceID, variantID))
	if err != nil {
		return false, err
	}
	return res == protocol.ACK, nil
}

/*
 * @Description: 擦除一页
 * @param page 页号，按当前芯片页大小换算地址
 * @return error
 */
func (t *Loader) Erase(page int) error {
	start := page * t.device.PageSize
	end := start + t.device.PageSize - 1
	if page < 0 || end > 0xFFFF {
		return errors.Errorf("page %d is outside the 16-bit address space", page)
	}
	glog.Infof("will erase page %d (0x%04X-0x%04X)", page, start, end)
	return t.expectACK("erase", uint16(start), protocol.CommandErase, protocol.ErasePayload(uint16(start)))
}

/*
 * @Description: 从 address 开始写入最多128字节
 * @return error
 */
func (t *Loader) Write(address uint16, data []byte) error {
	payload, err := protocol.WritePayload(address, data)
	if err != nil {
		return err
	}
	glog.V(1).Infof("write at 0x%04X (%3d): %s", address, len(data), excerpt(data))
	return t.expectACK("write", address, protocol.CommandWrite, payload)
}

/*
 * @Description: 让芯片计算 [address, address+len(data)-1] 的CRC16并与 data 的CRC16比较
 * @return protocol.Response ACK 表示一致，不做判断直接返回
 * @return error 仅本地参数错误或串口错误
 */
func (t *Loader) Verify(address uint16, data []byte) (protocol.Response, error) {
	if len(data) == 0 {
		return 0, errors.Errorf("verify at 0x%04X: no data", address)
	}
	end := int(address) + len(data) - 1
	if end > 0xFFFF {
		return 0, errors.Errorf("verify at 0x%04X: %d bytes exceed the 16-bit address space", address, len(data))
	}
	crc := protocol.CRC16(data)
	t.tracef("verify address 0x%04X (len=%d, crc16=0x%04X)", address, len(data), crc)
	return t.Send(protocol.CommandVerify, protocol.VerifyPayload(address, uint16(end), crc))
}

// verifyRange Verify 并要求ACK
func (t *Loader) verifyRange(address uint16, data []byte) error {
	res, err := t.Verify(address, data)
	if err != nil {
		return err
	}
	if res != protocol.ACK {
		return &ProtocolError{Op: "verify", Address: address, Code: res}
	}
	return nil
}

/*
 * @Description: 复位芯片
 * @return error
 */
func (t *Loader) Reset() error {
	glog.Info("send reset command")
	if err := t.expectACK("reset", 0, protocol.CommandReset, protocol.ResetKey); err != nil {
		return err
	}
	glog.Info("success, device restarted...")
	return nil
}

// open 训练波特率并使能flash访问
func (t *Loader) open() error {
	if err := t.Training(); err != nil {
		return err
	}
	return t.Setup()
}
