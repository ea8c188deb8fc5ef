package efm8

import "github.com/tocurd/go-efm8/protocol"

type Interface interface {
	// 自动波特率训练
	Training() error

	// 发送命令包，读取单字节应答
	Send(cmd protocol.Command, payload []byte) (protocol.Response, error)

	// 使能flash访问
	Setup() error

	// 识别芯片
	Identify() (Device, error)

	// 擦除一页
	Erase(page int) error

	// 写入到某个地址数据
	Write(address uint16, data []byte) error

	// 校验地址区间的CRC
	Verify(address uint16, data []byte) (protocol.Response, error)

	// 将镜像写入到flash内
	Program(image *Image) error

	// 读取整个flash
	Dump() (*Image, error)

	// 擦除第0页，恢复bootloader自启动
	RestoreBootloader() error

	// 复位芯片
	Reset() error

	Close() error
}

var _ Interface = (*Loader)(nil)
