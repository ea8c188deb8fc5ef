package efm8

import (
	"time"

	"github.com/tocurd/go-efm8/protocol"
)

const (
	PhaseErase  = "erase"
	PhaseWrite  = "write"
	PhaseVerify = "verify"
	PhaseDump   = "dump"
)

// Progress 编程或读取过程中的进度
type Progress struct {
	Phase   string
	Address uint32
	Current int
	Total   int
	// Value 读flash时当前地址恢复出的字节
	Value byte
}

type ProgressCallback func(Progress)

type Config struct {
	// Debug 打印每个命令包与应答
	Debug bool

	Progress ProgressCallback

	// BaudRate 与 Timeout 仅在 Open 打开串口时使用
	BaudRate int
	Timeout  time.Duration
}

func defaultConfig() Config {
	return Config{
		BaudRate: protocol.DefaultBaudRate,
		Timeout:  time.Second,
	}
}

type Option func(*Config)

func WithDebug(debug bool) Option {
	return func(c *Config) {
		c.Debug = debug
	}
}

func WithProgress(callback ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}

func WithBaudRate(baudRate int) Option {
	return func(c *Config) {
		if baudRate > 0 {
			c.BaudRate = baudRate
		}
	}
}

// WithTimeout 单字节应答的等待时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}
