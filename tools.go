package efm8

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// tracef 调试模式下总是输出，否则需要 -v=2
func (t *Loader) tracef(format string, args ...interface{}) {
	if t.config.Debug {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
		return
	}
	glog.V(2).Infof(format, args...)
}

func (t *Loader) reportProgress(progress Progress) {
	if t.config.Progress != nil {
		t.config.Progress(progress)
	}
}

func hexBytes(data []byte) string {
	var builder strings.Builder
	for _, value := range data {
		fmt.Fprintf(&builder, "0x%02x ", value)
	}
	return builder.String()
}

// traceData 最多显示前16字节
func traceData(data []byte) string {
	if len(data) > 16 {
		return hexBytes(data[:16]) + "..."
	}
	return hexBytes(data)
}

// excerpt 超过8字节时只显示首尾各4字节
func excerpt(data []byte) string {
	if len(data) > 8 {
		return hexBytes(data[:4]) + "... " + hexBytes(data[len(data)-4:])
	}
	return hexBytes(data)
}
