package efm8

import (
	"github.com/golang/glog"

	"github.com/tocurd/go-efm8/protocol"
)

/*
 * @Description: 读取整个flash
 * 协议没有读命令，但VERIFY会比较芯片端与主机端的CRC，对单个地址逐个
 * 尝试候选值即可得到该地址的内容。先试0x00，再从0xFF向下尝试，
 * 未使用的flash大多是0xFF，平均只需一两次往返。
 * @return *Image 覆盖 [0, FlashSize)
 * @return error
 */
func (t *Loader) Dump() (*Image, error) {
	glog.Info("dumping flash content, please note that this will take long")

	device, err := t.Identify()
	if err != nil {
		return nil, err
	}

	image := NewImage()
	for address := 0; address < device.FlashSize; address++ {
		value, err := t.readByte(uint16(address))
		if err != nil {
			return nil, err
		}
		image.Set(uint32(address), value)
		t.reportProgress(Progress{
			Phase:   PhaseDump,
			Address: uint32(address),
			Current: address + 1,
			Total:   device.FlashSize,
			Value:   value,
		})
	}
	glog.Info("finished")
	return image, nil
}

/*
 * @Description: 用VERIFY逐个尝试候选值，最多256次往返
 * @param address
 * @return byte
 * @return error
 */
func (t *Loader) readByte(address uint16) (byte, error) {
	res, err := t.Verify(address, []byte{0x00})
	if err != nil {
		return 0, err
	}
	if res == protocol.ACK {
		return 0x00, nil
	}
	for candidate := 0xFF; candidate > 0x00; candidate-- {
		res, err = t.Verify(address, []byte{byte(candidate)})
		if err != nil {
			return 0, err
		}
		if res == protocol.ACK {
			return byte(candidate), nil
		}
	}
	return 0, &OracleError{Address: address}
}
