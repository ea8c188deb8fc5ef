package efm8

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

/*
 * @Description: 识别芯片型号
 * 协议没有读ID的命令，只能逐个猜测ID组合看芯片是否应答ACK。
 * 先按 Devices 的顺序尝试，第一个ACK即为结果；全部失败后扫描
 * [0,ProbeDeviceIDs) x [0,ProbeVariantIDs)，有应答说明目录缺少该型号。
 * @return Device
 * @return error
 */
func (t *Loader) Identify() (Device, error) {
	glog.Info("checking for device")

	if err := t.open(); err != nil {
		return Device{}, errors.Wrap(err, "identify")
	}

	family := ""
	for _, device := range Devices {
		if device.Family != family {
			family = device.Family
			glog.V(1).Infof("checking for device %s", family)
		}
		ok, err := t.CheckID(device.DeviceID, device.VariantID)
		if err != nil {
			return Device{}, errors.Wrapf(err, "identify %s", device.Name)
		}
		if ok {
			t.device = device
			glog.Infof("detected %s", device)
			return device, nil
		}
	}

	glog.Info("no known device answered, scanning all ids")
	for deviceID := 0; deviceID < ProbeDeviceIDs; deviceID++ {
		glog.V(1).Infof("checking device_id 0x%02X...", deviceID)
		for variantID := 0; variantID < ProbeVariantIDs; variantID++ {
			ok, err := t.CheckID(byte(deviceID), byte(variantID))
			if err != nil {
				return Device{}, errors.Wrap(err, "identify scan")
			}
			if ok {
				return Device{}, &UnrecognizedDeviceError{DeviceID: byte(deviceID), VariantID: byte(variantID)}
			}
		}
	}
	return Device{}, NotFoundError
}
