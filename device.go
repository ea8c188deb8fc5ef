package efm8

import "fmt"

// Device 芯片型号描述，来自 Devices 目录
type Device struct {
	DeviceID         byte
	VariantID        byte
	Family           string
	Name             string
	FlashSize        int
	PageSize         int
	SecurityPageSize int
}

func (d Device) String() string {
	return fmt.Sprintf("%s cpu (variant %s, flash_size=%d, pagesize=%d)", d.Family, d.Name, d.FlashSize, d.PageSize)
}

// Pages flash总页数
func (d Device) Pages() int {
	return d.FlashSize / d.PageSize
}

// 识别之前使用的默认参数
var defaultDevice = Device{
	Family:           "unknown",
	Name:             "unknown",
	FlashSize:        16 * 1024,
	PageSize:         512,
	SecurityPageSize: 512,
}

// Devices 已知型号，识别时按此顺序逐个尝试，顺序即优先级
var Devices = []Device{
	{0x25, 0x01, "EFM8SB1", "EFM8SB10F8G_QFN24", 8 * 1024, 512, 512},
	{0x25, 0x02, "EFM8SB1", "EFM8SB10F8G_QSOP24", 8 * 1024, 512, 512},
	{0x25, 0x03, "EFM8SB1", "EFM8SB10F8G_QFN20", 8 * 1024, 512, 512},
	{0x25, 0x06, "EFM8SB1", "EFM8SB10F4G_QFN20", 4 * 1024, 512, 512},
	{0x25, 0x09, "EFM8SB1", "EFM8SB10F2G_QFN20", 2 * 1024, 512, 512},

	{0x30, 0x01, "EFM8BB1", "EFM8BB10F8G_QSOP24", 8 * 1024, 512, 512},
	{0x30, 0x02, "EFM8BB1", "EFM8BB10F8G_QFN20", 8 * 1024, 512, 512},
	{0x30, 0x03, "EFM8BB1", "EFM8BB10F8G_SOIC16", 8 * 1024, 512, 512},
	{0x30, 0x05, "EFM8BB1", "EFM8BB10F4G_QFN20", 4 * 1024, 512, 512},
	{0x30, 0x08, "EFM8BB1", "EFM8BB10F2G_QFN20", 2 * 1024, 512, 512},
	{0x30, 0x12, "EFM8BB1", "EFM8BB10F8I_QFN20", 8 * 1024, 512, 512},

	{0x32, 0x01, "EFM8BB2", "EFM8BB22F16G_QFN28", 16 * 1024, 512, 512},
	{0x32, 0x02, "EFM8BB2", "EFM8BB21F16G_QSOP24", 16 * 1024, 512, 512},
	{0x32, 0x03, "EFM8BB2", "EFM8BB21F16G_QFN20", 16 * 1024, 512, 512},

	{0x34, 0x01, "EFM8BB3", "EFM8BB31F64G-QFN32", 64 * 1024, 512, 512},
}

// 目录未命中时的全范围扫描边界，device_id ∈ [0,ProbeDeviceIDs), variant_id ∈ [0,ProbeVariantIDs)
// TODO: variant_id 只扫到24，更大的变体ID会被报告为 NotFoundError
const (
	ProbeDeviceIDs  = 0xFF
	ProbeVariantIDs = 24
)

/*
 * @Description: 按ID查找目录
 * @return Device
 * @return bool
 */
func Lookup(deviceID, variantID byte) (Device, bool) {
	for _, device := range Devices {
		if device.DeviceID == deviceID && device.VariantID == variantID {
			return device, true
		}
	}
	return Device{}, false
}
