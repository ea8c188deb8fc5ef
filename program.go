package efm8

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/tocurd/go-efm8/protocol"
)

/*
 * @Description: 将镜像写入flash
 * 只要 flash[0] 为 0xFF 芯片上电就会进入bootloader，所以地址0的字节
 * 留到所有其他数据写入并校验通过后才写；最后一步失败时重新擦除第0页，
 * 保证芯片仍然可以通过bootloader恢复。
 * @param image
 * @return error
 */
func (t *Loader) Program(image *Image) error {
	if image == nil || image.Len() == 0 {
		return errors.New("image is empty")
	}

	device, err := t.Identify()
	if err != nil {
		return err
	}
	addresses := image.Addresses()
	if last := addresses[len(addresses)-1]; last >= uint32(device.FlashSize) {
		return &AddressRangeError{Address: last, FlashSize: device.FlashSize}
	}

	if err = t.erasePages(image); err != nil {
		return err
	}

	byteZero, hasByteZero := image.Get(0)
	if err = t.writeSegments(image); err != nil {
		return err
	}
	if err = t.verifySegments(image); err != nil {
		return err
	}
	if hasByteZero {
		if err = t.commitByteZero(byteZero); err != nil {
			return err
		}
	}
	glog.Infof("programmed %d bytes in %d segments", image.Len(), len(image.Segments()))
	return nil
}

// Pages 镜像占用的页号(升序)，第0页总是包含在内
func (t *Loader) Pages(image *Image) []int {
	pages := []int{0}
	for _, address := range image.Addresses() {
		page := int(address) / t.device.PageSize
		if page != pages[len(pages)-1] {
			pages = append(pages, page)
		}
	}
	return pages
}

/*
 * @Description: 擦除镜像用到的页，第0页无条件擦除以保留bootloader入口
 * @return error
 */
func (t *Loader) erasePages(image *Image) error {
	pages := t.Pages(image)
	for index, page := range pages {
		if err := t.Erase(page); err != nil {
			return err
		}
		t.reportProgress(Progress{
			Phase:   PhaseErase,
			Address: uint32(page * t.device.PageSize),
			Current: index + 1,
			Total:   len(pages),
		})
	}
	return nil
}

// withoutByteZero 去掉地址0后的区间起点与数据
func withoutByteZero(image *Image, segment Segment) (uint32, []byte) {
	data := image.Bytes(segment)
	if segment.Start == 0 {
		return 1, data[1:]
	}
	return segment.Start, data
}

/*
 * @Description: 按段写入，每段最多128字节一包，写完整段后立即校验
 * @return error
 */
func (t *Loader) writeSegments(image *Image) error {
	written := 0
	for _, segment := range image.Segments() {
		glog.Infof("writing segment 0x%04X-0x%04X", segment.Start, segment.End-1)

		start, data := withoutByteZero(image, segment)
		if segment.Start == 0 {
			glog.Infof("delaying write of flash[0] = 0x%02X to the end", image.Bytes(segment)[0])
		}
		if len(data) == 0 {
			continue
		}

		for offset := 0; offset < len(data); offset += protocol.MaxWriteSize {
			end := offset + protocol.MaxWriteSize
			if end > len(data) {
				end = len(data)
			}
			address := start + uint32(offset)
			if err := t.Write(uint16(address), data[offset:end]); err != nil {
				return err
			}
			written += end - offset
			t.reportProgress(Progress{
				Phase:   PhaseWrite,
				Address: address,
				Current: written,
				Total:   image.Len(),
			})
		}

		if err := t.verifyRange(uint16(start), data); err != nil {
			return err
		}
		glog.Infof("verifying segment 0x%04X-0x%04X... OK", start, segment.End-1)
	}
	return nil
}

/*
 * @Description: 写入完成后逐段再校验一遍，地址0此时仍为0xFF，不在此处校验
 * @return error
 */
func (t *Loader) verifySegments(image *Image) error {
	segments := image.Segments()
	for index, segment := range segments {
		start, data := withoutByteZero(image, segment)
		if len(data) == 0 {
			continue
		}
		if err := t.verifyRange(uint16(start), data); err != nil {
			return err
		}
		glog.Infof("verifying segment 0x%04X-0x%04X... OK", start, segment.End-1)
		t.reportProgress(Progress{
			Phase:   PhaseVerify,
			Address: start,
			Current: index + 1,
			Total:   len(segments),
		})
	}
	return nil
}

/*
 * @Description: 最后写入并校验地址0，失败时擦除第0页
 * @param value
 * @return error
 */
func (t *Loader) commitByteZero(value byte) error {
	glog.Infof("will now write flash[0] = 0x%02X", value)
	err := t.Write(0, []byte{value})
	if err == nil {
		err = t.verifyRange(0, []byte{value})
	}
	if err == nil {
		return nil
	}

	glog.Errorf("write of flash[0] failed: %v", err)
	if restoreErr := t.RestoreBootloader(); restoreErr != nil {
		return errors.Wrapf(err, "restore bootloader autostart failed (%v)", restoreErr)
	}
	return err
}

/*
 * @Description: 擦除第0页使 flash[0] 回到 0xFF，芯片下次上电会停留在bootloader
 * @return error
 */
func (t *Loader) RestoreBootloader() error {
	glog.Warning("will now erase page 0 in order to re-enable bootloader autorun")
	return t.Erase(0)
}
