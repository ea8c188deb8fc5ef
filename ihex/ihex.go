// Package ihex reads and writes Intel HEX files as efm8.Image values.
package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/tocurd/go-efm8"
)

const (
	recordData            = 0x00
	recordEOF             = 0x01
	recordExtendedSegment = 0x02
	recordStartSegment    = 0x03
	recordExtendedLinear  = 0x04
	recordStartLinear     = 0x05
	bytesPerRecord        = 16
)

// Read 解析Intel HEX，地址按扩展段/扩展线性记录换算为32位
func Read(r io.Reader) (*efm8.Image, error) {
	image := efm8.NewImage()
	var base uint32

	scanner := bufio.NewScanner(r)
	for number := 1; scanner.Scan(); number++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] != ':' {
			continue
		}

		record, err := hex.DecodeString(line[1:])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", number)
		}
		if len(record) < 5 || len(record) != 5+int(record[0]) {
			return nil, errors.Errorf("line %d: invalid record length", number)
		}
		var sum byte
		for _, value := range record {
			sum += value
		}
		if sum != 0 {
			return nil, errors.Errorf("line %d: bad checksum", number)
		}

		data := record[4 : len(record)-1]
		switch record[3] {
		case recordData:
			offset := uint32(record[1])<<8 | uint32(record[2])
			image.SetBytes(base+offset, data)
		case recordEOF:
			return image, nil
		case recordExtendedSegment:
			if len(data) != 2 {
				return nil, errors.Errorf("line %d: invalid extended segment address", number)
			}
			base = (uint32(data[0])<<8 | uint32(data[1])) << 4
		case recordExtendedLinear:
			if len(data) != 2 {
				return nil, errors.Errorf("line %d: invalid extended linear address", number)
			}
			base = (uint32(data[0])<<8 | uint32(data[1])) << 16
		case recordStartSegment, recordStartLinear:
			// 启动地址对flash无意义
		default:
			return nil, errors.Errorf("line %d: unknown record type 0x%02X", number, record[3])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return image, nil
}

func ReadFile(path string) (*efm8.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	image, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return image, nil
}

func writeRecord(w io.Writer, recordType byte, address uint16, data []byte) error {
	record := append([]byte{byte(len(data)), byte(address >> 8), byte(address), recordType}, data...)
	var sum byte
	for _, value := range record {
		sum += value
	}
	record = append(record, -sum)
	_, err := fmt.Fprintf(w, ":%s\n", strings.ToUpper(hex.EncodeToString(record)))
	return err
}

// Write 每条数据记录16字节，跨64K边界时插入扩展线性地址记录
func Write(w io.Writer, image *efm8.Image) error {
	var upper uint32
	for _, segment := range image.Segments() {
		data := image.Bytes(segment)
		for address := segment.Start; address < segment.End; {
			end := address + bytesPerRecord
			if end > segment.End {
				end = segment.End
			}
			// 单条记录不能跨越64K
			if boundary := (address | 0xFFFF) + 1; boundary != 0 && end > boundary {
				end = boundary
			}

			if address>>16 != upper {
				upper = address >> 16
				if err := writeRecord(w, recordExtendedLinear, 0, []byte{byte(upper >> 8), byte(upper)}); err != nil {
					return err
				}
			}
			chunk := data[address-segment.Start : end-segment.Start]
			if err := writeRecord(w, recordData, uint16(address), chunk); err != nil {
				return err
			}
			address = end
		}
	}
	return writeRecord(w, recordEOF, 0, nil)
}

func WriteFile(path string, image *efm8.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = Write(w, image); err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return errors.Wrapf(err, "write %s", path)
}
