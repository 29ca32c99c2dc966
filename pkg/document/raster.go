package document

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/matzehuels/contactsheet/pkg/page"
)

const (
	pngSignatureLen = 8
	pngIHDRLen      = 4 + 4 + 13 + 4 // length, type, data, crc
)

// encodePNG encodes img losslessly and records dpi in a pHYs chunk.
func encodePNG(img image.Image, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return withPHYs(buf.Bytes(), dpi), nil
}

// withPHYs inserts a pHYs chunk directly after IHDR.
func withPHYs(data []byte, dpi int) []byte {
	at := pngSignatureLen + pngIHDRLen
	if len(data) < at || dpi <= 0 {
		return data
	}
	ppm := uint32(math.Round(float64(dpi) / page.MMPerInch * 1000))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = 1 // unit: meter
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:at]...)
	out = append(out, chunk...)
	return append(out, data[at:]...)
}

// encodeJPEG encodes img at quality q and records dpi in a JFIF header.
func encodeJPEG(img image.Image, q, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return withJFIF(buf.Bytes(), dpi), nil
}

// withJFIF inserts an APP0 JFIF segment after SOI unless one is present.
func withJFIF(data []byte, dpi int) []byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 || dpi <= 0 {
		return data
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data
	}
	d := uint16(min(dpi, math.MaxUint16))
	app0 := []byte{
		0xFF, 0xE0, // APP0
		0x00, 0x10, // segment length
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01, // version 1.1
		0x01, // density unit: dots per inch
		byte(d >> 8), byte(d),
		byte(d >> 8), byte(d),
		0x00, 0x00, // no thumbnail
	}
	out := make([]byte, 0, len(data)+len(app0))
	out = append(out, data[:2]...)
	out = append(out, app0...)
	return append(out, data[2:]...)
}
