package stack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"skeletonize3d/pkg/skeleton"
)

// Codec selects how the payload of a raw volume file is compressed.
type Codec uint8

const (
	Uncompressed Codec = iota
	Snappy
	Zstd
)

func (c Codec) String() string {
	switch c {
	case Uncompressed:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCodec maps a codec name to a Codec.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return Uncompressed, fmt.Errorf("unknown codec %q", name)
}

var rawMagic = [4]byte{'S', 'K', 'V', '1'}

// maxRawDim bounds each dimension read from a raw header
const maxRawDim = 4096

// rawHeader precedes the voxel payload. All fields are little endian.
type rawHeader struct {
	Magic  [4]byte
	Width  uint32
	Height uint32
	Depth  uint32
	Codec  Codec
}

// WriteRaw stores v as a header followed by its voxel buffer, compressed
// with codec.
func WriteRaw(w io.Writer, v *skeleton.Volume, codec Codec) error {
	hdr := rawHeader{
		Magic:  rawMagic,
		Width:  uint32(v.Width()),
		Height: uint32(v.Height()),
		Depth:  uint32(v.Depth()),
		Codec:  codec,
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("failed to write raw header: %w", err)
	}

	switch codec {
	case Uncompressed:
		_, err := w.Write(v.Data())
		return err
	case Snappy:
		_, err := w.Write(snappy.Encode(nil, v.Data()))
		return err
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		if _, err := enc.Write(v.Data()); err != nil {
			enc.Close()
			return fmt.Errorf("failed to compress voxels: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("illegal codec %d", codec)
}

// ReadRaw decodes a volume written by WriteRaw.
func ReadRaw(r io.Reader) (*skeleton.Volume, Codec, error) {
	var hdr rawHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, 0, fmt.Errorf("failed to read raw header: %w", err)
	}
	if hdr.Magic != rawMagic {
		return nil, 0, fmt.Errorf("bad raw volume signature %q", hdr.Magic[:])
	}

	if hdr.Width > maxRawDim || hdr.Height > maxRawDim || hdr.Depth > maxRawDim {
		return nil, 0, fmt.Errorf("invalid raw dimensions: %d x %d x %d", hdr.Width, hdr.Height, hdr.Depth)
	}
	size := int(hdr.Width) * int(hdr.Height) * int(hdr.Depth)
	if size > maxVolumeVoxels {
		return nil, 0, fmt.Errorf("raw volume of %d voxels is too large", size)
	}

	// Payloads are read through a limit one past the expected size; the
	// header alone never sizes an allocation.
	var data []byte
	switch hdr.Codec {
	case Uncompressed:
		var err error
		if data, err = io.ReadAll(io.LimitReader(r, int64(size)+1)); err != nil {
			return nil, 0, fmt.Errorf("failed to read voxels: %w", err)
		}
	case Snappy:
		payload, err := io.ReadAll(io.LimitReader(r, int64(snappy.MaxEncodedLen(size))+1))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read voxels: %w", err)
		}
		n, err := snappy.DecodedLen(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decompress voxels: %w", err)
		}
		if n != size {
			return nil, 0, fmt.Errorf("raw payload holds %d voxels, header says %d", n, size)
		}
		if data, err = snappy.Decode(nil, payload); err != nil {
			return nil, 0, fmt.Errorf("failed to decompress voxels: %w", err)
		}
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, io.LimitReader(dec, int64(size)+1)); err != nil {
			return nil, 0, fmt.Errorf("failed to decompress voxels: %w", err)
		}
		data = buf.Bytes()
	default:
		return nil, 0, fmt.Errorf("illegal codec %d", hdr.Codec)
	}
	if len(data) != size {
		return nil, 0, fmt.Errorf("raw payload holds %d voxels, header says %d", len(data), size)
	}

	v, err := skeleton.NewVolumeFromData(data, int(hdr.Width), int(hdr.Height), int(hdr.Depth))
	if err != nil {
		return nil, 0, err
	}
	return v, hdr.Codec, nil
}
