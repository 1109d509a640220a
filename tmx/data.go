package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// decodeData turns a layer data element into width*height raw gid
// values in row-major order, flip flags still packed.
func decodeData(d *xmlData, width, height int) ([]uint32, error) {
	want := width * height

	var gids []uint32
	switch d.Encoding {
	case "":
		// plain XML: one child element per cell
		gids = make([]uint32, 0, len(d.Tiles))
		for _, t := range d.Tiles {
			gids = append(gids, t.GID)
		}

	case "csv":
		fields := strings.Split(strings.TrimSpace(d.Body), ",")
		gids = make([]uint32, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: bad csv value %q", ErrBadMap, f)
			}
			gids = append(gids, uint32(v))
		}

	case "base64":
		raw, err := decodeBase64(d.Body, d.Compression)
		if err != nil {
			return nil, err
		}
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("%w: base64 data length %d", ErrBadMap, len(raw))
		}
		gids = make([]uint32, len(raw)/4)
		for i := range gids {
			gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, d.Encoding)
	}

	if len(gids) != want {
		return nil, fmt.Errorf("%w: %d cells, want %d", ErrBadMap, len(gids), want)
	}
	return gids, nil
}

func decodeBase64(body, compression string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMap, err)
	}

	var r io.Reader
	switch compression {
	case "":
		return data, nil
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(data))
	case "zlib":
		r, err = zlib.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedEncoding, compression)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMap, err)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMap, err)
	}
	return out, nil
}
