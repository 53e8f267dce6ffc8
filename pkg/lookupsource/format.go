// Package lookupsource acquires lookup data from a filesystem path, an
// http(s):// URL or an s3:// object, decodes it, and feeds it into a
// pkg/lookup.Manager — either once at startup or on an ongoing schedule.
package lookupsource

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/marmos91/oakd/pkg/ombox"
)

// Decode parses oakd's lookup-data wire format: a flat sequence of
// [4-byte LE key length][key][4-byte LE value length][value] entries, with
// no outer framing. This is an explicit format choice recorded in
// DESIGN.md — the upstream Oak Functions loader's own on-disk format is
// not part of the retrieved source, so this repo defines its own, matching
// the "at most one value per key" invariant the Rust LookupDataManager
// enforces by construction (a later entry for a duplicate key overwrites
// an earlier one).
func Decode(r io.Reader) (map[string][]byte, error) {
	data := make(map[string][]byte)
	for {
		key, err := readFrame(r)
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, ombox.Wrap(ombox.ErrInvalidArgument, err)
		}
		value, err := readFrame(r)
		if err != nil {
			return nil, ombox.New(ombox.ErrInvalidArgument, "truncated lookup data: value missing for key %q", key)
		}
		data[string(key)] = value
	}
}

func readFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Encode serializes data in the format Decode reads, for tests and for
// operators producing lookup-data files.
func Encode(data map[string][]byte) []byte {
	var buf bytes.Buffer
	for k, v := range data {
		writeFrame(&buf, []byte(k))
		writeFrame(&buf, v)
	}
	return buf.Bytes()
}

func writeFrame(buf *bytes.Buffer, b []byte) {
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(b)))
	buf.Write(length[:])
	buf.Write(b)
}
