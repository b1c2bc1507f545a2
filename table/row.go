package table

import (
	"encoding/binary"
	"fmt"
	"hash"
	"math"
)

// Row is one record of a table, in column order.
type Row []Value

const (
	tagNull byte = iota
	tagString
	tagInt
	tagFloat
	tagBool
	tagTime
	tagObject
)

// UpdateHash writes a canonical encoding of the row into h. Rows that are
// Equal produce the same bytes: integer widths collapse to int64 and
// integral floats hash like the matching integer.
func (r Row) UpdateHash(h hash.Hash) error {
	var buf [9]byte

	for _, v := range r {
		if err := writeCell(h, buf[:], v); err != nil {
			return err
		}
	}

	return nil
}

func writeCell(h hash.Hash, buf []byte, v Value) error {
	var err error

	switch k := v.Key().(type) {
	case nullKey:
		_, err = h.Write([]byte{tagNull})
	case string:
		err = writeBytes(h, buf, tagString, []byte(k))
	case int64:
		buf[0] = tagInt
		binary.LittleEndian.PutUint64(buf[1:], uint64(k)) //nolint:gosec
		_, err = h.Write(buf[:9])
	case float64:
		buf[0] = tagFloat
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(k))
		_, err = h.Write(buf[:9])
	case bool:
		b := byte(0)
		if k {
			b = 1
		}

		_, err = h.Write([]byte{tagBool, b})
	case timeKey:
		buf[0] = tagTime
		binary.LittleEndian.PutUint64(buf[1:], uint64(k.sec)) //nolint:gosec
		if _, err = h.Write(buf[:9]); err != nil {
			return err
		}

		binary.LittleEndian.PutUint32(buf[:4], uint32(k.nsec)) //nolint:gosec
		_, err = h.Write(buf[:4])
	case objectKey:
		err = writeBytes(h, buf, tagObject, []byte(k))
	default:
		err = fmt.Errorf("unhashable cell of type %T", k)
	}

	return err
}

// writeBytes length-prefixes variable width cells so that ("ab","c") and
// ("a","bc") hash differently.
func writeBytes(h hash.Hash, buf []byte, tag byte, b []byte) error {
	buf[0] = tag
	binary.LittleEndian.PutUint64(buf[1:], uint64(len(b)))

	if _, err := h.Write(buf[:9]); err != nil {
		return err
	}

	_, err := h.Write(b)

	return err
}

// Equal reports whether both rows have the same width and equal cells.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}

	for i := range r {
		if !r[i].Equal(other[i]) {
			return false
		}
	}

	return true
}
