package gpkg

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/geometry"
)

var gpbMagic = []byte{'G', 'P'}

// EncodeGeometry wraps WKB in a GeoPackage binary header with an xy envelope.
// Points are written without an envelope.
func EncodeGeometry(g orb.Geometry, srsID int) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	w, err := geometry.ToWKB(g)
	if err != nil {
		return nil, err
	}
	flags := byte(0x01) // little endian
	_, isPoint := g.(orb.Point)
	if !isPoint {
		flags |= 0x01 << 1
	}
	head := make([]byte, 8, 8+32+len(w))
	copy(head, gpbMagic)
	head[2] = 0
	head[3] = flags
	binary.LittleEndian.PutUint32(head[4:], uint32(int32(srsID)))
	if !isPoint {
		b := g.Bound()
		for _, v := range []float64{b.Min[0], b.Max[0], b.Min[1], b.Max[1]} {
			head = binary.LittleEndian.AppendUint64(head, math.Float64bits(v))
		}
	}
	return append(head, w...), nil
}

// DecodeGeometry strips the GeoPackage header and parses the WKB body.
func DecodeGeometry(b []byte) (orb.Geometry, error) {
	if len(b) < 8 || b[0] != gpbMagic[0] || b[1] != gpbMagic[1] {
		return nil, geometry.GeometryError{Kind: geometry.InvalidGeometry, Detail: "missing GeoPackage binary header"}
	}
	flags := b[3]
	if flags&0x10 != 0 {
		return nil, geometry.GeometryError{Kind: geometry.EmptyGeometry}
	}
	var envelope int
	switch (flags >> 1) & 0x07 {
	case 0:
		envelope = 0
	case 1:
		envelope = 32
	case 2, 3:
		envelope = 48
	case 4:
		envelope = 64
	default:
		return nil, geometry.GeometryError{Kind: geometry.InvalidGeometry, Detail: "bad envelope indicator"}
	}
	start := 8 + envelope
	if len(b) < start {
		return nil, geometry.GeometryError{Kind: geometry.InvalidGeometry, Detail: "truncated GeoPackage binary"}
	}
	return geometry.FromWKB(b[start:])
}
