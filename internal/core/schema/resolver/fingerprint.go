package resolver

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

// Fingerprint digests resolved values. Equal value sets give equal
// fingerprints regardless of map iteration order.
func Fingerprint(values schema.Values) uint64 {
	d := xxhash.New()
	writeValue(d, values)
	return d.Sum64()
}

// value kinds written ahead of each value so "1" and 1 differ
const (
	kindNull byte = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindList
	kindStruct
	kindMap
	kindVariant
	kindVec2
	kindBox2
	kindOther
)

func writeValue(d *xxhash.Digest, v any) {
	var buf [8]byte
	writeU64 := func(u uint64) {
		binary.LittleEndian.PutUint64(buf[:], u)
		_, _ = d.Write(buf[:])
	}
	writeString := func(s string) {
		writeU64(uint64(len(s)))
		_, _ = d.WriteString(s)
	}

	switch t := v.(type) {
	case nil:
		_, _ = d.Write([]byte{kindNull})
	case bool:
		b := byte(0)
		if t {
			b = 1
		}
		_, _ = d.Write([]byte{kindBool, b})
	case int64:
		_, _ = d.Write([]byte{kindInt})
		writeU64(uint64(t))
	case float64:
		_, _ = d.Write([]byte{kindFloat})
		writeU64(math.Float64bits(t))
	case string:
		_, _ = d.Write([]byte{kindString})
		writeString(t)
	case []any:
		_, _ = d.Write([]byte{kindList})
		writeU64(uint64(len(t)))
		for _, e := range t {
			writeValue(d, e)
		}
	case schema.Values:
		_, _ = d.Write([]byte{kindStruct})
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writeU64(uint64(len(keys)))
		for _, k := range keys {
			writeString(k)
			writeValue(d, t[k])
		}
	case *document.Map:
		_, _ = d.Write([]byte{kindMap})
		keys := t.Keys()
		writeU64(uint64(len(keys)))
		for _, k := range keys {
			writeString(k)
			inner, _ := t.Get(k)
			writeValue(d, inner)
		}
	case *document.Tagged:
		_, _ = d.Write([]byte{kindVariant})
		writeString(t.Tag)
		writeValue(d, t.Value)
	case physics.Vec2:
		_, _ = d.Write([]byte{kindVec2})
		writeU64(math.Float64bits(t.X))
		writeU64(math.Float64bits(t.Y))
	case physics.Box2:
		_, _ = d.Write([]byte{kindBox2})
		for _, f := range [4]float64{t.Left, t.Bottom, t.Right, t.Top} {
			writeU64(math.Float64bits(f))
		}
	default:
		_, _ = d.Write([]byte{kindOther})
		writeString(fmt.Sprintf("%T:%v", v, v))
	}
}
