// internal/metrics/encode.go
package metrics

import (
	"strconv"
	"strings"

	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Command key encoding. Bit-exact grammar:
 *
 *   bitmap_key   := "bmp:" bucket ":" unix_ts ":" field
 *   add_key      := "add:" bucket ":" unix_ts ":" pattern ":" values
 *   addvalue_key := "adv:" bucket ":" unix_ts ":" value_field ":" pattern ":" values
 *
 * The six-segment adv form leads with the value field so prefix scans can
 * discover it independent of which compound pattern it accompanies.
 */

// encodeBitmapKey materializes a four-segment bmp key.
func encodeBitmapKey(b bucketStamp, field string) string {
	return joinKey(types.CmdBitmap.String(), b.kind.String(), strconv.FormatInt(b.ts, 10), field)
}

// encodeAddKey materializes a five-segment add key.
func encodeAddKey(b bucketStamp, pattern, values string) string {
	return joinKey(types.CmdIncrement.String(), b.kind.String(), strconv.FormatInt(b.ts, 10), pattern, values)
}

// encodeAddValueKey materializes a six-segment adv key.
func encodeAddValueKey(b bucketStamp, valueField, pattern, values string) string {
	return joinKey(types.CmdIncrementBy.String(), b.kind.String(), strconv.FormatInt(b.ts, 10), valueField, pattern, values)
}

// joinKey joins segments with the key delimiter, pre-sizing the builder.
func joinKey(segments ...string) string {
	size := len(segments) - 1
	for _, s := range segments {
		size += len(s)
	}

	var b strings.Builder
	b.Grow(size)
	for i, s := range segments {
		if i > 0 {
			b.WriteByte(types.KeyDelimiter)
		}
		b.WriteString(s)
	}
	return b.String()
}
