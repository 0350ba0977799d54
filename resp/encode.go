package resp

import "strconv"

// intBase10MaxLen bounds the decimal rendering of a 64-bit length or
// integer prefix ("-9223372036854775808" is 20 bytes).
const intBase10MaxLen = 20

// Encode appends the wire representation of f to buf and returns the
// grown slice, in the append-and-grow style used for hot encode paths
// instead of a bytes.Buffer per call.
func Encode(buf []byte, f Frame) []byte {
	switch f.Kind {
	case KindSimple:
		buf = append(buf, '+')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case KindInt:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, f.Int, 10)
		return append(buf, '\r', '\n')
	case KindBulk:
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(f.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, f.Bulk...)
		return append(buf, '\r', '\n')
	case KindNull:
		return append(buf, '$', '-', '1', '\r', '\n')
	case KindArray:
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(f.Array)), 10)
		buf = append(buf, '\r', '\n')
		for _, item := range f.Array {
			buf = Encode(buf, item)
		}
		return buf
	case KindMap:
		buf = append(buf, '%')
		buf = strconv.AppendInt(buf, int64(len(f.Map)), 10)
		buf = append(buf, '\r', '\n')
		for _, entry := range f.Map {
			buf = Encode(buf, entry.Key)
			buf = Encode(buf, entry.Value)
		}
		return buf
	default:
		// Unreachable for frames constructed through this package's
		// constructors; a zero-value Frame encodes as nothing rather
		// than panicking a connection goroutine.
		return buf
	}
}
