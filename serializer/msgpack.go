package serializer

import (
	"bytes"

	"github.com/hashicorp/go-msgpack/codec"
)

// mh is the shared msgpack handle, configured the same way the
// teacher's RPC client configures its encoder/decoder
// (RawToString/WriteExt), so byte slices round-trip as bytes rather
// than being coerced to strings.
var mh = &codec.MsgpackHandle{RawToString: true, WriteExt: true}

// Msgpack is the Serializer for format id "msgpack", carried forward
// from the teacher's own wire codec
// (github.com/hashicorp/go-msgpack/codec). ByFormat resolves an empty
// format to JSON, not to Msgpack.
type Msgpack struct{}

func (Msgpack) Format() string { return "msgpack" }

func (Msgpack) Serialize(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, mh)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack) Deserialize(data []byte, out interface{}) error {
	dec := codec.NewDecoder(bytes.NewReader(data), mh)
	return dec.Decode(out)
}
