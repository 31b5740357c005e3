package serializer

import "encoding/json"

// JSON is the stdlib-backed Serializer for format id "json". No
// third-party JSON library appears anywhere in the reference corpus
// this module was grounded on, so the json path is the one place this
// module reaches for the standard library over an ecosystem package
// (see DESIGN.md).
type JSON struct{}

func (JSON) Format() string { return "json" }

func (JSON) Serialize(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Deserialize(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}
