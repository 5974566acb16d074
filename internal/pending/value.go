package pending

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Field values are stored as a versioned tagged union so that binary
// values round-trip losslessly through the text-only repository layer.
//
// Wire forms (JSON):
//
//	{"v":1,"kind":"text","text":"hello"}
//	{"v":1,"kind":"bytes","encoding":"base64","data":"aGVsbG8="}
//	{"v":1,"kind":"pairs","pairs":[["k","v"],...]}
const valueVersion = 1

const (
	kindText  = "text"
	kindBytes = "bytes"
	kindPairs = "pairs"
)

type encodedValue struct {
	V        int         `json:"v"`
	Kind     string      `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Encoding string      `json:"encoding,omitempty"`
	Data     string      `json:"data,omitempty"`
	Pairs    [][2]string `json:"pairs,omitempty"`
}

// encodeValue serializes a field value. Supported input types are string,
// []byte, and [][2]string (an ordered list of key/value tuples).
func encodeValue(v any) (string, error) {
	var ev encodedValue
	ev.V = valueVersion
	switch val := v.(type) {
	case string:
		ev.Kind = kindText
		ev.Text = val
	case []byte:
		ev.Kind = kindBytes
		ev.Encoding = "base64"
		ev.Data = base64.StdEncoding.EncodeToString(val)
	case [][2]string:
		ev.Kind = kindPairs
		ev.Pairs = val
	default:
		return "", fmt.Errorf("pending: unsupported field value type %T", v)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("pending: encode value: %w", err)
	}
	return string(data), nil
}

// decodeValue reconstructs the original field value from its wire form.
func decodeValue(raw string) (any, error) {
	var ev encodedValue
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return nil, fmt.Errorf("pending: decode value: %w", err)
	}
	if ev.V != valueVersion {
		return nil, fmt.Errorf("pending: unsupported value version %d", ev.V)
	}
	switch ev.Kind {
	case kindText:
		return ev.Text, nil
	case kindBytes:
		if ev.Encoding != "base64" {
			return nil, fmt.Errorf("pending: unsupported byte encoding %q", ev.Encoding)
		}
		data, err := base64.StdEncoding.DecodeString(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("pending: decode bytes: %w", err)
		}
		return data, nil
	case kindPairs:
		return ev.Pairs, nil
	default:
		return nil, fmt.Errorf("pending: unknown value kind %q", ev.Kind)
	}
}
