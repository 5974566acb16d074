package pending

import (
	"bytes"
	"testing"
)

func TestEncodeValue_RejectsUnsupportedTypes(t *testing.T) {
	if _, err := encodeValue(42); err == nil {
		t.Error("expected error for int value")
	}
	if _, err := encodeValue(nil); err == nil {
		t.Error("expected error for nil value")
	}
}

func TestDecodeValue_RejectsUnknownVersionAndKind(t *testing.T) {
	if _, err := decodeValue(`{"v":99,"kind":"text","text":"x"}`); err == nil {
		t.Error("expected error for unknown version")
	}
	if _, err := decodeValue(`{"v":1,"kind":"blob"}`); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := decodeValue(`not json`); err == nil {
		t.Error("expected error for malformed wire form")
	}
}

func TestValueCodec_RoundTrip(t *testing.T) {
	cases := []any{
		"plain text",
		"",
		[]byte{0x00, 0x01, 0xfe, 0xff},
		[][2]string{{"a", "1"}, {"b", "2"}},
	}
	for _, in := range cases {
		wire, err := encodeValue(in)
		if err != nil {
			t.Fatalf("encode %#v: %v", in, err)
		}
		out, err := decodeValue(wire)
		if err != nil {
			t.Fatalf("decode %q: %v", wire, err)
		}
		switch want := in.(type) {
		case string:
			if out != want {
				t.Errorf("round trip %#v -> %#v", in, out)
			}
		case []byte:
			if got, ok := out.([]byte); !ok || !bytes.Equal(got, want) {
				t.Errorf("round trip %#v -> %#v", in, out)
			}
		case [][2]string:
			got, ok := out.([][2]string)
			if !ok || len(got) != len(want) {
				t.Fatalf("round trip %#v -> %#v", in, out)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("pair %d: %v != %v", i, got[i], want[i])
				}
			}
		}
	}
}
