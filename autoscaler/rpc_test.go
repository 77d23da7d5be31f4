package autoscaler

import (
	"bytes"
	"testing"

	hcodec "github.com/hashicorp/go-msgpack/v2/codec"
)

func TestRPC_MsgpackHandle(t *testing.T) {
	if !HashiMsgpackHandle.RawToString {
		t.Fatal("expected the msgpack handle to decode raw bytes as strings")
	}

	var buf bytes.Buffer
	enc := hcodec.NewEncoder(&buf, HashiMsgpackHandle)
	if err := enc.Encode(map[string]interface{}{"policy": "cost"}); err != nil {
		t.Fatal(err)
	}

	var out interface{}
	dec := hcodec.NewDecoder(&buf, HashiMsgpackHandle)
	if err := dec.Decode(&out); err != nil {
		t.Fatal(err)
	}

	m, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map[string]interface{} but got %T", out)
	}
	if v, ok := m["policy"].(string); !ok || v != "cost" {
		t.Fatalf("expected the value to round-trip as the string \"cost\" "+
			"but got %#v", m["policy"])
	}
}
