package extractors

import (
	"encoding/json"
	"testing"
)

func TestPropertyEncodesName(t *testing.T) {
	b, err := Property("name").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out["property"] != "name" {
		t.Fatalf("got %v, want property=name", out)
	}
}

func TestChainedEncodesPathInOrder(t *testing.T) {
	b, err := Chained("address", "city").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out struct {
		Chain []string `json:"chain"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Chain) != 2 || out.Chain[0] != "address" || out.Chain[1] != "city" {
		t.Fatalf("got %v, want [address city]", out.Chain)
	}
}
