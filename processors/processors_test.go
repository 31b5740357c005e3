package processors

import (
	"encoding/json"
	"testing"

	"github.com/rlubke/coherence-go-client/filters"
)

func TestUpdateEncodesOpAndValue(t *testing.T) {
	b, err := Update("new-value").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out struct {
		Op    string `json:"op"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Op != "update" || out.Value != "new-value" {
		t.Fatalf("got %+v, want op=update value=new-value", out)
	}
}

func TestConditionalPutEncodesFilterIdentity(t *testing.T) {
	f := filters.Equal("status", "pending")
	b, err := ConditionalPut(f, "done").Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out struct {
		Op     string `json:"op"`
		Filter string `json:"filter"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Op != "conditionalPut" || out.Value != "done" || out.Filter != f.Identity() {
		t.Fatalf("got %+v", out)
	}
}
