package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshalJSON_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"30m"`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d.Duration != 30*time.Minute {
		t.Errorf("expected 30m, got %v", d.Duration)
	}
}

func TestUnmarshalJSON_Nanoseconds(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`60000000000`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d.Duration != time.Minute {
		t.Errorf("expected 1m, got %v", d.Duration)
	}
}

func TestUnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Errorf("expected an error")
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Errorf("expected an error for a bool value")
	}
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	in := Duration{Duration: 90 * time.Second}

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var out Duration
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if out.Duration != in.Duration {
		t.Errorf("round trip changed value: %v != %v", out.Duration, in.Duration)
	}
}
