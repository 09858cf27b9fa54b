package jsontime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMilli_JSON(t *testing.T) {
	tm := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	data, err := json.Marshal(Milli(tm))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var got int64
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal result error: %v", err)
	}
	if got != tm.UnixMilli() {
		t.Errorf("got %d, want %d", got, tm.UnixMilli())
	}

	var back Milli
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !back.Time().Equal(tm) {
		t.Errorf("round trip: got %v, want %v", back.Time(), tm)
	}
}

func TestMilli_Msgpack(t *testing.T) {
	tm := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	data, err := msgpack.Marshal(Milli(tm))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back Milli
	if err := msgpack.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !back.Time().Equal(tm) {
		t.Errorf("round trip: got %v, want %v", back.Time(), tm)
	}
}

func TestMilli_Compare(t *testing.T) {
	a := Milli(time.UnixMilli(1000))
	b := Milli(time.UnixMilli(2000))

	if !a.Before(b) {
		t.Error("a should be before b")
	}
	if !b.After(a) {
		t.Error("b should be after a")
	}
	if got := b.Sub(a); got != time.Second {
		t.Errorf("Sub: got %v, want 1s", got)
	}
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"string", `"1h30m0s"`, 90 * time.Minute},
		{"int64", `1000000000`, time.Second},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if d.Duration() != tt.want {
				t.Errorf("got %v, want %v", d.Duration(), tt.want)
			}
		})
	}

	data, err := json.Marshal(Duration(90 * time.Minute))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `"1h30m0s"` {
		t.Errorf("got %s", data)
	}
}
