package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateRoundTripJSON(t *testing.T) {
	d := NewDate(2024, time.January, 15)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-01-15"` {
		t.Fatalf("unexpected encoding %s", raw)
	}

	var decoded Date
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(d) {
		t.Fatalf("round trip mismatch: %s != %s", decoded, d)
	}
}

func TestDateZeroEncodesNull(t *testing.T) {
	raw, err := json.Marshal(Date{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "null" {
		t.Fatalf("expected null, got %s", raw)
	}

	var decoded Date
	if err := json.Unmarshal([]byte("null"), &decoded); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !decoded.IsZero() {
		t.Fatalf("expected zero date")
	}
}

func TestDateOfDropsTimeComponent(t *testing.T) {
	stamp := time.Date(2024, time.January, 10, 23, 45, 1, 0, time.FixedZone("x", 3600))
	d := DateOf(stamp)
	if d.String() != "2024-01-10" {
		t.Fatalf("unexpected date %s", d)
	}
}

func TestDateAddDaysAndCompare(t *testing.T) {
	d := NewDate(2024, time.January, 15)
	next := d.AddDays(1)
	if next.String() != "2024-01-16" {
		t.Fatalf("unexpected date %s", next)
	}
	if !d.Before(next) || !next.After(d) {
		t.Fatalf("comparison broken for %s vs %s", d, next)
	}
}

func TestDateScanVariants(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.March, 2, 13, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2024-03-02" {
		t.Fatalf("unexpected date %s", d)
	}

	if err := d.Scan("2024-03-04"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d.String() != "2024-03-04" {
		t.Fatalf("unexpected date %s", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("expected zero date after nil scan")
	}
}
