package domain

import (
	"testing"
	"time"
)

func TestSoftDelete_MarkAndClear(t *testing.T) {
	var c Comment
	if c.IsDeleted() {
		t.Fatal("zero value should not be deleted")
	}

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.MarkDeleted("3", "spam", at)
	if !c.IsDeleted() || c.DeletedBy != "3" || c.DeleteReason != "spam" || !c.DeletedAt.Equal(at) {
		t.Fatalf("unexpected stamps %+v", c.SoftDelete)
	}

	c.ClearDeleted()
	if c.IsDeleted() || c.DeletedBy != "" || c.DeleteReason != "" {
		t.Fatalf("stamps not cleared: %+v", c.SoftDelete)
	}
}

func TestStringList_ValueScan(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != `["a","b"]` {
		t.Fatalf("Value = %v", v)
	}

	var nilList StringList
	if v, _ := nilList.Value(); v != "[]" {
		t.Fatalf("nil Value = %v; want []", v)
	}

	var got StringList
	if err := got.Scan([]byte(`["x","y"]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 || got[1] != "y" {
		t.Fatalf("Scan = %v", got)
	}
	if err := got.Scan(nil); err != nil || len(got) != 0 {
		t.Fatalf("Scan(nil) = %v, %v", got, err)
	}
	if err := got.Scan(42); err == nil {
		t.Fatal("Scan(int) should fail")
	}
}

func TestStringList_Without(t *testing.T) {
	l := StringList{"a", "b", "a"}
	out := l.Without("a")
	if len(out) != 1 || out[0] != "b" {
		t.Fatalf("Without = %v", out)
	}
	if !l.Contains("a") || out.Contains("a") {
		t.Fatal("Without must not modify the receiver")
	}
}

func TestTour_ApplyTransition(t *testing.T) {
	tour := Tour{Status: TourPending}
	at := time.Now()
	tour.ApplyTransition(TourRejected, "9", "missing photos", at)
	if tour.CurrentStatus() != TourRejected || tour.ReviewedBy != "9" || tour.ReviewReason != "missing photos" || !tour.ReviewedAt.Equal(at) {
		t.Fatalf("unexpected tour %+v", tour)
	}
}
