package internaldefs

import (
	"strings"
	"testing"
)

func TestCounterDefsUniqueAndSuffixed(t *testing.T) {
	names := map[string]bool{}
	ids := map[uint16]bool{}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "goauthclient_") || !strings.HasSuffix(def.Name, "_total") {
			t.Errorf("bad counter name %q", def.Name)
		}
		if names[def.Name] || ids[uint16(def.ID)] {
			t.Errorf("duplicate counter %q", def.Name)
		}
		names[def.Name] = true
		ids[uint16(def.ID)] = true
	}
	if len(HistogramBounds) != 8 || len(HistogramBoundSuffix) != 8 {
		t.Fatal("histogram bounds must cover eight buckets")
	}
}

func TestBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("cumulative = %v, want %v", got, want)
	}
	if NormalizeBuckets(make([]uint64, 12)) != [8]uint64{} {
		t.Fatal("long input should be truncated")
	}
}
