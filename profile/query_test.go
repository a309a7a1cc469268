package profile

import (
	"errors"
	"testing"
)

func validateForTest(t *testing.T, hexStr string) ValidatedBytes {
	t.Helper()
	b := mustHex(t, hexStr)
	vb, err := Validate(b, DefaultLimits(len(b)))
	if err != nil {
		t.Fatalf("Validate(%s) = %v", hexStr, err)
	}
	return vb
}

func TestQueryScalars(t *testing.T) {
	vb := validateForTest(t, "182a") // uint8 42
	v := Root(vb)
	if v.Type() != UintType {
		t.Fatalf("Type() = %v, want UintType", v.Type())
	}
	u, err := v.Uint()
	if err != nil || u != 42 {
		t.Fatalf("Uint() = %d, %v, want 42, nil", u, err)
	}
}

func TestQueryMapGetAndRequire(t *testing.T) {
	// map(2){ "b": 2, "aa": 1 }
	vb := validateForTest(t, "a2"+"6162"+"02"+"626161"+"01")
	m, err := Root(vb).Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	v, ok, err := m.Get("b")
	if err != nil || !ok {
		t.Fatalf("Get(b) = %v, %v, %v", v, ok, err)
	}
	u, err := v.Uint()
	if err != nil || u != 2 {
		t.Fatalf("Uint() = %d, %v, want 2", u, err)
	}
	if _, ok, err := m.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if _, err := m.Require("missing"); err == nil {
		t.Fatalf("Require(missing) = nil, want MissingKey")
	}
}

func TestQueryMapGetManySortedPreservesCallerOrder(t *testing.T) {
	vb := validateForTest(t, "a2"+"6162"+"02"+"626161"+"01")
	m, err := Root(vb).Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	vals, ok, err := m.GetManySorted([]string{"aa", "missing", "b"})
	if err != nil {
		t.Fatalf("GetManySorted() = %v", err)
	}
	if len(vals) != 3 || ok[0] != true || ok[1] != false || ok[2] != true {
		t.Fatalf("unexpected ok slice: %v", ok)
	}
	u, _ := vals[0].Uint()
	if u != 1 {
		t.Fatalf("vals[0] = %d, want 1 (aa)", u)
	}
	u, _ = vals[2].Uint()
	if u != 2 {
		t.Fatalf("vals[2] = %d, want 2 (b)", u)
	}
}

func TestQueryArrayAt(t *testing.T) {
	// array(3){ 0, 1, 2 }
	vb := validateForTest(t, "83000102")
	a, err := Root(vb).Array()
	if err != nil {
		t.Fatalf("Array() = %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	v, err := a.At(2)
	if err != nil {
		t.Fatalf("At(2) = %v", err)
	}
	u, err := v.Uint()
	if err != nil || u != 2 {
		t.Fatalf("At(2).Uint() = %d, %v, want 2", u, err)
	}
	if _, err := a.At(3); err == nil {
		t.Fatalf("At(3) = nil, want IndexOutOfBounds")
	}
}

func TestQueryAtPath(t *testing.T) {
	// map(1){ "items": array(2){ 10, 20 } }
	vb := validateForTest(t, "a1"+"656974656d73"+"82"+"0a"+"14")
	v, err := At(Root(vb), Path{PK("items"), PI(1)})
	if err != nil {
		t.Fatalf("At() = %v", err)
	}
	u, err := v.Uint()
	if err != nil || u != 20 {
		t.Fatalf("At() = %d, %v, want 20", u, err)
	}
}

func TestQueryExtrasSorted(t *testing.T) {
	vb := validateForTest(t, "a2"+"6162"+"02"+"626161"+"01")
	m, err := Root(vb).Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	extras, err := m.ExtrasSorted([]string{"aa"})
	if err != nil {
		t.Fatalf("ExtrasSorted() = %v", err)
	}
	if len(extras) != 1 || extras[0].Key != "b" {
		t.Fatalf("ExtrasSorted() = %+v, want [{b ...}]", extras)
	}
}

func TestQueryExtrasSortedAcceptsAscendingMultiKey(t *testing.T) {
	vb := validateForTest(t, "a2"+"6162"+"02"+"626161"+"01")
	m, err := Root(vb).Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	// Canonical order is "b" (len 1) then "aa" (len 2).
	extras, err := m.ExtrasSorted([]string{"b", "aa"})
	if err != nil {
		t.Fatalf("ExtrasSorted() = %v", err)
	}
	if len(extras) != 0 {
		t.Fatalf("ExtrasSorted() = %+v, want none", extras)
	}
}

func TestQueryExtrasSortedRejectsNonAscendingKnown(t *testing.T) {
	vb := validateForTest(t, "a2"+"6162"+"02"+"626161"+"01")
	m, err := Root(vb).Map()
	if err != nil {
		t.Fatalf("Map() = %v", err)
	}
	// "aa" sorts after "b" in canonical order, so this is descending.
	if _, err := m.ExtrasSorted([]string{"aa", "b"}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("got %v, want ErrInvalidQuery", err)
	}
}
