package utils

import (
	"reflect"
	"testing"
)

func TestNormText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Cód. Próveedor ", "COD PROVEEDOR"},
		{"FLUIDRA, S.A.", "FLUIDRA S A"},
		{"Artículo", "ARTICULO"},
		{"espa pumps ibérica", "ESPA PUMPS IBERICA"},
		{"", ""},
		{"   ", ""},
		{"a-b_c.d", "A B C D"},
	}
	for _, c := range cases {
		if got := NormText(c.in); got != c.want {
			t.Errorf("NormText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSafeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`001 - ACME`, "001 - ACME"},
		{`A/B\C:D*E?F"G<H>I|J`, "A B C D E F G H I J"},
		{"  doble   espacio  ", "doble espacio"},
		{"", ""},
	}
	for _, c := range cases {
		if got := SafeName(c.in); got != c.want {
			t.Errorf("SafeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsBlankCell(t *testing.T) {
	for _, blank := range []string{"", "  ", "nan", "NaN", "None"} {
		if !IsBlankCell(blank) {
			t.Errorf("IsBlankCell(%q) = false, want true", blank)
		}
	}
	for _, filled := range []string{"0", "none ok", "N", "https://example.com"} {
		if IsBlankCell(filled) {
			t.Errorf("IsBlankCell(%q) = true, want false", filled)
		}
	}
}

func TestRefVariants(t *testing.T) {
	got := RefVariants("S-40.5 X")
	want := []string{"S-40.5 X", "S40.5 X", "S-405X", "S-40.5X", "S-405 X"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RefVariants = %v, want %v", got, want)
	}

	if got := RefVariants("  "); got != nil {
		t.Errorf("RefVariants of blank = %v, want nil", got)
	}

	// No separators: single variant, no duplicates
	if got := RefVariants("ABC123"); !reflect.DeepEqual(got, []string{"ABC123"}) {
		t.Errorf("RefVariants(ABC123) = %v", got)
	}
}

func TestHostOf(t *testing.T) {
	if got := HostOf("https://WWW.Jimten.com/products/x"); got != "www.jimten.com" {
		t.Errorf("HostOf = %q", got)
	}
	if got := HostOf("://bad url"); got != "" {
		t.Errorf("HostOf of invalid URL = %q, want empty", got)
	}
}
