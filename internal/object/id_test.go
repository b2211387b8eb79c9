package object

import "testing"

func TestParseID(t *testing.T) {
	t.Parallel()

	lower, err := ParseID("a4a7dce85cf63874e984719f4fdd239f5145052f")
	if err != nil {
		t.Fatalf("ParseID() error = %v", err)
	}
	upper, err := ParseID("A4A7DCE85CF63874E984719F4FDD239F5145052F")
	if err != nil {
		t.Fatalf("ParseID() error = %v", err)
	}
	if lower != upper {
		t.Fatalf("case should not matter: %s != %s", lower, upper)
	}
	if lower.String() != "a4a7dce85cf63874e984719f4fdd239f5145052f" {
		t.Fatalf("String() = %s", lower)
	}
	if lower.Short() != "a4a7dce" {
		t.Fatalf("Short() = %s", lower.Short())
	}
	if lower[0] != 0xa4 || lower[19] != 0x2f {
		t.Fatalf("unexpected bytes: %x", lower[:])
	}
}

func TestParseID_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"a4a7dce",
		"a4a7dce85cf63874e984719f4fdd239f5145052",
		"a4a7dce85cf63874e984719f4fdd239f5145052f0",
		"g4a7dce85cf63874e984719f4fdd239f5145052f",
		" a4a7dce85cf63874e984719f4fdd239f5145052",
	} {
		if _, err := ParseID(in); err == nil {
			t.Errorf("ParseID(%q) expected error", in)
		}
	}
}

func TestIDText(t *testing.T) {
	t.Parallel()

	want := MustParseID("9fd738e8f7967c078dceed8190330fc8648ee56a")
	text, err := want.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	var got ID
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if !ZeroID.IsZero() || want.IsZero() {
		t.Fatal("IsZero mismatch")
	}
}
