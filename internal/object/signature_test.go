package object

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		header string
		name   string
		email  string
		time   int64
		offset int
	}{
		{"author Vicent Marti <tanoku@gmail.com> 12345 \n", "author ", "Vicent Marti", "tanoku@gmail.com", 12345, 0},
		{"author Vicent Marti <> 12345 \n", "author ", "Vicent Marti", "", 12345, 0},
		{"author Vicent Marti <tanoku@gmail.com> 231301 +1020\n", "author ", "Vicent Marti", "tanoku@gmail.com", 231301, 620},
		{"author Vicent Marti with an outrageously long name which will probably overflow the buffer <tanoku@gmail.com> 12345 \n", "author ", "Vicent Marti with an outrageously long name which will probably overflow the buffer", "tanoku@gmail.com", 12345, 0},
		{"author Vicent Marti <tanokuwithaveryveryverylongemailwhichwillprobablyvoverflowtheemailbuffer@gmail.com> 12345 \n", "author ", "Vicent Marti", "tanokuwithaveryveryverylongemailwhichwillprobablyvoverflowtheemailbuffer@gmail.com", 12345, 0},
		{"committer Vicent Marti <tanoku@gmail.com> 123456 +0000 \n", "committer ", "Vicent Marti", "tanoku@gmail.com", 123456, 0},
		{"committer Vicent Marti <tanoku@gmail.com> 123456 +0100 \n", "committer ", "Vicent Marti", "tanoku@gmail.com", 123456, 60},
		{"committer Vicent Marti <tanoku@gmail.com> 123456 -0100 \n", "committer ", "Vicent Marti", "tanoku@gmail.com", 123456, -60},
		{"committer <tanoku@gmail.com> 123456 -0100 \n", "committer ", "", "tanoku@gmail.com", 123456, -60},
		{"committer  <tanoku@gmail.com> 123456 -0100 \n", "committer ", "", "tanoku@gmail.com", 123456, -60},
		{"committer   <tanoku@gmail.com> 123456 -0100 \n", "committer ", "", "tanoku@gmail.com", 123456, -60},
		{"committer Vicent Marti <> 123456 -0100 \n", "committer ", "Vicent Marti", "", 123456, -60},
		{"committer Vicent Marti < > 123456 -0100 \n", "committer ", "Vicent Marti", "", 123456, -60},
		{"committer <> 123456 -0100 \n", "committer ", "", "", 123456, -60},
		{"committer  <> 123456 -0100 \n", "committer ", "", "", 123456, -60},
		{"committer  < > 123456 -0100 \n", "committer ", "", "", 123456, -60},
		{"committer foo<@bar> 123456 -0100 \n", "committer ", "foo", "@bar", 123456, -60},
		{"committer    foo<@bar>123456 -0100 \n", "committer ", "foo", "@bar", 123456, -60},
		{"committer <>\n", "committer ", "", "", 0, 0},
		{"committer Vicent Marti <tanoku@gmail.com> 123456 -1500 \n", "committer ", "Vicent Marti", "tanoku@gmail.com", 0, 0},
		{"committer Vicent Marti <tanoku@gmail.com> 123456 +0163 \n", "committer ", "Vicent Marti", "tanoku@gmail.com", 0, 0},
		{"author Vicent Marti <tanoku@gmail.com> notime \n", "author ", "Vicent Marti", "tanoku@gmail.com", 0, 0},
		{"author Vicent Marti <tanoku@gmail.com> 123456 notimezone \n", "author ", "Vicent Marti", "tanoku@gmail.com", 0, 0},
		{"author Vicent Marti <tanoku@gmail.com> notime +0100\n", "author ", "Vicent Marti", "tanoku@gmail.com", 0, 0},
		{"author Vicent Marti <tanoku@gmail.com>\n", "author ", "Vicent Marti", "tanoku@gmail.com", 0, 0},
		{"author A U Thor <author@example.com>,  C O. Miter <comiter@example.com> 1234567890 -0700\n", "author ", "A U Thor", "author@example.com", 1234567890, -420},
		{"author A U Thor <author@example.com> and others 1234567890 -0700\n", "author ", "A U Thor", "author@example.com", 1234567890, -420},
		{"author A U Thor <author@example.com> and others 1234567890\n", "author ", "A U Thor", "author@example.com", 1234567890, 0},
		{"author A U Thor> <author@example.com> and others 1234567890\n", "author ", "A U Thor>", "author@example.com", 1234567890, 0},
		// Additional multi-bracket inputs.
		{"author A <a@example.com> <b@example.com> 1234567890 +0200\n", "author ", "A", "a@example.com", 1234567890, 120},
		{"author A <a<b@example.com> 1 +0000\n", "author ", "A", "a<b@example.com", 1, 0},
		{"author A <a@example.com>> 1 +0000\n", "author ", "A", "a@example.com", 1, 0},
		{"author <a@example.com> B <b@example.com> 7\n", "author ", "", "a@example.com", 7, 0},
		// Zone boundaries.
		{"author A <a@example.com> 1 +1400\n", "author ", "A", "a@example.com", 1, 840},
		{"author A <a@example.com> 1 -1459\n", "author ", "A", "a@example.com", 1, -899},
		{"author A <a@example.com> 1 +100\n", "author ", "A", "a@example.com", 0, 0},
		{"author A <a@example.com> 1 +01000\n", "author ", "A", "a@example.com", 0, 0},
		{"author A <a@example.com> 1 +0100 trailing\n", "author ", "A", "a@example.com", 0, 0},
		{"author A <a@example.com> 99999999999999999999 +0100\n", "author ", "A", "a@example.com", 0, 0},
		{"author A <a@example.com>\t1\t+0100\n", "author ", "A", "a@example.com", 1, 60},
		// Times before the epoch.
		{"author A <a@example.com> -3600 +0100\n", "author ", "A", "a@example.com", -3600, 60},
		{"author A <a@example.com> -9223372036854775808 -0700\n", "author ", "A", "a@example.com", -9223372036854775808, -420},
		{"author A <a@example.com> --1 +0100\n", "author ", "A", "a@example.com", 0, 0},
		{"author A <a@example.com> - +0100\n", "author ", "A", "a@example.com", 0, 0},
		{"author A <a@example.com> 1-2 +0100\n", "author ", "A", "a@example.com", 0, 0},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.in), func(t *testing.T) {
			t.Parallel()

			sig, rest, err := ParseSignature([]byte(tt.in), tt.header, '\n')
			if err != nil {
				t.Fatalf("ParseSignature() error = %v", err)
			}
			if len(rest) != 0 {
				t.Fatalf("ParseSignature() left %q unconsumed", rest)
			}
			if sig.Name != tt.name {
				t.Errorf("name = %q, want %q", sig.Name, tt.name)
			}
			if sig.Email != tt.email {
				t.Errorf("email = %q, want %q", sig.Email, tt.email)
			}
			if sig.When.Seconds != tt.time {
				t.Errorf("time = %d, want %d", sig.When.Seconds, tt.time)
			}
			if sig.When.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", sig.When.Offset, tt.offset)
			}
		})
	}
}

func TestParseSignature_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		header string
	}{
		{"missing_open_bracket", "committer Vicent Marti tanoku@gmail.com> 123456 -0100 \n", "committer "},
		{"header_extra_space", "author Vicent Marti <tanoku@gmail.com> 12345 \n", "author  "},
		{"header_mismatch", "author Vicent Marti <tanoku@gmail.com> 12345 \n", "committer "},
		{"no_email", "author Vicent Marti 12345 \n", "author "},
		{"unterminated_email", "author Vicent Marti <broken@email 12345 \n", "author "},
		{"reversed_brackets", "committer Vicent Marti ><\n", "committer "},
		{"no_terminator", "author ", "author "},
		{"header_only", "author \n", "author "},
		{"empty", "", "author "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParseSignature([]byte(tt.in), tt.header, '\n')
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformedSignature) {
				t.Fatalf("error = %v, want ErrMalformedSignature", err)
			}
		})
	}
}

func TestParseSignature_Terminator(t *testing.T) {
	t.Parallel()

	buf := []byte("tagger T <t@example.com> 10 +0000\x00next")
	sig, rest, err := ParseSignature(buf, "tagger ", 0)
	if err != nil {
		t.Fatalf("ParseSignature() error = %v", err)
	}
	if sig.Name != "T" || sig.When.Seconds != 10 {
		t.Fatalf("unexpected signature: %+v", sig)
	}
	if string(rest) != "next" {
		t.Fatalf("rest = %q, want %q", rest, "next")
	}
}

func TestSignatureString(t *testing.T) {
	t.Parallel()

	sig := Signature{Name: "Scott Chacon", Email: "schacon@gmail.com", When: Time{Seconds: 1273848544, Offset: -420}}
	if got := sig.String(); got != "Scott Chacon <schacon@gmail.com> 1273848544 -0700" {
		t.Fatalf("String() = %q", got)
	}
	parsed, _, err := ParseSignature([]byte("author "+sig.String()+"\n"), "author ", '\n')
	if err != nil {
		t.Fatalf("ParseSignature() error = %v", err)
	}
	if parsed != sig {
		t.Fatalf("round trip = %+v, want %+v", parsed, sig)
	}
}

func TestTimeConversion(t *testing.T) {
	t.Parallel()

	when := Time{Seconds: 1273848544, Offset: 120}.Time()
	if when.Unix() != 1273848544 {
		t.Fatalf("Unix() = %d", when.Unix())
	}
	if _, offset := when.Zone(); offset != 2*60*60 {
		t.Fatalf("zone offset = %d", offset)
	}
	want := time.Date(2010, 5, 14, 16, 49, 4, 0, time.FixedZone("", 7200))
	if !when.Equal(want) {
		t.Fatalf("Time() = %v, want %v", when, want)
	}
}
