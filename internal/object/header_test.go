package object

import (
	"errors"
	"testing"
)

func TestParseHeaderID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		prefix string
		want   string
	}{
		{"parent 05452d6349abcd67aa396dfb28660d765d8b2a36\n", "parent ", "05452d6349abcd67aa396dfb28660d765d8b2a36"},
		{"tree 05452d6349abcd67aa396dfb28660d765d8b2a36\n", "tree ", "05452d6349abcd67aa396dfb28660d765d8b2a36"},
		{"random_heading 05452d6349abcd67aa396dfb28660d765d8b2a36\n", "random_heading ", "05452d6349abcd67aa396dfb28660d765d8b2a36"},
		{"stuck_heading05452d6349abcd67aa396dfb28660d765d8b2a36\n", "stuck_heading", "05452d6349abcd67aa396dfb28660d765d8b2a36"},
		{"tree 5F4BEFFC0759261D015AA63A3A85613FF2F235DE\n", "tree ", "5f4beffc0759261d015aa63a3a85613ff2f235de"},
		{"tree 1A669B8AB81B5EB7D9DB69562D34952A38A9B504\n", "tree ", "1a669b8ab81b5eb7d9db69562d34952a38a9b504"},
		{"tree 5B20DCC6110FCC75D31C6CEDEBD7F43ECA65B503\n", "tree ", "5b20dcc6110fcc75d31c6cedebd7f43eca65b503"},
		{"tree 173E7BF00EA5C33447E99E6C1255954A13026BE4\n", "tree ", "173e7bf00ea5c33447e99e6c1255954a13026be4"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			id, rest, err := ParseHeaderID([]byte(tt.line), tt.prefix)
			if err != nil {
				t.Fatalf("ParseHeaderID() error = %v", err)
			}
			if len(rest) != 0 {
				t.Fatalf("ParseHeaderID() left %q unconsumed", rest)
			}
			if id.String() != tt.want {
				t.Fatalf("ParseHeaderID() = %s, want %s", id, tt.want)
			}
		})
	}
}

func TestParseHeaderID_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		prefix string
	}{
		{"missing_newline", "parent 05452d6349abcd67aa396dfb28660d765d8b2a36", "parent "},
		{"missing_prefix", "05452d6349abcd67aa396dfb28660d765d8b2a36\n", "tree "},
		{"missing_space", "parent05452d6349abcd67aa396dfb28660d765d8b2a6a\n", "parent "},
		{"short_id", "parent 05452d6349abcd67aa396dfb280d765d8b2a6\n", "parent "},
		{"double_space", "tree  05452d6349abcd67aa396dfb28660d765d8b2a36\n", "tree "},
		{"non_hex", "parent 0545xd6349abcd67aa396dfb28660d765d8b2a36\n", "parent "},
		{"long_id", "parent 0545xd6349abcd67aa396dfb28660d765d8b2a36FF\n", "parent "},
		{"long_hex_id", "parent 05452d6349abcd67aa396dfb28660d765d8b2a36FF\n", "parent "},
		{"carriage_return", "tree 05452d6349abcd67aa396dfb28660d765d8b2a36\r\n", "tree "},
		{"empty", "", "tree "},
		{"empty_prefix", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, rest, err := ParseHeaderID([]byte(tt.line), tt.prefix)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformedHeader) {
				t.Fatalf("error = %v, want ErrMalformedHeader", err)
			}
			if string(rest) != tt.line {
				t.Fatalf("input consumed on error: %q", rest)
			}
		})
	}
}

func TestParseHeaderID_Successive(t *testing.T) {
	t.Parallel()

	buf := []byte("parent 1111111111111111111111111111111111111111\n" +
		"parent 2222222222222222222222222222222222222222\n" +
		"author x")
	first, rest, err := ParseHeaderID(buf, "parent ")
	if err != nil {
		t.Fatalf("first parent: %v", err)
	}
	second, rest, err := ParseHeaderID(rest, "parent ")
	if err != nil {
		t.Fatalf("second parent: %v", err)
	}
	if first == second {
		t.Fatalf("parents should differ: %s", first)
	}
	if string(rest) != "author x" {
		t.Fatalf("rest = %q", rest)
	}
}
