package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags", "<p>Step 1: <b>verify</b> ID</p>", "Step 1: verify ID"},
		{"script dropped", "<script>alert(1)</script>Greeting", "Greeting"},
		{"encoded tag", "&lt;i&gt;Closing", "Closing"},
		{"blocks become lines", "<p>one</p><p>two</p>", "one\ntwo"},
		{"entities", "Fees &amp; charges&nbsp;apply", "Fees & charges apply"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripHTML(tc.in); got != tc.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTextCollapsesBlankLines(t *testing.T) {
	got := Text("a  b\r\n\r\n\r\n  c ")
	if got != "a b\n\nc" {
		t.Errorf("Text() = %q", got)
	}
}
