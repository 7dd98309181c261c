package orders

import "testing"

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "write an essay about rivers",
			want: "write an essay about rivers",
		},
		{
			name: "tags stripped",
			in:   "<b>urgent</b> essay <script>alert(1)</script>please",
			want: "urgent essay alert(1) please",
		},
		{
			name: "blank runs collapse",
			in:   "first paragraph\n\n\n\n\nsecond paragraph",
			want: "first paragraph\n\nsecond paragraph",
		},
		{
			name: "windows newlines and trailing space",
			in:   "line one   \r\nline two\t\t end \r\n",
			want: "line one\nline two end",
		},
		{
			name: "only markup becomes empty",
			in:   "<div><img src='x'/></div>",
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeDescription(tc.in); got != tc.want {
				t.Fatalf("SanitizeDescription(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
