package validators

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1 (555) 010-4477", "+15550104477"},
		{"555.010.4477", "5550104477"},
		{"555 0104", "5550104"},
		{"+55 11 91234-5678", "+5511912345678"},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsPhoneValid(t *testing.T) {
	valid := []string{"+15550104477", "555-010-4477", "+55 11 91234-5678"}
	for _, p := range valid {
		if !IsPhoneValid(p) {
			t.Fatalf("expected %q valid", p)
		}
	}

	invalid := []string{"", "123", "12345678901234567890"}
	for _, p := range invalid {
		if IsPhoneValid(p) {
			t.Fatalf("expected %q invalid", p)
		}
	}
}
