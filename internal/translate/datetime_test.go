package translate

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"20141003", "2014-10-03T00:00:00Z"},
		{"2014-10-03T12:34:56Z", "2014-10-03T12:34:56Z"},
		{"NOW-1DAY", "NOW-1DAY"},
		{"NOW", "NOW"},
		{"*", "*"},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	in := time.Date(2015, 10, 23, 10, 22, 24, 0, loc)
	if got := FormatTime(in); got != "2015-10-23T08:22:24Z" {
		t.Errorf("FormatTime = %q, want UTC instant", got)
	}
}

func TestConvertTimestamp(t *testing.T) {
	got, err := ConvertTimestamp("/Date(1445588544000)/")
	if err != nil {
		t.Fatalf("ConvertTimestamp failed: %v", err)
	}
	if got != "2015-10-23T08:22:24Z" {
		t.Errorf("ConvertTimestamp = %q, want 2015-10-23T08:22:24Z", got)
	}
}

func TestConvertTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"1445588544000", "/Date(1445588544000)", "Date(12)/", "/Date(abc)/"} {
		if _, err := ConvertTimestamp(in); err == nil {
			t.Errorf("ConvertTimestamp(%q) succeeded, want error", in)
		}
	}
}
