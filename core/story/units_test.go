package story

import (
	"errors"
	"testing"
)

func TestParseEther(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"1.5", "1500000000000000000"},
		{".5", "500000000000000000"},
		{"10", "10000000000000000000"},
		{"0.000000000000000001", "1"},
		{" 2 ", "2000000000000000000"},
	}
	for _, tc := range cases {
		got, err := ParseEther(tc.in)
		if err != nil {
			t.Errorf("ParseEther(%q): %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseEther(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseEtherRejects(t *testing.T) {
	cases := []string{
		"",
		"0",
		"0.0",
		"-1",
		"abc",
		"1.2.3",
		"0.0000000000000000001", // 19位小数
	}
	for _, in := range cases {
		if _, err := ParseEther(in); !errors.Is(err, ErrInvalidFee) {
			t.Errorf("ParseEther(%q) = %v, want ErrInvalidFee", in, err)
		}
	}
}
