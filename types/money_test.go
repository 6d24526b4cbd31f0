package types

import (
	"encoding/json"
	"testing"
)

func TestAmountRound2(t *testing.T) {
	tests := []struct {
		name string
		in   Amount
		want string
	}{
		{"half up", RequireAmount("0.225"), "0.23"},
		{"below half", RequireAmount("0.2249"), "0.22"},
		{"negative half away from zero", RequireAmount("-0.225"), "-0.23"},
		{"already two places", RequireAmount("1.10"), "1.1"},
		{"integer", NewAmountFromInt(7), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Round2().String(); got != tt.want {
				t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return RequireAmount("0.1").Add(RequireAmount("0.2")) }, RequireAmount("0.3")},
		{"Mul", func() Amount { return NewAmountFromInt(3).Mul(RequireAmount("0.10")) }, RequireAmount("0.3")},
		{"Percent", func() Amount { return RequireAmount("0.90").Percent(NewAmountFromInt(25)) }, RequireAmount("0.225")},
		{"Zero percent", func() Amount { return NewAmountFromInt(100).Percent(Zero) }, Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAmountFormatting(t *testing.T) {
	a := RequireAmount("0.3")
	if got := a.Fixed2(); got != "0.30" {
		t.Errorf("Fixed2 = %q, want %q", got, "0.30")
	}
	if got := a.Format("€"); got != "€0.30" {
		t.Errorf("Format = %q, want %q", got, "€0.30")
	}
	if got := NewAmountFromInt(25).String(); got != "25" {
		t.Errorf("String = %q, want %q", got, "25")
	}
}

func TestAmountUnmarshalCoercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"number", `3`, "3"},
		{"fraction", `0.10`, "0.1"},
		{"numeric string", `"12.5"`, "12.5"},
		{"padded string", `" 4 "`, "4"},
		{"exponent string", `"1e3"`, "1000"},
		{"empty string", `""`, "0"},
		{"garbage string", `"abc"`, "0"},
		{"null", `null`, "0"},
		{"true", `true`, "1"},
		{"false", `false`, "0"},
		{"object", `{"a":1}`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := json.Unmarshal([]byte(tt.input), &a); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.input, err)
			}
			if a.String() != tt.want {
				t.Errorf("Unmarshal(%s) = %s, want %s", tt.input, a, tt.want)
			}
		})
	}
}

func TestAmountMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{Total: RequireAmount("1.13")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(data) != `{"total":1.13}` {
		t.Errorf("got %s", data)
	}
}
