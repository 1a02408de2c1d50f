package filter

import (
	"reflect"
	"testing"
)

func TestFallbackParseNestedPaths(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected Filter
	}{
		{
			name:     "two segments",
			input:    "profile/city eq 'NYC'",
			expected: Filter{"profile": Filter{"city": Condition{"equals": "NYC"}}},
		},
		{
			name:     "three segments",
			input:    "a/b/c gt 5",
			expected: Filter{"a": Filter{"b": Filter{"c": Condition{"gt": int64(5)}}}},
		},
		{
			name:     "ne keeps the not key",
			input:    "profile/city ne 'LA'",
			expected: Filter{"profile": Filter{"city": Condition{"not": "LA"}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fallbackParse(tc.input, newConfig(nil))
			if err != nil {
				t.Fatalf("fallbackParse(%q): %v", tc.input, err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %#v, want %#v", got, tc.expected)
			}
		})
	}
}

func TestFallbackParseLambdas(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected Filter
	}{
		{
			name:  "any on top-level collection",
			input: "orders/any(o: o/total gt 100)",
			expected: Filter{"orders": Condition{
				"some": Filter{"total": Condition{"gt": int64(100)}},
			}},
		},
		{
			name:  "all on top-level collection",
			input: "tags/all(t: t/name eq 'go')",
			expected: Filter{"tags": Condition{
				"every": Filter{"name": Condition{"equals": "go"}},
			}},
		},
		{
			name:  "collection behind a nested path",
			input: "account/orders/any(o: o/total ge 10)",
			expected: Filter{"account": Filter{"orders": Condition{
				"some": Filter{"total": Condition{"gte": int64(10)}},
			}}},
		},
		{
			name:  "nested path inside the lambda body",
			input: "orders/any(o: o/item/price lt 5)",
			expected: Filter{"orders": Condition{
				"some": Filter{"item": Filter{"price": Condition{"lt": int64(5)}}},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fallbackParse(tc.input, newConfig(nil))
			if err != nil {
				t.Fatalf("fallbackParse(%q): %v", tc.input, err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %#v, want %#v", got, tc.expected)
			}
		})
	}
}

func TestFallbackParseArithmetic(t *testing.T) {
	cases := []struct {
		input    string
		expected Filter
	}{
		{"Price * 1.1 gt 100", Filter{"Price": Condition{"gt": 90.91}}},
		{"Price / 2 ge 50", Filter{"Price": Condition{"gte": float64(100)}}},
		{"Price + 10 lt 100", Filter{"Price": Condition{"lt": float64(90)}}},
		{"Price - 10 le 100", Filter{"Price": Condition{"lte": float64(110)}}},
		{"Price * 2 ne 100", Filter{"Price": Condition{"not": Condition{"equals": float64(50)}}}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := fallbackParse(tc.input, newConfig(nil))
			if err != nil {
				t.Fatalf("fallbackParse(%q): %v", tc.input, err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %#v, want %#v", got, tc.expected)
			}
		})
	}

	if _, err := fallbackParse("Price * 0 gt 10", newConfig(nil)); err == nil {
		t.Error("expected error for multiplication by zero")
	}
}

func TestFallbackParseIn(t *testing.T) {
	got, err := fallbackParse("Status in ('a', 'b', 3)", newConfig(nil))
	if err != nil {
		t.Fatal(err)
	}
	expected := Filter{"Status": Condition{"in": []any{"a", "b", int64(3)}}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %#v, want %#v", got, expected)
	}

	if _, err := fallbackParse("Status in ()", newConfig(nil)); err == nil {
		t.Error("expected error for empty in-list")
	}
}

func TestFallbackParseNoPatternMatches(t *testing.T) {
	for _, input := range []string{
		"complete nonsense",
		"a eq",
		"orders/any(o o/total gt 1)",
	} {
		if _, err := fallbackParse(input, newConfig(nil)); err == nil {
			t.Errorf("fallbackParse(%q): expected error", input)
		}
	}
}
