package checker

import "testing"

func TestMatchesExpectation(t *testing.T) {
	tests := []struct {
		name     string
		actual   interface{}
		expected interface{}
		want     bool
	}{
		{"equal strings", "night", "night", true},
		{"different strings", "night", "day", false},
		{"equal bools", true, true, true},
		{"different bools", true, false, false},
		{"int vs float", 5, 5.0, true},
		{"json number vs int", 5.0, 5, true},
		{"different numbers", 5.0, 6, false},
		{"regex match", "2026-03-15T12:00:00Z", "~^\\d{4}-\\d{2}-\\d{2}T~", true},
		{"regex mismatch", "noon", "~^\\d+$~", false},
		{"greater than", 10.0, ">5", true},
		{"greater than fails", 3.0, ">5", false},
		{"less or equal", 5.0, "<=5", true},
		{"nil matches nil", nil, nil, true},
		{"nil vs value", nil, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := MatchesExpectation(tt.actual, tt.expected)
			if got != tt.want {
				t.Errorf("MatchesExpectation(%v, %v) = %v (%s), want %v",
					tt.actual, tt.expected, got, reason, tt.want)
			}
		})
	}
}

func TestMatchesExpectation_PartialMap(t *testing.T) {
	actual := map[string]interface{}{
		"theme":     "night",
		"is_night":  true,
		"mode":      "auto",
		"timestamp": "2026-03-15T18:00:00Z",
	}
	expected := map[string]interface{}{
		"theme":    "night",
		"is_night": true,
	}

	ok, reason := MatchesExpectation(actual, expected)
	if !ok {
		t.Errorf("partial map should match, got: %s", reason)
	}

	expected["mode"] = "day"
	ok, _ = MatchesExpectation(actual, expected)
	if ok {
		t.Error("mismatched nested value should fail")
	}

	expected = map[string]interface{}{"missing": 1}
	ok, _ = MatchesExpectation(actual, expected)
	if ok {
		t.Error("missing key should fail")
	}
}

func TestMatchesExpectation_NestedMap(t *testing.T) {
	actual := map[string]interface{}{
		"task": map[string]interface{}{
			"title": "Water the plants",
			"done":  false,
		},
	}
	expected := map[string]interface{}{
		"task": map[string]interface{}{
			"title": "~plants~",
		},
	}

	ok, reason := MatchesExpectation(actual, expected)
	if !ok {
		t.Errorf("nested regex should match, got: %s", reason)
	}
}
