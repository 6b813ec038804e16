package password

import "testing"

func TestValidateStrength(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		ok        bool
	}{
		{"all classes present", "N3w-p4ssword!", true},
		{"minimum viable", "Aa1!aaaa", true},
		{"too short", "Aa1!", false},
		{"all lowercase", "aaaaaaaa", false},
		{"no uppercase", "weak-pass1", false},
		{"no lowercase", "WEAK-PASS1", false},
		{"no digit", "Weak-pass", false},
		{"no special", "Weakpass1", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStrength(tc.candidate, 8)
			if tc.ok && err != nil {
				t.Errorf("ValidateStrength(%q): %v", tc.candidate, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("ValidateStrength(%q) accepted", tc.candidate)
			}
		})
	}
}

func TestValidateStrengthRespectsMinLength(t *testing.T) {
	if err := ValidateStrength("Aa1!Aa1!Aa", 12); err == nil {
		t.Error("10 characters accepted against a 12-character minimum")
	}
	if err := ValidateStrength("Aa1!Aa1!Aa1!", 12); err != nil {
		t.Errorf("12 characters rejected against a 12-character minimum: %v", err)
	}
}
