package issue

import "testing"

func TestExtractKey(t *testing.T) {
	tests := []struct {
		branch string
		want   string
		found  bool
	}{
		{"ONEK-93-add-pricing", "ONEK-93", true},
		{"feature/DES-123-redesign", "DES-123", true},
		{"DES-123", "DES-123", true},
		{"fix/ABC-1-and-ABC-2", "ABC-1", true}, // first match wins
		{"main", "", false},
		{"feature/no-key-here", "", false},
		{"onek-93-lowercase", "", false}, // prefix is case-sensitive
		{"ONEK-", "", false},
		{"-93", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, found := ExtractKey(tt.branch)
		if got != tt.want || found != tt.found {
			t.Errorf("ExtractKey(%q) = (%q, %v), want (%q, %v)",
				tt.branch, got, found, tt.want, tt.found)
		}
	}
}

func TestWorkspaceName(t *testing.T) {
	if got := WorkspaceName("ONEK-93"); got != "onek-93" {
		t.Errorf("WorkspaceName(ONEK-93) = %q, want onek-93", got)
	}
}
