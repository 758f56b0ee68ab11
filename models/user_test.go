package models

import "testing"

func TestValidTheme(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"counter", ThemeCounter, true},
		{"ovenlight", ThemeOvenlight, true},
		{"midnight", ThemeMidnight, true},
		{"unknown", "galaxy", false},
		{"empty", "", false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidTheme(tt.value); got != tt.want {
				t.Fatalf("ValidTheme(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeTheme(t *testing.T) {
	t.Parallel()

	if got := NormalizeTheme(ThemeOvenlight); got != ThemeOvenlight {
		t.Fatalf("NormalizeTheme returned %q, want %q", got, ThemeOvenlight)
	}

	if got := NormalizeTheme("  invalid  "); got != DefaultTheme {
		t.Fatalf("NormalizeTheme returned %q, want %q", got, DefaultTheme)
	}
}

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	if got := NormalizeRole(" ADMIN "); got != RoleAdmin {
		t.Fatalf("NormalizeRole returned %q, want %q", got, RoleAdmin)
	}

	if got := NormalizeRole("owner"); got != RoleStaff {
		t.Fatalf("NormalizeRole returned %q, want %q", got, RoleStaff)
	}
}
