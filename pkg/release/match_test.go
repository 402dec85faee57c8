package release

import "testing"

func TestTitleMatch(t *testing.T) {
	tests := []struct {
		query, title string
		want         bool
	}{
		{"Frieren", "Frieren", true},
		{"Blue Box (2024)", "Blue Box", true},
		{"Frieren", "Frieren: Beyond Journey's End", false},
		{"Beck Mongolian Chop Squad", "Beck: Mongolian Chop Squad", true},
		{"Spy x Family", "SPY x FAMILY Season 2", true},
		{"Breaking Bad", "Bad Guys", false},
		{"Attack on Titan", "Attack on Titan Final Season", true},
		{"Naruto", "Boruto", false},
		{"", "Anything", false},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.title, func(t *testing.T) {
			if got := TitleMatch(tt.query, tt.title); got != tt.want {
				t.Errorf("TitleMatch(%q, %q) = %v, want %v", tt.query, tt.title, got, tt.want)
			}
		})
	}
}
