package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "no images attached",
			input: nil,
			want:  nil,
		},
		{
			name: "image urls pasted twice with stray whitespace",
			input: []string{
				" https://cdn.civiclink.lk/issues/a1.jpg",
				"https://cdn.civiclink.lk/issues/b2.jpg\n",
				"https://cdn.civiclink.lk/issues/a1.jpg",
			},
			want: []string{
				"https://cdn.civiclink.lk/issues/a1.jpg",
				"https://cdn.civiclink.lk/issues/b2.jpg",
			},
		},
		{
			name:  "blank image slots from a multipart form",
			input: []string{"", "   ", "https://cdn.civiclink.lk/issues/c3.png"},
			want:  []string{"https://cdn.civiclink.lk/issues/c3.png"},
		},
		{
			name:  "crisis districts keep first-seen order",
			input: []string{"Ratnapura", " Kegalle", "Ratnapura ", "Kalutara"},
			want:  []string{"Ratnapura", "Kegalle", "Kalutara"},
		},
		{
			name:  "district spelling is left as given",
			input: []string{"Nuwara Eliya", "nuwara eliya"},
			want:  []string{"Nuwara Eliya", "nuwara eliya"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "ministry categories collapse case variants",
			input: []string{"Water", "water ", "Sanitation", "WATER"},
			want:  []string{"water", "sanitation"},
		},
		{
			name:  "ngo areas of work drop empties",
			input: []string{" Disaster_Relief", "", "health", "  "},
			want:  []string{"disaster_relief", "health"},
		},
		{
			name:  "all blank",
			input: []string{" ", ""},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrimLower(tt.input))
		})
	}
}

func TestContainsFold(t *testing.T) {
	areas := []string{"water", "Flood"}
	assert.True(t, ContainsFold(areas, "WATER"))
	assert.True(t, ContainsFold(areas, "flood"))
	assert.False(t, ContainsFold(areas, "road"))
	assert.False(t, ContainsFold(nil, "road"))
}
