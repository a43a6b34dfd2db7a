package docpub

import "testing"

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "first h1",
			markdown: "# Committee Specification\n\nBody.\n",
			want:     "Committee Specification",
		},
		{
			name:     "h1 after preamble",
			markdown: "<!-- description: x -->\n\n# Title Here\n",
			want:     "Title Here",
		},
		{
			name:     "no h1",
			markdown: "## Only a subheading\n",
			want:     "-",
		},
		{
			name:     "h1 with trailing spaces",
			markdown: "# Padded Title   \n",
			want:     "Padded Title",
		},
		{
			name:     "empty document",
			markdown: "",
			want:     "-",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractTitle(tt.markdown); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "description comment",
			markdown: "<!-- description: OASIS project charter -->\n# T\n",
			want:     "OASIS project charter",
		},
		{
			name:     "no description",
			markdown: "# T\n\nBody.\n",
			want:     "-",
		},
		{
			name:     "comment without description key",
			markdown: "<!-- note: nothing -->\n",
			want:     "-",
		},
		{
			name:     "empty description value",
			markdown: "<!-- description: -->\n",
			want:     "-",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractDescription(tt.markdown); got != tt.want {
				t.Errorf("ExtractDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}
