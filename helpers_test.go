package razorblog

import "testing"

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"http://localhost:3000", []string{"blog", "my-post"}, "http://localhost:3000/blog/my-post"},
		{"http://localhost:3000/", []string{"blog"}, "http://localhost:3000/blog"},
		{"http://localhost:3000/sub", []string{"feed", "rss"}, "http://localhost:3000/sub/feed/rss"},
		{"http://localhost:3000", nil, "http://localhost:3000"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestGravatarURL(t *testing.T) {
	want := "https://www.gravatar.com/avatar/822bb9b48b7ecc98c5be44a74369a224?s=60&d=blank"
	if got := GravatarURL("hakan@tidyui.com", 60); got != want {
		t.Errorf("GravatarURL = %q, want %q", got, want)
	}

	// Hashing normalizes case and surrounding whitespace.
	if got := GravatarURL("  Hakan@Tidyui.COM ", 60); got != want {
		t.Errorf("GravatarURL (unnormalized input) = %q, want %q", got, want)
	}
}
