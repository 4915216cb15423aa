package httpengine

import "testing"

func TestGuessType(t *testing.T) {
	cases := map[string]string{
		"/setup.json":     "application/json",
		"/style.CSS":      "text/css; charset=utf-8",
		"/icon.png":       "image/png",
		"/clip.mp4":       "video/mp4",
		"/unknown.xyzzy":  "application/octet-stream",
		"noext":           "application/octet-stream",
		"/a/b/index.html": "text/html; charset=utf-8",
	}
	for path, want := range cases {
		if got := guessType(path); got != want {
			t.Errorf("guessType(%q) = %q, want %q", path, got, want)
		}
	}
}
