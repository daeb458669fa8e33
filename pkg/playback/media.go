package playback

import (
	"fmt"
	"regexp"
)

// videoIDPattern matches the 11-character video ID in the streaming
// platform's URL shapes (watch, short link, embed, shorts).
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|v/|shorts/))([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls the platform video ID out of a video URL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// WatchURL returns the canonical watch URL for a platform video ID.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}
