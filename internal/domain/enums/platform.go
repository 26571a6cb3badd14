package enums

import "strings"

// Platform is the content source a link points to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Platforms lists all supported platforms in display order.
func Platforms() []Platform {
	return []Platform{PlatformYouTube, PlatformInstagram, PlatformTikTok}
}

// DetectPlatform classifies a submitted URL by its host substring.
// Returns false for anything that is not an http(s) link to a known
// platform.
func DetectPlatform(rawURL string) (Platform, bool) {
	link := strings.TrimSpace(strings.ToLower(rawURL))
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "", false
	}
	switch {
	case strings.Contains(link, "tiktok.com"):
		return PlatformTikTok, true
	case strings.Contains(link, "instagram.com"):
		return PlatformInstagram, true
	case strings.Contains(link, "youtube.com"), strings.Contains(link, "youtu.be"):
		return PlatformYouTube, true
	default:
		return "", false
	}
}
