package enums

import "testing"

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		url      string
		platform Platform
		ok       bool
	}{
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube, true},
		{"https://youtu.be/abc", PlatformYouTube, true},
		{"http://instagram.com/p/xyz", PlatformInstagram, true},
		{"https://www.tiktok.com/@user/video/1", PlatformTikTok, true},
		{"HTTPS://WWW.TIKTOK.COM/@USER", PlatformTikTok, true},
		{"youtube.com/watch?v=abc", "", false},
		{"https://example.com/video", "", false},
		{"", "", false},
		{"ftp://youtube.com/video", "", false},
	}

	for _, tc := range cases {
		platform, ok := DetectPlatform(tc.url)
		if ok != tc.ok || platform != tc.platform {
			t.Fatalf("url %q: expected (%s, %t), got (%s, %t)", tc.url, tc.platform, tc.ok, platform, ok)
		}
	}
}
