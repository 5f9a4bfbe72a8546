package extractor

import (
	"net/url"
	"regexp"
	"strings"
)

// SocialMatcher binds a platform to the matcher that finds its profile links.
type SocialMatcher struct {
	Platform Platform
	Matcher  Matcher
}

// DefaultSocialMatchers returns the supported platforms in output order.
func DefaultSocialMatchers() []SocialMatcher {
	return []SocialMatcher{
		{Facebook, RegexpMatcher(regexp.MustCompile(`(?:https?://)?(?:www\.)?facebook\.com/[A-Za-z0-9._-]+`))},
		{Twitter, RegexpMatcher(regexp.MustCompile(`(?:https?://)?(?:www\.)?twitter\.com/[A-Za-z0-9._-]+`))},
		{Instagram, RegexpMatcher(regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com/[A-Za-z0-9._-]+`))},
		{Linkedin, RegexpMatcher(regexp.MustCompile(`(?:https?://)?(?:www\.)?linkedin\.com/(?:in|company)/[A-Za-z0-9._-]+`))},
		{Youtube, RegexpMatcher(regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/[A-Za-z0-9._-]+`))},
		{Tiktok, RegexpMatcher(regexp.MustCompile(`(?:https?://)?(?:www\.)?tiktok\.com/@[A-Za-z0-9._-]+`))},
	}
}

func (e *Extractor) extractSocial(html string) []SocialEntry {
	out := make([]SocialEntry, 0)
	index := make(map[string]int)
	for _, sm := range e.social {
		for _, span := range sm.Matcher.Match(html) {
			link := span.Text
			if !strings.HasPrefix(link, "http") {
				link = "https://" + link
			}
			entry := SocialEntry{Platform: sm.Platform, URL: link, Username: socialUsername(link, sm.Platform)}
			if i, ok := index[link]; ok {
				out[i] = entry
				continue
			}
			index[link] = len(out)
			out = append(out, entry)
		}
	}
	if len(out) > MaxSocial {
		out = out[:MaxSocial]
	}
	return out
}

func socialUsername(link string, platform Platform) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if platform == Tiktok {
			segment = strings.TrimPrefix(segment, "@")
		}
		if segment != "" {
			return segment
		}
	}
	return ""
}
