package course

import (
	"strings"

	models "coursehub/internal/domain/models/course"
)

// Defaults filled into partially-formed content items
const (
	defaultVideoType = models.VideoTypeYouTube
	defaultItemType  = models.ItemTypeVideo
	defaultDuration  = "0:00"
)

// NormalizeChapters returns a copy of chapters with every item's missing fields
// defaulted. Present fields are kept as given; no cross-field checks are made,
// so e.g. a TEXT item may still carry a video URL.
func NormalizeChapters(chapters []models.Chapter) []models.Chapter {
	out := make([]models.Chapter, len(chapters))
	for i, ch := range chapters {
		items := make([]models.ContentItem, len(ch.Videos))
		for j, item := range ch.Videos {
			items[j] = normalizeItem(item)
		}
		ch.Videos = items
		out[i] = ch
	}
	return out
}

func normalizeItem(item models.ContentItem) models.ContentItem {
	if item.Content == nil {
		item.Content = strPtr("")
	}
	if item.VideoURL == nil {
		url := ""
		if isHTTPURL(*item.Content) {
			url = *item.Content
		}
		item.VideoURL = &url
	}
	if item.VideoType == "" {
		item.VideoType = defaultVideoType
	}
	if item.Type == "" {
		item.Type = defaultItemType
	}
	if item.Duration == "" {
		item.Duration = defaultDuration
	}
	if item.Order == nil {
		zero := 0
		item.Order = &zero
	}
	return item
}

func isHTTPURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func strPtr(s string) *string { return &s }

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
