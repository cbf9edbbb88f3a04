package course

// Chapter is an ordered section of a course
type Chapter struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	Videos      []ContentItem `json:"videos"`
}

// Item types
const (
	ItemTypeVideo = "VIDEO"
	ItemTypeText  = "TEXT"
	ItemTypePDF   = "PDF"
)

// Video hosting types
const (
	VideoTypeUpload  = "upload"
	VideoTypeYouTube = "youtube"
	VideoTypeVimeo   = "vimeo"
	VideoTypeLoom    = "loom"
)

// Authoring hints carried in ContentItem.ContentType
const (
	AuthoringWrite = "write"
	AuthoringPDF   = "pdf"
)

// ContentKind is an explicit authoring tag for an item's content.
// When present it replaces content sniffing.
type ContentKind string

const (
	ContentKindURL       ContentKind = "url"
	ContentKindPlainText ContentKind = "plainText"
	ContentKindRichText  ContentKind = "richText"
)

// ContentItem is an entry in a chapter's list. It is called "video" on the
// wire but can hold text or PDF content.
//
// Pointer fields distinguish "absent" from "empty" so defaults can be filled in
// for partially-formed payloads.
type ContentItem struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Content         *string     `json:"content,omitempty"`
	VideoURL        *string     `json:"videoUrl,omitempty"`
	VideoType       string      `json:"videoType,omitempty"`
	Type            string      `json:"type,omitempty"`
	Duration        string      `json:"duration,omitempty"`
	Order           *int        `json:"order,omitempty"`
	ContentType     string      `json:"contentType,omitempty"`
	ContentKind     ContentKind `json:"contentKind,omitempty"`
	GeneratedPDF    bool        `json:"generatedPDF,omitempty"`
	OriginalContent string      `json:"originalContent,omitempty"`
}

// ContentValue returns the content string, "" when absent
func (i *ContentItem) ContentValue() string {
	if i.Content == nil {
		return ""
	}
	return *i.Content
}
