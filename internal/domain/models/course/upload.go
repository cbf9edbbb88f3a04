package course

// UploadKind selects the validation policy for an upload
type UploadKind string

const (
	UploadKindVideo     UploadKind = "video"
	UploadKindThumbnail UploadKind = "thumbnail"
	UploadKindPDF       UploadKind = "pdf"
)

// UploadedFile describes a stored asset under the public upload namespace
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
	URL          string `json:"url"`
}

// FileOwner records who stored a file. Deletes are checked against it.
type FileOwner struct {
	CommunityID string `json:"community,omitempty"`
	UploadedBy  string `json:"uploadedBy,omitempty"`
}
