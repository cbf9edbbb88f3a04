package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"coursehub/internal/domain/models"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
	"coursehub/internal/service/course/converter/pdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu     sync.Mutex
	calls  []string // document titles in call order
	failOn string   // title that fails to render
	delay  time.Duration
}

func (r *fakeRenderer) RenderPDF(ctx context.Context, doc *courseSvc.PDFDocument) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, doc.Title)
	r.mu.Unlock()

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if doc.Title == r.failOn {
		return nil, errors.New("renderer exploded")
	}
	return []byte("%PDF-1.4 " + doc.Title), nil
}

func (r *fakeRenderer) Name() string { return "fake" }
func (r *fakeRenderer) Close() error { return nil }

type fakeUploads struct {
	mu     sync.Mutex
	stored map[string][]byte
	owners map[string]courseModels.FileOwner
	n      int
	fail   bool
}

var testOwner = courseModels.FileOwner{CommunityID: "community-1", UploadedBy: "user-1"}

func newFakeUploads() *fakeUploads {
	return &fakeUploads{stored: map[string][]byte{}, owners: map[string]courseModels.FileOwner{}}
}

func (u *fakeUploads) Store(ctx context.Context, kind courseModels.UploadKind, in *courseSvc.UploadInput) (*courseModels.UploadedFile, error) {
	if u.fail {
		return nil, errors.New("disk full")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.n++
	name := fmt.Sprintf("%d-%09d.pdf", 1700000000000+u.n, u.n)
	u.stored[name] = data
	u.owners[name] = in.Owner
	return &courseModels.UploadedFile{
		Filename:     name,
		OriginalName: in.OriginalName,
		Size:         int64(len(data)),
		MimeType:     in.MimeType,
		URL:          "/uploads/" + name,
	}, nil
}

func (u *fakeUploads) Delete(ctx context.Context, actor *models.Actor, filename string) error {
	return nil
}

func str(s string) *string { return &s }

func newTestConverter(r courseSvc.PDFRenderer, u courseSvc.UploadService) *Converter {
	return NewConverter(r, u, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNeedsConversion(t *testing.T) {
	tests := []struct {
		name string
		item courseModels.ContentItem
		want bool
	}{
		{"write hint", courseModels.ContentItem{Content: str("plain words"), ContentType: "write"}, true},
		{"untyped html", courseModels.ContentItem{Content: str("<p>Hi</p>")}, true},
		{"untyped less-than", courseModels.ContentItem{Content: str("a < b")}, true},
		{"untyped plain", courseModels.ContentItem{Content: str("hello")}, false},
		{"typed html not write", courseModels.ContentItem{Content: str("<p>Hi</p>"), ContentType: "video"}, false},
		{"empty content", courseModels.ContentItem{Content: str(""), ContentType: "write"}, false},
		{"nil content", courseModels.ContentItem{ContentType: "write"}, false},
		{"converted item", courseModels.ContentItem{Content: str("/uploads/1-2.pdf"), ContentType: "pdf", Type: "PDF", GeneratedPDF: true}, false},
		{"tag rich text", courseModels.ContentItem{Content: str("no markup"), ContentKind: courseModels.ContentKindRichText}, true},
		{"tag plain text wins over sniffing", courseModels.ContentItem{Content: str("a < b"), ContentKind: courseModels.ContentKindPlainText}, false},
		{"tag url", courseModels.ContentItem{Content: str("<p>x</p>"), ContentType: "write", ContentKind: courseModels.ContentKindURL}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsConversion(&tt.item))
		})
	}
}

func TestConvertChapters_RewritesRichText(t *testing.T) {
	renderer := &fakeRenderer{}
	uploads := newFakeUploads()
	c := newTestConverter(renderer, uploads)

	chapters := []courseModels.Chapter{{
		Title: "Ch1",
		Videos: []courseModels.ContentItem{
			{Title: "Intro", Content: str("https://youtu.be/x"), Type: "VIDEO", VideoType: "youtube"},
			{Title: "Lesson", Content: str("<h1>Hi</h1>"), ContentType: "write", Type: "TEXT"},
		},
	}}

	out, report := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, courseSvc.ConversionReport{Candidates: 1, Converted: 1}, report)
	require.Len(t, out, 1)
	require.Len(t, out[0].Videos, 2)

	assert.Equal(t, "https://youtu.be/x", *out[0].Videos[0].Content, "non-candidate untouched")

	item := out[0].Videos[1]
	assert.Regexp(t, `^/uploads/.+\.pdf$`, *item.Content)
	assert.Equal(t, "pdf", item.ContentType)
	assert.Equal(t, "PDF", item.Type)
	assert.True(t, item.GeneratedPDF)
	assert.Equal(t, "<h1>Hi</h1>", item.OriginalContent)
	assert.Equal(t, "Lesson", item.Title)

	// Input is not mutated
	assert.Equal(t, "<h1>Hi</h1>", *chapters[0].Videos[1].Content)
	assert.False(t, chapters[0].Videos[1].GeneratedPDF)

	assert.Len(t, uploads.stored, 1)
	for name := range uploads.stored {
		assert.Equal(t, testOwner, uploads.owners[name], "generated file belongs to the course's community")
	}
}

func TestConvertChapters_Idempotent(t *testing.T) {
	renderer := &fakeRenderer{}
	c := newTestConverter(renderer, newFakeUploads())

	chapters := []courseModels.Chapter{{
		Videos: []courseModels.ContentItem{
			{Title: "A", Content: str("<p>a</p>")},
			{Title: "B", Content: str("<p>b</p>"), ContentType: "write"},
		},
	}}

	first, report := c.ConvertChapters(context.Background(), testOwner, chapters)
	require.Equal(t, 2, report.Converted)

	second, report := c.ConvertChapters(context.Background(), testOwner, first)
	assert.Equal(t, courseSvc.ConversionReport{}, report)
	assert.Equal(t, first, second)
	assert.Len(t, renderer.calls, 2)
}

func TestConvertChapters_PartialFailureKeepsOriginal(t *testing.T) {
	renderer := &fakeRenderer{failOn: "Broken"}
	c := newTestConverter(renderer, newFakeUploads())

	chapters := []courseModels.Chapter{{
		Videos: []courseModels.ContentItem{
			{Title: "Good", Content: str("<p>good</p>")},
			{Title: "Broken", Content: str("<p>bad</p>")},
			{Title: "Also good", Content: str("<p>fine</p>")},
		},
	}}

	out, report := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, courseSvc.ConversionReport{Candidates: 3, Converted: 2, Failed: 1}, report)
	assert.True(t, out[0].Videos[0].GeneratedPDF)
	assert.Equal(t, chapters[0].Videos[1], out[0].Videos[1], "failed item unchanged")
	assert.True(t, out[0].Videos[2].GeneratedPDF)
}

func TestConvertChapters_UnsupportedScriptFailsOnlyThatItem(t *testing.T) {
	uploads := newFakeUploads()
	c := newTestConverter(pdf.NewFPDFRenderer(), uploads)

	chapters := []courseModels.Chapter{{
		Videos: []courseModels.ContentItem{
			{Title: "Intro", Content: str("<p>Привет, café</p>")},
			{Title: "Greeting", Content: str("<p>नमस्ते</p>")},
		},
	}}

	out, report := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, courseSvc.ConversionReport{Candidates: 2, Converted: 1, Failed: 1}, report)
	assert.True(t, out[0].Videos[0].GeneratedPDF)
	assert.Equal(t, chapters[0].Videos[1], out[0].Videos[1])
	require.Len(t, uploads.stored, 1)
}

func TestConvertChapters_StorageFailure(t *testing.T) {
	uploads := newFakeUploads()
	uploads.fail = true
	c := newTestConverter(&fakeRenderer{}, uploads)

	chapters := []courseModels.Chapter{{Videos: []courseModels.ContentItem{{Title: "X", Content: str("<p>x</p>")}}}}
	out, report := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, chapters, out)
}

func TestConvertChapters_TimeoutIsPerItemFailure(t *testing.T) {
	renderer := &fakeRenderer{delay: time.Second}
	c := NewConverter(renderer, newFakeUploads(), 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	chapters := []courseModels.Chapter{{Videos: []courseModels.ContentItem{{Title: "Slow", Content: str("<p>slow</p>")}}}}
	out, report := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "<p>slow</p>", *out[0].Videos[0].Content)
}

func TestConvertChapters_InOrder(t *testing.T) {
	renderer := &fakeRenderer{}
	c := newTestConverter(renderer, newFakeUploads())

	chapters := []courseModels.Chapter{
		{Videos: []courseModels.ContentItem{
			{Title: "1", Content: str("<p>1</p>")},
			{Title: "2", Content: str("<p>2</p>")},
		}},
		{Videos: []courseModels.ContentItem{
			{Title: "3", Content: str("<p>3</p>")},
		}},
	}

	out, _ := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, []string{"1", "2", "3"}, renderer.calls)
	// Earlier items get earlier sequence numbers in the generated names
	assert.Less(t, *out[0].Videos[0].Content, *out[0].Videos[1].Content)
	assert.Less(t, *out[0].Videos[1].Content, *out[1].Videos[0].Content)
}

func TestConvertChapters_SanitizesBeforeRender(t *testing.T) {
	var seen string
	renderer := &capturingRenderer{onRender: func(doc *courseSvc.PDFDocument) { seen = doc.Page }}
	c := newTestConverter(renderer, newFakeUploads())

	chapters := []courseModels.Chapter{{Videos: []courseModels.ContentItem{
		{Title: "XSS", Content: str(`<p>hi</p><script>alert(1)</script>`)},
	}}}
	_, report := c.ConvertChapters(context.Background(), testOwner, chapters)

	require.Equal(t, 1, report.Converted)
	assert.Contains(t, seen, "<p>hi</p>")
	assert.False(t, strings.Contains(seen, "alert"))
}

func TestConvertChapters_TagBecomesURL(t *testing.T) {
	c := newTestConverter(&fakeRenderer{}, newFakeUploads())

	chapters := []courseModels.Chapter{{Videos: []courseModels.ContentItem{
		{Title: "Tagged", Content: str("Just words"), ContentKind: courseModels.ContentKindRichText},
	}}}
	out, _ := c.ConvertChapters(context.Background(), testOwner, chapters)

	assert.Equal(t, courseModels.ContentKindURL, out[0].Videos[0].ContentKind)
	assert.False(t, NeedsConversion(&out[0].Videos[0]))
}

type capturingRenderer struct {
	onRender func(*courseSvc.PDFDocument)
}

func (r *capturingRenderer) RenderPDF(ctx context.Context, doc *courseSvc.PDFDocument) ([]byte, error) {
	r.onRender(doc)
	return []byte("%PDF-1.4"), nil
}
func (r *capturingRenderer) Name() string { return "capture" }
func (r *capturingRenderer) Close() error { return nil }

func TestFileBaseName(t *testing.T) {
	assert.Equal(t, "intro-to-go", fileBaseName("Intro to Go!"))
	assert.Equal(t, "document", fileBaseName("***"))
	assert.LessOrEqual(t, len(fileBaseName(strings.Repeat("abc ", 40))), 60)
}
