package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocument(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		body      string
		wantTitle string
		wantErr   error
	}{
		{name: "explicit title", title: "Week 1", body: "<h1>Heading</h1><p>x</p>", wantTitle: "Week 1"},
		{name: "first heading", body: "<p>lead</p><h2>Setup</h2><h1>Later</h1>", wantTitle: "Setup"},
		{name: "fallback", body: "<p>only text</p>", wantTitle: defaultDocumentTitle},
		{name: "image only", body: `<img src="data:image/png;base64,AAAA">`, wantTitle: defaultDocumentTitle},
		{name: "empty", body: "<p>   </p>", wantErr: ErrEmptyDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := BuildDocument(tt.title, tt.body)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, doc.Title)
			assert.Equal(t, tt.body, doc.Body)
			assert.Contains(t, doc.Page, "<!DOCTYPE html>")
			assert.Contains(t, doc.Page, "size: A4")
			assert.Contains(t, doc.Page, tt.body)
		})
	}
}

func TestBuildDocument_EscapesTitle(t *testing.T) {
	doc, err := BuildDocument("<b>Title</b>", "<p>x</p>")
	require.NoError(t, err)
	assert.Contains(t, doc.Page, "<title>&lt;b&gt;Title&lt;/b&gt;</title>")
}
