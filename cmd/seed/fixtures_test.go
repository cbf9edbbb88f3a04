package main

import (
	"testing"

	courseModels "coursehub/internal/domain/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFixtures(t *testing.T) {
	f, err := loadFixtures(fixturesYAML)
	require.NoError(t, err)
	require.Len(t, f.Communities, 2)

	pottery := f.Communities[0]
	assert.Equal(t, "pottery-circle", pottery.Slug)
	require.NotEmpty(t, pottery.Courses)

	req := pottery.Courses[0].request(pottery.ID)
	assert.Equal(t, pottery.ID, req.CommunityID)
	assert.Equal(t, courseModels.StatusPublished, req.Status)
	require.Len(t, req.Chapters, 2)

	safety := req.Chapters[0].Videos[1]
	assert.Equal(t, courseModels.AuthoringWrite, safety.ContentType)
	assert.Contains(t, safety.ContentValue(), "<h1>Studio safety</h1>")
	require.NotNil(t, safety.Order)
	assert.Equal(t, 1, *safety.Order)
}

func TestLoadFixtures_RequiresIDs(t *testing.T) {
	_, err := loadFixtures([]byte("communities:\n  - name: nameless\n"))
	assert.Error(t, err)

	_, err = loadFixtures([]byte("communities: [\n"))
	assert.Error(t, err)
}
