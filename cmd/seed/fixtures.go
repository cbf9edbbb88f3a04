package main

import (
	_ "embed"
	"fmt"

	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type seedFixtures struct {
	Communities []seedCommunity `yaml:"communities"`
}

type seedCommunity struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Slug       string       `yaml:"slug"`
	Instructor string       `yaml:"instructor"`
	Courses    []seedCourse `yaml:"courses"`
}

type seedCourse struct {
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	Category         string        `yaml:"category"`
	TargetAudience   string        `yaml:"targetAudience"`
	ContentType      string        `yaml:"contentType"`
	Status           string        `yaml:"status"`
	Price            float64       `yaml:"price"`
	IsFree           bool          `yaml:"isFree"`
	Tags             []string      `yaml:"tags"`
	Requirements     []string      `yaml:"requirements"`
	LearningOutcomes []string      `yaml:"learningOutcomes"`
	Chapters         []seedChapter `yaml:"chapters"`
}

type seedChapter struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Videos      []seedItem `yaml:"videos"`
}

type seedItem struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Content     string `yaml:"content"`
	VideoType   string `yaml:"videoType"`
	Type        string `yaml:"type"`
	Duration    string `yaml:"duration"`
	ContentType string `yaml:"contentType"`
	ContentKind string `yaml:"contentKind"`
}

// loadFixtures parses the embedded fixture file
func loadFixtures(data []byte) (*seedFixtures, error) {
	var f seedFixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, c := range f.Communities {
		if c.ID == "" || c.Slug == "" {
			return nil, fmt.Errorf("community %d: id and slug are required", i)
		}
	}
	return &f, nil
}

// request converts a fixture course into the authoring payload
func (c seedCourse) request(communityID string) *courseSvc.CreateCourseRequest {
	chapters := make([]courseModels.Chapter, len(c.Chapters))
	for i, ch := range c.Chapters {
		items := make([]courseModels.ContentItem, len(ch.Videos))
		for j, v := range ch.Videos {
			content := v.Content
			order := j
			items[j] = courseModels.ContentItem{
				Title:       v.Title,
				Description: v.Description,
				Content:     &content,
				VideoType:   v.VideoType,
				Type:        v.Type,
				Duration:    v.Duration,
				Order:       &order,
				ContentType: v.ContentType,
				ContentKind: courseModels.ContentKind(v.ContentKind),
			}
		}
		chapters[i] = courseModels.Chapter{
			Title:       ch.Title,
			Description: ch.Description,
			Order:       i,
			Videos:      items,
		}
	}

	return &courseSvc.CreateCourseRequest{
		Title:            c.Title,
		Description:      c.Description,
		Category:         c.Category,
		TargetAudience:   c.TargetAudience,
		ContentType:      c.ContentType,
		Status:           courseModels.Status(c.Status),
		Chapters:         chapters,
		CommunityID:      communityID,
		Price:            c.Price,
		IsFree:           c.IsFree,
		Tags:             c.Tags,
		Requirements:     c.Requirements,
		LearningOutcomes: c.LearningOutcomes,
	}
}
