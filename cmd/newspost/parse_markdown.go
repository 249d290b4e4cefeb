package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// markdownPost is a post read from a markdown file with YAML front matter.
type markdownPost struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Body        string `yaml:"-"`
}

func parseMarkdown(input string) (markdownPost, error) {
	var post markdownPost
	content := input

	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return markdownPost{}, fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &post); err != nil {
			return markdownPost{}, fmt.Errorf("front matter: %w", err)
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	post.Title = strings.TrimSpace(post.Title)
	post.Body = strings.TrimSpace(content)
	return post, nil
}

// description returns the front matter description, falling back to the body.
func (p markdownPost) description() string {
	if strings.TrimSpace(p.Description) != "" {
		return p.Description
	}
	return p.Body
}

// imagePath resolves the image key relative to the markdown file's directory.
func (p markdownPost) imagePath(markdownFile string) string {
	image := strings.TrimSpace(p.Image)
	if image == "" || filepath.IsAbs(image) {
		return image
	}
	return filepath.Join(filepath.Dir(markdownFile), image)
}
