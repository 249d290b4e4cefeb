package main

import (
	"fmt"
	"os"
	"strings"

	"newspost/internal/format"
	"newspost/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writePostList(posts []models.Post) error {
	if len(posts) == 0 {
		return writePlain("no posts\n")
	}
	for _, post := range posts {
		if err := writePlain("%s\n", formatPostLine(post)); err != nil {
			return err
		}
	}
	return nil
}

func writePostDetail(post models.Post) error {
	lines := []string{
		fmt.Sprintf("id: %d", post.ID),
		fmt.Sprintf("title: %s", post.Title),
		fmt.Sprintf("created: %s", models.FormatTime(post.Created)),
	}
	if post.Description != nil {
		lines = append(lines, fmt.Sprintf("description: %s", *post.Description))
	}
	if post.HasImage() {
		lines = append(lines, fmt.Sprintf("image: %s", *post.Image))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatPostLine(post models.Post) string {
	marker := " "
	if post.HasImage() {
		marker = "*"
	}
	return fmt.Sprintf("%s %d  %s  %s", marker, post.ID, post.Created.UTC().Format("2006-01-02 15:04"), post.Title)
}
