// Package resources serves the static documentation guides.
package resources

import (
	"embed"
	"path"

	"dunemcp/internal/domain"
)

//go:embed guides/*.md
var guideFS embed.FS

const guideScheme = "dune://guide/"

type guide struct {
	slug        string
	title       string
	description string
}

var guides = []guide{
	{slug: "sql-syntax", title: "DuneSQL Syntax Guide", description: "DuneSQL syntax reference and best practices."},
	{slug: "tables", title: "Dune Tables and Schemas", description: "Available Dune tables and schemas reference."},
	{slug: "query-patterns", title: "Common Query Patterns", description: "Common query patterns for blockchain analytics."},
	{slug: "parameters", title: "Query Parameters", description: "How to use query parameters in Dune."},
	{slug: "errors", title: "Common Errors", description: "Common errors and troubleshooting for Dune queries."},
}

// Guides returns the documentation resources in advertisement order.
func Guides() []domain.ResourceSpec {
	specs := make([]domain.ResourceSpec, 0, len(guides))
	for _, g := range guides {
		file := path.Join("guides", g.slug+".md")
		specs = append(specs, domain.ResourceSpec{
			URI:         guideScheme + g.slug,
			Name:        g.slug,
			Title:       g.title,
			Description: g.description,
			MIMEType:    domain.MIMETypeMarkdown,
			Content: func() string {
				raw, err := guideFS.ReadFile(file)
				if err != nil {
					return ""
				}
				return string(raw)
			},
		})
	}
	return specs
}
