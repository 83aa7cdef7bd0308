package repository

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ebhath/ebhath-api/internal/models"
)

//go:embed content/site.toml
var embeddedContent []byte

// ContentRepository serves the static site catalog decoded from TOML.
type ContentRepository struct {
	catalog models.ContentCatalog
}

// NewContentRepository decodes the catalog from path, or from the embedded copy when
// path is empty.
func NewContentRepository(path string) (*ContentRepository, error) {
	raw := embeddedContent
	source := "embedded catalog"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content catalog: %w", err)
		}
		raw = data
		source = path
	}

	catalog, err := DecodeContent(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return &ContentRepository{catalog: catalog}, nil
}

// DecodeContent parses a TOML catalog, rejecting unknown keys.
func DecodeContent(raw []byte) (models.ContentCatalog, error) {
	var catalog models.ContentCatalog
	md, err := toml.Decode(string(raw), &catalog)
	if err != nil {
		return models.ContentCatalog{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return models.ContentCatalog{}, fmt.Errorf("unknown keys: %v", undecoded)
	}
	return catalog, nil
}

// Site returns the site copy.
func (r *ContentRepository) Site() models.SiteInfo {
	return r.catalog.Site
}

// Courses returns the course listing.
func (r *ContentRepository) Courses() []models.Course {
	return append([]models.Course(nil), r.catalog.Courses...)
}

// Team returns the team bios.
func (r *ContentRepository) Team() []models.TeamMember {
	return append([]models.TeamMember(nil), r.catalog.Team...)
}

// Testimonials returns the testimonial quotes.
func (r *ContentRepository) Testimonials() []models.Testimonial {
	return append([]models.Testimonial(nil), r.catalog.Testimonials...)
}
