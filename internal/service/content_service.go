package service

import (
	"github.com/ebhath/ebhath-api/internal/models"
)

type contentRepository interface {
	Site() models.SiteInfo
	Courses() []models.Course
	Team() []models.TeamMember
	Testimonials() []models.Testimonial
}

// ContentService exposes the static site catalog.
type ContentService struct {
	repo contentRepository
}

// NewContentService constructs the content service.
func NewContentService(repo contentRepository) *ContentService {
	return &ContentService{repo: repo}
}

// Site returns the site copy.
func (s *ContentService) Site() models.SiteInfo {
	return s.repo.Site()
}

// Courses returns the course listing, optionally limited to courses open for enrolment.
func (s *ContentService) Courses(availableOnly bool) []models.Course {
	courses := s.repo.Courses()
	if !availableOnly {
		return courses
	}
	filtered := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if c.Available == models.CourseAvailable {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Team returns the team bios.
func (s *ContentService) Team() []models.TeamMember {
	return s.repo.Team()
}

// Testimonials returns testimonial quotes.
func (s *ContentService) Testimonials() []models.Testimonial {
	return s.repo.Testimonials()
}
