package models

// Course is one entry of the course listing.
type Course struct {
	ID          int    `toml:"id" json:"id"`
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
	Language    string `toml:"language" json:"language"`
	Duration    string `toml:"duration" json:"duration"`
	Level       string `toml:"level" json:"level"`
	Students    int    `toml:"students" json:"students"`
	Category    string `toml:"category" json:"category"`
	Image       string `toml:"image" json:"image"`
	Available   string `toml:"available" json:"available"`
}

// CourseAvailable marks a course open for enrolment.
const CourseAvailable = "Available"

// TeamMember is one bio on the team page.
type TeamMember struct {
	Name    string            `toml:"name" json:"name"`
	Role    string            `toml:"role" json:"role"`
	Bio     string            `toml:"bio" json:"bio,omitempty"`
	Image   string            `toml:"image" json:"image,omitempty"`
	Socials map[string]string `toml:"socials" json:"socials,omitempty"`
}

// Testimonial is a quote shown on the testimonials page.
type Testimonial struct {
	Text string `toml:"text" json:"text"`
	Name string `toml:"name" json:"name"`
	Role string `toml:"role" json:"role"`
}

// ContactInfo lists the public contact channels.
type ContactInfo struct {
	Email   string            `toml:"email" json:"email"`
	Phone   string            `toml:"phone" json:"phone"`
	Address string            `toml:"address" json:"address,omitempty"`
	Socials map[string]string `toml:"socials" json:"socials,omitempty"`
}

// Milestone is one entry of the organisation timeline.
type Milestone struct {
	Year        string `toml:"year" json:"year"`
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
}

// Value is a feature card on the about page.
type Value struct {
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
}

// SiteInfo carries the home and about page copy.
type SiteInfo struct {
	Name       string      `toml:"name" json:"name"`
	Tagline    string      `toml:"tagline" json:"tagline"`
	Mission    string      `toml:"mission" json:"mission"`
	Vision     string      `toml:"vision" json:"vision"`
	Milestones []Milestone `toml:"milestones" json:"milestones"`
	Values     []Value     `toml:"values" json:"values"`
	Contact    ContactInfo `toml:"contact" json:"contact"`
}

// ContentCatalog is the full static content set.
type ContentCatalog struct {
	Site         SiteInfo      `toml:"site" json:"site"`
	Courses      []Course      `toml:"courses" json:"courses"`
	Team         []TeamMember  `toml:"team" json:"team"`
	Testimonials []Testimonial `toml:"testimonials" json:"testimonials"`
}
