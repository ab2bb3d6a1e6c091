// Package course generates university style course outlines and module
// content from Wikipedia and curated educational sources.
package course

// ContentSource is a piece of reference material feeding course
// generation. Credibility is a static 0..1 score by provider.
type ContentSource struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	SourceType  string  `json:"source_type"`
	Credibility float64 `json:"credibility"`
}

// ModuleOutline describes one course module as planned by the model.
type ModuleOutline struct {
	ModuleNumber int      `json:"module_number"`
	Title        string   `json:"title"`
	Duration     string   `json:"duration"`
	ContactHours string   `json:"contact_hours"`
	Objectives   []string `json:"objectives"`
	KeyConcepts  []string `json:"key_concepts"`
	Topics       []string `json:"topics"`
}

// Outline is the course skeleton the model produces before module content
// is written.
type Outline struct {
	CourseTitle        string          `json:"course_title"`
	CourseCode         string          `json:"course_code"`
	Description        string          `json:"description"`
	TotalCreditHours   string          `json:"total_credit_hours"`
	WeeklyHours        string          `json:"weekly_hours"`
	CourseDuration     string          `json:"course_duration"`
	LearningObjectives []string        `json:"learning_objectives"`
	Prerequisites      []string        `json:"prerequisites"`
	Modules            []ModuleOutline `json:"modules"`
}

// Module is a planned module together with its generated content.
type Module struct {
	ModuleOutline
	Content string `json:"content"`
}

// Course is a fully generated course.
type Course struct {
	CourseTitle        string          `json:"course_title"`
	CourseCode         string          `json:"course_code"`
	Description        string          `json:"description"`
	Level              string          `json:"level"`
	LearningObjectives []string        `json:"learning_objectives"`
	Prerequisites      []string        `json:"prerequisites"`
	Sources            []ContentSource `json:"sources"`
	Modules            []Module        `json:"modules"`
}
