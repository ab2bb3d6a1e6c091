package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/genkit"

	"github.com/skepee/knowledge-rag/internal/llm"
	"github.com/skepee/knowledge-rag/internal/log"
)

const outlineSystemPrompt = "You are an expert academic curriculum designer creating university-level courses. Use scholarly language and academic standards."

// DefaultMaxModules caps how many modules get full content generated.
const DefaultMaxModules = 3

// OutlinePlanner produces a course outline for a topic. A result with a
// nil Parsed field means the model answered but not in the expected shape.
type OutlinePlanner interface {
	PlanOutline(ctx context.Context, topic, level, sourceSummaries string) (llm.StructuredResult[Outline], error)
}

// genkitPlanner is the model-backed OutlinePlanner.
type genkitPlanner struct {
	g     *genkit.Genkit
	model string
}

func (p *genkitPlanner) PlanOutline(ctx context.Context, topic, level, sourceSummaries string) (llm.StructuredResult[Outline], error) {
	prompt := fmt.Sprintf(`Create a comprehensive %s-level course outline for "%s".

Use these authoritative sources as foundation:
%s

The course needs a catalog-style title and description, 8-10 measurable
learning objectives, detailed prerequisites, and 8-12 modules. Each module
needs a descriptive academic title, 4-5 learning objectives, key concepts,
topics, a duration and contact hours.`, level, topic, sourceSummaries)

	return llm.GenerateStructured[Outline](ctx, p.g, p.model, outlineSystemPrompt, prompt)
}

// NewPlanner returns the model-backed OutlinePlanner.
func NewPlanner(g *genkit.Genkit, model string) OutlinePlanner {
	return &genkitPlanner{g: g, model: model}
}

// Generator builds complete courses: gather sources, plan an outline and
// write content for the leading modules.
type Generator struct {
	planner    OutlinePlanner
	completer  llm.Completer
	finder     *Finder
	maxModules int
	logger     log.Logger
}

func NewGenerator(planner OutlinePlanner, completer llm.Completer, finder *Finder, maxModules int, logger log.Logger) *Generator {
	if maxModules <= 0 {
		maxModules = DefaultMaxModules
	}
	return &Generator{
		planner:    planner,
		completer:  completer,
		finder:     finder,
		maxModules: maxModules,
		logger:     logger,
	}
}

// Generate produces a course on the topic. When the model's outline does
// not parse, a templated outline keeps generation going rather than
// failing the request.
func (g *Generator) Generate(ctx context.Context, topic, level string) (*Course, error) {
	sources := g.finder.Find(ctx, topic, 4)
	g.logger.Info("gathered course sources", "topic", topic, "count", len(sources))

	outline := g.planOutline(ctx, topic, level, sources)

	moduleOutlines := outline.Modules
	if len(moduleOutlines) > g.maxModules {
		moduleOutlines = moduleOutlines[:g.maxModules]
	}

	modules := make([]Module, 0, len(moduleOutlines))
	for _, mo := range moduleOutlines {
		content, err := g.moduleContent(ctx, topic, level, mo)
		if err != nil {
			return nil, fmt.Errorf("generating module %q: %w", mo.Title, err)
		}
		modules = append(modules, Module{ModuleOutline: mo, Content: content})
	}

	return &Course{
		CourseTitle:        outline.CourseTitle,
		CourseCode:         outline.CourseCode,
		Description:        outline.Description,
		Level:              level,
		LearningObjectives: outline.LearningObjectives,
		Prerequisites:      outline.Prerequisites,
		Sources:            sources,
		Modules:            modules,
	}, nil
}

func (g *Generator) planOutline(ctx context.Context, topic, level string, sources []ContentSource) Outline {
	result, err := g.planner.PlanOutline(ctx, topic, level, summarizeSources(sources))
	if err != nil {
		g.logger.Warn("outline generation failed, using fallback", "topic", topic, "error", err)
		return fallbackOutline(topic, level)
	}
	if result.Parsed == nil {
		g.logger.Warn("outline did not parse, using fallback", "topic", topic)
		return fallbackOutline(topic, level)
	}
	if len(result.Parsed.Modules) == 0 {
		g.logger.Warn("outline has no modules, using fallback", "topic", topic)
		return fallbackOutline(topic, level)
	}
	return *result.Parsed
}

func (g *Generator) moduleContent(ctx context.Context, topic, level string, mo ModuleOutline) (string, error) {
	prompt := fmt.Sprintf(`Write detailed lecture content for the module "%s" of a %s-level course on %s.

Learning objectives:
%s

Key concepts to cover:
%s

Write thorough, academically rigorous content with concrete examples.`,
		mo.Title, level, topic,
		bulletList(mo.Objectives),
		bulletList(mo.KeyConcepts))

	return g.completer.Complete(ctx, outlineSystemPrompt, prompt)
}

// summarizeSources renders the top sources for the outline prompt. Long
// descriptions are cut so a handful of sources cannot crowd out the
// instructions.
func summarizeSources(sources []ContentSource) string {
	const maxSources = 8
	const maxDescription = 800

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		desc := truncateRunes(s.Description, maxDescription)
		parts = append(parts, fmt.Sprintf("**%s** (%s):\n%s", s.Title, s.SourceType, desc))
	}
	return strings.Join(parts, "\n\n")
}

// truncateRunes cuts s to at most max runes, appending an ellipsis when
// anything was dropped. Slicing on runes keeps multibyte text valid.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (use your judgment)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// fallbackOutline is a templated outline used when the model's output is
// unusable. It mirrors a standard course progression for any topic.
func fallbackOutline(topic, level string) Outline {
	baseTitles := []string{
		"Foundations of " + topic,
		"Historical Development and Context of " + topic,
		"Core Theories and Principles in " + topic,
		"Methodologies and Approaches in " + topic,
		"Contemporary Applications of " + topic,
		"Research and Innovation in " + topic,
		"Critical Analysis and Evaluation of " + topic,
		"Future Directions and Emerging Trends in " + topic,
	}

	modules := make([]ModuleOutline, 0, len(baseTitles))
	for i, title := range baseTitles {
		modules = append(modules, ModuleOutline{
			ModuleNumber: i + 1,
			Title:        title,
			Duration:     "2-3 weeks",
			ContactHours: "6-8 hours",
			Objectives: []string{
				"Understand key concepts in " + strings.ToLower(title),
				"Apply " + topic + " principles to real-world scenarios",
				"Critically evaluate approaches in " + strings.ToLower(title),
				"Synthesize knowledge from multiple perspectives",
			},
			KeyConcepts: []string{
				"Fundamental principles of " + topic,
				"Historical development",
				"Current methodologies",
				"Research applications",
				"Critical perspectives",
			},
			Topics: []string{
				"Introduction to " + strings.ToLower(title),
				"Theoretical frameworks",
				"Practical applications",
				"Case studies and examples",
			},
		})
	}

	code := strings.ToUpper(strings.ReplaceAll(topic, " ", ""))
	if r := []rune(code); len(r) > 4 {
		code = string(r[:4])
	}

	return Outline{
		CourseTitle:      "Comprehensive " + topic + " Studies",
		CourseCode:       code + "401",
		Description:      fmt.Sprintf("This comprehensive %s-level course provides an in-depth exploration of %s, covering foundational theories, contemporary research, practical applications, and critical analysis.", level, topic),
		TotalCreditHours: "3-4",
		WeeklyHours:      "3 hours lecture + 2 hours seminar/lab",
		CourseDuration:   "15 weeks",
		LearningObjectives: []string{
			"Demonstrate comprehensive understanding of " + topic + " principles and theories",
			"Apply " + topic + " methodologies to solve complex problems",
			"Critically evaluate different approaches and perspectives in " + topic,
			"Conduct independent research in " + topic + " areas",
			"Communicate " + topic + " concepts effectively to diverse audiences",
		},
		Prerequisites: []string{
			"Undergraduate degree or equivalent",
			"Basic knowledge of related fields to " + topic,
			"Research methods and academic writing skills",
		},
		Modules: modules,
	}
}
