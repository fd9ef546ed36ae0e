// Package prompt composes the instruction text sent to the analysis service.
//
// Prompts are rendered from text/template definitions and depend only on the
// request, so the same request always yields a byte-identical prompt.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/bugsqa/internal/domain"
)

const fence = "```"

// Request is the typed input of Build.
type Request struct {
	Kind       domain.InputKind
	Input      string // bug text, or file contents for domain.KindFile
	FileName   string
	Image      *domain.Attachment
	Severity   domain.Severity
	Language   domain.Language
	Complexity domain.Complexity
	Depth      int
}

// Prompt is the rendered instruction plus the out-of-band attachment.
type Prompt struct {
	Text       string
	Attachment *domain.Attachment
}

// Section is one heading the service is asked to produce.
type Section struct {
	Title    string
	Guidance string
}

// TextSections are requested, in order, for text and file reports.
var TextSections = []Section{
	{Title: "IMMEDIATE DIAGNOSIS", Guidance: "Provide a quick summary of what's wrong."},
	{Title: "ROOT CAUSE ANALYSIS", Guidance: "Identify the exact cause with detailed explanation."},
	{Title: "STEP-BY-STEP SOLUTION", Guidance: "1. Immediate fix steps\n2. Implementation details\n3. Testing approach"},
	{Title: "CORRECTED CODE", Guidance: "Provide the complete, error-free code with explanations:"},
	{Title: "CODE IMPROVEMENTS", Guidance: "Suggest optimizations and best practices."},
	{Title: "PREVENTION STRATEGIES", Guidance: "How to avoid this issue in the future."},
	{Title: "ALTERNATIVE SOLUTIONS", Guidance: "Provide 2-3 different approaches to solve this."},
	{Title: "TESTING RECOMMENDATIONS", Guidance: "- Unit tests to write\n- Edge cases to consider\n- Validation steps"},
	{Title: "PERFORMANCE IMPACT", Guidance: "Analyze if the fix affects performance."},
	{Title: "RELATED ISSUES", Guidance: "Common related problems to watch for."},
}

// ImageSections are requested, in order, for screenshots.
var ImageSections = []Section{
	{Title: "VISUAL ANALYSIS", Guidance: "Describe exactly what you see in the image."},
	{Title: "ERROR IDENTIFICATION", Guidance: "Identify the specific error or issue shown."},
	{Title: "ROOT CAUSE ANALYSIS", Guidance: "Explain why this error is occurring."},
	{Title: "COMPLETE SOLUTION", Guidance: "Provide step-by-step fix instructions."},
	{Title: "CORRECTED CODE", Guidance: "Write the complete, error-free code:"},
	{Title: "IMPROVEMENTS & OPTIMIZATIONS", Guidance: "Suggest enhancements to the code."},
	{Title: "PREVENTION TIPS", Guidance: "How to avoid this issue going forward."},
	{Title: "TESTING STRATEGY", Guidance: "Recommend testing approaches."},
}

const baseTemplate = `You are an advanced software debugging AI assistant with expertise in multiple programming languages and frameworks.

**Context:**
- Bug Severity: {{.Severity}}
- Programming Language/Framework: {{.Language}}
- Code Complexity Level: {{.Complexity}}
- Analysis Depth: {{.Depth}}/5

**Bug Input Type:** {{.Kind}}
`

const sectionsTemplate = `{{define "sections"}}{{range .Sections}}
## {{.Title}}
{{.Guidance}}
{{- if eq .Title "CORRECTED CODE"}}
{{$.Fence}}{{$.FenceTag}}
// Your fixed code here
{{$.Fence}}
{{- end}}
{{end}}{{end}}`

const textTemplate = baseTemplate + `{{if .FileName}}**Source File:** {{.FileName}}
{{end}}
**Bug Description/Error:**
{{.Fence}}
{{.Input}}
{{.Fence}}

**Required Analysis (Depth Level {{.Depth}}):**
{{template "sections" .}}
Please format your response with clear headers and provide practical, actionable solutions.
`

const imageTemplate = baseTemplate + `
**Instructions for Image Analysis:**
Please analyze this screenshot/image of a bug/error and provide comprehensive debugging assistance.

**Required Analysis:**
{{template "sections" .}}
Be specific and provide complete, working solutions.
`

var (
	textPrompt  = template.Must(template.Must(template.New("text").Parse(sectionsTemplate)).Parse(textTemplate))
	imagePrompt = template.Must(template.Must(template.New("image").Parse(sectionsTemplate)).Parse(imageTemplate))
)

type templateData struct {
	Kind       domain.InputKind
	Input      string
	FileName   string
	Severity   domain.Severity
	Language   domain.Language
	Complexity domain.Complexity
	Depth      int
	Fence      string
	FenceTag   string
	Sections   []Section
}

// Build renders the prompt for req.
// Text and file reports share the text template; screenshots use the image template
// and carry their bytes in Prompt.Attachment.
func Build(req Request) (Prompt, error) {
	if err := domain.ValidateDepth(req.Depth); err != nil {
		return Prompt{}, err
	}

	data := templateData{
		Kind:       req.Kind,
		Input:      req.Input,
		FileName:   req.FileName,
		Severity:   req.Severity,
		Language:   req.Language,
		Complexity: req.Complexity,
		Depth:      req.Depth,
		Fence:      fence,
		FenceTag:   req.Language.FenceTag(),
	}

	var tmpl *template.Template
	var attachment *domain.Attachment
	switch req.Kind {
	case domain.KindText, domain.KindFile:
		tmpl = textPrompt
		data.Sections = TextSections
	case domain.KindImage:
		if req.Image == nil || len(req.Image.Data) == 0 {
			return Prompt{}, fmt.Errorf("%w: image report without image data", domain.ErrValidation)
		}
		tmpl = imagePrompt
		data.Sections = ImageSections
		attachment = req.Image
	default:
		return Prompt{}, fmt.Errorf("%w: unsupported input kind %q", domain.ErrValidation, req.Kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("render %s prompt: %w", req.Kind, err)
	}

	return Prompt{
		Text:       strings.TrimSpace(buf.String()),
		Attachment: attachment,
	}, nil
}

// SectionTitles lists the headings requested for kind.
func SectionTitles(kind domain.InputKind) []string {
	sections := TextSections
	if kind == domain.KindImage {
		sections = ImageSections
	}
	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	return titles
}
