package ai

import (
	"bytes"
	"errors"
	"text/template"
)

// PromptTemplate handles prompt generation for chat providers.
type PromptTemplate struct {
	SystemPrompt string
	UserPrompt   string
	tmpl         *template.Template
}

// PromptData contains the data used to render the user prompt template.
type PromptData struct {
	Diff string
}

// NewPromptTemplateFromProfile creates a PromptTemplate from a profile's prompts.
// Empty profile prompts fall back to the default profile.
func NewPromptTemplateFromProfile(p Profile) *PromptTemplate {
	def := builtinProfiles[DefaultProfileName]
	pt := &PromptTemplate{
		SystemPrompt: def.SystemPrompt,
		UserPrompt:   def.UserTemplate,
	}

	if p.SystemPrompt != "" {
		pt.SystemPrompt = p.SystemPrompt
	}
	if p.UserTemplate != "" {
		pt.UserPrompt = p.UserTemplate
	}

	return pt
}

// Validate parses the user template so configuration mistakes surface at startup.
func (pt *PromptTemplate) Validate() error {
	_, err := pt.parse()
	return err
}

func (pt *PromptTemplate) parse() (*template.Template, error) {
	if pt.tmpl != nil {
		return pt.tmpl, nil
	}
	tmpl, err := template.New("userPrompt").Option("missingkey=error").Parse(pt.UserPrompt)
	if err != nil {
		return nil, err
	}
	pt.tmpl = tmpl
	return tmpl, nil
}

// RenderUserPrompt renders the user prompt template with the given data.
// The diff is inserted verbatim.
func (pt *PromptTemplate) RenderUserPrompt(data *PromptData) (string, error) {
	if data == nil {
		return "", errors.New("prompt data cannot be nil")
	}

	tmpl, err := pt.parse()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// GetSystemPrompt returns the system prompt.
func (pt *PromptTemplate) GetSystemPrompt() string {
	return pt.SystemPrompt
}
