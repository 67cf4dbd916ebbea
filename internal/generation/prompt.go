package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/phrazzld/scry-gen/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptData represents the data passed to the prompt templates
type promptData struct {
	InputText     string
	MaxFrontChars int
	MaxBackChars  int
}

// PromptBuilder renders the system and user prompts for a generation.
type PromptBuilder struct {
	system *template.Template
	user   *template.Template
}

// NewPromptBuilder loads the embedded templates. A non-empty userTemplatePath
// replaces the embedded user template with the file's contents.
func NewPromptBuilder(userTemplatePath string) (*PromptBuilder, error) {
	system, err := template.ParseFS(promptFS, "prompts/system.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse system prompt template: %v", ErrInvalidConfig, err)
	}

	var user *template.Template
	if userTemplatePath == "" {
		user, err = template.ParseFS(promptFS, "prompts/user.tmpl")
	} else {
		var content []byte
		content, err = os.ReadFile(userTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, userTemplatePath, err)
		}
		user, err = template.New("user").Parse(string(content))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse user prompt template: %v", ErrInvalidConfig, err)
	}

	return &PromptBuilder{system: system, user: user}, nil
}

// Build returns the system and user prompts for text.
func (b *PromptBuilder) Build(text string) (systemPrompt, userPrompt string, err error) {
	data := promptData{
		InputText:     text,
		MaxFrontChars: domain.MaxFrontChars,
		MaxBackChars:  domain.MaxBackChars,
	}

	if systemPrompt, err = render(b.system, data); err != nil {
		return "", "", err
	}
	if userPrompt, err = render(b.user, data); err != nil {
		return "", "", err
	}
	return systemPrompt, userPrompt, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
