package notify

import (
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// TemplateCatalog holds per-kind default notification titles and messages.
// Templates are text/template strings rendered against the notification
// payload, e.g. "New match for {{.jobTitle}}".
type TemplateCatalog struct {
	templates map[string]kindTemplates
}

type kindTemplates struct {
	title   *template.Template
	message *template.Template
}

type catalogFile struct {
	Notifications map[string]struct {
		Title   string `yaml:"title"`
		Message string `yaml:"message"`
	} `yaml:"notifications"`
}

// ParseCatalog parses a YAML template catalog:
//
//	notifications:
//	  new_match:
//	    title: "New match found"
//	    message: "You matched with score {{.matchScore}}"
func ParseCatalog(data []byte) (*TemplateCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &TemplateCatalog{templates: make(map[string]kindTemplates, len(file.Notifications))}
	for kind, entry := range file.Notifications {
		title, err := template.New(kind + ".title").Parse(entry.Title)
		if err != nil {
			return nil, fmt.Errorf("%w: kind %q title: %v", ErrInvalidCatalog, kind, err)
		}
		message, err := template.New(kind + ".message").Parse(entry.Message)
		if err != nil {
			return nil, fmt.Errorf("%w: kind %q message: %v", ErrInvalidCatalog, kind, err)
		}
		c.templates[kind] = kindTemplates{title: title, message: message}
	}
	return c, nil
}

// Render produces the default title and message for a notification kind.
func (c *TemplateCatalog) Render(kind string, payload map[string]any) (title, message string, err error) {
	entry, ok := c.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrTemplateNotFound, kind)
	}

	var titleBuf, messageBuf strings.Builder
	if err := entry.title.Execute(&titleBuf, payload); err != nil {
		return "", "", fmt.Errorf("%w: kind %q title: %v", ErrTemplateRender, kind, err)
	}
	if err := entry.message.Execute(&messageBuf, payload); err != nil {
		return "", "", fmt.Errorf("%w: kind %q message: %v", ErrTemplateRender, kind, err)
	}
	return titleBuf.String(), messageBuf.String(), nil
}

// Has reports whether the catalog defines templates for the kind.
func (c *TemplateCatalog) Has(kind string) bool {
	_, ok := c.templates[kind]
	return ok
}
