package plex

import (
	"context"
	"fmt"
	"strings"

	"watchmigrate/internal/services"
)

// Section is a Plex library section.
type Section struct {
	Key   string `xml:"key,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// Sections lists the server's library sections.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	var container struct {
		Directories []Section `xml:"Directory"`
	}
	if err := c.getXML(ctx, "/library/sections", nil, &container); err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.Key == "" || dir.Title == "" {
			continue
		}
		out = append(out, dir)
	}
	return out, nil
}

func (c *Client) section(ctx context.Context, name string) (Section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections == nil {
		list, err := c.Sections(ctx)
		if err != nil {
			return Section{}, err
		}
		sections := make(map[string]Section, len(list))
		for _, s := range list {
			sections[strings.ToLower(s.Title)] = s
		}
		c.sections = sections
	}
	section, ok := c.sections[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Section{}, services.Wrap(services.ErrNotFound, "plex", "resolve section", fmt.Sprintf("library %q not found", name), nil)
	}
	return section, nil
}
