package ai

import (
	"context"
	"strings"
	"sync"

	"susurro/internal/prompt"
)

// DefaultTitle is used when title generation fails.
const DefaultTitle = "Nota de voz"

// TextResult carries a generated text and whether the upstream call failed
// and the value is a fallback. Enrichment never returns an error: a fallback
// is a degraded success, not a failure of the note-creation flow.
type TextResult struct {
	Value    string
	Fallback bool
}

// TagsResult is the tag-generation counterpart of TextResult.
type TagsResult struct {
	Tags     []string
	Fallback bool
}

// Enrichment bundles the AI-derived title and tags for a note.
type Enrichment struct {
	Title TextResult
	Tags  TagsResult
}

// GenerateTitle produces a short title for the content, falling back to
// DefaultTitle on any upstream failure.
func (c *Client) GenerateTitle(ctx context.Context, content string) TextResult {
	tmpl, err := c.prompts.Get(prompt.TitleGeneration)
	if err != nil {
		c.logger.Error("load title prompt", "error", err)
		return TextResult{Value: DefaultTitle, Fallback: true}
	}

	out, err := c.complete(ctx, tmpl, content)
	if err != nil {
		c.logger.Warn("title generation failed, using fallback", "error", err)
		return TextResult{Value: DefaultTitle, Fallback: true}
	}
	title := strings.TrimSpace(out)
	if title == "" {
		return TextResult{Value: DefaultTitle, Fallback: true}
	}
	return TextResult{Value: title}
}

// GenerateTags produces topic tags for the content, falling back to an
// empty list on any upstream failure.
func (c *Client) GenerateTags(ctx context.Context, content string) TagsResult {
	tmpl, err := c.prompts.Get(prompt.TagsGeneration)
	if err != nil {
		c.logger.Error("load tags prompt", "error", err)
		return TagsResult{Tags: []string{}, Fallback: true}
	}

	out, err := c.complete(ctx, tmpl, content)
	if err != nil {
		c.logger.Warn("tag generation failed, using fallback", "error", err)
		return TagsResult{Tags: []string{}, Fallback: true}
	}
	return TagsResult{Tags: splitTags(out)}
}

// OrganizeIdeas restructures a raw transcript, falling back to the
// original text on any upstream failure.
func (c *Client) OrganizeIdeas(ctx context.Context, transcription string) TextResult {
	tmpl, err := c.prompts.Get(prompt.IdeaOrganization)
	if err != nil {
		c.logger.Error("load organization prompt", "error", err)
		return TextResult{Value: transcription, Fallback: true}
	}

	out, err := c.complete(ctx, tmpl, transcription)
	if err != nil {
		c.logger.Warn("idea organization failed, using fallback", "error", err)
		return TextResult{Value: transcription, Fallback: true}
	}
	organized := strings.TrimSpace(out)
	if organized == "" {
		return TextResult{Value: transcription, Fallback: true}
	}
	return TextResult{Value: organized}
}

// Enrich generates title and tags concurrently; there is no ordering
// dependency between them.
func (c *Client) Enrich(ctx context.Context, content string) Enrichment {
	var (
		wg sync.WaitGroup
		e  Enrichment
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.Title = c.GenerateTitle(ctx, content)
	}()
	go func() {
		defer wg.Done()
		e.Tags = c.GenerateTags(ctx, content)
	}()
	wg.Wait()
	return e
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
