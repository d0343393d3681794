// Package composer writes one cold outreach email per job record.
package composer

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/prompts"
	"github.com/jonathan/cold-outreach/internal/schemas"
	"github.com/jonathan/cold-outreach/internal/types"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 30 * time.Second

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>()\[\]"']+`)

// SenderProfile is who the email is from.
type SenderProfile struct {
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Company string `json:"company" yaml:"company"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
	Pitch   string `json:"pitch" yaml:"pitch"`
}

// DefaultSender is used when no sender is configured.
func DefaultSender() SenderProfile {
	return SenderProfile{
		Name:    "Alex Morgan",
		Title:   "Business Development Executive",
		Company: "Brightline Software",
		Pitch: "Brightline Software is a software and AI consulting firm that helps companies " +
			"ship products faster with dedicated engineering teams, process automation, and " +
			"cost-efficient delivery.",
	}
}

// Composer turns a job record and its retrieved portfolio links into an email.
type Composer struct {
	gen     llm.Generator
	Sender  SenderProfile
	Timeout time.Duration
	Tier    llm.ModelTier
	// ForbiddenPhrases are rejected anywhere in the subject or body.
	ForbiddenPhrases []string
}

// New creates a Composer.
func New(gen llm.Generator, sender SenderProfile) *Composer {
	return &Composer{
		gen:     gen,
		Sender:  sender,
		Timeout: DefaultTimeout,
		Tier:    llm.TierStandard,
	}
}

type draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Compose writes the email for job. With no links the email makes a generic
// case and references no portfolio work.
func (c *Composer) Compose(ctx context.Context, job types.JobRecord, links types.RetrievalResult) (types.OutreachEmail, error) {
	prompt := c.buildPrompt(job, links)

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	out, err := c.gen.Generate(ctx, llm.Request{Prompt: prompt, Tier: c.Tier, JSON: true})
	if err != nil {
		return types.OutreachEmail{}, &CompositionError{
			Kind:    string(llm.Classify(err)),
			Message: "generation failed",
			Cause:   err,
		}
	}

	payload := llm.CleanJSONBlock(out)
	if err := schemas.Validate(schemas.OutreachEmail, payload); err != nil {
		return types.OutreachEmail{}, &CompositionError{
			Kind:    string(llm.KindMalformed),
			Message: "email did not match the outreach_email schema",
			Cause:   err,
		}
	}

	var d draft
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return types.OutreachEmail{}, &CompositionError{
			Kind:    string(llm.KindMalformed),
			Message: "failed to decode email",
			Cause:   err,
		}
	}

	email := types.OutreachEmail{
		Role:    job.Role,
		Subject: strings.TrimSpace(d.Subject),
		Body:    strings.TrimSpace(d.Body),
		Links:   append([]string{}, links.Links...),
	}

	if unknown := c.unknownLinks(email, links.Links); len(unknown) > 0 {
		log.Printf("[compose] %q cites links it was not given: %v", job.Role, unknown)
		return types.OutreachEmail{}, &CompositionError{
			Kind:    KindFabricatedLink,
			Message: "email references links that were not supplied: " + strings.Join(unknown, ", "),
		}
	}

	text := email.Subject + "\n" + email.Body
	if slots := findPlaceholders(text); len(slots) > 0 {
		log.Printf("[compose] %q left placeholders: %v", job.Role, slots)
		return types.OutreachEmail{}, &CompositionError{
			Kind:    KindPlaceholder,
			Message: "email contains unfilled placeholders: " + strings.Join(slots, ", "),
		}
	}
	if found := checkForbiddenPhrases(text, c.ForbiddenPhrases); len(found) > 0 {
		log.Printf("[compose] %q uses forbidden phrases: %v", job.Role, found)
		return types.OutreachEmail{}, &CompositionError{
			Kind:    KindForbiddenPhrase,
			Message: "email contains forbidden phrases: " + strings.Join(found, ", "),
		}
	}

	return email, nil
}

func (c *Composer) buildPrompt(job types.JobRecord, links types.RetrievalResult) string {
	key := "compose-email"
	if links.Empty() {
		key = "compose-email-generic"
	}

	website := c.Sender.Website
	if website == "" {
		website = "our website"
	}

	template := prompts.MustGet(key)
	return prompts.Format(template, map[string]string{
		"SenderName":    c.Sender.Name,
		"SenderTitle":   c.Sender.Title,
		"SenderCompany": c.Sender.Company,
		"SenderPitch":   c.Sender.Pitch,
		"SenderWebsite": website,
		"Role":          job.Role,
		"Experience":    orNotSpecified(job.ExperienceOrEmpty()),
		"Skills":        orNotSpecified(strings.Join(job.Skills, ", ")),
		"Description":   orNotSpecified(job.Description),
		"Links":         bulletList(links.Links),
		"Format":        emailSchema().OutputFormat(),
	})
}

// unknownLinks returns every URL in the email that is neither a supplied
// link nor under the sender's website.
func (c *Composer) unknownLinks(email types.OutreachEmail, supplied []string) []string {
	allowed := make(map[string]bool, len(supplied))
	for _, l := range supplied {
		allowed[canonicalURL(l)] = true
	}
	site := canonicalURL(c.Sender.Website)

	var unknown []string
	for _, found := range urlPattern.FindAllString(email.Subject+"\n"+email.Body, -1) {
		found = strings.TrimRight(found, ".,;:!?")
		u := canonicalURL(found)
		if allowed[u] || (site != "" && (u == site || strings.HasPrefix(u, site+"/"))) {
			continue
		}
		unknown = append(unknown, found)
	}
	return unknown
}

func canonicalURL(u string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(u)), "/")
}

func emailSchema() llm.ExtractionSchema {
	return llm.ExtractionSchema{
		Name: "OutreachEmail",
		Fields: []llm.SchemaField{
			{Name: "subject", Type: `"string"`, Description: "Short subject line", Required: true},
			{Name: "body", Type: `"string"`, Description: "Plain-text email body with greeting and sign-off", Required: true},
		},
	}
}

func bulletList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}
