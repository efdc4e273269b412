package audit

import (
	"regexp"
	"strings"
)

// Result is the outcome of one structural content audit. It is a pure
// function of the content: identical input always yields an identical
// Result, and it is recomputed on every publish attempt, never cached as
// authoritative.
type Result struct {
	Missing        []string `json:"missing"`
	Warnings       []string `json:"warnings"`
	Notes          []string `json:"notes"`
	ReadyToPublish bool     `json:"ready_to_publish"`
}

var (
	titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaRegex  = regexp.MustCompile(`(?is)<meta\s+[^>]*name\s*=\s*["']description["'][^>]*>`)
	h1Regex    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	tagRegex   = regexp.MustCompile(`(?s)<[^>]+>`)
)

// ctaPhrases is the fixed vocabulary of recognized call-to-action phrases.
// At least one must appear for the content to be publishable.
var ctaPhrases = []string{
	"get started",
	"sign up",
	"start free",
	"start your free trial",
	"try it free",
	"buy now",
	"subscribe",
	"contact us",
	"request a demo",
	"join now",
}

// trustMarkers are non-blocking signals; their absence is a warning only.
var trustMarkers = []string{
	"testimonial",
	"trusted by",
	"money-back",
	"guarantee",
	"reviews",
}

// Check runs the structural audit over a full HTML document. Missing items
// block publishing; warnings and notes never do.
func Check(content string) Result {
	res := Result{
		Missing:  []string{},
		Warnings: []string{},
		Notes:    []string{},
	}
	lower := strings.ToLower(content)

	// Title element with non-empty text
	if m := titleRegex.FindStringSubmatch(content); m == nil || strings.TrimSpace(stripTags(m[1])) == "" {
		res.Missing = append(res.Missing, "a <title> element with page title text")
	}

	// Meta description
	if !metaRegex.MatchString(content) {
		res.Missing = append(res.Missing, "a meta description tag")
	}

	// Primary heading with human-readable text
	if m := h1Regex.FindStringSubmatch(content); m == nil {
		res.Missing = append(res.Missing, "a primary <h1> heading")
	} else if len(strings.TrimSpace(stripTags(m[1]))) < 4 {
		res.Missing = append(res.Missing, "readable text in the primary <h1> heading")
	}

	// Call to action from the fixed vocabulary
	if !containsAny(lower, ctaPhrases) {
		res.Missing = append(res.Missing, "a call-to-action (e.g. \"Get started\" or \"Sign up\")")
	}

	// Non-blocking signals
	if !containsAny(lower, trustMarkers) {
		res.Warnings = append(res.Warnings, "no trust markers found (testimonials, guarantees, reviews)")
	}
	if strings.Contains(lower, "book a call") {
		res.Warnings = append(res.Warnings, "\"book a call\" phrasing tends to underperform; prefer a self-serve call-to-action")
	}
	if !strings.Contains(lower, "pricing") && !strings.Contains(lower, "$") {
		res.Notes = append(res.Notes, "no pricing mention found; consider adding a pricing section")
	}

	res.ReadyToPublish = len(res.Missing) == 0
	return res
}

func stripTags(s string) string {
	return tagRegex.ReplaceAllString(s, " ")
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
