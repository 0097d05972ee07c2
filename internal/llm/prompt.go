// Package llm wraps the hosted generative model used to write social copy.
// It renders instruction prompts, calls the provider through the genai SDK,
// and normalizes the loosely formatted model output into a Captions value.
package llm

import (
	"fmt"
	"strings"
)

// DefaultTone is used when a caller passes a blank tone.
const DefaultTone = "Professional"

const promptTemplate = `You are an expert social media manager.
Write an Instagram caption and a Twitter post about %s.

CRITICAL INSTRUCTION: You MUST write these posts in a %s tone of voice!

Return the response strictly in JSON format exactly like this:
{
  "instagram_version": "your caption here",
  "twitter_version": "your tweet here"
}
Do not include any markdown formatting.`

// TextPrompt renders the instruction for a text description. The content is
// quoted with Go escaping so embedded quotes and newlines stay inside the
// subject line.
func TextPrompt(content, tone string) string {
	return fmt.Sprintf(promptTemplate, fmt.Sprintf("%q", content), toneOrDefault(tone))
}

// ImagePrompt renders the instruction for an attached image.
func ImagePrompt(tone string) string {
	return fmt.Sprintf(promptTemplate, "this image", toneOrDefault(tone))
}

func toneOrDefault(tone string) string {
	if t := strings.TrimSpace(tone); t != "" {
		return t
	}
	return DefaultTone
}
