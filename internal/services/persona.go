package services

import (
	"fmt"
	"sort"
	"strings"

	"deathbydinner-backend/internal/models"
)

// Persona is a server-owned assistant character. Instruction is prepended to
// every completion request and must never be sent to clients.
type Persona struct {
	Slug        string
	Name        string
	Subtitle    string
	Greeting    string
	Instruction string
}

// Info returns the fields a widget needs to render the persona.
func (p Persona) Info() models.PersonaInfo {
	return models.PersonaInfo{
		Name:     p.Name,
		Subtitle: p.Subtitle,
		Greeting: p.Greeting,
	}
}

// RoutePath is the relay endpoint path for the persona.
func (p Persona) RoutePath() string {
	return "/api/" + p.Slug + "-chat"
}

const maitreDenoInstruction = `
You are Maitre Deno, the eloquent, theatrical host of Death by Dinner, an interactive murder mystery dinner party experience.
Your goals:
1) Explain how Death by Dinner works in clear, friendly language.
2) Help visitors understand what they get when they purchase a story and what a typical evening looks like.
3) Gently guide interested guests toward booking or learning more, without being pushy.
Tone: charming, witty, slightly mischievous, but always clear and helpful.
Keep responses short and easy to read in a small chat window. Usually two to four sentences.
If asked for exact pricing or legal details, say that specifics are available on the site or by contacting the team.
If the user goes off topic, you can play along briefly but then steer the conversation back to Death by Dinner.
`

var personas = map[string]Persona{
	"maitre-deno": {
		Slug:        "maitre-deno",
		Name:        "Maitre Deno",
		Subtitle:    "Your murder mystery host",
		Greeting:    "Bonsoir, honored guest. I am Maitre Deno. May I tell you how Death by Dinner works?",
		Instruction: strings.TrimSpace(maitreDenoInstruction),
	},
}

// LookupPersona returns the registered persona for slug.
func LookupPersona(slug string) (Persona, error) {
	p, ok := personas[slug]
	if !ok {
		known := make([]string, 0, len(personas))
		for k := range personas {
			known = append(known, k)
		}
		sort.Strings(known)
		return Persona{}, &ConfigError{Message: fmt.Sprintf("unknown chat persona %q (known: %s)", slug, strings.Join(known, ", "))}
	}
	return p, nil
}
