// Package brand holds the immutable voice profile that anchors every
// generated post. User preferences from the store can tweak style, but
// they never override the profile.
package brand

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the ground-truth description of the brand voice. It is
// loaded once at startup and treated as read-only afterwards.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Voice     []string `yaml:"voice"`
	Style     []string `yaml:"style"`
	Language  []string `yaml:"language"`
	Themes    []string `yaml:"themes"`
	Structure []string `yaml:"structure"`

	Openers     []string `yaml:"openers"`
	Transitions []string `yaml:"transitions"`
	Phrases     []string `yaml:"phrases"`

	PrimaryKeywords   []string `yaml:"primary_keywords"`
	SecondaryKeywords []string `yaml:"secondary_keywords"`

	ToneOverall   string `yaml:"tone_overall"`
	ToneFormality string `yaml:"tone_formality"`
}

// Default returns the built-in profile used when no profile file is
// configured.
func Default() *Profile {
	return &Profile{
		Name:        "Loomcraft",
		Description: "a custom tie and scarf manufacturer with 30+ years of experience",
		Voice: []string{
			"You ARE the founder speaking directly to the reader",
			"First-person perspective ALWAYS (\"I\", \"we\", \"our\", \"my\")",
			"Conversational, like chatting with a customer over coffee",
			"Passionate and opinionated - you LOVE this industry",
		},
		Style: []string{
			"LONG, flowing sentences with multiple comma-separated clauses",
			"Parenthetical asides (like this) for tangential thoughts",
			"Single-sentence paragraphs for emphasis",
			"NO bullet points or numbered lists - use flowing prose only",
		},
		Language: []string{
			"British spellings: colour, honour, recognise, organisation",
		},
		Themes: []string{
			"Belonging and recognition - ties create identity and community",
			"Tradition - schools, clubs, and companies carry legacy through accessories",
			"Craftsmanship - expertise in printed versus woven ties",
			"Local manufacturing pride",
		},
		Structure: []string{
			"8-12 paragraphs of flowing prose",
			"Jump straight into the topic - no generic intros",
			"End with an emphatic statement or trailing thought",
		},
		Openers:     []string{"When it comes to", "So", "I thought I would"},
		Transitions: []string{"Having said that", "Anyway, I digress", "In my opinion"},
		Phrases:     []string{"and so the list goes on", "I have to say", "quite frankly"},
		PrimaryKeywords: []string{
			"custom ties", "custom scarves", "corporate ties", "school ties",
			"club ties", "promotional ties", "branded ties", "company ties",
		},
		SecondaryKeywords: []string{"corporate socks", "woven ties", "printed ties"},
		ToneOverall:       "Conversational, passionate, educational, and authoritative",
		ToneFormality:     "Informal but knowledgeable",
	}
}

// Load reads a profile from a YAML file. Fields left empty in the file
// fall back to the built-in defaults so a partial profile is usable.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("brand profile: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("brand profile %s: %w", path, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("brand profile %s: name is required", path)
	}
	return p, nil
}

// Save writes the profile to a YAML file. Used by `blogsmith brand init`
// to give users a starting point to edit.
func Save(p *Profile, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
