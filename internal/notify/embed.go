package notify

import (
	"fmt"
	"time"

	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/domain"
)

const embedColor = 0xfa9c1d

type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
	Author    *EmbedAuthor `json:"author,omitempty"`
	Thumbnail *EmbedMedia  `json:"thumbnail,omitempty"`
	Image     *EmbedMedia  `json:"image,omitempty"`
	Footer    *EmbedFooter `json:"footer,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedMedia struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

var fieldTitles = map[string]string{
	domain.RoleTank:    "Tank",
	domain.RoleDamage:  "Damage",
	domain.RoleSupport: "Support",
}

// RankUpdateEmbed builds the change summary for one detected rank change.
// Each role where at least one of previous/current is present contributes a
// previous / difference / current field triple; roles absent on both sides
// are left out entirely.
func RankUpdateEmbed(profile *api.ProfileResponse, previous, current domain.RankSnapshot) Embed {
	embed := Embed{
		Title:     profile.Name,
		Color:     embedColor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Author:    &EmbedAuthor{Name: "Full Profile", IconURL: profile.RatingIcon},
		Thumbnail: &EmbedMedia{URL: profile.Icon},
		Footer:    &EmbedFooter{Text: "ow-api.com"},
	}

	for _, role := range domain.Roles {
		prev := previous.Level(role)
		cur := current.Level(role)
		if prev == nil && cur == nil {
			continue
		}
		title := fieldTitles[role]
		embed.Fields = append(embed.Fields,
			EmbedField{
				Name:   title + " previous",
				Value:  fmt.Sprintf("```%s SR```", domain.FormatLevel(prev)),
				Inline: true,
			},
			EmbedField{
				Name:   "Difference",
				Value:  fmt.Sprintf("```diff\n%s```", domain.FormatDelta(prev, cur)),
				Inline: true,
			},
			EmbedField{
				Name:   title + " current",
				Value:  fmt.Sprintf("```%s SR```", domain.FormatLevel(cur)),
				Inline: true,
			},
		)
	}

	return embed
}
