// normalize.go -- Per-provider user shapes and the raw-payload normalizer.
package oauth

import "encoding/json"

// User is the normalized profile returned to the caller. The set of
// implementations is closed: *DiscordUser, *GoogleUser, *SpotifyUser.
type User interface {
	Provider() ID
	normalized()
}

// --- Discord ---

// DiscordGuildIdentity is the clan / primary guild block of a Discord user.
type DiscordGuildIdentity struct {
	IdentityGuildID string `json:"identity_guild_id"`
	IdentityEnabled bool   `json:"identity_enabled"`
	Tag             string `json:"tag"`
	Badge           string `json:"badge"`
}

// DiscordUser always carries every field; absent upstream values are filled
// with "" for strings and true for identity_enabled and verified.
type DiscordUser struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	Avatar       string               `json:"avatar"`
	GlobalName   string               `json:"global_name"`
	Clan         DiscordGuildIdentity `json:"clan"`
	PrimaryGuild DiscordGuildIdentity `json:"primary_guild"`
	Email        string               `json:"email"`
	Verified     bool                 `json:"verified"`
}

func (*DiscordUser) Provider() ID { return Discord }
func (*DiscordUser) normalized()  {}

type discordGuildPayload struct {
	IdentityGuildID *string `json:"identity_guild_id"`
	IdentityEnabled *bool   `json:"identity_enabled"`
	Tag             *string `json:"tag"`
	Badge           *string `json:"badge"`
}

type discordPayload struct {
	ID           *string              `json:"id"`
	Username     *string              `json:"username"`
	Avatar       *string              `json:"avatar"`
	GlobalName   *string              `json:"global_name"`
	Clan         *discordGuildPayload `json:"clan"`
	PrimaryGuild *discordGuildPayload `json:"primary_guild"`
	Email        *string              `json:"email"`
	Verified     *bool                `json:"verified"`
}

func normalizeDiscord(raw []byte) *DiscordUser {
	var in discordPayload
	// Partial decodes are kept: a mistyped field falls back to its default.
	_ = json.Unmarshal(raw, &in)

	return &DiscordUser{
		ID:           str(in.ID),
		Username:     str(in.Username),
		Avatar:       str(in.Avatar),
		GlobalName:   str(in.GlobalName),
		Clan:         discordGuild(in.Clan),
		PrimaryGuild: discordGuild(in.PrimaryGuild),
		Email:        str(in.Email),
		Verified:     boolOrTrue(in.Verified),
	}
}

func discordGuild(g *discordGuildPayload) DiscordGuildIdentity {
	if g == nil {
		g = &discordGuildPayload{}
	}
	return DiscordGuildIdentity{
		IdentityGuildID: str(g.IdentityGuildID),
		IdentityEnabled: boolOrTrue(g.IdentityEnabled),
		Tag:             str(g.Tag),
		Badge:           str(g.Badge),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// boolOrTrue keeps the legacy default: a missing flag reads as true.
func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

// --- Pass-through variants ---

// passthrough copies raw for verbatim re-encoding. Input that is not JSON
// becomes an empty object so the response stays well-formed.
func passthrough(raw []byte) json.RawMessage {
	if !json.Valid(raw) {
		return json.RawMessage(`{}`)
	}
	return append(json.RawMessage(nil), raw...)
}

func marshalRaw(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return []byte(`{}`), nil
	}
	return raw, nil
}

// --- Google ---

// GoogleUser passes Google's profile through verbatim: nulls and keys without
// a field below are kept. The fields are a decoded view for Go callers.
type GoogleUser struct {
	ID         *string `json:"id"`
	Name       *string `json:"name"`
	GivenName  *string `json:"given_name"`
	FamilyName *string `json:"family_name"`
	Picture    *string `json:"picture"`

	raw json.RawMessage
}

func (*GoogleUser) Provider() ID { return Google }
func (*GoogleUser) normalized()  {}

// MarshalJSON writes the upstream payload unchanged.
func (u *GoogleUser) MarshalJSON() ([]byte, error) { return marshalRaw(u.raw) }

// --- Spotify ---

// SpotifyUser passes Spotify's /me profile through verbatim, like GoogleUser.
type SpotifyUser struct {
	Country         *string                 `json:"country"`
	DisplayName     *string                 `json:"display_name"`
	Email           *string                 `json:"email"`
	ExplicitContent *SpotifyExplicitContent `json:"explicit_content"`
	ExternalURLs    *SpotifyExternalURLs    `json:"external_urls"`
	Followers       *SpotifyFollowers       `json:"followers"`
	Href            *string                 `json:"href"`
	ID              *string                 `json:"id"`
	Images          []SpotifyImage          `json:"images"`
	Product         *string                 `json:"product"`
	Type            *string                 `json:"type"`
	URI             *string                 `json:"uri"`

	raw json.RawMessage
}

type SpotifyExplicitContent struct {
	FilterEnabled *bool `json:"filter_enabled"`
	FilterLocked  *bool `json:"filter_locked"`
}

type SpotifyExternalURLs struct {
	Spotify *string `json:"spotify"`
}

type SpotifyFollowers struct {
	Href  *string `json:"href"`
	Total *int    `json:"total"`
}

type SpotifyImage struct {
	Height *int    `json:"height"`
	URL    *string `json:"url"`
	Width  *int    `json:"width"`
}

func (*SpotifyUser) Provider() ID { return Spotify }
func (*SpotifyUser) normalized()  {}

// MarshalJSON writes the upstream payload unchanged.
func (u *SpotifyUser) MarshalJSON() ([]byte, error) { return marshalRaw(u.raw) }

// Normalize maps a raw profile payload onto the stable shape for id.
// Total: undecodable input yields the variant's empty form. Returns nil only
// for an id outside the supported set.
func Normalize(id ID, raw []byte) User {
	switch id {
	case Discord:
		return normalizeDiscord(raw)
	case Google:
		u := &GoogleUser{raw: passthrough(raw)}
		_ = json.Unmarshal(raw, u)
		return u
	case Spotify:
		u := &SpotifyUser{raw: passthrough(raw)}
		_ = json.Unmarshal(raw, u)
		return u
	default:
		return nil
	}
}
