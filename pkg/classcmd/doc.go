// Package classcmd declares Discord application commands as Go structs.
//
// A declaration embeds one of SlashCommand, UserCommand or MessageCommand.
// Exported fields become parameters and methods are lifecycle hooks:
//
//	// Ban removes a member from the server.
//	type Ban struct {
//		classcmd.SlashCommand `name:"ban" permissions:"4" guild_only:"true"`
//
//		User   *discordgo.Member
//		Reason string `description:"Shown in the audit log" default:"no reason"`
//		Days   classcmd.Maybe[int] `min:"0" max:"7"`
//	}
//
//	func (b *Ban) Callback(ctx context.Context) error {
//		return b.Reply("banned "+b.User.User.Username, true)
//	}
//
// New[Ban]() turns the declaration into an *appcmd.Command once. Every
// interaction then gets a fresh *Ban with Interaction and the parameters set.
//
// Field tags: name, description, default, choices ("Label=value,..."),
// autocomplete, min, max, minlen, maxlen, channels, type and cmd:"-".
// Tags on the embedded base: name, description, guild, guilds, permissions,
// guild_only and nsfw. A declaration may also implement Doc() for descriptions
// parsed from Google, NumPy or Sphinx style argument sections, Options() for
// per-field Option values and Types() for the names used in type tags.
package classcmd
