// Package commands defines the /emoticon application command tree.
package commands

import (
	"github.com/bwmarrin/discordgo"
)

func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "emoticon",
			Description: "Track and analyze emoji usage across your server.",
			Options: []*discordgo.ApplicationCommandOption{
				scanCommand(),
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop the currently running scan.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Check the status of an ongoing scan.",
				},
				leaderboardCommand(),
				infoCommand(),
				profileCommand(),
				compareCommand(),
				settingsGroup(),
				datasetGroup(),
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "help",
					Description: "Get help with query syntax and commands.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show bot runtime and storage statistics.",
				},
			},
		},
	}
}

func scanCommand() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "scan",
		Description: "Scan channel history for emoji usage. Shows status if a scan is running.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "scope",
				Description: "What to scan",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "server", Value: "server"},
					{Name: "current", Value: "current"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "sync_mode",
				Description: "How to handle existing data",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "append", Value: "append"},
					{Name: "rescan", Value: "rescan"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "dry_run",
				Description: "Simulate scan without saving data",
			},
		},
	}
}

func leaderboardCommand() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "leaderboard",
		Description: "View emoji usage leaderboards.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Type of leaderboard",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "global", Value: "global"},
					{Name: "user", Value: "user"},
					{Name: "density", Value: "density"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "sort",
				Description: "Sort order",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "most", Value: "most"},
					{Name: "least", Value: "least"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "dataset",
				Description: "Apply a saved dataset",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Filter scope and display options",
			},
		},
	}
}

func infoCommand() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "info",
		Description: "Get detailed stats for a specific emoji.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "emoji",
				Description: "The emoji to analyze",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Filter scope and display options",
			},
		},
	}
}

func profileCommand() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "profile",
		Description: "View a user's emoji profile.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The user to view (defaults to you)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Filter scope and display options",
			},
		},
	}
}

func compareCommand() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "compare",
		Description: "Compare two emojis or users.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "entity_a",
				Description: "First emoji or @user",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "entity_b",
				Description: "Second emoji or @user",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Filter scope",
			},
		},
	}
}

func settingsGroup() *discordgo.ApplicationCommandOption {
	actionChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "add", Value: "add"},
		{Name: "remove", Value: "remove"},
		{Name: "list", Value: "list"},
	}

	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        "settings",
		Description: "Configure emoji analytics settings",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "scope",
				Description: "Configure scanning scope.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "default_scope",
						Description: "Default scan breadth",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "server", Value: "server"},
							{Name: "category", Value: "category"},
							{Name: "channel", Value: "channel"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "thread_policy",
						Description: "How to handle threads",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "ignore", Value: "ignore"},
							{Name: "active", Value: "active"},
							{Name: "all", Value: "all"},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "filters",
				Description: "Configure emoji tracking filters.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "tracking_mode",
						Description: "What emojis to track",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "all", Value: "all"},
							{Name: "whitelist", Value: "whitelist"},
							{Name: "blacklist", Value: "blacklist"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "allow_external",
						Description: "Track nitro emojis from other servers",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "filterlist",
				Description: "Manage whitelist/blacklist emoji entries.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "action",
						Description: "Add, remove, or list entries",
						Required:    true,
						Choices:     actionChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "list",
						Description: "Which list to manage",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "whitelist", Value: "whitelist"},
							{Name: "blacklist", Value: "blacklist"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "emoji",
						Description: "The emoji to add or remove",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "display",
				Description: "Configure visual display options.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "target",
						Description: "Which command to configure",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "global", Value: "global"},
							{Name: "leaderboard", Value: "leaderboard"},
							{Name: "info", Value: "info"},
							{Name: "profile", Value: "profile"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "show_ids",
						Description: "Show emoji IDs",
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "show_percentages",
						Description: "Show percentages",
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "compact_mode",
						Description: "Use compact display mode",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "tie_grouping",
						Description: "How tied entries are listed",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "group", Value: "group"},
							{Name: "list_all", Value: "list_all"},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "privacy",
				Description: "Configure privacy and data integrity settings.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "track_edits",
						Description: "Update counts when messages are edited",
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "retain_deleted",
						Description: "Keep stats from deleted messages",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "ignore",
				Description: "Add or remove channels/categories from the ignore list.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "action",
						Description: "Add or remove from ignore list",
						Required:    true,
						Choices:     actionChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to ignore/unignore",
						ChannelTypes: []discordgo.ChannelType{
							discordgo.ChannelTypeGuildText,
							discordgo.ChannelTypeGuildNews,
							discordgo.ChannelTypeGuildForum,
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "category",
						Description: "Category to ignore/unignore",
						ChannelTypes: []discordgo.ChannelType{
							discordgo.ChannelTypeGuildCategory,
						},
					},
				},
			},
		},
	}
}

func datasetGroup() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        "dataset",
		Description: "Manage saved channel datasets",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create a saved dataset of channels.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Name for the dataset",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "channels",
						Description: "Channels to include (mention multiple)",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a saved dataset.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Name of the dataset to delete",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List all saved datasets.",
			},
		},
	}
}
