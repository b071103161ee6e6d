package cli

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/dblclient/internal/app"
	"github.com/samvad-hq/dblclient/internal/domain"
	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/spf13/cobra"
)

var (
	botsSearch map[string]string
	botsSort   string
	botsLimit  int
	botsOffset int
	botsFields []string

	statsServerCount int
	statsShardID     int
	statsShardCount  int
	statsShards      []int
)

var botCmd = &cobra.Command{
	Use:   "bot <bot-id>",
	Short: "Show a bot listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		p, err := c.GetBot(args[0])
		return await(cmd.Context(), cmd.OutOrStdout(), p, err)
	},
}

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "Search bot listings",
	Long: `Search bot listings.

Examples:
  dblctl bots --search lib=discord.py --sort points --limit 10
  dblctl bots --fields id,username --offset 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		search := dbl.BotSearch{
			Sort:   botsSort,
			Limit:  botsLimit,
			Offset: botsOffset,
			Fields: botsFields,
		}
		if len(botsSearch) > 0 {
			search.Filters = make(map[string]any, len(botsSearch))
			for k, v := range botsSearch {
				search.Filters[k] = v
			}
		}
		p, err := c.GetBots(search)
		return await(cmd.Context(), cmd.OutOrStdout(), p, err)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [bot-id]",
	Short: "Show a bot's server and shard counts (defaults to your bot)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		p, err := c.GetStats(botArg(c, args))
		return await(cmd.Context(), cmd.OutOrStdout(), p, err)
	},
}

var votersCmd = &cobra.Command{
	Use:   "voters [bot-id]",
	Short: "List recent voters (defaults to your bot)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		p, err := c.GetVoters(botArg(c, args))
		return await(cmd.Context(), cmd.OutOrStdout(), p, err)
	},
}

var userCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Show a user profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		p, err := c.GetUser(args[0])
		return await(cmd.Context(), cmd.OutOrStdout(), p, err)
	},
}

var votedCmd = &cobra.Command{
	Use:   "voted <user-id>",
	Short: "Check whether a user voted for your bot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		p, err := c.HasVoted(args[0])
		return await(cmd.Context(), cmd.OutOrStdout(), p, err)
	},
}

var postStatsCmd = &cobra.Command{
	Use:   "post-stats",
	Short: "Report your bot's server count",
	Long: `Report your bot's server count.

Examples:
  dblctl post-stats -s 42
  dblctl post-stats -s 10 --shard-id 0 --shard-count 2
  dblctl post-stats --shards 120,98,143`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshotFromFlags(cmd)
		if err != nil {
			return err
		}
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.PostStats(cmd.Context(), c, snap); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "stats posted")
		return nil
	},
}

func init() {
	botsCmd.Flags().StringToStringVar(&botsSearch, "search", nil, "Search filters as key=value pairs")
	botsCmd.Flags().StringVar(&botsSort, "sort", "", "Field to sort by")
	botsCmd.Flags().IntVar(&botsLimit, "limit", 0, "Maximum number of results (up to 500)")
	botsCmd.Flags().IntVar(&botsOffset, "offset", 0, "Number of results to skip")
	botsCmd.Flags().StringSliceVar(&botsFields, "fields", nil, "Fields to include in each result")

	postStatsCmd.Flags().IntVarP(&statsServerCount, "server-count", "s", 0, "Server count")
	postStatsCmd.Flags().IntVar(&statsShardID, "shard-id", -1, "Shard id this count belongs to")
	postStatsCmd.Flags().IntVar(&statsShardCount, "shard-count", 0, "Total number of shards")
	postStatsCmd.Flags().IntSliceVar(&statsShards, "shards", nil, "Server count of every shard")

	rootCmd.AddCommand(botCmd, botsCmd, statsCmd, votersCmd, userCmd, votedCmd, postStatsCmd)
}

func botArg(c *dbl.Client, args []string) string {
	if len(args) == 1 {
		return strings.TrimSpace(args[0])
	}
	return c.BotID()
}

func snapshotFromFlags(cmd *cobra.Command) (domain.StatsSnapshot, error) {
	flags := cmd.Flags()
	snap := domain.StatsSnapshot{ServerCount: statsServerCount}

	if flags.Changed("shards") {
		if flags.Changed("server-count") || flags.Changed("shard-id") {
			return snap, fmt.Errorf("--shards cannot be combined with --server-count or --shard-id")
		}
		snap.Shards = append([]int(nil), statsShards...)
		return snap, nil
	}
	if !flags.Changed("server-count") {
		return snap, fmt.Errorf("--server-count or --shards is required")
	}
	if flags.Changed("shard-id") {
		if !flags.Changed("shard-count") {
			return snap, fmt.Errorf("--shard-id requires --shard-count")
		}
		id, count := statsShardID, statsShardCount
		snap.ShardID, snap.ShardCount = &id, &count
	}
	return snap, nil
}
