package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage named server contexts",
}

var configSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or update a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := args[0]

		ctx := &cli.Context{}
		if existing, err := cfg.GetContext(name); err == nil {
			ctx = existing
		}
		flags := cmd.Flags()
		if flags.Changed("server") {
			ctx.ServerURL, _ = flags.GetString("server")
		}
		if flags.Changed("openai-key") {
			ctx.OpenAIKey, _ = flags.GetString("openai-key")
		}
		if flags.Changed("model") {
			ctx.Model, _ = flags.GetString("model")
		}
		if flags.Changed("voice") {
			ctx.Voice, _ = flags.GetString("voice")
		}
		if flags.Changed("secret") {
			ctx.Secret, _ = flags.GetString("secret")
		}
		if flags.Changed("data-dir") {
			ctx.DataDir, _ = flags.GetString("data-dir")
		}
		if flags.Changed("groupme-token") {
			ctx.GroupMeToken, _ = flags.GetString("groupme-token")
		}
		if flags.Changed("groupme-group") {
			ctx.GroupMeGroup, _ = flags.GetString("groupme-group")
		}
		if err := cfg.SetContext(name, ctx); err != nil {
			return err
		}
		cli.PrintSuccess("context %q saved", name)
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("switched to context %q", args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	RunE: func(*cobra.Command, []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		for _, name := range cfg.ListContexts() {
			marker := "  "
			if name == cfg.Current {
				marker = "* "
			}
			fmt.Println(marker + name)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a context with credentials masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		ctx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}
		masked := *ctx
		masked.OpenAIKey = cli.MaskKey(ctx.OpenAIKey)
		masked.Secret = cli.MaskKey(ctx.Secret)
		masked.GroupMeToken = cli.MaskKey(ctx.GroupMeToken)
		masked.Extra = nil
		return cli.Output(masked, cli.OutputOptions{})
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("context %q deleted", args[0])
		return nil
	},
}

func init() {
	configSetCmd.Flags().String("server", "", "morganai API base URL")
	configSetCmd.Flags().String("openai-key", "", "OpenAI API key")
	configSetCmd.Flags().String("model", "", "chat completion model override")
	configSetCmd.Flags().String("voice", "", "preferred synthesis voice")
	configSetCmd.Flags().String("secret", "", "token signing secret for serve")
	configSetCmd.Flags().String("data-dir", "", "server data directory override")
	configSetCmd.Flags().String("groupme-token", "", "GroupMe access token for the internship board")
	configSetCmd.Flags().String("groupme-group", "", "GroupMe group ID for the internship board")

	configCmd.AddCommand(configSetCmd, configUseCmd, configListCmd, configShowCmd, configDeleteCmd)
	rootCmd.AddCommand(configCmd)
}
