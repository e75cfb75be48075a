package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgpsm/pkg/config"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/paths"
)

// runtimeFlags holds the persistent flags shared by every subcommand,
// mirroring the teacher's root command's verbosity/config/force shape
// (cmd/dodot/root.go's NewRootCmd) generalized to pkgpsm's own config
// and chroot-root options.
type runtimeFlags struct {
	verbosity  int
	configPath string
	root       string
	testRun    bool
}

// newRootCmd builds the pkgpsmctl command tree.
func newRootCmd() *cobra.Command {
	flags := &runtimeFlags{}

	rootCmd := &cobra.Command{
		Use:   "pkgpsmctl",
		Short: "Drive the package state machine against a manifest-described element",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				pterm.Warning.Printfln("falling back to compiled-in defaults: %v", err)
				cfg = config.Default()
			}
			if flags.root != "" {
				cfg.Chroot.Root = flags.root
			}
			if flags.testRun {
				cfg.Transaction.Test = true
			}
			config.Initialize(cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "increase logging verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a pkgpsm.toml file overriding compiled-in defaults")
	rootCmd.PersistentFlags().StringVar(&flags.root, "root", "", "chroot target root (defaults to / or the loaded configuration)")
	rootCmd.PersistentFlags().BoolVar(&flags.testRun, "test", false, "dry run: evaluate the transaction without mutating anything")

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "CORE:"})

	rootCmd.AddCommand(newInstallCmd(flags))
	rootCmd.AddCommand(newEraseCmd(flags))
	rootCmd.AddCommand(newInstallSourceCmd(flags))

	return rootCmd
}

// defaultPathsConfig resolves the database/chroot locations a subcommand
// runs against. config.Get() supplies the values by default, including
// fine-grained PKGPSM_DATABASE_PATH/PKGPSM_CHROOT_ROOT-style overrides;
// when the coarser PKGPSM_DATA_DIR/PKGPSM_ROOT variables pkg/paths
// understands (set the whole XDG data directory, or the chroot target, at
// once) are present, they replace the configured database path or chroot
// root, whichever layer that value came from, since koanf's env layer has
// no way to express them itself. The replacement is written into the
// shared config.Get() instance.
func defaultPathsConfig() (*paths.Paths, *config.Config) {
	p := paths.New()
	cfg := config.Get()
	if os.Getenv(paths.EnvDataDir) != "" {
		cfg.Database.Path = p.DatabasePath()
	}
	if os.Getenv(paths.EnvRoot) != "" {
		cfg.Chroot.Root = p.Root()
	}
	return p, cfg
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(fmt.Sprintf("%v", err))
		os.Exit(1)
	}
}
