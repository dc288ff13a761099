package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// version is injected by cmd/whistle, which takes it from -ldflags.
var version = "dev"

// SetVersion overrides the reported version. Empty values are ignored.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("whistle version %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}
