package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/glisignoli/ai-yt-dlp-web/config"
	"github.com/glisignoli/ai-yt-dlp-web/logging"
)

var (
	flagConfigFile  string
	flagPort        int
	flagDownloadDir string
	flagQueueFile   string
	flagYTDLPPath   string
	flagDebug       bool
)

var rootCmd = &cobra.Command{
	Use:   "dlqueue",
	Short: "Persistent media download queue with a web API",
	Long:  "Manages a persistent queue of media downloads, processing them one at a time through yt-dlp and surviving restarts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfigFile)
		if err != nil {
			return err
		}

		// CLI flags win over config file and environment
		if cmd.Flags().Changed("port") {
			cfg.Port = flagPort
		}
		if flagDownloadDir != "" {
			cfg.DownloadDir = flagDownloadDir
		}
		if flagQueueFile != "" {
			cfg.QueueFile = flagQueueFile
		}
		if flagYTDLPPath != "" {
			cfg.YTDLPPath = flagYTDLPPath
		}
		if flagDebug {
			cfg.Debug = true
		}

		logging.Init(cfg.Debug)
		return StartWebServer(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfigFile, "config", "c", "", "Path to YAML config file")
	rootCmd.Flags().IntVarP(&flagPort, "port", "p", config.DefaultPort, "Port for the web server")
	rootCmd.Flags().StringVarP(&flagDownloadDir, "downloads", "d", "", "Directory for downloaded files")
	rootCmd.Flags().StringVarP(&flagQueueFile, "queue-file", "q", "", "Path to the persisted queue file")
	rootCmd.Flags().StringVar(&flagYTDLPPath, "ytdlp", "", "Path to the yt-dlp binary")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
