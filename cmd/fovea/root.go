package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fovea",
		Short:         "Real-time foveated video transcoder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(transcodeCmd())
	return root
}

func transcodeCmd() *cobra.Command {
	var (
		configPath string
		profile    string
		suffix     string
	)
	cmd := &cobra.Command{
		Use:   "transcode LIST",
		Short: "Transcode every file named in LIST with foveated low-delay encoding",
		Long: `Transcode reads LIST, a text file with one input path per line,
and transcodes the video stream of every input into a low-delay
foveated rendition next to it. Files are processed sequentially, one
pipeline per file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if profile != "" {
				cfg.Profile = profile
			}
			if suffix != "" {
				cfg.OutputSuffix = suffix
			}
			return transcode(cfg, args[0])
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "encoder profile: libx264 or libx265")
	cmd.Flags().StringVarP(&suffix, "suffix", "s", "", "output file suffix")
	return cmd
}
