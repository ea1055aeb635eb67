package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkm/scihub-go/internal/download"
)

func newDownloadCommand(a *app) *cobra.Command {
	var (
		dir           string
		checksum      bool
		checkExisting bool
	)

	cmd := &cobra.Command{
		Use:   "download <product-id>...",
		Short: "Download product archives by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dl := a.cfg.Download
			if dir == "" {
				dir = dl.Directory
			}
			manager := download.NewManager(a.client, download.RetryPolicy{
				MaxAttempts: dl.MetadataAttempts,
				Interval:    dl.MetadataWait,
			}).WithLogger(a.logger).WithTransportVersion(dl.TransportVersion)

			opts := download.Options{
				VerifyChecksum: checksum || dl.Checksum,
				VerifyExisting: checkExisting || dl.CheckExisting,
			}
			for _, id := range args {
				outcome, err := manager.Download(cmd.Context(), id, dir, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", outcome.Status, outcome.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "target directory (defaults to DOWNLOAD_DIR)")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "verify the downloaded file's MD5 checksum")
	cmd.Flags().BoolVar(&checkExisting, "check-existing", false, "checksum pre-existing complete files instead of trusting their size")
	return cmd
}
