package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkm/scihub-go/internal/download"
	"github.com/rkm/scihub-go/internal/scihub"
	"github.com/rkm/scihub-go/internal/tiles"
	"github.com/rkm/scihub-go/pkg/geojson"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		geojsonFile   string
		featureIndex  int
		tile          string
		start, end    string
		filters       map[string]string
		footprintsOut string
		doDownload    bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query the hub and report matching products",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			q := scihub.Query{Filters: filters}
			if start != "" {
				q.Start = scihub.RawDate(start)
			}
			if end != "" {
				q.End = scihub.RawDate(end)
			}
			switch {
			case geojsonFile != "":
				fc, err := geojson.ReadFile(geojsonFile)
				if err != nil {
					return err
				}
				area, err := fc.PolygonCoordinateList(featureIndex)
				if err != nil {
					return err
				}
				q.Area = area
			case tile != "":
				centroid, err := tiles.Lookup(tile)
				if err != nil {
					return err
				}
				q.Point = centroid.PointString()
			default:
				return fmt.Errorf("either --geojson or --tile is required")
			}

			result, err := a.client.Search(ctx, q)
			if err != nil {
				return err
			}
			entries := result.Entries()
			sizeGB, err := scihub.TotalSizeGB(entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "found %d products (%.2f GB)\n", len(entries), sizeGB)

			if footprintsOut != "" {
				fc, err := scihub.Footprints(entries)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(fc, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode footprints: %w", err)
				}
				if err := os.WriteFile(footprintsOut, data, 0o644); err != nil {
					return fmt.Errorf("failed to write footprints file: %w", err)
				}
			}

			if doDownload {
				dl := a.cfg.Download
				manager := download.NewManager(a.client, download.RetryPolicy{
					MaxAttempts: dl.MetadataAttempts,
					Interval:    dl.MetadataWait,
				}).WithLogger(a.logger).WithTransportVersion(dl.TransportVersion)

				results, err := manager.DownloadAll(ctx, result, dl.Directory, dl.MaxAttempts, download.Options{
					VerifyChecksum: dl.Checksum,
					VerifyExisting: dl.CheckExisting,
				})
				if err != nil {
					return err
				}
				for path, product := range results {
					if product == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "failed: %s\n", path)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&geojsonFile, "geojson", "g", "", "GeoJSON file with the search area polygon")
	cmd.Flags().IntVar(&featureIndex, "feature", 0, "feature index inside the GeoJSON file")
	cmd.Flags().StringVarP(&tile, "tile", "t", "", "Sentinel-2 tile id used as a point filter")
	cmd.Flags().StringVarP(&start, "start", "s", "", "acquisition start (YYYYMMDD, instant, or raw expression)")
	cmd.Flags().StringVarP(&end, "end", "e", "", "acquisition end (YYYYMMDD, instant, or raw expression)")
	cmd.Flags().StringToStringVarP(&filters, "query", "q", nil, "extra keyword filters, key=value")
	cmd.Flags().StringVar(&footprintsOut, "footprints", "", "write result footprints to this GeoJSON file")
	cmd.Flags().BoolVarP(&doDownload, "download", "d", false, "download all matching products")
	return cmd
}
