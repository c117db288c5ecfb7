// Command admin is the operator tool for the video library: listing records,
// deleting them (singly, in batches, or wholesale) and generating reports
// without going through the HTTP surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/columnfella/Transcripting-webapp/artifacts"
	"github.com/columnfella/Transcripting-webapp/config"
	"github.com/columnfella/Transcripting-webapp/deletion"
	"github.com/columnfella/Transcripting-webapp/report"
	"github.com/columnfella/Transcripting-webapp/store"
)

type env struct {
	Store   *store.Store
	Deleter *deletion.Coordinator
	Reports *report.Generator
}

func newEnv() (*env, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg)

	st, err := store.New(cfg.MetadataFile, log)
	if err != nil {
		return nil, err
	}
	mgr, err := artifacts.NewManager(cfg.UploadDir, cfg.ThumbnailDir, cfg.ReportDir, log)
	if err != nil {
		return nil, err
	}
	return &env{
		Store:   st,
		Deleter: deletion.NewCoordinator(st, mgr, log),
		Reports: report.NewGenerator(st, cfg.ReportDir, log),
	}, nil
}

func main() {
	root := &cobra.Command{
		Use:   "admin",
		Short: "Video library management tool",
		Long:  `Operator commands for the video transcripting server: list, delete and report on stored videos.`,
	}
	root.AddCommand(newListCmd(), newDeleteCmd(), newDeleteAllCmd(), newReportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all videos with their details",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			doc, err := e.Store.Load()
			if err != nil {
				return err
			}
			if len(doc.Videos) == 0 {
				fmt.Println("No videos found.")
				return nil
			}
			fmt.Printf("Total videos: %d (highest id issued: %s)\n", len(doc.Videos), doc.TotalUploads)
			for _, v := range doc.Videos {
				fmt.Printf("ID: %s | Title: %s | File: %s | Duration: %s\n",
					v.ID, v.Title, v.Filename, v.DurationFormatted)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete videos by id, including their artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			deleted, failures := e.Deleter.DeleteMany(args)
			fmt.Printf("Successfully deleted %d video(s).\n", deleted)
			for _, f := range failures {
				fmt.Printf("ID %s: %s\n", f.ID, f.Error)
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d deletion(s) failed", len(failures))
			}
			return nil
		},
	}
}

func newDeleteAllCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every video and thumbnail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete everything without --confirm")
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			n, err := e.Deleter.DeleteAll()
			if err != nil {
				return err
			}
			fmt.Printf("Successfully deleted all %d videos and thumbnails.\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "actually perform the deletion")
	return cmd
}

func newReportCmd() *cobra.Command {
	var start, end float64
	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Generate a transcript report PDF for one video",
		Long:  `Generate a full transcript report, or an interval-scoped one when --start and --end are given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			rec, err := e.Store.Find(args[0])
			if err != nil {
				return err
			}

			var filename string
			if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
				filename, err = e.Reports.RenderRange(rec, start, end)
			} else {
				filename, err = e.Reports.RenderFull(rec)
			}
			if err != nil {
				return err
			}
			fmt.Printf("PDF generated: %s\n", filename)
			return nil
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "interval start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "interval end in seconds")
	return cmd
}
