package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	dreamsCmd := &cobra.Command{Use: "dreams", Short: "Dream journal operations"}

	var title, date, entry string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new dream",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || entry == "" {
				return fmt.Errorf("--title and --entry required")
			}
			resp, err := checkStatus(newClient().R().
				SetBody(map[string]string{"title": title, "date": date, "entry": entry}).
				Post("/api/dreams"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "Dream title (required)")
	createCmd.Flags().StringVar(&date, "date", "", "Dream date, e.g. 2021-10-10")
	createCmd.Flags().StringVar(&entry, "entry", "", "Dream entry text (required)")
	dreamsCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your dreams",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Get("/api/dreams"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	dreamsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Get("/api/dreams/" + args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	dreamsCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Delete("/api/dreams/" + args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	dreamsCmd.AddCommand(deleteCmd)

	analysisCmd := &cobra.Command{
		Use:   "analysis <id>",
		Short: "Fetch or generate the dream's analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Get("/api/dreams/" + args[0] + "/analysis"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	dreamsCmd.AddCommand(analysisCmd)

	imageCmd := &cobra.Command{
		Use:   "image <id>",
		Short: "Fetch or generate the dream's image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Get("/api/dreams/" + args[0] + "/image"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	dreamsCmd.AddCommand(imageCmd)

	var query string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Semantic search over your dreams",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query required")
			}
			resp, err := checkStatus(newClient().R().
				SetBody(map[string]string{"query": query}).
				Post("/api/dreams/search"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	searchCmd.Flags().StringVarP(&query, "query", "q", "", "Search query (required)")
	dreamsCmd.AddCommand(searchCmd)

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export your journal as a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Get("/api/dreams/export/pdf"))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, resp.Body(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s (%d bytes)\n", out, len(resp.Body()))
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "dreams.pdf", "Output file")
	dreamsCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(dreamsCmd)
}
