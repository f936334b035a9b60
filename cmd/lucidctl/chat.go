package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var message string
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the dream guide",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().
				SetBody(map[string]string{"message": message}).
				Post("/api/chat"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	chatCmd.Flags().StringVarP(&message, "message", "m", "", "Message (empty starts a default conversation)")
	rootCmd.AddCommand(chatCmd)

	var fn, prompt string
	searchChatCmd := &cobra.Command{
		Use:   "search-chat",
		Short: "Run a guided workflow grounded in your dreams",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return fmt.Errorf("--prompt required")
			}
			resp, err := checkStatus(newClient().R().
				SetBody(map[string]string{"function_name": fn, "prompt": prompt}).
				Post("/api/dreams/search-chat"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	searchChatCmd.Flags().StringVarP(&fn, "function", "f", "discuss_emotions", "Workflow name")
	searchChatCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt (required)")
	rootCmd.AddCommand(searchChatCmd)

	var style, quality string
	prefsCmd := &cobra.Command{Use: "prefs", Short: "Image preference operations"}
	setStyleCmd := &cobra.Command{
		Use:   "set-style",
		Short: "Set image style (renaissance|abstract|modern)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().
				SetBody(map[string]string{"style": style}).
				Post("/api/user/image-style"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	setStyleCmd.Flags().StringVar(&style, "style", "renaissance", "Image style")
	prefsCmd.AddCommand(setStyleCmd)

	setQualityCmd := &cobra.Command{
		Use:   "set-quality",
		Short: "Set image quality (low|medium|high)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().
				SetBody(map[string]string{"quality": quality}).
				Post("/api/user/image-quality"))
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	setQualityCmd.Flags().StringVar(&quality, "quality", "low", "Image quality")
	prefsCmd.AddCommand(setQualityCmd)

	rootCmd.AddCommand(prefsCmd)
}
