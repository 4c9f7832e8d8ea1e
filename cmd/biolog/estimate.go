package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katsunarinishio0430-cmd/biolog-app/config"
	"github.com/katsunarinishio0430-cmd/biolog-app/estimator"
)

// newEstimateCmd prints an estimate as JSON without logging anything.
func newEstimateCmd() *cobra.Command {
	var text, imagePath string
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a meal's nutrition from text or a photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (text == "") == (imagePath == "") {
				return errors.New("exactly one of --text or --image is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			est, err := newEstimator(cfg)
			if err != nil {
				return err
			}

			var result estimator.Estimate
			if text != "" {
				result, err = est.EstimateFromText(cmd.Context(), text)
			} else {
				var data []byte
				data, err = os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				result, err = est.EstimateFromImage(cmd.Context(), estimator.Image{Data: data})
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Meal description")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a meal photo")
	return cmd
}
