package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qhdzhm/happy-sub000/internal/location"
)

func (a *App) normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [tour-title]...",
		Short: "Show the location key a tour title maps to",
		Long: `Run tour titles through the location normalizer and print the
resulting keys. Useful for checking how a new product name will
appear on the board before adding a rule for it.`,
		Example: `  tourboard normalize "第2天:亚瑟港含门票一日游"
  tourboard normalize "布鲁尼岛一日游" "酒杯湾一日游"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			normalizer := location.NewNormalizer(a.config.NormalizerRules())

			for _, title := range args {
				key := normalizer.Normalize(title)
				fmt.Printf("%-8s %s\n", formatKey(key), formatMuted(title))
			}
			return nil
		},
	}
}
