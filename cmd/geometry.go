package cmd

import (
	"memorygram/geometry"
	"memorygram/utils"

	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"
)

var geometryJSON bool

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Print the detected cache geometry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		geo, err := geometry.Detect()
		if err != nil {
			return err
		}
		if geometryJSON {
			out, err := sonnet.Marshal(geo)
			if err != nil {
				return err
			}
			utils.PrintInfo(string(out) + "\n")
			return nil
		}
		utils.PrintInfo(geo.Report())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geometryCmd)
	geometryCmd.Flags().BoolVar(&geometryJSON, "json", false, "print JSON instead of the report")
}
