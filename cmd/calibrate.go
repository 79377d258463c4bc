package cmd

import (
	"fmt"

	"memorygram/cycles"
	"memorygram/probe"
	"memorygram/utils"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Print counter overhead and one idle traversal time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		geo, counter, hz, err := setup()
		if err != nil {
			return err
		}

		engine, err := probe.New(geo, counter, probe.Options{})
		if err != nil {
			return err
		}
		atexit.Register(engine.Release)

		// One millisecond of back-to-back traversals: the first walk finds
		// the set cold, the last one finds it resident.
		store, err := engine.Run(1, hz/1000)
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			return fmt.Errorf("calibrate: no traversal completed")
		}
		cold, warm := store.At(0), store.At(store.Len()-1)

		utils.PrintInfo("Counter: " + cycles.Name() + "\n" +
			"Counter rate: " + utils.Utoa(hz) + " Hz\n" +
			"Read overhead: " + utils.Utoa(cycles.Overhead()) + " cycles\n" +
			"Eviction set: " + utils.Itoa(engine.Nodes()) + " lines\n" +
			"Cold traversal: " + utils.Utoa(cold) + " cycles\n" +
			"Warm traversal: " + utils.Utoa(warm) + " cycles\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
}
