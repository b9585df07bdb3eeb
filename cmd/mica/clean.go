package main

import (
	"github.com/spf13/cobra"

	"mica/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop the on-disk result cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("mica")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		cmd.Println("cache cleared")
		return nil
	},
}
