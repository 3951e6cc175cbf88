package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "gradscout"}

	root.AddCommand(serveCMD(), migrateCMD(), askCMD(), scrapeCMD(), seedCMD())
	_ = root.Execute()
}
