package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render recorded scope chains as indented text.",
	Long: "`render --db [file]` prints every chain in the recording as an " +
		"indented tree, one line per scope. Use --chain to render a single " +
		"chain.",
	Run: func(cmd *cobra.Command, _ []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			log.Fatalf("Error: the --db flag is required.")
		}

		chain, _ := cmd.Flags().GetString("chain")

		records := readScopes(dbPath, chain)
		if len(records) == 0 {
			fmt.Println("No scopes recorded.")
			return
		}

		order, chains := groupByChain(records)
		for _, chainID := range order {
			fmt.Printf("chain %s:\n", chainID)

			for _, r := range chains[chainID] {
				indent := strings.Repeat(" ", int(r.Depth))

				if r.EndUs == 0 {
					fmt.Printf("%s%s, %d, open\n", indent, r.Name, r.StartUs)
					continue
				}

				fmt.Printf("%s%s, %d, %d\n",
					indent, r.Name, r.StartUs, r.DurationUs)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("db", "",
		"Path of the SQLite recording to render")
	renderCmd.Flags().String("chain", "",
		"Render only the chain with this ID")
}
