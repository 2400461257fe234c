package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains stored in a recording.",
	Long: "`chains --db [file]` lists every chain in the recording with its " +
		"scope count and the wall-clock span from its first begin to its " +
		"last end.",
	Run: func(cmd *cobra.Command, _ []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			log.Fatalf("Error: the --db flag is required.")
		}

		records := readScopes(dbPath, "")
		if len(records) == 0 {
			fmt.Println("No scopes recorded.")
			return
		}

		order, chains := groupByChain(records)
		for _, chainID := range order {
			chainRecords := chains[chainID]

			var lastEnd uint64
			for _, r := range chainRecords {
				if r.EndUs > lastEnd {
					lastEnd = r.EndUs
				}
			}

			span := uint64(0)
			if lastEnd > chainRecords[0].StartUs {
				span = lastEnd - chainRecords[0].StartUs
			}

			fmt.Printf("%s: %d scopes, %d us\n",
				chainID, len(chainRecords), span)
		}
	},
}

func init() {
	rootCmd.AddCommand(chainsCmd)
	chainsCmd.Flags().String("db", "",
		"Path of the SQLite recording to list")
}
