package cmd

import (
	"fmt"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/jsonx"
	"github.com/kostaleonard/leocoin/ledger"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/spf13/cobra"
)

var (
	inspectBalances bool
	inspectSummary  bool
)

type inspectReport struct {
	Valid        bool              `json:"valid"`
	FirstInvalid int               `json:"first_invalid_block,omitempty"`
	Difficulty   uint64            `json:"difficulty"`
	Length       int               `json:"length"`
	TipHash      string            `json:"tip_hash"`
	Blocks       []*blockView      `json:"blocks,omitempty"`
	Balances     []*ledger.Account `json:"balances,omitempty"`
}

type blockView struct {
	Index int    `json:"index"`
	Hash  string `json:"hash"`
	Txs   int    `json:"transactions"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [chain-file]",
	Short: "Verify a chain file and print it as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := blockchain.DefaultFilename
		if len(args) == 1 {
			path = args[0]
		}
		c, err := blockchain.ReadFile(path)
		if err != nil {
			return err
		}

		valid, firstInvalid := c.Verify(transaction.Ed25519Verifier{})
		report := inspectReport{
			Valid:       valid,
			Difficulty:  c.Difficulty,
			Length:      c.Len(),
			TipHash:     c.TipHash().String(),
			TotalMinted: ledger.TotalMinted(c).Dec(),
		}
		if !valid {
			report.FirstInvalid = firstInvalid
		}
		if !inspectSummary {
			for i, b := range c.Blocks {
				report.Blocks = append(report.Blocks, &blockView{Index: i, Hash: b.Hash().String(), Txs: len(b.Transactions)})
			}
		}
		if inspectBalances {
			report.Balances = ledger.Sorted(ledger.Balances(c))
		}

		out, err := jsonx.MarshalIndent(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectBalances, "balances", false, "Include per-key balances")
	inspectCmd.Flags().BoolVar(&inspectSummary, "summary", false, "Omit the per-block listing")
}
