package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gravex-pools/internal/mint"
)

func runDerivePoolID(cmd *cobra.Command, _ []string) error {
	mint1, _ := cmd.Flags().GetString("mint1")
	mint2, _ := cmd.Flags().GetString("mint2")
	program, _ := cmd.Flags().GetString("program")
	ammConfig, _ := cmd.Flags().GetString("amm-config")
	index, _ := cmd.Flags().GetUint16("config-index")

	if ammConfig == "" {
		var err error
		ammConfig, err = mint.CPMMConfigID(program, index)
		if err != nil {
			return fmt.Errorf("derive amm config: %w", err)
		}
	}

	poolID, err := mint.CPMMPoolID(program, ammConfig, mint1, mint2)
	if err != nil {
		return fmt.Errorf("derive pool id: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "amm_config=%s\npool_id=%s\n", ammConfig, poolID)
	return nil
}
