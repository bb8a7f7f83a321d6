package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexwilson/cardex/internal/domain/search/filter"
	cardrepo "github.com/alexwilson/cardex/internal/repository/card"
	"github.com/alexwilson/cardex/internal/version"
)

func newCountCmd(v *viper.Viper) *cobra.Command {
	var filters map[string]string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored cards, optionally filtered",
		Example: `  cardex-loader count
  cardex-loader count --filter cardType=Monster --filter level=7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			p, err := filter.Compile(filter.Spec(filters))
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := cardrepo.New(store).Count(cmd.Context(), p)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "Filter as name=value, repeatable (same names as GET /api/cards)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(version.Get(), "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
