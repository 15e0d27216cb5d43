// commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// printJSON выводит значение с отступами, не экранируя не-ASCII
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPredictCmd(opts *options) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Рассчитать прогноз для JSON-объекта",
		Example: `  hydration predict --input '{"vandens_ml": 2100, "stresas": 4}'
  hydration predict   # все значения по умолчанию`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if strings.TrimSpace(input) != "" {
				if err := json.Unmarshal([]byte(input), &payload); err != nil {
					return fmt.Errorf("--input должен быть JSON-объектом: %w", err)
				}
			}

			rt, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer rt.close()

			result, err := rt.svc.Predict(payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "входные данные прогноза в формате JSON")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Показать статистику обучающего набора и метрики модели",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer rt.close()

			return printJSON(cmd.OutOrStdout(), rt.svc.Stats())
		},
	}
}

func newScenariosCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Управление сохраненными сценариями",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Вывести сценарии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer rt.close()

			return printJSON(cmd.OutOrStdout(), map[string]any{
				"scenarios": rt.svc.ListScenarios(cmd.Context()),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Записать встроенные сценарии, если хранилище пусто",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.svc.SeedIfEmpty(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Сценариев в хранилище: %d\n", len(rt.svc.ListScenarios(cmd.Context())))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Заменить все сценарии встроенным набором",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer rt.close()

			count, err := rt.svc.Reseed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Сценариев в хранилище: %d\n", count)
			return nil
		},
	})

	return cmd
}
