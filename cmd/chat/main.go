// chat 在終端機中與助理對話，使用與 webhook 相同的引擎
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"recipe-assistant/internal/app"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "chat",
	Short:         "Talk to the recipe assistant in the terminal",
	Long:          `chat loads the recipe corpus and runs the same dialog engine as the webhook, reading one utterance per line from stdin.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().String("corpus", "", "path to recipes.json (overrides RECIPES_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to logs/app.log")

	// --corpus 經由 viper 進入 LoadConfig
	_ = viper.BindPFlag("corpus.path", rootCmd.PersistentFlags().Lookup("corpus"))
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Corpus.Watch = false

	if err := common.InitLogger(logLevel); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Рецептов загружено: %d. Напишите \"выход\" для завершения.\n\n", application.Catalog.Size())
	fmt.Fprintln(out, application.Engine.Welcome().Text)

	return converse(ctx, application.Engine, common.GenerateUUID(), cmd.InOrStdin(), out)
}

// converse 逐行處理輸入直到 EOF 或道別
func converse(ctx context.Context, engine *dialog.Engine, sessionID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply := engine.ProcessTurn(ctx, sessionID, line)
		fmt.Fprintf(out, "\n%s\n", reply.Text)
		if reply.Kind == dialog.KindFarewell {
			return nil
		}
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}
}
