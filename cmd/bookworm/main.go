package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/bookworm/pkg/adminops"
	"github.com/go-go-golems/bookworm/pkg/bookshop"
	"github.com/go-go-golems/bookworm/pkg/chatclient"
	"github.com/go-go-golems/bookworm/pkg/widget"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bookworm",
		Short: "Bookshop browser with an embedded assistant widget",
		Long: "bookworm runs a terminal rendition of the bookshop browse app. The\n" +
			"assistant widget answers questions about the catalog and, when a\n" +
			"content search runs, narrows the visible rows of the book table.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			viper.SetEnvPrefix("BOOKWORM")
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			viper.AutomaticEnv()
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Root().PersistentFlags())
		},
		RunE: runTUI,
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "zerolog level (trace|debug|info|warn|error)")
	pf.String("log-file", "", "write logs to this file instead of discarding them")
	pf.String("admin-url", "http://localhost:4004", "base URL of the admin service")

	f := root.Flags()
	f.String("chat-url", "", "chat backend base URL (empty: run the built-in stub)")
	f.String("catalog", "", "YAML catalog file (empty: embedded seed)")
	f.Duration("mount-delay", 1500*time.Millisecond, "simulated list view mount delay")
	f.Duration("poll-interval", 800*time.Millisecond, "readiness poll interval")
	f.Int("poll-attempts", 12, "bounded number of recurring readiness checks")
	f.Duration("readiness-timeout", 10*time.Second, "wait before failing open")

	root.AddCommand(newUploadCmd(), newRebuildCmd())
	return root
}

// setupLogging configures the global zerolog logger. TUI runs log to a
// file (or nowhere) so the alternate screen stays intact.
func setupLogging(defaultToStderr bool) (func(), error) {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = io.Discard
	cleanup := func() {}
	if path := viper.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		out = f
		cleanup = func() { _ = f.Close() }
	} else if defaultToStderr {
		out = os.Stderr
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	return cleanup, nil
}

func loadCatalog() ([]bookshop.Book, error) {
	path := viper.GetString("catalog")
	if path == "" {
		return bookshop.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()
	return bookshop.LoadCatalog(f)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cleanup, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	shell := bookshop.NewShell(catalog, viper.GetDuration("mount-delay"))
	defer shell.Close()

	g, _ := errgroup.WithContext(context.Background())

	chatURL := viper.GetString("chat-url")
	var server *http.Server
	if chatURL == "" {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return errors.Wrap(err, "listen for stub chat service")
		}
		chatURL = "http://" + ln.Addr().String()
		server = &http.Server{Handler: bookshop.NewChatService(catalog).Handler()}
		g.Go(func() error {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "stub chat service")
			}
			return nil
		})
		log.Info().Str("chat_url", chatURL).Msg("started stub chat service")
	}

	surface := bookshop.NewTeaSurface()
	w, err := widget.New(widget.Config{
		Transport: chatclient.New(chatURL),
		Registry:  shell.Registry(),
		Navigator: shell,
		Surface:   surface,
		Schedule: widget.PollSchedule{
			InitialDelay: 1200 * time.Millisecond,
			Interval:     viper.GetDuration("poll-interval"),
			MaxAttempts:  viper.GetInt("poll-attempts"),
			NavDebounce:  300 * time.Millisecond,
		},
		ReadinessTimeout: viper.GetDuration("readiness-timeout"),
	})
	if err != nil {
		return err
	}
	w.Start()

	program := tea.NewProgram(bookshop.NewModel(shell, w, surface), tea.WithAltScreen())
	g.Go(func() error {
		_, runErr := program.Run()
		w.Destroy()
		if server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}
		return errors.Wrap(runErr, "run TUI")
	})

	return g.Wait()
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <book-id> <file.txt>",
		Short: "Upload a book's full text to the admin service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := setupLogging(true)
			if err != nil {
				return err
			}
			defer cleanup()

			text, err := adminops.ReadFullText(args[1])
			if err != nil {
				return err
			}
			client := adminops.New(viper.GetString("admin-url"))
			if err := client.UploadFullText(cmd.Context(), args[0], text); err != nil {
				return err
			}
			fmt.Println("Full text loaded")
			return nil
		},
	}
}

func newRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild-embeddings",
		Short: "Rebuild embeddings for all books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cleanup, err := setupLogging(true)
			if err != nil {
				return err
			}
			defer cleanup()

			confirm := func(prompt string) bool {
				if viper.GetBool("yes") {
					return true
				}
				fmt.Printf("%s [y/N] ", prompt)
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return false
				}
				answer := strings.ToLower(strings.TrimSpace(line))
				return answer == "y" || answer == "yes"
			}
			client := adminops.New(viper.GetString("admin-url"))
			if err := client.RebuildEmbeddings(cmd.Context(), confirm); err != nil {
				return err
			}
			fmt.Println("Embeddings rebuilt")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	return cmd
}
