package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"trivialan/internal/config"
	"trivialan/internal/logger"
	"trivialan/internal/question"
	"trivialan/internal/server"
)

const version = "1.0.0"

type options struct {
	configPath string
	host       string
	port       int
	questions  string
	staticDir  string
	imagesDir  string
	logFile    string
	target     int
	roundSecs  int
}

func newCmd(opts *options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRIVIALAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "trivialan",
		Short:         "LAN trivia server: rooms, fuzzy answer grading and podium scoring over websockets.",
		Args:          cobra.ExactArgs(0),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&opts.configPath, "config", "c", "configs/config.yaml", "path to config file (env: TRIVIALAN_CONFIG)")
	fs.StringVar(&opts.host, "host", "", "address to bind to (env: TRIVIALAN_HOST)")
	fs.IntVarP(&opts.port, "port", "p", 0, "port to listen on (env: TRIVIALAN_PORT)")
	fs.StringVar(&opts.questions, "questions", "", "path to questions CSV (env: TRIVIALAN_QUESTIONS)")
	fs.StringVar(&opts.staticDir, "static-dir", "", "directory with the web client (env: TRIVIALAN_STATIC_DIR)")
	fs.StringVar(&opts.imagesDir, "images-dir", "", "directory with question images (env: TRIVIALAN_IMAGES_DIR)")
	fs.StringVar(&opts.logFile, "log-file", "", "log file path, empty logs to stderr (env: TRIVIALAN_LOG_FILE)")
	fs.IntVar(&opts.target, "target-points", 0, "score needed to win (env: TRIVIALAN_TARGET_POINTS)")
	fs.IntVar(&opts.roundSecs, "round-seconds", 0, "round length in seconds (env: TRIVIALAN_ROUND_SECONDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.SetVersionTemplate("trivialan v{{.Version}}\n")
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Printf("config %s not loaded (%v), using defaults", opts.configPath, err)
		cfg = config.Default()
	}

	// Flags and env override file values.
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.questions != "" {
		cfg.Files.QuestionsCSV = opts.questions
	}
	if opts.staticDir != "" {
		cfg.Files.StaticDir = opts.staticDir
	}
	if opts.imagesDir != "" {
		cfg.Files.ImagesDir = opts.imagesDir
	}
	if opts.target != 0 {
		cfg.Game.TargetPoints = opts.target
	}
	if opts.roundSecs != 0 {
		cfg.Game.RoundSeconds = opts.roundSecs
	}

	if err := logger.Init(opts.logFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	if path := logger.GetLogPath(); path != "" {
		log.Printf("logging to %s", path)
	}

	questions, err := question.LoadCSV(cfg.Files.QuestionsCSV)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	pool := question.NewPool(questions)
	logger.LogInfo("loaded %d questions from %s", pool.Len(), cfg.Files.QuestionsCSV)

	srv := server.New(cfg, pool)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.LogInfo("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.LogError("shutdown: %v", err)
		}
	}()

	return srv.Run()
}

func main() {
	opts := &options{}
	cobra.CheckErr(newCmd(opts).Execute())
}
