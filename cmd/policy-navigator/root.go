// cmd/policy-navigator/root.go
package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"policy-navigator/internal/agent"
	"policy-navigator/internal/common/config"
	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/common/logger"
	"policy-navigator/internal/common/metrics"
	"policy-navigator/internal/common/observability"
	"policy-navigator/internal/console"
	"policy-navigator/internal/profile"
	"policy-navigator/internal/report"
	"policy-navigator/pkg/registry"

	dp "policy-navigator/internal/capabilities/document-parse"
	ie "policy-navigator/internal/capabilities/information-extract"
	sr "policy-navigator/internal/capabilities/solar-reasoning"
)

const serviceName = "policy-navigator"

type options struct {
	profile     string
	pdf         string
	sample      bool
	configPath  string
	metricsFile string
	logLevel    string
	extract     bool
}

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// cli carries one invocation's streams, flags and, once configuration is
// loaded, its logger.
type cli struct {
	std  streams
	opts options
	log  logger.Logger
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{std: streams{in: in, out: out, err: errOut}}
	cmd := c.rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	return apperrors.NewErrorHandler(c.errorLogger(), errOut).Handle(err)
}

// errorLogger is nil until configuration has been loaded.
func (c *cli) errorLogger() apperrors.Logger {
	if c.log == nil {
		return nil
	}
	return c.log
}

func (c *cli) rootCmd() *cobra.Command {
	opts := &c.opts
	cmd := &cobra.Command{
		Use:   "policy-navigator --profile <age/region/status/income/marital> [--pdf <path>]",
		Short: "Personalized eligibility report for a government policy document",
		Long: `policy-navigator reads a government policy document, asks a few
clarifying questions based on your profile and prints a five-section
eligibility and action report.

The profile is a slash-delimited string: age/region/status/income/marital,
for example "29세/수도권/중소기업/월250/미혼".

UPSTAGE_API_KEY must be set in the environment or in a .env file.`,
		Example: `  policy-navigator --profile "29세/수도권/중소기업/월250/미혼"
  policy-navigator --profile "34세/부산/프리랜서/월180/기혼" --pdf policy.pdf --extract`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return apperrors.NewInvalidConfigError(fmt.Sprintf("unexpected arguments: %v", args), nil)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewInvalidConfigError(err.Error(), err)
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.profile, "profile", "p", "", "user profile, e.g. \"29세/수도권/중소기업/월250/미혼\" (required)")
	flags.StringVar(&opts.pdf, "pdf", "", "policy PDF to analyse (default: document.default_path, else the bundled sample)")
	flags.BoolVar(&opts.sample, "sample", false, "use the bundled sample policy text without calling Document Parse")
	flags.StringVar(&opts.configPath, "config", "", "path to a config.yaml")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path after the run")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.extract, "extract", false, "run Information Extraction for advisory policy slots")
	return cmd
}

func (c *cli) run(ctx context.Context) (err error) {
	opts := &c.opts
	obs := observability.New(serviceName)
	defer obs.Shutdown()
	if opts.metricsFile != "" {
		defer func() {
			if writeErr := metrics.WriteTextfile(opts.metricsFile, obs.Gatherer()); writeErr != nil && err == nil {
				err = apperrors.NewInternalError(writeErr)
			}
		}()
	}

	if opts.sample && opts.pdf != "" {
		return apperrors.NewInvalidConfigError("--pdf and --sample cannot be combined", nil)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	zapLog := logger.NewWriter(cfg.Logging.Level, cfg.Logging.Format, c.std.err)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{"service": serviceName})
	c.log = log

	if opts.profile == "" {
		return apperrors.NewMalformedProfileError("--profile is required")
	}
	prof, err := profile.Parse(opts.profile)
	if err != nil {
		return err
	}

	req := agent.Request{Profile: prof, DocumentPath: opts.pdf, UseSample: opts.sample}
	if !req.UseSample && req.DocumentPath == "" {
		req.DocumentPath = cfg.Document.DefaultPath
		req.UseSample = req.DocumentPath == ""
	}

	reg := registry.Default()
	deps := agent.Dependencies{
		Parser:        dp.NewHandler(dp.LoadConfig(cfg), &documentParseLoggerAdapter{log}),
		Reasoner:      sr.NewHandler(sr.LoadConfig(cfg), &solarReasoningLoggerAdapter{log}),
		Observability: obs,
		Registry:      reg,
	}
	if cfg.Document.ExtractSlots && !req.UseSample {
		extractor, err := newExtractor(cfg, reg, log)
		if err != nil {
			return err
		}
		deps.Extractor = extractor
	}

	prompter := console.NewPrompter(c.std.in, c.std.out)
	deps.Answers = prompter

	navigator, err := agent.New(deps, agent.Options{
		FilterQuestions:     cfg.Agent.FilterQuestions,
		ExtractAnswerFields: cfg.Agent.ExtractAnswerFields,
		PlanTextLimit:       cfg.Document.PlanTextLimit,
	}, log)
	if err != nil {
		return err
	}

	prompter.ShowProfile(prof)
	result, err := navigator.Run(ctx, req)
	if err != nil {
		return err
	}

	if _, err := c.std.out.Write([]byte("\n")); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := report.Render(c.std.out, result.Report); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// newExtractor builds the slot extractor against the registry's policy.slots schema.
func newExtractor(cfg *config.Config, reg *registry.SchemaRegistry, log logger.Logger) (*ie.Handler, error) {
	schema, ok := reg.Schema(registry.PolicySlots)
	if !ok {
		return nil, apperrors.NewInternalError(fmt.Errorf("schema %q is not registered", registry.PolicySlots))
	}
	return ie.NewHandler(ie.LoadConfig(cfg, schema), &informationExtractLoggerAdapter{log})
}

// loadConfig resolves configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.extract {
		cfg.Document.ExtractSlots = true
	}
	return cfg, nil
}
