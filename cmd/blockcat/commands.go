package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/born-ml/blockcat/internal/backend/cpu"
	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/internal/config"
	"github.com/born-ml/blockcat/internal/logging"
	"github.com/born-ml/blockcat/internal/serialization"
	"github.com/born-ml/blockcat/internal/tensor"
)

// app carries state shared by subcommands once the root pre-run has loaded it.
type app struct {
	out io.Writer
	cfg config.Config
	log *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "blockcat",
		Short:         "blockcat concatenates tensors across plain and channel-blocked layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("log-level", "", "log level (debug, info, warn, error, or -N for engine traces); overrides BLOCKCAT_LOG_LEVEL")
	flags.String("log-format", "", "log format (console or json); overrides BLOCKCAT_LOG_FORMAT")
	flags.Int("workers", -1, "maximum copy goroutines, 0 for one per CPU; overrides BLOCKCAT_WORKERS")
	flags.Bool("sequential", false, "run every copy inline")

	root.AddCommand(
		a.versionCmd(),
		a.formatsCmd(),
		a.planCmd(),
		a.runCmd(),
	)
	return root
}

// setup loads the environment configuration, applies flag overrides and builds
// the logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if seq, _ := flags.GetBool("sequential"); seq {
		cfg.Parallel = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, "blockcat %s\n", version)
		},
	}
}

func (a *app) formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported memory formats",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FORMAT\tRANK\tKIND\tBLOCK\tSPLICE")
			for _, f := range tensor.Formats() {
				splice := "-"
				if g, ok := concat.SpliceGranularity(f.BlockSize()); ok && f.IsBlocked() {
					splice = strconv.Itoa(g)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", f, f.Rank(), f.Kind(), f.BlockSize(), splice)
			}
			return w.Flush()
		},
	}
}

func (a *app) planCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve and validate a plan file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := a.loadPlan(file)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(NewPlanReport(p))
			if err != nil {
				return errors.Wrap(err, "encode plan")
			}
			_, err = a.out.Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "plan file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var (
		file   string
		verify bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a plan file on generated data",
		Long: `run allocates the plan's sources, fills them with a deterministic pattern,
fills the destination (padding included) with a non-zero value and executes
the concatenation.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := a.loadPlan(file)
			if err != nil {
				return err
			}
			srcs, dst, err := allocate(p)
			if err != nil {
				return err
			}

			backend := cpu.New(
				cpu.WithParallel(a.cfg.ParallelConfig()),
				cpu.WithLogger(a.engineLogger()),
			)
			start := time.Now()
			if err := backend.ConcatBuffers(srcs, dst, p.Axis); err != nil {
				return err
			}
			elapsed := time.Since(start)
			a.log.Info("concatenated",
				zap.Stringer("destination", p.Destination),
				zap.Int("bytes", dst.Descriptor().PhysicalBytes()),
				zap.Duration("elapsed", elapsed))

			if verify {
				if err := concat.Verify(srcs, dst, p.Axis); err != nil {
					return errors.Wrap(err, "verify")
				}
				fmt.Fprintln(a.out, "verify: ok")
			}
			if out != "" {
				meta := map[string]string{
					"axis":    strconv.Itoa(p.Axis),
					"sources": strconv.Itoa(len(p.Sources)),
					"plan":    file,
				}
				bufs := map[string]*tensor.Buffer{"destination": dst}
				if err := serialization.WriteSafeTensors(out, bufs, meta); err != nil {
					return err
				}
				a.log.Info("destination written", zap.String("path", out))
			}
			fmt.Fprintf(a.out, "%s: %d bytes\n", p.Destination, dst.Descriptor().PhysicalBytes())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "plan file (YAML or JSON)")
	cmd.Flags().BoolVar(&verify, "verify", false, "check every element and padding cell of the result")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the destination to a safetensors file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) loadPlan(path string) (concat.Plan, error) {
	pf, err := LoadPlanFile(path)
	if err != nil {
		return concat.Plan{}, err
	}
	p, err := pf.Plan()
	if err != nil {
		a.log.Warn("plan rejected",
			zap.String("file", path),
			zap.Stringer("rule", concat.RuleOf(err)),
			zap.Error(err))
		return concat.Plan{}, err
	}
	return p, nil
}

func (a *app) engineLogger() logr.Logger {
	return logging.Logr(a.log)
}

// allocate creates pattern-filled sources and a poisoned destination.
func allocate(p concat.Plan) ([]*tensor.Buffer, *tensor.Buffer, error) {
	srcs := make([]*tensor.Buffer, len(p.Sources))
	for i, d := range p.Sources {
		buf, err := tensor.NewBuffer(d)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "source %d", i)
		}
		concat.FillPattern(buf, i+1)
		srcs[i] = buf
	}
	dst, err := tensor.NewBuffer(p.Destination)
	if err != nil {
		return nil, nil, errors.Wrap(err, "destination")
	}
	concat.FillPhysical(dst, 1)
	return srcs, dst, nil
}
