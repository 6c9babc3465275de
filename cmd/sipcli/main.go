package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siptools/sipcli/pkg/comm"
	"github.com/siptools/sipcli/pkg/config"
	"github.com/siptools/sipcli/pkg/logger"
	"github.com/siptools/sipcli/pkg/modules"
	"github.com/siptools/sipcli/pkg/shell"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		debug    bool
		cfgPath  string
		instance string
		oneShot  bool
		options  []string
	)
	status := 0

	root := &cobra.Command{
		Use:           "sipcli [module command [args...]]",
		Short:         "Interactive management shell for a SIP proxy",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, posArgs []string) error {
			status = runShell(debug, cfgPath, instance, oneShot, options, posArgs)
			return nil
		},
	}
	root.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	root.Flags().StringVarP(&cfgPath, "config", "f", "", "configuration file path")
	root.Flags().StringVarP(&instance, "instance", "i", "", "configuration instance to use")
	root.Flags().BoolVarP(&oneShot, "execute", "x", false, "run one command and exit")
	root.Flags().StringArrayVarP(&options, "option", "o", nil, "key=value configuration override (repeatable)")

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}
	return status
}

func runShell(debug bool, cfgPath, instance string, oneShot bool, options, command []string) int {
	if debug {
		logger.SetLevel(logger.DEBUG)
	}

	envOverrides, err := config.LoadEnv()
	if err != nil {
		logger.Warn(err.Error())
	}
	if cfgPath == "" {
		cfgPath = envOverrides.Config
	}
	if instance == "" {
		instance = envOverrides.Instance
	}

	cfg := config.New()
	if err := cfg.Parse(cfgPath); err != nil {
		logger.Warn(err.Error())
	}
	cfg.ApplyEnv(envOverrides)

	sh := shell.New(cfg, shell.Options{
		Debug:         debug,
		Instance:      instance,
		CustomOptions: parseOptions(options),
		Manifest:      modules.Manifest(),
		InitComm:      comm.Initialize,
	})

	if oneShot || len(command) > 0 {
		return sh.RunOnce(context.Background(), command)
	}
	return sh.Run()
}

// parseOptions turns repeated -o key=value flags into the custom
// options layer; malformed pairs are reported and dropped.
func parseOptions(options []string) map[string]string {
	out := make(map[string]string, len(options))
	for _, opt := range options {
		key, val, ok := strings.Cut(opt, "=")
		if !ok || key == "" {
			logger.Warn("ignoring malformed option '" + opt + "'")
			continue
		}
		out[key] = val
	}
	return out
}
