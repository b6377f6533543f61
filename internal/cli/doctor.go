package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/plugin-installer/internal/config"
	"github.com/agentx-labs/plugin-installer/internal/daemon"
	"github.com/agentx-labs/plugin-installer/internal/descriptor"
	"github.com/agentx-labs/plugin-installer/internal/pip"
	"github.com/agentx-labs/plugin-installer/internal/runtime"
)

var checkDescriptors string

func init() {
	doctorCmd.Flags().StringVar(&checkDescriptors, "check-descriptors", "", "Validate a plugin descriptor file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the installer configuration and the virtualenv",
	Long:  `Run diagnostic checks on the configuration, the virtualenv layout, pip and the agent CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if checkDescriptors != "" {
			return runDescriptorCheck(out, checkDescriptors)
		}

		cfg, logger, err := loadConfig()
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return fmt.Errorf("configuration is invalid: %w", err)
		}

		failed := runConfigCheck(out, cfg)
		if cfg.Virtualenv != "" {
			failed += runVirtualenvCheck(cmd.Context(), out, cfg, runtime.NewExecRunner(logger))
		}
		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

func runConfigCheck(w io.Writer, cfg config.Config) int {
	fmt.Fprintln(w, "Configuration check:")
	err := cfg.Validate()
	if err == nil {
		fmt.Fprintf(w, "  [ OK ] registration mode %s\n", cfg.Registration.Mode)
		return 0
	}
	failed := 0
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(w, "  [FAIL] %s\n", line)
		failed++
	}
	return failed
}

func runVirtualenvCheck(ctx context.Context, w io.Writer, cfg config.Config, runner runtime.CommandRunner) int {
	fmt.Fprintln(w, "Virtualenv check:")
	venv, err := runtime.NewVirtualenv(cfg.Virtualenv)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return 1
	}

	failed := 0
	required := []string{"python", "pip"}
	if cfg.Registration.Mode != daemon.ModeIncludes {
		required = append(required, cfg.Registration.AgentCLI)
	}
	missing := venv.Missing(required...)
	for _, name := range required {
		if slices.Contains(missing, name) {
			fmt.Fprintf(w, "  [MISS] %s not found at %s\n", name, venv.Bin(name))
			failed++
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, venv.Bin(name))
	}

	if cfg.Registration.Mode == daemon.ModeIncludes {
		if info, err := os.Stat(cfg.Registration.Workdir); err != nil || !info.IsDir() {
			fmt.Fprintf(w, "  [FAIL] work directory %s does not exist\n", cfg.Registration.Workdir)
			failed++
		} else {
			fmt.Fprintf(w, "  [ OK ] work directory %s\n", cfg.Registration.Workdir)
		}
	}

	if slices.Contains(missing, "pip") && cfg.PipVersion == "" {
		return failed
	}
	d := pip.Detector{Pip: pip.New(venv, runner), Override: cfg.PipVersion}
	version, err := d.Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return failed + 1
	}
	tier, err := pip.TierOf(version)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return failed + 1
	}
	fmt.Fprintf(w, "  [ OK ] pip %s (%s unpack)\n", version, tier)
	return failed
}

func runDescriptorCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Descriptor validation: %s\n", path)

	result, err := descriptor.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("descriptor validation failed: %w", err)
	}

	if result.Valid {
		f, err := descriptor.ParseFile(path)
		if err != nil {
			fmt.Fprintf(w, "  [ OK ] Valid descriptor file\n")
			return nil
		}
		fmt.Fprintf(w, "  [ OK ] %d plugin(s)\n", len(f.Plugins))
		return nil
	}

	fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		if issue.Path != "" {
			fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(w, "    - %s\n", issue.Message)
		}
	}
	return fmt.Errorf("descriptor %s has %d validation issue(s)", path, len(result.Issues))
}
