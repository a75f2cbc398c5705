package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mvm/internal/app"
	"mvm/internal/hooks"
	"mvm/internal/resolver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// askYesNo prompts on stderr and reads one line from stdin.
func askYesNo(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newRootCmd() *cobra.Command {
	var configPath string
	var logLevel string
	var jsonOutput bool
	var stable bool
	var latest bool
	var buildFlags string

	newSvc := func() (*app.Service, error) {
		return app.New(app.Options{
			ConfigPath: configPath,
			LogLevel:   logLevel,
			Confirm:    askYesNo,
			Out:        os.Stdout,
		})
	}

	cmd := &cobra.Command{
		Use:           "mvm [version]",
		Short:         "MongoDB version manager",
		Long:          "mvm installs, activates and manages MongoDB server versions.\nWith no arguments it lists installed versions; with a version spec\n(e.g. 3.6, 3.6.3, latest, stable, 4.0-ent) it installs and activates it.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if stable || latest {
				raw := "stable"
				if latest {
					raw = "latest"
				}
				v, err := svc.Resolve(ctx, raw, resolver.Remote)
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			}
			if len(args) == 0 {
				return printInstalled(svc, jsonOutput)
			}
			v, err := svc.Install(ctx, args[0], buildFlags)
			if err != nil {
				return err
			}
			fmt.Printf("mongodb %s\n", v)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.Flags().BoolVar(&stable, "stable", false, "print the latest stable version and exit")
	cmd.Flags().BoolVar(&latest, "latest", false, "print the latest version and exit")
	cmd.Flags().StringVar(&buildFlags, "build-flags", "", "build from source with these flags")

	cmd.AddCommand(newAvailableCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newInstalledCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newRemoveCmd(newSvc))
	cmd.AddCommand(newExecCmd(newSvc, "use", "mongod", "Run the mongod of a version"))
	cmd.AddCommand(newExecCmd(newSvc, "shard", "mongos", "Run the mongos of a version"))
	cmd.AddCommand(newExecCmd(newSvc, "shell", "mongo", "Run the mongo shell of a version"))
	cmd.AddCommand(newBinCmd(newSvc))
	cmd.AddCommand(newSrcCmd(newSvc))
	cmd.AddCommand(newHookCmd(newSvc, hooks.Pre))
	cmd.AddCommand(newHookCmd(newSvc, hooks.Post))
	cmd.AddCommand(newDoctorCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func printInstalled(svc *app.Service, jsonOutput bool) error {
	items, err := svc.Installed()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("no versions installed")
		return nil
	}
	active, hasActive := svc.Active()
	for _, item := range items {
		marker := " "
		if hasActive && item.Version == active {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s", marker, item.Version)
		if item.BuildConfig != "" {
			line += " (source: " + item.BuildConfig + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAvailableCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "available",
		Aliases: []string{"ls", "avail"},
		Short:   "List versions available for download",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			versions, err := svc.Available(context.Background())
			if err != nil {
				return err
			}
			if *jsonOutput {
				out := make([]string, 0, len(versions))
				for _, v := range versions {
					out = append(out, v.String())
				}
				return printJSON(out)
			}
			for _, v := range versions {
				fmt.Println(v)
			}
			return nil
		},
	}
}

func newInstalledCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "installed",
		Aliases: []string{"lls"},
		Short:   "List installed versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			return printInstalled(svc, *jsonOutput)
		},
	}
}

func newRemoveCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <version>...",
		Aliases: []string{"remove"},
		Short:   "Remove installed versions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			removed, err := svc.Remove(context.Background(), args)
			for _, v := range removed {
				fmt.Printf("removed %s\n", v)
			}
			return err
		},
	}
}

func newExecCmd(newSvc func() (*app.Service, error), use, binName, short string) *cobra.Command {
	return &cobra.Command{
		Use:                use + " <version> [args...]",
		Short:              short,
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("usage: mvm %s <version> [args...]", use)
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			return svc.Exec(context.Background(), binName, args[0], args[1:])
		},
	}
}

func newBinCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "bin <version>",
		Short: "Print the bin directory of an installed version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			dir, err := svc.BinDir(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func newSrcCmd(newSvc func() (*app.Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "src <version>",
		Short: "Print the source tarball URL of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			url, err := svc.SourceURL(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
}

// newHookCmd manages one phase of hooks:
//
//	mvm pre install <path>     register a script
//	mvm pre install            list scripts
//	mvm pre install rm [path]  remove one script, or all of them
func newHookCmd(newSvc func() (*app.Service, error), phase hooks.Phase) *cobra.Command {
	return &cobra.Command{
		Use:   string(phase) + " <install|change> [path | rm [path]]",
		Short: fmt.Sprintf("Manage %s-event hook scripts", phase),
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			event := hooks.Event(args[0])
			reg := svc.Hooks
			switch {
			case len(args) == 1:
				scripts, err := reg.List(phase, event)
				if err != nil {
					return err
				}
				for _, s := range scripts {
					fmt.Println(s)
				}
				return nil
			case args[1] == "rm":
				path := ""
				if len(args) == 3 {
					path = args[2]
				}
				return reg.Remove(phase, event, path)
			case len(args) == 2:
				return reg.Add(phase, event, args[1])
			default:
				return fmt.Errorf("usage: mvm %s <event> [path | rm [path]]", phase)
			}
		},
	}
}

func newDoctorCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment mvm depends on",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			report := svc.Doctor()
			if *jsonOutput {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				for _, f := range report.Findings {
					fmt.Printf("[%s] %s: %s\n", f.Level, f.Code, f.Message)
				}
				if report.Healthy {
					fmt.Println("ok")
				}
			}
			if !report.Healthy {
				return fmt.Errorf("environment is not healthy")
			}
			return nil
		},
	}
}
