package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pbaille/tasks/internal/api"
	"github.com/pbaille/tasks/internal/config"
	"github.com/pbaille/tasks/internal/domain"
	"github.com/pbaille/tasks/internal/slot"
	"github.com/pbaille/tasks/internal/taskstore"
	"github.com/pbaille/tasks/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	configPath string
	backend    string
	path       string
	key        string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "tasks",
		Short:        "A small persistent to-do list",
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ~/.tasks/config.yaml merged with ./.tasks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: file, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&opts.path, "path", "", "storage path")
	rootCmd.PersistentFlags().StringVar(&opts.key, "key", "", "storage key")

	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(toggleCmd(opts))
	rootCmd.AddCommand(removeCmd(opts))
	rootCmd.AddCommand(editCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(tuiCmd(opts))
	rootCmd.AddCommand(aboutCmd())
	rootCmd.AddCommand(configCmd(opts))

	return rootCmd
}

func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFiles(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Storage.Backend = o.backend
	}
	if o.path != "" {
		cfg.Storage.Path = o.path
	}
	if o.key != "" {
		cfg.Storage.Key = o.key
	}
	return cfg, nil
}

// session is an opened store plus what it needs to be closed.
type session struct {
	cfg     *config.Config
	log     *slog.Logger
	backend slot.Backend
	store   *taskstore.Store
}

func (s *session) Close() error { return s.backend.Close() }

func openSession(cmd *cobra.Command, o *options) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log := cfg.NewLogger(cmd.ErrOrStderr())

	backend, err := slot.Open(cfg.Storage.Backend, cfg.StoragePath())
	if err != nil {
		return nil, err
	}
	st := taskstore.Open(backend,
		taskstore.WithKey(cfg.Storage.Key),
		taskstore.WithLogger(log),
		taskstore.WithMinSearchLen(cfg.Search.MinLength),
	)
	return &session{cfg: cfg, log: log, backend: backend, store: st}, nil
}

func addCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add [text]",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, o)
			if err != nil {
				return err
			}
			defer s.Close()

			before := s.store.Len()
			if err := s.store.Add(strings.Join(args, " ")); err != nil {
				return err
			}
			if s.store.Len() == before {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing added: task text is empty.")
				return nil
			}

			t := s.store.Tasks()[0]
			fmt.Fprintf(cmd.OutOrStdout(), "Added task: %s\n", shortID(t.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "Text: %s\n", truncate(t.Text, 80))
			return nil
		},
	}
}

func listCmd(o *options) *cobra.Command {
	var (
		search  string
		pending bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, o)
			if err != nil {
				return err
			}
			defer s.Close()

			s.store.SetSearchTerm(search)
			view := s.store.FilteredView()
			out := cmd.OutOrStdout()

			if s.store.Len() == 0 {
				fmt.Fprintln(out, "No tasks yet. Use 'tasks add' to create one.")
				return nil
			}

			shown := 0
			for _, t := range view {
				if pending && t.Completed {
					continue
				}
				fmt.Fprintf(out, "%s  %s %s\n", shortID(t.ID), checkbox(t.Completed), truncate(t.Text, 60))
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "No matching tasks found.")
			}

			tasks := s.store.Tasks()
			fmt.Fprintf(out, "\n%d of %d shown, %d done\n", shown, len(tasks), tasks.Done())
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by text (3+ characters)")
	cmd.Flags().BoolVar(&pending, "pending", false, "hide completed tasks")
	return cmd
}

// mutateCmd builds a command that resolves its first argument to a task
// and applies op to it.
func mutateCmd(o *options, use, short, verb string, args cobra.PositionalArgs, op func(st *taskstore.Store, id domain.TaskID, rest []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			s, err := openSession(cmd, o)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.store.Resolve(argv[0])
			if err != nil {
				return err
			}
			if err := op(s.store, id, argv[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s task: %s\n", verb, shortID(id))
			return nil
		},
	}
}

func toggleCmd(o *options) *cobra.Command {
	return mutateCmd(o, "toggle [id]", "Mark a task done or not done", "Toggled", cobra.ExactArgs(1),
		func(st *taskstore.Store, id domain.TaskID, _ []string) error {
			return st.Toggle(id)
		})
}

func removeCmd(o *options) *cobra.Command {
	cmd := mutateCmd(o, "rm [id]", "Delete a task", "Removed", cobra.ExactArgs(1),
		func(st *taskstore.Store, id domain.TaskID, _ []string) error {
			return st.Remove(id)
		})
	cmd.Aliases = []string{"remove", "delete"}
	return cmd
}

func editCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id] [text]",
		Short: "Change the text of a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, o)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.store.Resolve(args[0])
			if err != nil {
				return err
			}
			tasks := s.store.Tasks()
			before := tasks[tasks.Index(id)].Text
			if err := s.store.Edit(id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			tasks = s.store.Tasks()
			after := tasks[tasks.Index(id)].Text
			if after == before {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed: task text is empty or the same.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Edited task: %s\n", shortID(id))
			return nil
		},
	}
}

func serveCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, o)
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			if addr == "" {
				addr = s.cfg.Serve.Addr
			}
			s.store.Subscribe(func(c domain.Collection) {
				s.log.Debug("tasks changed", "count", len(c), "done", c.Done())
			})

			fmt.Fprintf(cmd.OutOrStdout(), "Starting server on %s\n", addr)
			return api.New(s.store, addr, s.log).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func tuiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, o)
			if err != nil {
				return err
			}
			defer s.Close()
			return tui.Run(s.store)
		},
	}
}

func aboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show what this tool does",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), `tasks keeps a short to-do list on this machine.

Add tasks, mark them done, edit or delete them, and search with three or
more characters. Every change is saved immediately; searches are not saved.
`)
		},
	}
}

func configCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "# Merged configuration (global + project + flags)")
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration and storage paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Global config:  %s\n", config.GlobalConfigPath())
			fmt.Fprintf(out, "Project config: %s\n", config.ProjectConfigPath())
			fmt.Fprintf(out, "Storage:        %s (%s)\n", cfg.StoragePath(), cfg.Storage.Backend)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default global config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GlobalConfigPath()
			if o.configPath != "" {
				path = o.configPath
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists: %s", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	return cmd
}

func shortID(id domain.TaskID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
