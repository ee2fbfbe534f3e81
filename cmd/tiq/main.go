package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskiq/internal/app"
	"taskiq/internal/config"
	"taskiq/internal/db"
	"taskiq/internal/domain"
	"taskiq/internal/engine"
	"taskiq/internal/migrate"
	"taskiq/internal/repo"
	"taskiq/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "tiq",
	Short: "TaskIQ CLI",
	Long: `TaskIQ keeps a personal task backlog and scores it for you.
- Workspace: the .taskiq directory next to where you run tiq; taskiq.yml tunes the scoring weights.
- Tasks: work items with an optional deadline and duration estimate; statuses go pending -> in_progress -> completed (blocked is a parking lot).
- Dependencies: directed edges between tasks; cycles are rejected.
- Rank: the 1-100 priority score from deadline distance and duration ('tiq rank').
- Estimate: the XS-XL T-shirt size from weighted complexity factors, with a rationale ('tiq estimate').
- Scores persist one row per task and are overwritten on re-scoring.
- Event log: diary of changes, view with 'tiq log tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKIQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("email", app.DefaultUserEmail, "acting user email")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("email", rootCmd.PersistentFlags().Lookup("email"))
}

func registerCommands() {
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(rankCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func userCmd() *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage users"}
	user.AddCommand(userCreateCmd())
	user.AddCommand(userListCmd())
	return user
}

func userCreateCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ domain.User) error {
				u, err := e.RegisterUser(ctx, name, email, password)
				if err != nil {
					return err
				}
				return printJSONOrTable(u)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "user-email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("user-email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func userListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				users, err := r.ListUsers(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Active"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Tasks carry a title, optional description, deadline and duration estimate. Scoring commands (tiq rank, tiq estimate) read these fields.",
	}
	task.AddCommand(taskAddCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskGetCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskDeleteCmd())
	task.AddCommand(taskDepCmd())
	task.AddCommand(taskScoresCmd())
	return task
}

func taskAddCmd() *cobra.Command {
	var title, description, deadline, status string
	var duration int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				opts := engine.TaskCreateOptions{
					UserID:      u.ID,
					Title:       title,
					Description: description,
					Status:      status,
					ActorID:     u.Email,
				}
				if cmd.Flags().Changed("duration") {
					opts.DurationHours = &duration
				}
				if deadline != "" {
					d, err := parseDeadlineArg(deadline)
					if err != nil {
						return err
					}
					opts.Deadline = d
				}
				t, err := e.CreateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 0, "estimated duration in hours")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				tasks, err := e.Repo.ListTasks(ctx, repo.TaskFilters{UserID: u.ID, Status: status})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Deadline", "Hours"})
				for _, t := range tasks {
					deadline := ""
					if t.Deadline != nil {
						deadline = *t.Deadline
					}
					hours := ""
					if t.EstimatedDuration != nil {
						hours = strconv.Itoa(*t.EstimatedDuration)
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, deadline, hours})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func taskGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ domain.User) error {
				t, err := e.Repo.GetTask(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var title, description, deadline, status string
	var duration int
	var clearDeadline bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				opts := engine.TaskUpdateOptions{ID: id, ClearDeadline: clearDeadline, ActorID: u.Email}
				if cmd.Flags().Changed("title") {
					opts.Title = &title
				}
				if cmd.Flags().Changed("description") {
					opts.Description = &description
				}
				if cmd.Flags().Changed("status") {
					opts.Status = &status
				}
				if cmd.Flags().Changed("duration") {
					opts.DurationHours = &duration
				}
				if deadline != "" {
					d, err := parseDeadlineArg(deadline)
					if err != nil {
						return err
					}
					opts.Deadline = d
				}
				t, err := e.UpdateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "new deadline (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "remove the deadline")
	cmd.Flags().IntVar(&duration, "duration", 0, "estimated duration in hours")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	return cmd
}

func taskDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				return e.DeleteTask(ctx, id, u.Email)
			})
		},
	}
	return cmd
}

func taskDepCmd() *cobra.Command {
	dep := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}
	dep.AddCommand(&cobra.Command{
		Use:   "add <task-id> <depends-on-id>",
		Short: "Add dependency edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			dependsOn, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				d, err := e.AddDependency(ctx, taskID, dependsOn, u.Email)
				if err != nil {
					return err
				}
				return printJSONOrTable(d)
			})
		},
	})
	dep.AddCommand(&cobra.Command{
		Use:   "list <task-id>",
		Short: "List dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ domain.User) error {
				deps, err := e.Repo.ListDependencies(ctx, taskID)
				if err != nil {
					return err
				}
				return printJSONOrTable(deps)
			})
		},
	})
	dep.AddCommand(&cobra.Command{
		Use:   "remove <dependency-id>",
		Short: "Remove dependency edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			depID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				return e.RemoveDependency(ctx, depID, u.Email)
			})
		},
	})
	return dep
}

func taskScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores <id>",
		Short: "Show persisted scores for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ domain.User) error {
				out := map[string]any{}
				if p, err := e.Repo.GetPriorityScore(ctx, id); err == nil {
					out["priority"] = p
				} else if !errors.Is(err, repo.ErrNotFound) {
					return err
				}
				if s, err := e.Repo.GetComplexityScore(ctx, id); err == nil {
					out["size"] = s
				} else if !errors.Is(err, repo.ErrNotFound) {
					return err
				}
				if len(out) == 0 {
					return fmt.Errorf("task %d has no persisted scores", id)
				}
				return printJSONOrTable(out)
			})
		},
	}
	return cmd
}

func rankCmd() *cobra.Command {
	var persist bool
	var status string
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank stored tasks by priority score",
		Long:  "Scores every stored task with the deadline/duration priority formula and prints them highest first. With --persist the scores are written back, one row per task.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				tasks, err := e.Repo.ListTasks(ctx, repo.TaskFilters{UserID: u.ID, Status: status})
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					return fmt.Errorf("no tasks to rank")
				}
				items := make([]engine.RankItem, 0, len(tasks))
				for i := range tasks {
					t := tasks[i]
					item := engine.RankItem{TaskID: &t.ID, Title: t.Title, DurationHours: t.EstimatedDuration}
					if t.Deadline != nil {
						d, err := time.Parse(time.RFC3339, *t.Deadline)
						if err == nil {
							item.Deadline = &d
						}
					}
					items = append(items, item)
				}
				results, err := e.RankTasks(ctx, items, persist, u.ID, u.Email)
				if err != nil {
					return err
				}
				type ranked struct {
					Task   domain.Task       `json:"task"`
					Result engine.RankResult `json:"result"`
				}
				rankedTasks := make([]ranked, 0, len(results))
				for i, res := range results {
					rankedTasks = append(rankedTasks, ranked{Task: tasks[i], Result: res})
				}
				sort.SliceStable(rankedTasks, func(i, j int) bool {
					return rankedTasks[i].Result.Score > rankedTasks[j].Result.Score
				})
				if viper.GetBool("json") {
					return printJSON(rankedTasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Score", "ID", "Title", "Status", "Persisted"})
				for _, r := range rankedTasks {
					tw.AppendRow(table.Row{r.Result.Score, r.Task.ID, r.Task.Title, r.Task.Status, r.Result.Persisted})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "write scores back to the store")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func estimateCmd() *cobra.Command {
	var noPersist bool
	cmd := &cobra.Command{
		Use:   "estimate <task-id>",
		Short: "Estimate a task's T-shirt size",
		Long:  "Maps the stored task's weighted complexity factors to an XS-XL tier and prints the rationale. The estimate is persisted unless --no-persist is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				t, err := e.Repo.GetTask(ctx, id)
				if err != nil {
					return err
				}
				opts := engine.SizeEstimateOptions{
					TaskID:        &t.ID,
					UserID:        u.ID,
					Title:         t.Title,
					Description:   t.Description,
					DurationHours: t.EstimatedDuration,
					ActorID:       u.Email,
				}
				if t.Deadline != nil {
					if d, err := time.Parse(time.RFC3339, *t.Deadline); err == nil {
						opts.Deadline = &d
					}
				}
				res, err := e.EstimateSize(ctx, opts, !noPersist)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				fmt.Printf("Task %d: %s\n", t.ID, t.Title)
				fmt.Printf("Size: %s (raw %d)\n", res.Tier, res.RawScore)
				fmt.Printf("Rationale: %s\n", res.Rationale)
				if res.PersistNote != "" {
					fmt.Printf("Note: %s\n", res.PersistNote)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "compute only, do not store the estimate")
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show task counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, u domain.User) error {
				counts, err := e.Repo.CountTasksByStatus(ctx, u.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"user_id": u.ID, "task_counts": counts})
				}
				fmt.Printf("User: %s\n", u.Email)
				fmt.Println("Tasks:")
				for status, c := range counts {
					fmt.Printf("  %s: %d\n", status, c)
				}
				return nil
			})
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
		Long:  "taskiq.yml holds the server address, token lifetime, webhook targets, and the size estimator's keyword list and weights.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate workspace config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(viper.GetString("workspace"))
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default taskiq.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "The diary of everything that happened: task changes, dependency edges, persisted scores.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine, _ domain.User) error {
				events, err := e.Repo.LatestEvents(ctx, n, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := app.LoadConfig(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}
			e := engine.New(conn, cfg)
			authCfg := server.AuthConfig{
				JWTSecret:       os.Getenv("TASKIQ_JWT_SECRET"),
				TokenTTLMinutes: cfg.TokenTTLMinutes(),
			}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("TASKIQ_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving TaskIQ API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to taskiq.yml)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (defaults to taskiq.yml)")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine, domain.User) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := app.LoadConfig(workspace)
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	u, err := app.ResolveUser(ctx, e.Repo, viper.GetString("email"))
	if err != nil {
		return err
	}
	return fn(ctx, e, u)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func parseDeadlineArg(s string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q: expected RFC 3339 or YYYY-MM-DD", s)
	}
	return &t, nil
}
