package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"LearnForge/internal/client"
	"LearnForge/internal/models"
	"LearnForge/internal/projection"
	"LearnForge/internal/service/auth"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "lmsctl",
		Usage: "talk to a LearnForge server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8081", EnvVars: []string{"LMS_SERVER"}},
			&cli.StringFlag{Name: "token", EnvVars: []string{"LMS_TOKEN"}},
			&cli.DurationFlag{Name: "timeout", Value: client.DefaultTimeout},
		},
		Commands: []*cli.Command{
			statusCommand(),
			tokenCommand(),
			coursesCommand(),
			enrollCommand(),
			dashboardCommand(),
			completeCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, client.ErrTimeout) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("server"), c.String("token"), c.Duration("timeout"))
}

func uuidArg(c *cli.Context, n int, name string) (uuid.UUID, error) {
	raw := c.Args().Get(n)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "print server health",
		Action: func(c *cli.Context) error {
			status, err := newClient(c).Status(c.Context)
			if err != nil {
				return err
			}
			fmt.Println(status)
			return nil
		},
	}
}

// tokenCommand signs an access token locally with the server's secret. Meant
// for development setups without an identity provider.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "sign a development access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "secret", Required: true, EnvVars: []string{"JWT_SECRET_KEY"}},
			&cli.StringFlag{Name: "issuer", Value: "learnforge"},
			&cli.StringFlag{Name: "user", Usage: "user id, random when empty"},
			&cli.StringSliceFlag{Name: "role", Value: cli.NewStringSlice(models.StudentRole)},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			userID := uuid.New()
			if raw := c.String("user"); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid user: %w", err)
				}
				userID = id
			}
			token, err := auth.NewJWTManager(c.String("secret"), c.String("issuer")).
				GenerateAccessToken(userID, c.StringSlice("role"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func coursesCommand() *cli.Command {
	return &cli.Command{
		Name:  "courses",
		Usage: "browse and manage courses",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list courses",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "difficulty"},
					&cli.StringFlag{Name: "sort", Usage: "newest, oldest or title"},
				},
				Action: func(c *cli.Context) error {
					courses, err := newClient(c).ListCourses(c.Context, client.CourseQuery{
						Search:     c.String("search"),
						Category:   c.String("category"),
						Difficulty: c.String("difficulty"),
						SortBy:     c.String("sort"),
					})
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tDIFFICULTY\tITEMS\tPUBLISHED")
					for _, course := range courses {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n",
							course.ID, course.Title, course.Category, course.Difficulty, course.ContentCount, course.Published)
					}
					return w.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "print one course",
				ArgsUsage: "COURSE_ID",
				Action: func(c *cli.Context) error {
					id, err := uuidArg(c, 0, "COURSE_ID")
					if err != nil {
						return err
					}
					course, err := newClient(c).Course(c.Context, id)
					if err != nil {
						return err
					}
					return printJSON(course)
				},
			},
			{
				Name:      "create",
				Usage:     "create a course from a JSON file",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					raw, err := os.ReadFile(c.Args().First())
					if err != nil {
						return err
					}
					var draft client.CourseDraft
					if err := json.Unmarshal(raw, &draft); err != nil {
						return fmt.Errorf("decode %s: %w", c.Args().First(), err)
					}
					course, err := newClient(c).CreateCourse(c.Context, draft)
					if err != nil {
						return err
					}
					return printJSON(course)
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a course",
				ArgsUsage: "COURSE_ID",
				Action: func(c *cli.Context) error {
					id, err := uuidArg(c, 0, "COURSE_ID")
					if err != nil {
						return err
					}
					return newClient(c).DeleteCourse(c.Context, id)
				},
			},
			{
				Name:      "thumbnail",
				Usage:     "upload a course thumbnail",
				ArgsUsage: "COURSE_ID FILE",
				Action: func(c *cli.Context) error {
					id, err := uuidArg(c, 0, "COURSE_ID")
					if err != nil {
						return err
					}
					f, err := os.Open(c.Args().Get(1))
					if err != nil {
						return err
					}
					defer f.Close()
					course, err := newClient(c).UploadThumbnail(c.Context, id, f.Name(), f)
					if err != nil {
						return err
					}
					fmt.Println(course.Thumbnail)
					return nil
				},
			},
		},
	}
}

func enrollCommand() *cli.Command {
	return &cli.Command{
		Name:      "enroll",
		Usage:     "enroll in a course",
		ArgsUsage: "COURSE_ID",
		Action: func(c *cli.Context) error {
			id, err := uuidArg(c, 0, "COURSE_ID")
			if err != nil {
				return err
			}
			e, created, err := newClient(c).Enroll(c.Context, id)
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("already enrolled")
			}
			fmt.Println(e.ID)
			return nil
		},
	}
}

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "mark a content item as completed",
		ArgsUsage: "ENROLLMENT_ID CONTENT_ID",
		Action: func(c *cli.Context) error {
			enrollmentID, err := uuidArg(c, 0, "ENROLLMENT_ID")
			if err != nil {
				return err
			}
			contentID, err := uuidArg(c, 1, "CONTENT_ID")
			if err != nil {
				return err
			}
			e, err := newClient(c).MarkComplete(c.Context, enrollmentID, contentID)
			if err != nil {
				return err
			}
			fmt.Printf("progress: %d%%\n", e.Progress)
			return nil
		},
	}
}

// dashboardCommand prints the student view: enrolled courses with progress,
// then the rest of the catalog.
func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "show my courses and the courses to explore",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search"},
		},
		Action: func(c *cli.Context) error {
			store := projection.NewStore(newClient(c))
			if err := store.SetQuery(c.Context, client.CourseQuery{Search: c.String("search")}); err != nil {
				return err
			}
			if err := store.Invalidate(c.Context, projection.Enrollments); err != nil {
				return err
			}

			p := store.Partition()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MY COURSES\t\t")
			for _, mc := range p.MyCourses {
				fmt.Fprintf(w, "%s\t%s\t%d%%\n", mc.Course.ID, mc.Course.Title, mc.Progress)
			}
			fmt.Fprintln(w, "\t\t")
			fmt.Fprintln(w, "EXPLORE\t\t")
			for _, course := range p.Explore {
				fmt.Fprintf(w, "%s\t%s\t%s\n", course.ID, course.Title, course.Difficulty)
			}
			return w.Flush()
		},
	}
}
