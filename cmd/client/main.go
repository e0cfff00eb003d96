package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"devconnector/internal/client"
	"devconnector/internal/client/view"
)

const usage = `usage: devconnector [flags] <command> [args]

commands:
  register                      create an account
  login                         sign in
  logout                        forget the saved token
  dashboard                     your profile and credentials
  profiles                      list developer profiles
  profile [user-id]             show a profile (yours without an id)
  profile set [flags]           create or edit your profile
  profile delete                remove your profile
  experience add [flags]        add an experience entry
  experience rm <id>            remove an experience entry
  education add [flags]         add an education entry
  education rm <id>             remove an education entry
  posts                         list posts
  post <id>                     show a post with comments
  post new <text>               write a post
  like <post-id>                like a post
  unlike <post-id>              take a like back
  comment <post-id> <text>      comment on a post
  uncomment <post-id> <id>      remove your comment
  delete-post <post-id>         delete your post
`

type cli struct {
	api     *client.API
	store   *client.Store
	actions *client.Actions
	in      *bufio.Reader
	out     io.Writer
}

func main() {
	global := flag.NewFlagSet("devconnector", flag.ExitOnError)
	baseURL := global.String("server", envOr("DEVCONNECTOR_URL", "http://localhost:5000"), "API base URL")
	tokenPath := global.String("token-file", "", "where the session token is kept")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage); global.PrintDefaults() }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	if *tokenPath == "" {
		path, err := client.DefaultTokenPath()
		if err != nil {
			fail(err)
		}
		*tokenPath = path
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(*baseURL, client.NewTokenFile(*tokenPath), os.Stdin, os.Stdout)
	if err := c.run(ctx, args); err != nil {
		fail(err)
	}
}

func newCLI(baseURL string, tokens client.TokenStore, in io.Reader, out io.Writer) *cli {
	api := client.NewAPI(client.Config{BaseURL: baseURL, Timeout: 15 * time.Second})
	store := client.NewStore(client.InitialState(""))
	c := &cli{
		api:     api,
		store:   store,
		actions: client.NewActions(api, store, tokens),
		in:      bufio.NewReader(in),
		out:     out,
	}

	// Alerts print once, as they are raised.
	seen := map[string]bool{}
	store.Subscribe(func(s client.State) {
		for _, a := range s.Alerts {
			if !seen[a.ID] {
				seen[a.ID] = true
				view.Alerts(out, []client.Alert{a})
			}
		}
	})
	return c
}

func (c *cli) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		return c.register(ctx)
	case "login":
		return c.login(ctx)
	case "logout":
		if err := c.actions.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged out")
		return nil
	}

	if err := c.actions.Restore(ctx); err != nil {
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			return err
		}
	}

	switch cmd {
	case "dashboard":
		if c.store.State().Auth.IsAuthenticated {
			if err := c.actions.GetCurrentProfile(ctx); err != nil {
				return err
			}
		}
		view.Dashboard(c.out, c.store.State())
		return nil
	case "profiles":
		if err := c.actions.GetProfiles(ctx); err != nil {
			return err
		}
		view.Profiles(c.out, c.store.State().Profile.Profiles)
		return nil
	case "profile":
		return c.profile(ctx, rest)
	case "experience":
		return c.experience(ctx, rest)
	case "education":
		return c.education(ctx, rest)
	case "posts":
		if err := c.actions.GetPosts(ctx); err != nil {
			return err
		}
		view.Posts(c.out, c.store.State().Post.Posts)
		return nil
	case "post":
		return c.post(ctx, rest)
	case "like", "unlike", "delete-post":
		if len(rest) != 1 {
			return fmt.Errorf("%s needs a post id", cmd)
		}
		return c.postAction(ctx, cmd, rest[0])
	case "comment":
		if len(rest) < 2 {
			return errors.New("comment needs a post id and text")
		}
		if err := c.actions.GetPost(ctx, rest[0]); err != nil {
			return err
		}
		if err := c.actions.AddComment(ctx, rest[0], strings.Join(rest[1:], " ")); err != nil {
			return err
		}
		view.Post(c.out, c.store.State().Post.Post)
		return nil
	case "uncomment":
		if len(rest) != 2 {
			return errors.New("uncomment needs a post id and a comment id")
		}
		if err := c.actions.GetPost(ctx, rest[0]); err != nil {
			return err
		}
		if err := c.actions.DeleteComment(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		view.Post(c.out, c.store.State().Post.Post)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) register(ctx context.Context) error {
	name, err := promptLine(c.in, c.out, "Name")
	if err != nil {
		return err
	}
	email, err := promptLine(c.in, c.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(c.in, c.out)
	if err != nil {
		return err
	}
	if err := c.actions.Register(ctx, client.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return err
	}
	if err := c.actions.GetCurrentProfile(ctx); err != nil {
		return err
	}
	view.Dashboard(c.out, c.store.State())
	return nil
}

func (c *cli) login(ctx context.Context) error {
	email, err := promptLine(c.in, c.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(c.in, c.out)
	if err != nil {
		return err
	}
	if err := c.actions.Login(ctx, client.LoginRequest{Email: email, Password: password}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s\n", c.store.State().Auth.User.Name)
	return nil
}

func (c *cli) profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := c.actions.GetCurrentProfile(ctx); err != nil {
			return err
		}
		view.Profile(c.out, c.store.State().Profile.Profile)
		return nil
	}

	switch args[0] {
	case "set":
		fs := flag.NewFlagSet("profile set", flag.ContinueOnError)
		var req client.ProfileRequest
		fs.StringVar(&req.Status, "status", "", "professional status")
		fs.StringVar(&req.Company, "company", "", "company")
		fs.StringVar(&req.Website, "website", "", "website")
		fs.StringVar(&req.Location, "location", "", "location")
		fs.StringVar(&req.Bio, "bio", "", "short bio")
		fs.StringVar(&req.GitHubUsername, "github", "", "GitHub username")
		fs.StringVar(&req.Skills, "skills", "", "comma separated skills")
		fs.StringVar(&req.YouTube, "youtube", "", "YouTube URL")
		fs.StringVar(&req.Twitter, "twitter", "", "Twitter URL")
		fs.StringVar(&req.Facebook, "facebook", "", "Facebook URL")
		fs.StringVar(&req.LinkedIn, "linkedin", "", "LinkedIn URL")
		fs.StringVar(&req.Instagram, "instagram", "", "Instagram URL")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := c.actions.GetCurrentProfile(ctx); err != nil {
			return err
		}
		edit := c.store.State().Profile.Profile != nil
		if err := c.actions.CreateProfile(ctx, req, edit); err != nil {
			return err
		}
		view.Profile(c.out, c.store.State().Profile.Profile)
		return nil
	case "delete":
		return c.actions.DeleteProfile(ctx)
	default:
		if err := c.actions.GetProfileByUser(ctx, args[0]); err != nil {
			return err
		}
		view.Profile(c.out, c.store.State().Profile.Profile)
		return nil
	}
}

func (c *cli) experience(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("experience needs add or rm")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("experience add", flag.ContinueOnError)
		var req client.ExperienceRequest
		fs.StringVar(&req.Title, "title", "", "job title")
		fs.StringVar(&req.Company, "company", "", "company")
		fs.StringVar(&req.Location, "location", "", "location")
		fs.StringVar(&req.From, "from", "", "start date YYYY-MM-DD")
		fs.StringVar(&req.To, "to", "", "end date YYYY-MM-DD")
		fs.BoolVar(&req.Current, "current", false, "current job")
		fs.StringVar(&req.Description, "description", "", "description")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := c.actions.AddExperience(ctx, req); err != nil {
			return err
		}
	case "rm":
		if len(args) != 2 {
			return errors.New("experience rm needs an id")
		}
		if err := c.actions.DeleteExperience(ctx, args[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown experience command %q", args[0])
	}
	view.Experience(c.out, c.store.State().Profile.Profile.Experience)
	return nil
}

func (c *cli) education(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("education needs add or rm")
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("education add", flag.ContinueOnError)
		var req client.EducationRequest
		fs.StringVar(&req.School, "school", "", "school")
		fs.StringVar(&req.Degree, "degree", "", "degree or certificate")
		fs.StringVar(&req.FieldOfStudy, "field", "", "field of study")
		fs.StringVar(&req.From, "from", "", "start date YYYY-MM-DD")
		fs.StringVar(&req.To, "to", "", "end date YYYY-MM-DD")
		fs.BoolVar(&req.Current, "current", false, "currently studying")
		fs.StringVar(&req.Description, "description", "", "description")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := c.actions.AddEducation(ctx, req); err != nil {
			return err
		}
	case "rm":
		if len(args) != 2 {
			return errors.New("education rm needs an id")
		}
		if err := c.actions.DeleteEducation(ctx, args[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown education command %q", args[0])
	}
	view.Education(c.out, c.store.State().Profile.Profile.Education)
	return nil
}

func (c *cli) post(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("post needs an id or new <text>")
	}
	if args[0] == "new" {
		text := strings.Join(args[1:], " ")
		if err := c.actions.AddPost(ctx, text); err != nil {
			return err
		}
		view.Posts(c.out, c.store.State().Post.Posts)
		return nil
	}
	if err := c.actions.GetPost(ctx, args[0]); err != nil {
		return err
	}
	view.Post(c.out, c.store.State().Post.Post)
	return nil
}

func (c *cli) postAction(ctx context.Context, cmd, postID string) error {
	var err error
	switch cmd {
	case "like":
		err = c.actions.AddLike(ctx, postID)
	case "unlike":
		err = c.actions.RemoveLike(ctx, postID)
	case "delete-post":
		err = c.actions.DeletePost(ctx, postID)
	}
	if err != nil {
		return err
	}
	if cmd != "delete-post" {
		fmt.Fprintf(c.out, "%s: ok\n", cmd)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// fail exits non-zero. API errors were already shown as alerts.
func fail(err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}
