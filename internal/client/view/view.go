// Package view renders client state as plain text.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"devconnector/internal/client"
)

const dateLayout = "2006/01/02"

func Alerts(w io.Writer, alerts []client.Alert) {
	for _, a := range alerts {
		fmt.Fprintf(w, "[%s] %s\n", a.Type, a.Msg)
	}
}

func Landing(w io.Writer) {
	fmt.Fprintln(w, "DevConnector")
	fmt.Fprintln(w, "Create a developer profile/portfolio, share posts and get help from other developers")
	fmt.Fprintln(w, "  devconnector register | devconnector login")
}

// Dashboard shows the signed in user and whether they have a profile yet.
func Dashboard(w io.Writer, s client.State) {
	if !s.Auth.IsAuthenticated {
		Landing(w)
		return
	}
	if s.Profile.Loading && s.Profile.Profile == nil {
		fmt.Fprintln(w, "Loading...")
		return
	}

	name := ""
	if s.Auth.User != nil {
		name = s.Auth.User.Name
	}
	fmt.Fprintln(w, "Dashboard")
	fmt.Fprintf(w, "Welcome %s\n", name)

	if s.Profile.Profile == nil {
		fmt.Fprintln(w, "You have not yet setup a profile, please add some info.")
		return
	}
	fmt.Fprintln(w)
	Experience(w, s.Profile.Profile.Experience)
	fmt.Fprintln(w)
	Education(w, s.Profile.Profile.Education)
}

func Experience(w io.Writer, exps []client.Experience) {
	fmt.Fprintln(w, "Experience Credentials")
	if len(exps) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tTITLE\tYEARS")
	for _, e := range exps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Company, e.Title, span(e.From, e.To))
	}
	tw.Flush()
}

func Education(w io.Writer, edus []client.Education) {
	fmt.Fprintln(w, "Education Credentials")
	if len(edus) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCHOOL\tDEGREE\tYEARS")
	for _, e := range edus {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.School, e.Degree, span(e.From, e.To))
	}
	tw.Flush()
}

func span(from time.Time, to *time.Time) string {
	end := "Now"
	if to != nil {
		end = to.Format(dateLayout)
	}
	return from.Format(dateLayout) + " - " + end
}

func Profiles(w io.Writer, profiles []client.Profile) {
	fmt.Fprintln(w, "Developers")
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles found...")
		return
	}
	for _, p := range profiles {
		fmt.Fprintf(w, "- %s  %s", ownerName(p), p.Status)
		if p.Company != "" {
			fmt.Fprintf(w, " at %s", p.Company)
		}
		fmt.Fprintln(w)
		if p.Location != "" {
			fmt.Fprintf(w, "  %s\n", p.Location)
		}
		if len(p.Skills) > 0 {
			fmt.Fprintf(w, "  skills: %s\n", strings.Join(p.Skills, ", "))
		}
		if p.User != nil {
			fmt.Fprintf(w, "  user: %s\n", p.User.ID)
		}
	}
}

func Profile(w io.Writer, p *client.Profile) {
	if p == nil {
		fmt.Fprintln(w, "Profile not found")
		return
	}
	fmt.Fprintln(w, ownerName(*p))
	line := p.Status
	if p.Company != "" {
		line += " at " + p.Company
	}
	fmt.Fprintln(w, line)
	for _, kv := range [][2]string{
		{"Location", p.Location},
		{"Website", p.Website},
		{"GitHub", p.GitHubUsername},
		{"Bio", p.Bio},
	} {
		if kv[1] != "" {
			fmt.Fprintf(w, "%s: %s\n", kv[0], kv[1])
		}
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(w, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	fmt.Fprintln(w)
	Experience(w, p.Experience)
	fmt.Fprintln(w)
	Education(w, p.Education)
}

func ownerName(p client.Profile) string {
	if p.User != nil && p.User.Name != "" {
		return p.User.Name
	}
	return "(unknown)"
}

func Posts(w io.Writer, posts []client.Post) {
	fmt.Fprintln(w, "Posts")
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  %s (%s)\n", p.ID, p.Name, p.Date.Format(dateLayout))
		fmt.Fprintf(w, "  %s\n", p.Text)
		fmt.Fprintf(w, "  likes: %d  comments: %d\n", len(p.Likes), len(p.Comments))
	}
}

func Post(w io.Writer, p *client.Post) {
	if p == nil {
		fmt.Fprintln(w, "Post not found")
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Date.Format(dateLayout))
	fmt.Fprintln(w, p.Text)
	fmt.Fprintf(w, "likes: %d\n", len(p.Likes))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Comments")
	if len(p.Comments) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, c := range p.Comments {
		fmt.Fprintf(w, "  %s  %s: %s\n", c.ID, c.Name, c.Text)
	}
}
