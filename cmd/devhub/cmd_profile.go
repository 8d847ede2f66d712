package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mrJackie7/coderdev-hub/pkg/client"

	"github.com/spf13/cobra"
)

// profileCmd groups profile commands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit developer profiles",
	Long: `View and edit developer profiles.

Available subcommands:
  me              - Show your profile
  list            - List all developers
  show            - Show a developer's profile by user id
  save            - Create or edit your profile
  add-experience  - Add a job to your profile
  add-education   - Add a school to your profile
  rm-experience   - Remove a job by id
  rm-education    - Remove a school by id
  github          - List a GitHub user's latest repositories
  delete-account  - Permanently delete your account`,
}

var profileMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	RunE:  runProfileMe,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all developers",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a developer's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

// profileSaveCmd edits only the fields whose flags were given
var profileSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or edit your profile",
	Long: `Create or edit your profile.

When you already have a profile, fields whose flags are not given keep
their current values. Skills are a comma separated list.`,
	RunE: runProfileSave,
}

var addExperienceCmd = &cobra.Command{
	Use:   "add-experience",
	Short: "Add a job to your profile",
	RunE:  runAddExperience,
}

var addEducationCmd = &cobra.Command{
	Use:   "add-education",
	Short: "Add a school to your profile",
	RunE:  runAddEducation,
}

var rmExperienceCmd = &cobra.Command{
	Use:   "rm-experience <exp-id>",
	Short: "Remove a job from your profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runRmExperience,
}

var rmEducationCmd = &cobra.Command{
	Use:   "rm-education <edu-id>",
	Short: "Remove a school from your profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runRmEducation,
}

var githubCmd = &cobra.Command{
	Use:   "github <username>",
	Short: "List a GitHub user's latest repositories",
	Args:  cobra.ExactArgs(1),
	RunE:  runGithub,
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your account, profile and posts",
	RunE:  runDeleteAccount,
}

var (
	profileForm client.ProfileInput
	expForm     client.ExperienceInput
	eduForm     client.EducationInput
	confirmed   bool
)

func init() {
	f := profileSaveCmd.Flags()
	f.StringVar(&profileForm.Status, "status", "", "Professional status (required)")
	f.StringVar(&profileForm.Skills, "skills", "", "Comma separated skills (required)")
	f.StringVar(&profileForm.Company, "company", "", "Company")
	f.StringVar(&profileForm.Website, "website", "", "Website")
	f.StringVar(&profileForm.Location, "location", "", "City and state")
	f.StringVar(&profileForm.Bio, "bio", "", "Short bio")
	f.StringVar(&profileForm.GithubUsername, "githubusername", "", "GitHub username")
	f.StringVar(&profileForm.YouTube, "youtube", "", "YouTube URL")
	f.StringVar(&profileForm.Twitter, "twitter", "", "Twitter URL")
	f.StringVar(&profileForm.Facebook, "facebook", "", "Facebook URL")
	f.StringVar(&profileForm.LinkedIn, "linkedin", "", "LinkedIn URL")
	f.StringVar(&profileForm.Instagram, "instagram", "", "Instagram URL")

	f = addExperienceCmd.Flags()
	f.StringVar(&expForm.Title, "title", "", "Job title (required)")
	f.StringVar(&expForm.Company, "company", "", "Company (required)")
	f.StringVar(&expForm.Location, "location", "", "Location")
	f.StringVar(&expForm.From, "from", "", "Start date, YYYY-MM-DD (required)")
	f.StringVar(&expForm.To, "to", "", "End date, YYYY-MM-DD")
	f.BoolVar(&expForm.Current, "current", false, "Current job")
	f.StringVar(&expForm.Description, "description", "", "Job description")

	f = addEducationCmd.Flags()
	f.StringVar(&eduForm.School, "school", "", "School or bootcamp (required)")
	f.StringVar(&eduForm.Degree, "degree", "", "Degree or certificate (required)")
	f.StringVar(&eduForm.FieldOfStudy, "fieldofstudy", "", "Field of study (required)")
	f.StringVar(&eduForm.From, "from", "", "Start date, YYYY-MM-DD (required)")
	f.StringVar(&eduForm.To, "to", "", "End date, YYYY-MM-DD")
	f.BoolVar(&eduForm.Current, "current", false, "Currently studying")
	f.StringVar(&eduForm.Description, "description", "", "Program description")

	deleteAccountCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the deletion. This can NOT be undone")

	profileCmd.AddCommand(profileMeCmd, profileListCmd, profileShowCmd, profileSaveCmd)
	profileCmd.AddCommand(addExperienceCmd, addEducationCmd, rmExperienceCmd, rmEducationCmd)
	profileCmd.AddCommand(githubCmd, deleteAccountCmd)
}

func runProfileMe(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		if err := store.GetCurrentProfile(ctx); err != nil {
			if isStatus(err, http.StatusBadRequest, http.StatusNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "You have not yet setup a profile, run 'devhub profile save'")
				return nil
			}
			return err
		}
		printProfile(cmd.OutOrStdout(), store.State().Profile.Profile)
		return nil
	})
}

func runProfileList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := store.GetProfiles(ctx); err != nil {
			return err
		}
		profiles := store.State().Profile.Profiles
		if len(profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No profiles found...")
			return nil
		}
		w := cmd.OutOrStdout()
		for _, p := range profiles {
			name, id := "", ""
			if p.User != nil {
				name, id = p.User.Name, p.User.ID
			}
			line := p.Status
			if p.Company != "" {
				line += " at " + p.Company
			}
			fmt.Fprintf(w, "%s  %s\n  %s\n", id, name, line)
			if p.Location != "" {
				fmt.Fprintf(w, "  %s\n", p.Location)
			}
			fmt.Fprintf(w, "  skills: %s\n", strings.Join(p.Skills, ", "))
		}
		return nil
	})
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := store.GetProfileByID(ctx, args[0]); err != nil {
			return err
		}
		p := store.State().Profile.Profile
		printProfile(cmd.OutOrStdout(), p)
		if p.GithubUsername != "" && store.GetGithubRepos(ctx, p.GithubUsername) == nil {
			printRepos(cmd.OutOrStdout(), store.State().Profile.Repos)
		}
		return nil
	})
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		// Start from the current profile so unset flags keep their values.
		edit := store.GetCurrentProfile(ctx) == nil
		in := client.ProfileInputFrom(store.State().Profile.Profile)
		mergeProfileFlags(cmd, &in)
		if err := store.SaveProfile(ctx, in, edit); err != nil {
			return err
		}
		printProfile(cmd.OutOrStdout(), store.State().Profile.Profile)
		return nil
	})
}

// mergeProfileFlags copies every explicitly given flag into in.
func mergeProfileFlags(cmd *cobra.Command, in *client.ProfileInput) {
	fields := map[string]*string{
		"status":         &in.Status,
		"skills":         &in.Skills,
		"company":        &in.Company,
		"website":        &in.Website,
		"location":       &in.Location,
		"bio":            &in.Bio,
		"githubusername": &in.GithubUsername,
		"youtube":        &in.YouTube,
		"twitter":        &in.Twitter,
		"facebook":       &in.Facebook,
		"linkedin":       &in.LinkedIn,
		"instagram":      &in.Instagram,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
}

func runAddExperience(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		in := expForm
		if in.Current {
			in.To = ""
		}
		if err := store.AddExperience(ctx, in); err != nil {
			return err
		}
		printExperience(cmd.OutOrStdout(), store.State().Profile.Profile.Experience)
		return nil
	})
}

func runAddEducation(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		in := eduForm
		if in.Current {
			in.To = ""
		}
		if err := store.AddEducation(ctx, in); err != nil {
			return err
		}
		printEducation(cmd.OutOrStdout(), store.State().Profile.Profile.Education)
		return nil
	})
}

func runRmExperience(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		return store.DeleteExperience(ctx, args[0])
	})
}

func runRmEducation(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		return store.DeleteEducation(ctx, args[0])
	})
}

func runGithub(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := store.GetGithubRepos(ctx, args[0]); err != nil {
			return err
		}
		printRepos(cmd.OutOrStdout(), store.State().Profile.Repos)
		return nil
	})
}

func runDeleteAccount(cmd *cobra.Command, args []string) error {
	if !confirmed {
		return errors.New("refusing to delete without --yes, this can NOT be undone")
	}
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		return store.DeleteAccount(ctx)
	})
}

func isStatus(err error, statuses ...int) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.Status == s {
			return true
		}
	}
	return false
}

func printProfile(w io.Writer, p *client.Profile) {
	if p == nil {
		return
	}
	if p.User != nil {
		fmt.Fprintf(w, "%s\n", p.User.Name)
	}
	line := p.Status
	if p.Company != "" {
		line += " at " + p.Company
	}
	fmt.Fprintln(w, line)
	for _, kv := range [][2]string{
		{"location", p.Location},
		{"website", p.Website},
		{"github", p.GithubUsername},
		{"bio", p.Bio},
		{"youtube", p.Social.YouTube},
		{"twitter", p.Social.Twitter},
		{"facebook", p.Social.Facebook},
		{"linkedin", p.Social.LinkedIn},
		{"instagram", p.Social.Instagram},
	} {
		if kv[1] != "" {
			fmt.Fprintf(w, "%s: %s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintf(w, "skills: %s\n", strings.Join(p.Skills, ", "))
	printExperience(w, p.Experience)
	printEducation(w, p.Education)
}

func printExperience(w io.Writer, exps []client.Experience) {
	if len(exps) == 0 {
		return
	}
	fmt.Fprintln(w, "experience:")
	for _, e := range exps {
		fmt.Fprintf(w, "  [%s] %s at %s, %s - %s\n", e.ID, e.Title, e.Company, e.From, until(e.To, e.Current))
	}
}

func printEducation(w io.Writer, edus []client.Education) {
	if len(edus) == 0 {
		return
	}
	fmt.Fprintln(w, "education:")
	for _, e := range edus {
		fmt.Fprintf(w, "  [%s] %s, %s in %s, %s - %s\n", e.ID, e.School, e.Degree, e.FieldOfStudy, e.From, until(e.To, e.Current))
	}
}

func until(to string, current bool) string {
	if current || to == "" {
		return "Now"
	}
	return to
}

func printRepos(w io.Writer, repos []client.Repo) {
	if len(repos) == 0 {
		return
	}
	fmt.Fprintln(w, "github repos:")
	for _, r := range repos {
		fmt.Fprintf(w, "  %s  stars:%d watchers:%d forks:%d\n", r.Name, r.StargazersCount, r.WatchersCount, r.ForksCount)
		if r.Description != "" {
			fmt.Fprintf(w, "    %s\n", r.Description)
		}
	}
}
