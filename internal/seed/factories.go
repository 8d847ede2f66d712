// Package seed provides helpers to create demo data for the application
// store. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	statuses = []string{
		"Developer", "Junior Developer", "Senior Developer", "Manager",
		"Student or Learning", "Instructor or Teacher", "Intern", "Other",
	}

	degrees = []string{"BSc", "MSc", "BA", "PhD", "Associate", "Bootcamp Certificate"}

	fields = []string{
		"Computer Science", "Software Engineering", "Mathematics", "Information Systems",
		"Electrical Engineering", "Physics", "Design",
	}
)

// Factory builds service inputs filled with fake but plausible developer data.
// A fixed seed yields the same data on every run.
type Factory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{faker: gofakeit.New(seed)}
}

func (f *Factory) pick(options []string) string {
	return options[f.faker.Number(0, len(options)-1)]
}

// Account returns registration input with a unique email.
func (f *Factory) Account(password string, overrides ...func(*service.RegisterInput)) service.RegisterInput {
	f.seq++
	first, last := f.faker.FirstName(), f.faker.LastName()
	in := service.RegisterInput{
		Name:     first + " " + last,
		Email:    fmt.Sprintf("%s.%s.%d@devhub.test", emailSafe(first), emailSafe(last), f.seq),
		Password: password,
	}
	for _, override := range overrides {
		override(&in)
	}
	return in
}

// emailSafe lowercases s and drops anything but letters and digits.
func emailSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, s)
}

// Profile returns a profile with between two and five skills and social links.
func (f *Factory) Profile(overrides ...func(*service.ProfileInput)) service.ProfileInput {
	want := f.faker.Number(2, 5)
	skills := make(service.SkillList, 0, want)
	seen := map[string]bool{}
	for len(skills) < want {
		lang := f.faker.ProgrammingLanguage()
		if !seen[lang] {
			seen[lang] = true
			skills = append(skills, lang)
		}
	}

	handle := strings.ToLower(f.faker.Username())
	in := service.ProfileInput{
		Company:        f.faker.Company(),
		Website:        f.faker.DomainName(),
		Location:       f.faker.City() + ", " + f.faker.StateAbr(),
		Status:         f.pick(statuses),
		Skills:         skills,
		Bio:            f.faker.HackerPhrase(),
		GithubUsername: handle,
		Twitter:        "twitter.com/" + handle,
		LinkedIn:       "linkedin.com/in/" + handle,
	}
	for _, override := range overrides {
		override(&in)
	}
	return in
}

// Experience returns a job that started up to ten years ago.
func (f *Factory) Experience(current bool) service.ExperienceInput {
	from := f.faker.DateRange(time.Now().AddDate(-10, 0, 0), time.Now().AddDate(0, -6, 0))
	in := service.ExperienceInput{
		Title:       f.faker.JobTitle(),
		Company:     f.faker.Company(),
		Location:    f.faker.City(),
		From:        from.Format(time.DateOnly),
		Current:     current,
		Description: f.faker.Sentence(12),
	}
	if !current {
		in.To = from.AddDate(0, f.faker.Number(6, 36), 0).Format(time.DateOnly)
	}
	return in
}

// Education returns a finished degree.
func (f *Factory) Education() service.EducationInput {
	from := f.faker.DateRange(time.Now().AddDate(-20, 0, 0), time.Now().AddDate(-4, 0, 0))
	return service.EducationInput{
		School:       f.faker.City() + " University",
		Degree:       f.pick(degrees),
		FieldOfStudy: f.pick(fields),
		From:         from.Format(time.DateOnly),
		To:           from.AddDate(f.faker.Number(2, 5), 0, 0).Format(time.DateOnly),
	}
}

// PostText returns a short post body.
func (f *Factory) PostText() string {
	return f.faker.Paragraph(1, f.faker.Number(1, 3), 12, " ")
}

// CommentText returns a one sentence reply.
func (f *Factory) CommentText() string {
	return f.faker.Sentence(f.faker.Number(4, 14))
}

// Chance reports true with probability percent/100.
func (f *Factory) Chance(percent int) bool {
	return f.faker.Number(1, 100) <= percent
}
